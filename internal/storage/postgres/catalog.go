package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hausmart/storefront/internal/domain/catalog"
)

const (
	listShowroomsSQL = `SELECT id, name, image_url FROM showrooms ORDER BY id`

	showroomExistsSQL = `SELECT EXISTS (SELECT 1 FROM showrooms WHERE id = $1)`

	showroomHotspotsSQL = `SELECT h.x_pos, h.y_pos,
		i.id, i.sku, i.name, i.description, i.height, i.width, i.length,
		p.retail_price
		FROM hotspots h
		JOIN items i ON i.id = h.item_id
		JOIN item_country_prices p ON p.item_id = i.id AND p.country = $2
		WHERE h.showroom_id = $1
		ORDER BY h.id`

	itemBySKUSQL = `SELECT i.id, i.sku, i.name, i.description, i.height, i.width, i.length,
		p.retail_price
		FROM items i
		JOIN item_country_prices p ON p.item_id = i.id AND p.country = $2
		WHERE i.sku = $1`

	activePromotionsSQL = `SELECT pr.id, i.sku, pr.item_id, pr.description,
		pr.discount_rate, pr.image_url, pr.start_date, pr.end_date, pr.country
		FROM promotions pr
		JOIN items i ON i.id = pr.item_id
		WHERE pr.end_date >= CURRENT_DATE AND pr.country = $1
		ORDER BY pr.id`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListShowrooms returns all showrooms ordered by id.
func (r *CatalogRepository) ListShowrooms(ctx context.Context) ([]catalog.Showroom, error) {
	rows, err := r.pool.Query(ctx, listShowroomsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing showrooms: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Showroom, error) {
		var s catalog.Showroom
		err := row.Scan(&s.ID, &s.Name, &s.ImageURL)
		return s, err
	})
}

// ShowroomHotspots returns the hotspots of one showroom joined with item
// fields and the country-resolved retail price. A showroom that exists but
// has no hotspots yields an empty slice, not an error.
func (r *CatalogRepository) ShowroomHotspots(ctx context.Context, showroomID int64, country string) ([]catalog.Hotspot, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, showroomExistsSQL, showroomID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking showroom %d: %w", showroomID, err)
	}
	if !exists {
		return nil, catalog.ErrShowroomNotFound
	}

	rows, err := r.pool.Query(ctx, showroomHotspotsSQL, showroomID, country)
	if err != nil {
		return nil, fmt.Errorf("listing hotspots for showroom %d: %w", showroomID, err)
	}
	return pgx.CollectRows(rows, scanHotspot)
}

// ItemBySKU resolves one item with its retail price for the given country.
func (r *CatalogRepository) ItemBySKU(ctx context.Context, sku, country string) (*catalog.PricedItem, error) {
	rows, err := r.pool.Query(ctx, itemBySKUSQL, sku, country)
	if err != nil {
		return nil, fmt.Errorf("getting item %q: %w", sku, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanPricedItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, fmt.Errorf("getting item %q: %w", sku, err)
	}
	return &item, nil
}

// ActivePromotions returns promotions for the country whose end date has not
// passed.
func (r *CatalogRepository) ActivePromotions(ctx context.Context, country string) ([]catalog.Promotion, error) {
	rows, err := r.pool.Query(ctx, activePromotionsSQL, country)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Promotion, error) {
		var p catalog.Promotion
		err := row.Scan(&p.ID, &p.SKU, &p.ItemID, &p.Description,
			&p.DiscountRate, &p.ImageURL, &p.StartDate, &p.EndDate, &p.Country)
		return p, err
	})
}

func scanHotspot(row pgx.CollectableRow) (catalog.Hotspot, error) {
	var h catalog.Hotspot
	err := row.Scan(&h.XPos, &h.YPos,
		&h.Item.ID, &h.Item.SKU, &h.Item.Name, &h.Item.Description,
		&h.Item.Height, &h.Item.Width, &h.Item.Length,
		&h.Item.RetailPrice,
	)
	return h, err
}

func scanPricedItem(row pgx.CollectableRow) (catalog.PricedItem, error) {
	var item catalog.PricedItem
	err := row.Scan(&item.ID, &item.SKU, &item.Name, &item.Description,
		&item.Height, &item.Width, &item.Length,
		&item.RetailPrice,
	)
	return item, err
}

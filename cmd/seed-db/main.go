// Command seed-db loads the catalog seed file into PostgreSQL: showrooms
// with their hotspots, items with per-country prices, promotions, and the
// standing promo codes. Everything is upserted, so re-running is safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hausmart/storefront/internal/storage/postgres"
)

type catalogJSON struct {
	Showrooms []struct {
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
		Hotspots []struct {
			SKU  string          `json:"sku"`
			XPos decimal.Decimal `json:"x_pos"`
			YPos decimal.Decimal `json:"y_pos"`
		} `json:"hotspots"`
	} `json:"showrooms"`
	Items []struct {
		SKU         string                     `json:"sku"`
		Name        string                     `json:"name"`
		Description string                     `json:"description"`
		Height      decimal.Decimal            `json:"height"`
		Width       decimal.Decimal            `json:"width"`
		Length      decimal.Decimal            `json:"length"`
		Prices      map[string]decimal.Decimal `json:"prices"`
	} `json:"items"`
	Promotions []struct {
		SKU          string          `json:"sku"`
		Description  string          `json:"description"`
		DiscountRate decimal.Decimal `json:"discount_rate"`
		ImageURL     string          `json:"image_url"`
		StartDate    string          `json:"start_date"`
		EndDate      string          `json:"end_date"`
		Country      string          `json:"country"`
	} `json:"promotions"`
}

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}
	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	if err := seedItems(ctx, pool, catalog); err != nil {
		return errors.Wrap(err, "seed items")
	}
	if err := seedShowrooms(ctx, pool, catalog); err != nil {
		return errors.Wrap(err, "seed showrooms")
	}
	if err := seedPromotions(ctx, pool, catalog); err != nil {
		return errors.Wrap(err, "seed promotions")
	}
	if err := seedPromoCodes(ctx, pool); err != nil {
		return errors.Wrap(err, "seed promo codes")
	}
	return nil
}

func seedItems(ctx context.Context, pool *pgxpool.Pool, catalog catalogJSON) error {
	const upsertItem = `INSERT INTO items (sku, name, description, height, width, length)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			height = EXCLUDED.height, width = EXCLUDED.width, length = EXCLUDED.length
		RETURNING id`

	const upsertPrice = `INSERT INTO item_country_prices (item_id, country, retail_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id, country) DO UPDATE SET retail_price = EXCLUDED.retail_price`

	slog.Info("upserting items", slog.Int("count", len(catalog.Items)))

	for _, item := range catalog.Items {
		var id int64
		if err := pool.QueryRow(ctx, upsertItem,
			item.SKU, item.Name, item.Description, item.Height, item.Width, item.Length,
		).Scan(&id); err != nil {
			return errors.Wrapf(err, "upsert item %s", item.SKU)
		}
		for country, price := range item.Prices {
			if _, err := pool.Exec(ctx, upsertPrice, id, country, price); err != nil {
				return errors.Wrapf(err, "upsert price %s/%s", item.SKU, country)
			}
		}
		slog.Info("upserted item", slog.String("sku", item.SKU), slog.String("name", item.Name))
	}
	return nil
}

func seedShowrooms(ctx context.Context, pool *pgxpool.Pool, catalog catalogJSON) error {
	// Showrooms have no natural key, so seeding replaces them wholesale.
	const clearShowrooms = `DELETE FROM showrooms`
	const insertShowroom = `INSERT INTO showrooms (name, image_url) VALUES ($1, $2) RETURNING id`
	const insertHotspot = `INSERT INTO hotspots (showroom_id, item_id, x_pos, y_pos)
		SELECT $1, id, $3, $4 FROM items WHERE sku = $2`

	slog.Info("replacing showrooms", slog.Int("count", len(catalog.Showrooms)))

	if _, err := pool.Exec(ctx, clearShowrooms); err != nil {
		return errors.Wrap(err, "clear showrooms")
	}
	for _, sr := range catalog.Showrooms {
		var id int64
		if err := pool.QueryRow(ctx, insertShowroom, sr.Name, sr.ImageURL).Scan(&id); err != nil {
			return errors.Wrapf(err, "insert showroom %s", sr.Name)
		}
		for _, hs := range sr.Hotspots {
			tag, err := pool.Exec(ctx, insertHotspot, id, hs.SKU, hs.XPos, hs.YPos)
			if err != nil {
				return errors.Wrapf(err, "insert hotspot %s", hs.SKU)
			}
			if tag.RowsAffected() == 0 {
				return errors.Errorf("hotspot references unknown sku %s", hs.SKU)
			}
		}
		slog.Info("inserted showroom", slog.String("name", sr.Name), slog.Int("hotspots", len(sr.Hotspots)))
	}
	return nil
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool, catalog catalogJSON) error {
	const clearPromotions = `DELETE FROM promotions`
	const insertPromotion = `INSERT INTO promotions
		(item_id, description, discount_rate, image_url, start_date, end_date, country)
		SELECT id, $2, $3, $4, $5::date, $6::date, $7 FROM items WHERE sku = $1`

	slog.Info("replacing promotions", slog.Int("count", len(catalog.Promotions)))

	if _, err := pool.Exec(ctx, clearPromotions); err != nil {
		return errors.Wrap(err, "clear promotions")
	}
	for _, p := range catalog.Promotions {
		tag, err := pool.Exec(ctx, insertPromotion,
			p.SKU, p.Description, p.DiscountRate, p.ImageURL, p.StartDate, p.EndDate, p.Country)
		if err != nil {
			return errors.Wrapf(err, "insert promotion for %s", p.SKU)
		}
		if tag.RowsAffected() == 0 {
			return errors.Errorf("promotion references unknown sku %s", p.SKU)
		}
	}
	return nil
}

func seedPromoCodes(ctx context.Context, pool *pgxpool.Pool) error {
	const upsertCode = `INSERT INTO promo_codes (code, discount_type, value, min_items, min_spend, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
			min_items = EXCLUDED.min_items, min_spend = EXCLUDED.min_spend,
			description = EXCLUDED.description`

	codes := []struct {
		code         string
		discountType string
		value        decimal.Decimal
		minItems     int
		minSpend     decimal.Decimal
		description  string
	}{
		{"WELCOME15", "percentage", decimal.NewFromInt(15), 0, decimal.Zero, "Welcome: 15% off entire order"},
		{"FREESEAT", "free_lowest", decimal.Zero, 2, decimal.Zero, "Lowest priced item free with 2 or more items"},
		{"SGDOFF20", "fixed", decimal.NewFromInt(20), 0, decimal.NewFromInt(100), "Flat 20 off orders over 100"},
	}

	slog.Info("seeding promo codes", slog.Int("count", len(codes)))

	for _, c := range codes {
		if _, err := pool.Exec(ctx, upsertCode,
			c.code, c.discountType, c.value, c.minItems, c.minSpend, c.description); err != nil {
			return errors.Wrapf(err, "upsert promo code %s", c.code)
		}
		slog.Info("upserted promo code", slog.String("code", c.code))
	}
	return nil
}

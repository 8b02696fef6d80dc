package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hausmart/storefront/internal/domain/promo"
)

const promoByCodeSQL = `SELECT code, discount_type, value, min_items, min_spend, description
	FROM promo_codes WHERE code = UPPER($1)`

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL. Codes are
// stored upper-cased, so lookup upper-cases the input.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// FindByCode resolves a promo rule. Unknown codes map to promo.ErrInvalidCode.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*promo.Rule, error) {
	rows, err := r.pool.Query(ctx, promoByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("getting promo code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (promo.Rule, error) {
		var p promo.Rule
		err := row.Scan(&p.Code, &p.DiscountType, &p.Value, &p.MinItems, &p.MinSpend, &p.Description)
		return p, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrInvalidCode
		}
		return nil, fmt.Errorf("getting promo code %q: %w", code, err)
	}
	return &rule, nil
}

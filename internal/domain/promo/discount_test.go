package promo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestRuleDiscount(t *testing.T) {
	tests := []struct {
		name       string
		rule       *Rule
		items      []Item
		wantAmount decimal.Decimal
		wantDesc   string
		wantErr    error
	}{
		{
			name: "percentage 15% off $200 subtotal",
			rule: &Rule{
				Code:         "DESK15",
				DiscountType: DiscountPercentage,
				Value:        d("15"),
				Description:  "15% off",
			},
			items: []Item{
				{ItemID: 1, Price: d("100"), Quantity: 2},
			},
			wantAmount: d("30"),
			wantDesc:   "15% off",
		},
		{
			name: "percentage 100% off equals subtotal",
			rule: &Rule{
				Code:         "FREEBIE",
				DiscountType: DiscountPercentage,
				Value:        d("100"),
				Description:  "100% off",
			},
			items: []Item{
				{ItemID: 1, Price: d("19.90"), Quantity: 2},
			},
			wantAmount: d("39.80"),
			wantDesc:   "100% off",
		},
		{
			name: "fixed $9 off $89 subtotal",
			rule: &Rule{
				Code:         "FLAT9",
				DiscountType: DiscountFixed,
				Value:        d("9"),
				Description:  "$9 off",
			},
			items: []Item{
				{ItemID: 1, Price: d("89"), Quantity: 1},
			},
			wantAmount: d("9"),
			wantDesc:   "$9 off",
		},
		{
			name: "fixed discount capped at subtotal",
			rule: &Rule{
				Code:         "BIG",
				DiscountType: DiscountFixed,
				Value:        d("500"),
				Description:  "$500 off",
			},
			items: []Item{
				{ItemID: 1, Price: d("119"), Quantity: 1},
			},
			wantAmount: d("119"),
			wantDesc:   "$500 off",
		},
		{
			name: "free lowest picks the cheapest unit price",
			rule: &Rule{
				Code:         "FREELOW",
				DiscountType: DiscountFreeLowest,
				Value:        decimal.Zero,
				Description:  "cheapest item free",
			},
			items: []Item{
				{ItemID: 1, Price: d("89"), Quantity: 1},
				{ItemID: 2, Price: d("19.90"), Quantity: 1},
				{ItemID: 3, Price: d("129"), Quantity: 1},
			},
			wantAmount: d("19.90"),
			wantDesc:   "cheapest item free",
		},
		{
			name: "min items not met",
			rule: &Rule{
				Code:         "BULK2",
				DiscountType: DiscountFixed,
				Value:        d("5"),
				MinItems:     2,
				Description:  "$5 off (min 2)",
			},
			items: []Item{
				{ItemID: 1, Price: d("50"), Quantity: 1},
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "min items counts quantities",
			rule: &Rule{
				Code:         "BULK2",
				DiscountType: DiscountFixed,
				Value:        d("5"),
				MinItems:     2,
				Description:  "$5 off (min 2)",
			},
			items: []Item{
				{ItemID: 1, Price: d("50"), Quantity: 2},
			},
			wantAmount: d("5"),
			wantDesc:   "$5 off (min 2)",
		},
		{
			name: "min spend not met",
			rule: &Rule{
				Code:         "SPEND100",
				DiscountType: DiscountFixed,
				Value:        d("20"),
				MinSpend:     d("100"),
				Description:  "$20 off orders over $100",
			},
			items: []Item{
				{ItemID: 1, Price: d("89"), Quantity: 1},
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "min spend met exactly",
			rule: &Rule{
				Code:         "SPEND100",
				DiscountType: DiscountFixed,
				Value:        d("20"),
				MinSpend:     d("100"),
				Description:  "$20 off orders over $100",
			},
			items: []Item{
				{ItemID: 1, Price: d("50"), Quantity: 2},
			},
			wantAmount: d("20"),
			wantDesc:   "$20 off orders over $100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rule.Discount(tt.items)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.wantAmount.Equal(got.Amount), "amount: got %s, want %s", got.Amount, tt.wantAmount)
			assert.Equal(t, tt.wantDesc, got.Description)
		})
	}

	t.Run("unsupported type", func(t *testing.T) {
		rule := &Rule{Code: "WAT", DiscountType: DiscountType("mystery"), Value: d("5")}
		_, err := rule.Discount([]Item{{ItemID: 1, Price: d("50"), Quantity: 1}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported discount type")
	})
}

type mockPromoRepo struct {
	rule *Rule
	err  error
}

func (m *mockPromoRepo) FindByCode(_ context.Context, _ string) (*Rule, error) {
	return m.rule, m.err
}

func TestRepoValidator_Validate(t *testing.T) {
	items := []Item{{ItemID: 1, Price: d("100"), Quantity: 1}}

	t.Run("valid code returns discount", func(t *testing.T) {
		v := NewRepoValidator(&mockPromoRepo{
			rule: &Rule{Code: "SAVE10", DiscountType: DiscountPercentage, Value: d("10"), Description: "10% off"},
		})
		got, err := v.Validate(context.Background(), "SAVE10", items)
		require.NoError(t, err)
		assert.True(t, d("10").Equal(got.Amount))
	})

	t.Run("unknown code returns ErrInvalidCode", func(t *testing.T) {
		v := NewRepoValidator(&mockPromoRepo{err: ErrInvalidCode})
		_, err := v.Validate(context.Background(), "BOGUS", items)
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("min items not met returns ErrInvalidCode", func(t *testing.T) {
		v := NewRepoValidator(&mockPromoRepo{
			rule: &Rule{Code: "BULK3", DiscountType: DiscountFixed, Value: d("5"), MinItems: 3},
		})
		_, err := v.Validate(context.Background(), "BULK3", items)
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("min spend not met returns ErrInvalidCode", func(t *testing.T) {
		v := NewRepoValidator(&mockPromoRepo{
			rule: &Rule{Code: "SPEND200", DiscountType: DiscountFixed, Value: d("20"), MinSpend: d("200")},
		})
		_, err := v.Validate(context.Background(), "SPEND200", items)
		require.ErrorIs(t, err, ErrInvalidCode)
	})
}

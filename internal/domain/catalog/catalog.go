// Package catalog holds the read-only product catalog: showrooms with their
// hotspot overlays, items, and country-resolved retail prices.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrShowroomNotFound is returned when a showroom id does not exist.
	// A showroom that exists but has no hotspots is not an error.
	ErrShowroomNotFound = errors.New("showroom not found")

	// ErrItemNotFound is returned when an item cannot be resolved by SKU,
	// or has no retail price for the requested country.
	ErrItemNotFound = errors.New("item not found")
)

// Showroom is a curated room image annotated with hotspots.
type Showroom struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// Item is a single furniture product. Dimensions are in centimetres.
type Item struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	Height      decimal.Decimal
	Width       decimal.Decimal
	Length      decimal.Decimal
}

// PricedItem is an item with its retail price resolved for one country.
type PricedItem struct {
	Item
	RetailPrice decimal.Decimal
}

// Hotspot is a clickable coordinate marker on a showroom image linking to an
// item. Coordinates are percentages (0-100) of the image dimensions.
type Hotspot struct {
	XPos decimal.Decimal
	YPos decimal.Decimal
	Item PricedItem
}

// Promotion is a time-bounded discount banner for one item in one country.
type Promotion struct {
	ID           int64
	SKU          string
	ItemID       int64
	Description  string
	DiscountRate decimal.Decimal
	ImageURL     string
	StartDate    time.Time
	EndDate      time.Time
	Country      string
}

// Repository defines read operations over the catalog. Displayed prices are
// always resolved through the viewer's selected country.
type Repository interface {
	ListShowrooms(ctx context.Context) ([]Showroom, error)
	ShowroomHotspots(ctx context.Context, showroomID int64, country string) ([]Hotspot, error)
	ItemBySKU(ctx context.Context, sku, country string) (*PricedItem, error)
	ActivePromotions(ctx context.Context, country string) ([]Promotion, error)
}

// Package product defines the inventory product entity and its
// domain-level validation rules.
package product

import (
	"regexp"
	"time"

	"github.com/uptrace/bun"
)

// Field constraints enforced at the API boundary and mirrored by the
// storage schema.
const (
	NameMinLen  = 2
	NameMaxLen  = 100
	MaxQuantity = 10000
	MaxPrice    = 999999.99
)

// Product represents a single inventory item.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID       string  `bun:"id,pk" json:"id"`
	Name     string  `bun:"name,notnull" json:"name"`
	Price    float64 `bun:"price,notnull" json:"price"`
	Quantity int     `bun:"quantity,notnull" json:"quantity"`
	Image    string  `bun:"image,notnull" json:"image"`

	// TotalValue is derived on read and never stored.
	TotalValue float64 `bun:"-" json:"totalValue"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// ComputeTotals populates the derived fields from the stored ones.
func (p *Product) ComputeTotals() {
	p.TotalValue = p.Price * float64(p.Quantity)
}

// Update carries a partial update; nil fields retain their previous values.
type Update struct {
	Name     *string
	Price    *float64
	Quantity *int
	Image    *string
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Price == nil && u.Quantity == nil && u.Image == nil
}

// KPI is the aggregate view over the whole collection. All metrics are
// zero when the collection is empty.
type KPI struct {
	TotalProducts   int     `json:"totalProducts"`
	TotalValue      float64 `json:"totalValue"`
	TotalUnits      int     `json:"totalUnits"`
	AveragePrice    float64 `json:"averagePrice"`
	AverageQuantity float64 `json:"averageQuantity"`
}

var (
	imageExtensionRe = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)$`)
	imageHostRe      = regexp.MustCompile(`(?i)^https?://(ucarecdn\.com|images\.unsplash\.com|picsum\.photos|via\.placeholder\.com|imgur\.com|cloudinary\.com|amazonaws\.com|cdn\.|images\.|img\.|static\.)`)
	imageCDNPathRe   = regexp.MustCompile(`(?i)^https?://[^/]+/[a-f0-9\-]+/?$`)
)

// ValidImageURL reports whether the URL is acceptable as a product image:
// it ends with a known image extension, comes from a recognized image
// host, or looks like a CDN asset path.
func ValidImageURL(url string) bool {
	if imageExtensionRe.MatchString(url) {
		return true
	}
	if imageHostRe.MatchString(url) {
		return true
	}
	return imageCDNPathRe.MatchString(url)
}

package catalog

import (
	"fmt"
	"net/url"
	"time"
)

// Product is a single menu entry. Prices are integer cents.
type Product struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	PriceCents  int64     `json:"price_cents" bson:"price_cents"`
	Category    string    `json:"category" bson:"category"`
	Image       string    `json:"image" bson:"image"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// defaultImage builds a placeholder avatar URL from the product name.
func defaultImage(name string) string {
	return fmt.Sprintf(
		"https://ui-avatars.com/api/?name=%s&background=f97316&color=fff&size=512",
		url.QueryEscape(name),
	)
}

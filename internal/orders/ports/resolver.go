package ports

import "context"

// CatalogProduct is the slice of a product the order core needs: the
// current price for total computation and the name for display.
type CatalogProduct struct {
	ID         string
	Name       string
	PriceCents int64
}

// ProductResolver looks up products by id against the live catalog. Used
// at order-creation time to compute totals, so implementations must return
// current prices, never cached ones, and for display resolution on reads.
type ProductResolver interface {
	Resolve(ctx context.Context, ids []string) (map[string]CatalogProduct, error)
}

// Customer is the display form of an order's owner.
type Customer struct {
	ID    string
	Name  string
	Email string
}

// CustomerDirectory resolves customer references for display.
type CustomerDirectory interface {
	LookupCustomers(ctx context.Context, ids []string) (map[string]Customer, error)
}

package adapters

import (
	"context"

	"github.com/nmesfin/mesob/internal/orders/ports"
	"github.com/nmesfin/mesob/internal/users"
)

// AccountLookup is the slice of the user service the directory needs.
type AccountLookup interface {
	LookupByIDs(ctx context.Context, ids []string) ([]users.User, error)
}

// CustomerDirectory projects user accounts into the customer references
// shown on orders.
type CustomerDirectory struct {
	accounts AccountLookup
}

func NewCustomerDirectory(accounts AccountLookup) *CustomerDirectory {
	return &CustomerDirectory{accounts: accounts}
}

func (d *CustomerDirectory) LookupCustomers(ctx context.Context, ids []string) (map[string]ports.Customer, error) {
	found, err := d.accounts.LookupByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make(map[string]ports.Customer, len(found))
	for _, user := range found {
		result[user.ID] = ports.Customer{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	return result, nil
}

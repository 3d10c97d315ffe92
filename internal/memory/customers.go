package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/thablackcodes/gresh-finance/internal/domain"
)

// CustomerRepository implements domain.CustomerRepository in memory.
type CustomerRepository struct {
	store *Store
}

var _ domain.CustomerRepository = (*CustomerRepository)(nil)

// Create stages a new customer. Emails are unique.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.store.inUnit(ctx, func(u *unit) error {
		if _, err := r.GetByEmail(ctx, customer.Email); err == nil {
			return domain.ErrDuplicateEmail
		}
		u.customers = append(u.customers, *customer)
		return nil
	})
}

// GetByID retrieves a customer by id.
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return r.find(ctx, func(c *domain.Customer) bool { return c.ID == id })
}

// GetByEmail retrieves a customer by email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.find(ctx, func(c *domain.Customer) bool { return c.Email == email })
}

func (r *CustomerRepository) find(ctx context.Context, match func(*domain.Customer) bool) (*domain.Customer, error) {
	if u := getUnit(ctx); u != nil {
		for _, c := range u.customers {
			if match(&c) {
				return &c, nil
			}
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.customers {
		if match(&c) {
			return &c, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

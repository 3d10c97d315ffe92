package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/thablackcodes/gresh-finance/internal/domain"
)

var errNoUnit = errors.New("operation requires a transaction context")

// TransactionRepository implements domain.TransactionRepository in memory.
// Rows are append-only: there is no update or delete.
type TransactionRepository struct {
	store *Store
}

var _ domain.TransactionRepository = (*TransactionRepository)(nil)

// Create stages a transaction record.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	return r.store.inUnit(ctx, func(u *unit) error {
		for _, t := range u.transactions {
			if t.Reference == tx.Reference {
				return domain.ErrDuplicateReference
			}
		}
		r.store.mu.RLock()
		_, taken := r.store.references[tx.Reference]
		r.store.mu.RUnlock()
		if taken {
			return domain.ErrDuplicateReference
		}
		u.transactions = append(u.transactions, *tx)
		return nil
	})
}

// GetByID retrieves a transaction by its unique identifier.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	if u := getUnit(ctx); u != nil {
		for _, t := range u.transactions {
			if t.ID == id {
				return &t, nil
			}
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t, ok := r.store.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &t, nil
}

// ListByAccount returns the account's transactions newest first.
func (r *TransactionRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit, offset int,
) ([]*domain.Transaction, int, error) {
	var matched []domain.Transaction

	r.store.mu.RLock()
	for _, id := range r.store.order {
		t := r.store.transactions[id]
		if t.Involves(accountID) {
			matched = append(matched, t)
		}
	}
	r.store.mu.RUnlock()

	if u := getUnit(ctx); u != nil {
		for _, t := range u.transactions {
			if t.Involves(accountID) {
				matched = append(matched, t)
			}
		}
	}

	// newest first; rows created in the same instant keep reverse insertion order
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset < 0 || offset >= total {
		return []*domain.Transaction{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	page := make([]*domain.Transaction, 0, end-offset)
	for i := offset; i < end; i++ {
		t := matched[i]
		page = append(page, &t)
	}
	return page, total, nil
}

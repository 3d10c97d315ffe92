package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thablackcodes/gresh-finance/internal/domain"
	"github.com/thablackcodes/gresh-finance/internal/money"
)

// AccountRepository implements domain.AccountRepository in memory.
type AccountRepository struct {
	store *Store
}

var _ domain.AccountRepository = (*AccountRepository)(nil)

// Create stages a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.store.inUnit(ctx, func(u *unit) error {
		if _, ok := r.store.lookupNumber(u, account.AccountNumber); ok {
			return domain.ErrDuplicateAccountNumber
		}
		u.accounts[account.ID] = *account
		u.newAccounts[account.ID] = true
		return nil
	})
}

// GetByID retrieves an account by its unique identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := r.store.account(getUnit(ctx), id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

// GetByNumber retrieves an account by its account number.
func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	u := getUnit(ctx)
	id, ok := r.store.lookupNumber(u, accountNumber)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a, ok := r.store.account(u, id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

// Lock acquires the row lock for the rest of the unit-of-work.
// This method MUST be called within a transaction context.
func (r *AccountRepository) Lock(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	u := getUnit(ctx)
	if u == nil {
		return nil, errNoUnit
	}
	if err := r.store.lock(ctx, u, id); err != nil {
		return nil, err
	}
	a, ok := r.store.account(u, id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

// AdjustBalance adds delta to the locked balance. A negative result fails
// with domain.ErrInsufficientBalance and one past money.MaxAmount with
// domain.ErrAmountOutOfRange, mirroring the schema.
func (r *AccountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	var updated domain.Account
	err := r.store.inUnit(ctx, func(u *unit) error {
		if err := r.store.lock(ctx, u, id); err != nil {
			return err
		}
		a, ok := r.store.account(u, id)
		if !ok {
			return domain.ErrAccountNotFound
		}
		balance := a.Balance.Add(delta)
		if balance.IsNegative() {
			return domain.ErrInsufficientBalance
		}
		if !money.InRange(balance) {
			return domain.ErrAmountOutOfRange
		}
		a.Balance = balance
		a.UpdatedAt = time.Now().UTC()
		u.accounts[id] = a
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateDetails persists the account type and status.
func (r *AccountRepository) UpdateDetails(ctx context.Context, account *domain.Account) error {
	return r.store.inUnit(ctx, func(u *unit) error {
		if err := r.store.lock(ctx, u, account.ID); err != nil {
			return err
		}
		a, ok := r.store.account(u, account.ID)
		if !ok {
			return domain.ErrAccountNotFound
		}
		a.AccountType = account.AccountType
		a.Status = account.Status
		a.UpdatedAt = account.UpdatedAt
		u.accounts[a.ID] = a
		return nil
	})
}

// account returns the unit's view of an account: staged first, then committed.
func (s *Store) account(u *unit, id uuid.UUID) (domain.Account, bool) {
	if u != nil {
		if a, ok := u.accounts[id]; ok {
			return a, true
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	return a, ok
}

func (s *Store) lookupNumber(u *unit, number string) (uuid.UUID, bool) {
	if u != nil {
		for id := range u.newAccounts {
			if u.accounts[id].AccountNumber == number {
				return id, true
			}
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.numbers[number]
	return id, ok
}

// Package memory provides an in-process implementation of the domain
// repositories and unit-of-work. It is used by tests and by the
// "memory" storage mode.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/thablackcodes/gresh-finance/internal/domain"
)

// unitKey is the key type for storing the unit-of-work in context.
type unitKey struct{}

// Store holds committed state. Account rows are guarded by per-row locks
// held until the owning unit-of-work commits or rolls back; the committed
// maps are guarded by mu.
type Store struct {
	mu           sync.RWMutex
	customers    map[uuid.UUID]domain.Customer
	emails       map[string]uuid.UUID
	accounts     map[uuid.UUID]domain.Account
	numbers      map[string]uuid.UUID
	transactions map[uuid.UUID]domain.Transaction
	references   map[string]uuid.UUID
	// insertion order of transactions, oldest first
	order []uuid.UUID

	// row locks currently held or waited on; idle entries are removed
	locksMu  sync.Mutex
	rowLocks map[uuid.UUID]*rowLock
}

// rowLock is a one-slot semaphore with a count of units holding or
// waiting for it.
type rowLock struct {
	ch    chan struct{}
	users int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		customers:    make(map[uuid.UUID]domain.Customer),
		emails:       make(map[string]uuid.UUID),
		accounts:     make(map[uuid.UUID]domain.Account),
		numbers:      make(map[string]uuid.UUID),
		transactions: make(map[uuid.UUID]domain.Transaction),
		references:   make(map[string]uuid.UUID),
		rowLocks:     make(map[uuid.UUID]*rowLock),
	}
}

// Accounts returns the account repository backed by s.
func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{store: s}
}

// Transactions returns the transaction repository backed by s.
func (s *Store) Transactions() *TransactionRepository {
	return &TransactionRepository{store: s}
}

// Customers returns the customer repository backed by s.
func (s *Store) Customers() *CustomerRepository {
	return &CustomerRepository{store: s}
}

// Ping always succeeds while ctx is alive.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// unit is a unit-of-work: the row locks it holds and the writes it has
// staged. Staged writes become visible to other units only at commit.
type unit struct {
	held         map[uuid.UUID]*rowLock
	accounts     map[uuid.UUID]domain.Account
	newAccounts  map[uuid.UUID]bool
	customers    []domain.Customer
	transactions []domain.Transaction
}

func newUnit() *unit {
	return &unit{
		held:        make(map[uuid.UUID]*rowLock),
		accounts:    make(map[uuid.UUID]domain.Account),
		newAccounts: make(map[uuid.UUID]bool),
	}
}

func getUnit(ctx context.Context) *unit {
	if u, ok := ctx.Value(unitKey{}).(*unit); ok {
		return u
	}
	return nil
}

// WithTransaction executes fn within a unit-of-work. If fn returns an error
// the staged writes are discarded; otherwise they are applied atomically.
// A call nested inside an existing unit joins it.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if getUnit(ctx) != nil {
		return fn(ctx)
	}

	u := newUnit()
	defer s.release(u)

	if err := fn(context.WithValue(ctx, unitKey{}, u)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.commit(u)
}

// inUnit runs fn in the unit carried by ctx, or in a fresh one.
func (s *Store) inUnit(ctx context.Context, fn func(u *unit) error) error {
	if u := getUnit(ctx); u != nil {
		return fn(u)
	}
	return s.WithTransaction(ctx, func(txCtx context.Context) error {
		return fn(getUnit(txCtx))
	})
}

// acquireRowLock returns the lock for id and registers the caller as a user.
// Every call must be matched by dropRowLock.
func (s *Store) acquireRowLock(id uuid.UUID) *rowLock {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.rowLocks[id]
	if !ok {
		l = &rowLock{ch: make(chan struct{}, 1)}
		s.rowLocks[id] = l
	}
	l.users++
	return l
}

// dropRowLock unregisters a user and forgets the lock once it has none.
func (s *Store) dropRowLock(id uuid.UUID, l *rowLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l.users--
	if l.users == 0 {
		delete(s.rowLocks, id)
	}
}

// lock acquires the row lock for id on behalf of u, waiting until it is
// free or ctx is done. Locks already held by u are not re-acquired.
func (s *Store) lock(ctx context.Context, u *unit, id uuid.UUID) error {
	if _, ok := u.held[id]; ok {
		return nil
	}
	l := s.acquireRowLock(id)
	select {
	case l.ch <- struct{}{}:
		u.held[id] = l
		return nil
	case <-ctx.Done():
		s.dropRowLock(id, l)
		return fmt.Errorf("failed to lock account %s: %w", id, ctx.Err())
	}
}

func (s *Store) release(u *unit) {
	for id, l := range u.held {
		<-l.ch
		s.dropRowLock(id, l)
		delete(u.held, id)
	}
}

// commit re-checks uniqueness against state committed by concurrent units
// and applies the staged writes.
func (s *Store) commit(u *unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range u.customers {
		if _, taken := s.emails[c.Email]; taken {
			return domain.ErrDuplicateEmail
		}
	}
	for id := range u.newAccounts {
		if _, taken := s.numbers[u.accounts[id].AccountNumber]; taken {
			return domain.ErrDuplicateAccountNumber
		}
	}
	for _, t := range u.transactions {
		if _, taken := s.references[t.Reference]; taken {
			return domain.ErrDuplicateReference
		}
	}

	for _, c := range u.customers {
		s.customers[c.ID] = c
		s.emails[c.Email] = c.ID
	}
	for id, a := range u.accounts {
		s.accounts[id] = a
		s.numbers[a.AccountNumber] = id
	}
	for _, t := range u.transactions {
		s.transactions[t.ID] = t
		s.references[t.Reference] = t.ID
		s.order = append(s.order, t.ID)
	}
	return nil
}

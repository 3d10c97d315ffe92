package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access operations.
// Methods use the unit-of-work carried in ctx when one is present.
type AccountRepository interface {
	// Create persists a new account.
	// Returns ErrDuplicateAccountNumber if the number is taken.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by its unique identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByNumber retrieves an account by its account number.
	GetByNumber(ctx context.Context, accountNumber string) (*Account, error)

	// Lock acquires a row lock on the account for the duration of the
	// unit-of-work and returns the current state.
	// Must be called within a transaction context.
	Lock(ctx context.Context, id uuid.UUID) (*Account, error)

	// AdjustBalance atomically adds delta to the balance and returns the
	// updated account. A result below zero fails with ErrInsufficientBalance.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*Account, error)

	// UpdateDetails persists the account type and status.
	UpdateDetails(ctx context.Context, account *Account) error
}

// TransactionRepository defines the interface for the append-only ledger.
type TransactionRepository interface {
	// Create appends a transaction record.
	Create(ctx context.Context, tx *Transaction) error

	// GetByID retrieves a transaction by its unique identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// ListByAccount returns transactions where the account is source or
	// destination, newest first, together with the total count.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Transaction, int, error)
}

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
}

// TransactionManager defines the interface for managing database transactions.
// This abstraction allows the service layer to work with transactions
// without being coupled to a specific database implementation.
type TransactionManager interface {
	// WithTransaction executes the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// Otherwise, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes domain events to external systems (e.g. RabbitMQ).
type EventPublisher interface {
	PublishTransactionCompleted(ctx context.Context, tx *Transaction) error
}

// ReferenceGenerator produces unique identifiers for ledger records.
type ReferenceGenerator interface {
	TransactionReference() string
	TransferReference() string
	AccountNumber() string
}

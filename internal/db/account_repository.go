package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/thablackcodes/gresh-finance/internal/domain"
)

const accountColumns = `id, account_number, customer_id, account_type, currency, balance, status, created_at, updated_at`

// AccountRepository implements domain.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

var _ domain.AccountRepository = (*AccountRepository)(nil)

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool: pool,
	}
}

// Create persists a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (
			id, account_number, customer_id, account_type,
			currency, balance, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := conn(ctx, r.pool).Exec(ctx, query,
		account.ID,
		account.AccountNumber,
		account.CustomerID,
		string(account.AccountType),
		account.Currency,
		account.Balance,
		string(account.Status),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its unique identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByNumber retrieves an account by its account number.
func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return r.get(ctx, query, accountNumber)
}

// Lock acquires a pessimistic lock on the account for the duration of the transaction.
// This method MUST be called within a transaction context.
// Uses SELECT ... FOR UPDATE to lock the row.
func (r *AccountRepository) Lock(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if getTx(ctx) == nil {
		return nil, errors.New("lock requires a transaction context")
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

// AdjustBalance adds delta to the balance in a single statement and returns
// the updated row. The balance check constraint turns an overdraft into
// domain.ErrInsufficientBalance.
func (r *AccountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(conn(ctx, r.pool).QueryRow(ctx, query, id, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		if translated := translateError(err); translated != err {
			return nil, translated
		}
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return account, nil
}

// UpdateDetails persists the account type and status.
func (r *AccountRepository) UpdateDetails(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET account_type = $2,
		    status = $3,
		    updated_at = $4
		WHERE id = $1
	`

	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		account.ID,
		string(account.AccountType),
		string(account.Status),
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) get(ctx context.Context, query string, arg any) (*domain.Account, error) {
	account, err := scanAccount(conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account     domain.Account
		accountType string
		status      string
	)
	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.CustomerID,
		&accountType,
		&account.Currency,
		&account.Balance,
		&status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.AccountType = domain.AccountType(accountType)
	account.Status = domain.AccountStatus(status)
	return &account, nil
}

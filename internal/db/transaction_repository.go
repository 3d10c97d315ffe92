package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thablackcodes/gresh-finance/internal/domain"
)

const transactionColumns = `
	id, reference, transfer_reference, type, category,
	amount, balance_after, status, narration,
	from_account_id, to_account_id, created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL.
// Rows are never updated or deleted; the schema rejects both.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

var _ domain.TransactionRepository = (*TransactionRepository)(nil)

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool: pool,
	}
}

// Create appends a transaction record.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, reference, transfer_reference, type, category,
			amount, balance_after, status, narration,
			from_account_id, to_account_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := conn(ctx, r.pool).Exec(ctx, query,
		tx.ID,
		tx.Reference,
		tx.TransferReference,
		string(tx.Type),
		string(tx.Category),
		tx.Amount,
		tx.BalanceAfter,
		string(tx.Status),
		tx.Narration,
		tx.FromAccountID,
		tx.ToAccountID,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by its unique identifier.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// ListByAccount returns transactions where the account is source or
// destination, newest first, together with the total count.
// A non-positive limit returns all rows from offset; a negative offset
// yields an empty page. Outside a unit-of-work the count and the page are
// read from one REPEATABLE READ snapshot.
func (r *TransactionRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit, offset int,
) ([]*domain.Transaction, int, error) {
	if tx := getTx(ctx); tx != nil {
		return listByAccount(ctx, tx, accountID, limit, offset)
	}

	var (
		items []*domain.Transaction
		total int
	)
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, func(tx pgx.Tx) error {
		var err error
		items, total, err = listByAccount(ctx, tx, accountID, limit, offset)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func listByAccount(
	ctx context.Context,
	q querier,
	accountID uuid.UUID,
	limit, offset int,
) ([]*domain.Transaction, int, error) {
	var total int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE from_account_id = $1 OR to_account_id = $1`, accountID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	if offset < 0 {
		return []*domain.Transaction{}, total, nil
	}

	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := q.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, accountID, limitArg, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		items = append(items, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return items, total, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx       domain.Transaction
		txType   string
		category string
		status   string
	)
	err := row.Scan(
		&tx.ID,
		&tx.Reference,
		&tx.TransferReference,
		&txType,
		&category,
		&tx.Amount,
		&tx.BalanceAfter,
		&status,
		&tx.Narration,
		&tx.FromAccountID,
		&tx.ToAccountID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Type = domain.TransactionType(txType)
	tx.Category = domain.TransactionCategory(category)
	tx.Status = domain.TransactionStatus(status)
	return &tx, nil
}

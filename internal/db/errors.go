package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thablackcodes/gresh-finance/internal/domain"
)

// PostgreSQL error codes.
const (
	uniqueViolation        = "23505"
	checkViolation         = "23514"
	numericValueOutOfRange = "22003"
)

// Constraint names declared in migrations.
const (
	constraintCustomerEmail  = "customers_email_key"
	constraintAccountNumber  = "accounts_account_number_key"
	constraintBalance        = "accounts_balance_non_negative"
	constraintTransactionRef = "transactions_reference_key"
)

// translateError maps constraint violations and numeric overflow to domain errors.
// Anything else is returned unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		switch pgErr.ConstraintName {
		case constraintCustomerEmail:
			return domain.ErrDuplicateEmail
		case constraintAccountNumber:
			return domain.ErrDuplicateAccountNumber
		case constraintTransactionRef:
			return domain.ErrDuplicateReference
		}
		return &domain.Error{Kind: domain.KindConflict, Message: "A record with this value already exists.", Err: err}
	case checkViolation:
		if pgErr.ConstraintName == constraintBalance {
			return domain.ErrInsufficientBalance
		}
	case numericValueOutOfRange:
		return domain.ErrAmountOutOfRange
	}
	return err
}

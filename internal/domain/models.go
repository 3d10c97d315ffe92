package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies an account product.
type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeHIDA    AccountType = "HIDA"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeCurrent, AccountTypeHIDA:
		return true
	}
	return false
}

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusFrozen    AccountStatus = "FROZEN"
	AccountStatusClosed    AccountStatus = "CLOSED"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusFrozen, AccountStatusClosed, AccountStatusSuspended:
		return true
	}
	return false
}

// CanTransitionTo reports whether an account may move from s to next.
// CLOSED is terminal.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	if !next.Valid() {
		return false
	}
	return s != AccountStatusClosed || next == AccountStatusClosed
}

// TransactionType identifies the kind of monetary movement.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal  TransactionType = "WITHDRAWAL"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
)

// Category returns the ledger side implied by the transaction type.
func (t TransactionType) Category() TransactionCategory {
	switch t {
	case TransactionTypeDeposit, TransactionTypeTransferIn:
		return TransactionCategoryCredit
	default:
		return TransactionCategoryDebit
	}
}

// TransactionCategory is the ledger side of a transaction.
type TransactionCategory string

const (
	TransactionCategoryCredit TransactionCategory = "CREDIT"
	TransactionCategoryDebit  TransactionCategory = "DEBIT"
)

// TransactionStatus is the outcome recorded on a transaction.
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// DefaultCurrency is used when an account is opened without an explicit currency.
const DefaultCurrency = "NGN"

// MaxNarrationLength bounds the free-text narration on a transaction.
const MaxNarrationLength = 255

// Customer is the identity that owns accounts.
type Customer struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns "First Last".
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Account is a monetary holding owned by a customer.
type Account struct {
	ID            uuid.UUID
	AccountNumber string
	CustomerID    uuid.UUID
	AccountType   AccountType
	Currency      string
	Balance       decimal.Decimal
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive reports whether the account accepts ledger operations.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// HasSufficientFunds checks if the balance covers amount.
func (a *Account) HasSufficientFunds(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Transaction is the immutable audit record of one monetary movement.
type Transaction struct {
	ID                uuid.UUID
	Reference         string
	TransferReference *string
	Type              TransactionType
	Category          TransactionCategory
	Amount            decimal.Decimal
	BalanceAfter      decimal.Decimal
	Status            TransactionStatus
	Narration         *string
	FromAccountID     *uuid.UUID
	ToAccountID       *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Involves reports whether the transaction touches the given account as
// source or destination.
func (t *Transaction) Involves(accountID uuid.UUID) bool {
	return (t.FromAccountID != nil && *t.FromAccountID == accountID) ||
		(t.ToAccountID != nil && *t.ToAccountID == accountID)
}

// SignedAmount returns the amount as it affects the account balance:
// positive for CREDIT, negative for DEBIT.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Category == TransactionCategoryDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// newTransaction builds a SUCCESS transaction stamped with the current time.
func newTransaction(
	txType TransactionType,
	reference string,
	amount, balanceAfter decimal.Decimal,
	narration *string,
	from, to *uuid.UUID,
) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:            uuid.New(),
		Reference:     reference,
		Type:          txType,
		Category:      txType.Category(),
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		Status:        TransactionStatusSuccess,
		Narration:     narration,
		FromAccountID: from,
		ToAccountID:   to,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AccountSnapshot captures an account around a ledger operation.
type AccountSnapshot struct {
	Account       *Account
	Owner         *Customer
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// MovementResult is returned by Deposit and Withdraw.
type MovementResult struct {
	Account     AccountSnapshot
	Transaction *Transaction
}

// TransferResult is returned by Transfer.
type TransferResult struct {
	TransferReference   string
	Amount              decimal.Decimal
	Sender              AccountSnapshot
	Receiver            AccountSnapshot
	SenderTransaction   *Transaction
	ReceiverTransaction *Transaction
}

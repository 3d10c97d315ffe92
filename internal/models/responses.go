package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/thablackcodes/gresh-finance/internal/money"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp renders a time in UTC using TimestampLayout.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var parsed time.Time
	if err := parsed.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// MessageResponse carries only the status flag and a message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Transaction is the full view of a ledger record.
type Transaction struct {
	ID                uuid.UUID    `json:"id"`
	Reference         string       `json:"reference"`
	TransferReference *string      `json:"transferReference,omitempty"`
	Type              string       `json:"type"`
	Category          string       `json:"category"`
	Amount            money.Number `json:"amount"`
	BalanceAfter      money.Number `json:"balanceAfter"`
	Status            string       `json:"status"`
	Narration         *string      `json:"narration,omitempty"`
	FromAccountID     *uuid.UUID   `json:"fromAccountId,omitempty"`
	ToAccountID       *uuid.UUID   `json:"toAccountId,omitempty"`
	CreatedAt         Timestamp    `json:"createdAt"`
	UpdatedAt         Timestamp    `json:"updatedAt"`
}

// TransactionSummary is the short view returned by a deposit.
type TransactionSummary struct {
	Reference string       `json:"reference"`
	Type      string       `json:"type"`
	Category  string       `json:"category"`
	Amount    money.Number `json:"amount"`
	Status    string       `json:"status"`
	Narration *string      `json:"narration,omitempty"`
}

// DepositAccount is the account view returned by a deposit.
type DepositAccount struct {
	AccountNumber string       `json:"accountNumber"`
	BalanceBefore money.Number `json:"balanceBefore"`
	BalanceAfter  money.Number `json:"balanceAfter"`
	Currency      string       `json:"currency"`
}

// DepositResponse is returned by POST /transaction/deposit.
type DepositResponse struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Account     DepositAccount     `json:"account"`
	Transaction TransactionSummary `json:"transaction"`
}

// CustomerSummary identifies an account holder with a masked email.
type CustomerSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
}

// WithdrawAccount is the account view returned by a withdrawal.
type WithdrawAccount struct {
	ID            uuid.UUID       `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	AccountType   string          `json:"accountType"`
	Status        string          `json:"status"`
	BalanceBefore money.Number    `json:"balanceBefore"`
	BalanceAfter  money.Number    `json:"balanceAfter"`
	Currency      string          `json:"currency"`
	Customer      CustomerSummary `json:"customer"`
}

// WithdrawResponse is returned by POST /transaction/withdraw.
type WithdrawResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Account     WithdrawAccount `json:"account"`
	Transaction Transaction     `json:"transaction"`
}

// TransferParty is one side of a transfer.
type TransferParty struct {
	AccountNumber string       `json:"accountNumber"`
	CustomerName  string       `json:"customerName"`
	Email         string       `json:"email"`
	BalanceBefore money.Number `json:"balanceBefore"`
	BalanceAfter  money.Number `json:"balanceAfter"`
}

// TransferTransactions holds the debit and credit legs of a transfer.
type TransferTransactions struct {
	Sender   Transaction `json:"sender"`
	Receiver Transaction `json:"receiver"`
}

// TransferDetails describes a completed transfer.
type TransferDetails struct {
	TransferRef  string               `json:"transferRef"`
	Amount       money.Number         `json:"amount"`
	Sender       TransferParty        `json:"sender"`
	Receiver     TransferParty        `json:"receiver"`
	Transactions TransferTransactions `json:"transactions"`
}

// TransferResponse is returned by POST /transaction/transfer.
type TransferResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Transfer TransferDetails `json:"transfer"`
}

// TransactionResponse is returned by GET /transaction/{id}.
type TransactionResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	Transaction Transaction `json:"transaction"`
}

// Pagination is the page metadata of a list response.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	Limit       int  `json:"limit"`
	HasMore     bool `json:"hasMore"`
}

// TransactionListResponse is returned by GET /transaction/account/{accountNumber}.
type TransactionListResponse struct {
	Success    bool          `json:"success"`
	Results    []Transaction `json:"results"`
	Pagination Pagination    `json:"pagination"`
}

// User is the caller's own profile.
type User struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  Timestamp `json:"createdAt"`
}

// Account is the owner's view of an account.
type Account struct {
	ID            uuid.UUID    `json:"id"`
	AccountNumber string       `json:"accountNumber"`
	AccountType   string       `json:"accountType"`
	Balance       money.Number `json:"balance"`
	Currency      string       `json:"currency"`
	Status        string       `json:"status"`
	CreatedAt     Timestamp    `json:"createdAt"`
	UpdatedAt     Timestamp    `json:"updatedAt"`
}

// RegisterResponse is returned by POST /auth/register.
type RegisterResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	User    User    `json:"user"`
	Account Account `json:"account"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AccountResponse is returned by the /customers account endpoints.
type AccountResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Account Account `json:"account"`
}

// ProfileResponse is returned by GET /customers/me.
type ProfileResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Customer User   `json:"customer"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

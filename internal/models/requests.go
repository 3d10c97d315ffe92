// Package models defines the HTTP request and response bodies.
package models

import "github.com/shopspring/decimal"

// MovementRequest is the body of a deposit or withdrawal.
type MovementRequest struct {
	AccountNumber string          `json:"accountNumber" validate:"required,len=10,accountnumber"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Narration     *string         `json:"narration,omitempty" validate:"omitempty,max=255"`
}

// TransferRequest is the body of a transfer between two accounts.
type TransferRequest struct {
	FromAccountNumber string          `json:"fromAccountNumber" validate:"required,len=10,accountnumber"`
	ToAccountNumber   string          `json:"toAccountNumber" validate:"required,len=10,accountnumber"`
	Amount            decimal.Decimal `json:"amount" validate:"gt=0"`
	Narration         *string         `json:"narration,omitempty" validate:"omitempty,max=255"`
}

// RegisterRequest is the body of a customer sign-up.
type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,hasupper,hasdigit,hasspecial"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginRequest is the body of a customer login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateAccountRequest changes an account's type and/or status.
type UpdateAccountRequest struct {
	AccountType *string `json:"accountType,omitempty" validate:"omitempty,oneof=HIDA CURRENT"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE FROZEN CLOSED"`
}

// CreateAccountRequest opens an additional account for the caller.
type CreateAccountRequest struct {
	AccountType string  `json:"accountType" validate:"required,oneof=SAVINGS HIDA CURRENT"`
	Currency    *string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

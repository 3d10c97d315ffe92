package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for the transport layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindBadRequest
	KindConflict
	KindUnauthorized
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindConflict:
		return "CONFLICT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL"
	}
}

// Error is a classified, human-readable domain error.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string // offending field, if any
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Forbiddenf creates a Forbidden error.
func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// BadRequestf creates a BadRequest error.
func BadRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindInternal if there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf returns the message of the first *Error in err's chain.
func MessageOf(err error) (string, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Message, true
	}
	return "", false
}

var (
	// ErrAccountNotFound is returned when an account doesn't exist
	ErrAccountNotFound = NewError(KindNotFound, "Account not found")

	// ErrSenderNotFound is returned when the source account of a transfer doesn't exist
	ErrSenderNotFound = NewError(KindNotFound, "Sender account not found")

	// ErrRecipientNotFound is returned when the destination account of a transfer doesn't exist
	ErrRecipientNotFound = NewError(KindNotFound, "Recipient account not found")

	// ErrTransactionNotFound hides both missing and foreign transactions
	ErrTransactionNotFound = NewError(KindNotFound, "transaction with requested id not found")

	// ErrCustomerNotFound is returned when a customer doesn't exist
	ErrCustomerNotFound = NewError(KindNotFound, "Customer not found")

	// ErrAccountNotOwned is returned for account lookups scoped to the actor
	ErrAccountNotOwned = NewError(KindNotFound, "Account not found or unauthorized.")

	// ErrAccountsNotActive is returned when either side of a transfer is not ACTIVE
	ErrAccountsNotActive = NewError(KindForbidden, "One of the accounts is not active")

	// ErrNoAccountAccess is returned when listing transactions of a foreign account
	ErrNoAccountAccess = NewError(KindForbidden, "You don't have access to this account")

	// ErrInsufficientBalance is returned when the source balance doesn't cover the amount
	ErrInsufficientBalance = NewError(KindBadRequest, "Insufficient balance")

	// ErrSameAccount is returned when sender and recipient are the same
	ErrSameAccount = NewError(KindBadRequest, "Cannot transfer to the same account")

	// ErrInvalidAmount is returned when an amount is not a positive 2-dp value
	ErrInvalidAmount = NewError(KindBadRequest, "Amount must be a positive number with at most 2 decimal places")

	// ErrAmountOutOfRange is returned when a balance would exceed what an account can hold
	ErrAmountOutOfRange = NewError(KindBadRequest, "Amount exceeds the maximum allowed balance")

	// ErrNarrationTooLong is returned when the narration exceeds MaxNarrationLength
	ErrNarrationTooLong = NewError(KindBadRequest, "Narration cannot exceed 255 characters.")

	// ErrAccountAlreadyClosed is returned when closing or changing a CLOSED account
	ErrAccountAlreadyClosed = NewError(KindBadRequest, "Account is already closed")

	// ErrInvalidStatusTransition is returned for transitions the lifecycle forbids
	ErrInvalidStatusTransition = NewError(KindBadRequest, "Invalid account status transition")

	// ErrNothingToUpdate is returned when an update carries no fields
	ErrNothingToUpdate = NewError(KindBadRequest, "At least one field (accountType or status) must be provided.")

	// ErrCustomerExists is returned when registering an already verified email
	ErrCustomerExists = NewError(KindBadRequest, "Customer with this email already exists")

	// ErrCustomerNotVerified is returned when registering an email pending verification
	ErrCustomerNotVerified = NewError(KindConflict, "Account not verified, kindly login to verify")

	// ErrDuplicateEmail is the storage-level uniqueness violation on customer email
	ErrDuplicateEmail = &Error{Kind: KindConflict, Message: "A record with this email already exists.", Field: "email"}

	// ErrDuplicateAccountNumber is the storage-level uniqueness violation on account number
	ErrDuplicateAccountNumber = &Error{Kind: KindConflict, Message: "A record with this accountNumber already exists.", Field: "accountNumber"}

	// ErrDuplicateReference is the storage-level uniqueness violation on transaction reference
	ErrDuplicateReference = &Error{Kind: KindConflict, Message: "A record with this reference already exists.", Field: "reference"}

	// ErrInvalidCredentials is returned on password mismatch
	ErrInvalidCredentials = NewError(KindForbidden, "Invalid email or password")

	// ErrCustomerBlocked is returned when an inactive customer logs in
	ErrCustomerBlocked = NewError(KindForbidden, "Account is blocked, please contact support")

	// ErrCustomerUnverified is returned when an unverified customer logs in
	ErrCustomerUnverified = NewError(KindForbidden, "Account not verified, kindly complete verification")
)

package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// accountNumberAttempts bounds retries on account number collisions.
const accountNumberAttempts = 3

// AccountUpdate carries the administrative fields of an account.
// Nil fields are left unchanged.
type AccountUpdate struct {
	AccountType *AccountType
	Status      *AccountStatus
}

// AccountService handles account administration for the owning customer.
type AccountService struct {
	accounts        AccountRepository
	txManager       TransactionManager
	refs            ReferenceGenerator
	defaultCurrency string
	log             logrus.FieldLogger
}

// NewAccountService creates a new instance of AccountService.
func NewAccountService(
	accounts AccountRepository,
	txManager TransactionManager,
	refs ReferenceGenerator,
	defaultCurrency string,
	log logrus.FieldLogger,
) *AccountService {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AccountService{
		accounts:        accounts,
		txManager:       txManager,
		refs:            refs,
		defaultCurrency: defaultCurrency,
		log:             log.WithField("component", "accounts"),
	}
}

// GetAccount returns the actor's account. Accounts of other customers are
// reported as not found.
func (s *AccountService) GetAccount(ctx context.Context, actorID uuid.UUID, accountNumber string) (*Account, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrAccountNotOwned
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if !CanAccess(actorID, account.CustomerID) {
		return nil, ErrAccountNotOwned
	}
	return account, nil
}

// CreateAccount opens a new zero-balance ACTIVE account for the actor.
func (s *AccountService) CreateAccount(
	ctx context.Context,
	actorID uuid.UUID,
	accountType AccountType,
	currency string,
) (*Account, error) {
	if !accountType.Valid() {
		return nil, BadRequestf("account type must be either SAVINGS, HIDA or CURRENT")
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	var lastErr error
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		account := NewAccount(actorID, s.refs.AccountNumber(), accountType, currency)
		err := s.accounts.Create(ctx, account)
		if err == nil {
			s.log.WithFields(logrus.Fields{
				"customer_id": actorID,
				"account":     account.AccountNumber,
				"type":        account.AccountType,
			}).Info("account created")
			return account, nil
		}
		if !errors.Is(err, ErrDuplicateAccountNumber) {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		lastErr = err
	}
	return nil, lastErr
}

// UpdateAccount changes the account type and/or status. At least one field
// must be set and a CLOSED account cannot be changed.
func (s *AccountService) UpdateAccount(
	ctx context.Context,
	actorID uuid.UUID,
	accountNumber string,
	update AccountUpdate,
) (*Account, error) {
	if update.AccountType == nil && update.Status == nil {
		return nil, ErrNothingToUpdate
	}
	if t := update.AccountType; t != nil && *t != AccountTypeHIDA && *t != AccountTypeCurrent {
		return nil, BadRequestf("account type must be either HIDA or CURRENT")
	}

	var result *Account
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.lockOwned(txCtx, actorID, accountNumber)
		if err != nil {
			return err
		}
		if account.Status == AccountStatusClosed {
			return ErrAccountAlreadyClosed
		}

		if update.AccountType != nil {
			account.AccountType = *update.AccountType
		}
		if update.Status != nil {
			if !account.Status.CanTransitionTo(*update.Status) {
				return ErrInvalidStatusTransition
			}
			account.Status = *update.Status
		}
		account.UpdatedAt = time.Now().UTC()

		if err := s.accounts.UpdateDetails(txCtx, account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		result = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CloseAccount moves the account to CLOSED. Accounts are never deleted.
func (s *AccountService) CloseAccount(ctx context.Context, actorID uuid.UUID, accountNumber string) (*Account, error) {
	var result *Account
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.lockOwned(txCtx, actorID, accountNumber)
		if err != nil {
			return err
		}
		if account.Status == AccountStatusClosed {
			return ErrAccountAlreadyClosed
		}

		account.Status = AccountStatusClosed
		account.UpdatedAt = time.Now().UTC()
		if err := s.accounts.UpdateDetails(txCtx, account); err != nil {
			return fmt.Errorf("failed to close account: %w", err)
		}
		result = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("account", accountNumber).Info("account closed")
	return result, nil
}

func (s *AccountService) lockOwned(ctx context.Context, actorID uuid.UUID, accountNumber string) (*Account, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if !CanAccess(actorID, account.CustomerID) {
		return nil, ErrAccountNotFound
	}
	locked, err := s.accounts.Lock(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return locked, nil
}

// NewAccount builds a zero-balance ACTIVE account.
func NewAccount(customerID uuid.UUID, accountNumber string, accountType AccountType, currency string) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:            uuid.New(),
		AccountNumber: accountNumber,
		CustomerID:    customerID,
		AccountType:   accountType,
		Currency:      currency,
		Balance:       decimal.Zero,
		Status:        AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

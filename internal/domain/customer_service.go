package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PasswordHasher hashes and verifies customer passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenPair is the access/refresh credential pair issued on login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer issues credentials for an authenticated customer.
type TokenIssuer interface {
	Issue(customer *Customer) (*TokenPair, error)
}

// Registration is the input of CustomerService.Register.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// RegistrationResult is the customer and the default account opened with it.
type RegistrationResult struct {
	Customer *Customer
	Account  *Account
}

// LoginResult is the customer and the credentials issued on login.
type LoginResult struct {
	Customer *Customer
	Tokens   *TokenPair
}

var (
	errUserNotFound    = NewError(KindUnauthorized, "User not found")
	errUserDeactivated = NewError(KindUnauthorized, "User account is deactivated. Please contact support.")
)

// CustomerService handles registration, login and identity resolution.
type CustomerService struct {
	customers       CustomerRepository
	accounts        AccountRepository
	txManager       TransactionManager
	refs            ReferenceGenerator
	hasher          PasswordHasher
	tokens          TokenIssuer
	defaultCurrency string
	log             logrus.FieldLogger
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(
	customers CustomerRepository,
	accounts AccountRepository,
	txManager TransactionManager,
	refs ReferenceGenerator,
	hasher PasswordHasher,
	tokens TokenIssuer,
	defaultCurrency string,
	log logrus.FieldLogger,
) *CustomerService {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CustomerService{
		customers:       customers,
		accounts:        accounts,
		txManager:       txManager,
		refs:            refs,
		hasher:          hasher,
		tokens:          tokens,
		defaultCurrency: defaultCurrency,
		log:             log.WithField("component", "customers"),
	}
}

// Register creates an active, verified customer together with a SAVINGS
// account in one unit-of-work.
func (s *CustomerService) Register(ctx context.Context, in Registration) (*RegistrationResult, error) {
	email := normalizeEmail(in.Email)
	s.log.WithField("email", email).Info("registering customer")

	existing, err := s.customers.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsVerified {
			return nil, ErrCustomerNotVerified
		}
		return nil, ErrCustomerExists
	case !errors.Is(err, ErrCustomerNotFound):
		return nil, fmt.Errorf("failed to check existing customer: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var result *RegistrationResult
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			now := time.Now().UTC()
			customer := &Customer{
				ID:           uuid.New(),
				FirstName:    strings.TrimSpace(in.FirstName),
				LastName:     strings.TrimSpace(in.LastName),
				Email:        email,
				PasswordHash: hash,
				IsActive:     true,
				IsVerified:   true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := s.customers.Create(txCtx, customer); err != nil {
				return fmt.Errorf("failed to create customer: %w", err)
			}

			account := NewAccount(customer.ID, s.refs.AccountNumber(), AccountTypeSavings, s.defaultCurrency)
			if err := s.accounts.Create(txCtx, account); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			result = &RegistrationResult{Customer: customer, Account: account}
			return nil
		})
		if !errors.Is(err, ErrDuplicateAccountNumber) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.WithField("customer_id", result.Customer.ID).Info("customer registered")
	return result, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *CustomerService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	customer, err := s.customers.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, ErrCustomerBlocked
	}
	if !customer.IsVerified {
		return nil, ErrCustomerUnverified
	}
	if !s.hasher.Compare(customer.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens.Issue(customer)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.log.WithField("customer_id", customer.ID).Info("customer logged in")
	return &LoginResult{Customer: customer, Tokens: tokens}, nil
}

// Authenticate resolves a token subject to an active customer.
func (s *CustomerService) Authenticate(ctx context.Context, customerID uuid.UUID) (*Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if errors.Is(err, ErrCustomerNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if !customer.IsActive {
		return nil, errUserDeactivated
	}
	return customer, nil
}

// GetProfile returns the actor's customer record.
func (s *CustomerService) GetProfile(ctx context.Context, actorID uuid.UUID) (*Customer, error) {
	return s.customers.GetByID(ctx, actorID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package handlers serves the ledger over HTTP.
package handlers

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/thablackcodes/gresh-finance/internal/auth"
	"github.com/thablackcodes/gresh-finance/internal/domain"
	"github.com/thablackcodes/gresh-finance/internal/models"
)

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP endpoints of the service.
type Handler struct {
	ledger     *domain.LedgerService
	accounts   *domain.AccountService
	customers  *domain.CustomerService
	tokens     TokenVerifier
	storage    Pinger
	validator  *models.Validator
	log        logrus.FieldLogger
	production bool
}

// Options configures a Handler.
type Options struct {
	Ledger    *domain.LedgerService
	Accounts  *domain.AccountService
	Customers *domain.CustomerService
	Tokens    TokenVerifier
	Storage   Pinger
	Log       logrus.FieldLogger
	// Production hides internal error details from clients.
	Production bool
}

// NewHandler creates a new Handler.
func NewHandler(opts Options) *Handler {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		ledger:     opts.Ledger,
		accounts:   opts.Accounts,
		customers:  opts.Customers,
		tokens:     opts.Tokens,
		storage:    opts.Storage,
		validator:  models.NewValidator(),
		log:        log.WithField("component", "http"),
		production: opts.Production,
	}
}

// Routes mounts all endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.RegisterCustomer)
			r.Post("/login", h.LoginCustomer)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Route("/transaction", func(r chi.Router) {
				r.Post("/deposit", h.Deposit)
				r.Post("/withdraw", h.Withdraw)
				r.Post("/transfer", h.Transfer)
				r.Get("/account/{accountNumber}", h.ListTransactions)
				r.Get("/{id}", h.GetTransaction)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/me", h.GetProfile)
				r.Post("/sub-account", h.CreateAccount)
				r.Get("/{accountNumber}", h.GetAccount)
				r.Put("/{accountNumber}", h.UpdateAccount)
				r.Delete("/{accountNumber}", h.CloseAccount)
			})
		})
	})
}

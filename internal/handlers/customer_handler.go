package handlers

import (
	"net/http"

	"github.com/thablackcodes/gresh-finance/internal/domain"
	"github.com/thablackcodes/gresh-finance/internal/models"
)

// RegisterCustomer handles POST /api/v1/auth/register.
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.customers.Register(r.Context(), domain.Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Success: true,
		Message: "User registered successfully. Kindly login to continue.",
		User:    models.NewUser(res.Customer),
		Account: models.NewAccount(res.Account),
	})
}

// LoginCustomer handles POST /api/v1/auth/login.
func (h *Handler) LoginCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.customers.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Success:      true,
		Message:      "User logged in successfully",
		User:         models.NewUser(res.Customer),
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}

// GetProfile handles GET /api/v1/customers/me.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.GetProfile(r.Context(), actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProfileResponse{
		Success:  true,
		Message:  "fetched customer successfully",
		Customer: models.NewUser(customer),
	})
}

// CreateAccount handles POST /api/v1/customers/sub-account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), actorID(r),
		domain.AccountType(req.AccountType), deref(req.Currency))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.AccountResponse{
		Success: true,
		Message: "New account created successfully",
		Account: models.NewAccount(account),
	})
}

// GetAccount handles GET /api/v1/customers/{accountNumber}.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := pathParam(r, "accountNumber")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), actorID(r), accountNumber)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.AccountResponse{
		Success: true,
		Message: "Account details retrieved successfully",
		Account: models.NewAccount(account),
	})
}

// UpdateAccount handles PUT /api/v1/customers/{accountNumber}.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := pathParam(r, "accountNumber")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req models.UpdateAccountRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var update domain.AccountUpdate
	if req.AccountType != nil {
		t := domain.AccountType(*req.AccountType)
		update.AccountType = &t
	}
	if req.Status != nil {
		s := domain.AccountStatus(*req.Status)
		update.Status = &s
	}

	account, err := h.accounts.UpdateAccount(r.Context(), actorID(r), accountNumber, update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.AccountResponse{
		Success: true,
		Message: "Account updated successfully",
		Account: models.NewAccount(account),
	})
}

// CloseAccount handles DELETE /api/v1/customers/{accountNumber}.
func (h *Handler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := pathParam(r, "accountNumber")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.accounts.CloseAccount(r.Context(), actorID(r), accountNumber)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.AccountResponse{
		Success: true,
		Message: "Account closed successfully",
		Account: models.NewAccount(account),
	})
}

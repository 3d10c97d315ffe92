package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/thablackcodes/gresh-finance/internal/domain"
	"github.com/thablackcodes/gresh-finance/internal/models"
)

// Deposit handles POST /api/v1/transaction/deposit.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req models.MovementRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.ledger.Deposit(r.Context(), actorID(r), req.AccountNumber, req.Amount, req.Narration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewDepositResponse(res))
}

// Withdraw handles POST /api/v1/transaction/withdraw.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req models.MovementRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.ledger.Withdraw(r.Context(), actorID(r), req.AccountNumber, req.Amount, req.Narration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewWithdrawResponse(res))
}

// Transfer handles POST /api/v1/transaction/transfer.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.ledger.Transfer(r.Context(), actorID(r),
		req.FromAccountNumber, req.ToAccountNumber, req.Amount, req.Narration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewTransferResponse(res))
}

// ListTransactions handles GET /api/v1/transaction/account/{accountNumber}.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := pathParam(r, "accountNumber")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var page, limit *string
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &page); err != nil {
		h.writeError(w, r, domain.BadRequestf("Invalid format for parameter page"))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		h.writeError(w, r, domain.BadRequestf("Invalid format for parameter limit"))
		return
	}

	res, err := h.ledger.ListTransactions(r.Context(), actorID(r), accountNumber,
		domain.NewPageRequest(deref(page), deref(limit)))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewTransactionListResponse(res))
}

// GetTransaction handles GET /api/v1/transaction/{id}.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tx, err := h.ledger.GetTransactionByID(r.Context(), actorID(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TransactionResponse{
		Success:     true,
		Message:     "Returned transaction with id successfully",
		Transaction: models.NewTransaction(tx),
	})
}

// pathParam binds a simple-style path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false})
	if err != nil {
		return "", domain.BadRequestf("Invalid format for parameter %s", name)
	}
	return value, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

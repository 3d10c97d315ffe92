package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/thablackcodes/gresh-finance/internal/auth"
	"github.com/thablackcodes/gresh-finance/internal/domain"
)

type customerKey struct{}

var (
	errTokenRequired  = domain.NewError(domain.KindUnauthorized, "Token required")
	errSessionExpired = domain.NewError(domain.KindUnauthorized, "Session Expired")
	errInvalidToken   = domain.NewError(domain.KindUnauthorized, "Invalid token")
)

// RequireAuth resolves the bearer token to an active customer and stores it
// in the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.writeError(w, r, errTokenRequired)
			return
		}

		claims, err := h.tokens.VerifyAccess(token)
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			h.writeError(w, r, errSessionExpired)
			return
		case err != nil:
			h.writeError(w, r, errInvalidToken)
			return
		}

		customer, err := h.customers.Authenticate(r.Context(), claims.CustomerID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), customerKey{}, customer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// actorID returns the authenticated customer's id. RequireAuth guarantees it
// is present on protected routes.
func actorID(r *http.Request) uuid.UUID {
	if c, ok := r.Context().Value(customerKey{}).(*domain.Customer); ok {
		return c.ID
	}
	return uuid.Nil
}

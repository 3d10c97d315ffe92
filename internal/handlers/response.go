package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/thablackcodes/gresh-finance/internal/domain"
	"github.com/thablackcodes/gresh-finance/internal/models"
)

const (
	maxBodyBytes    = 1 << 20
	internalMessage = "Something went wrong. Please try again later."
)

var errInvalidBody = domain.NewError(domain.KindBadRequest, "Invalid request body")

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError converts err to an HTTP response. Validation errors become 422,
// domain errors use their kind, anything else is a 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Message: verr.Message,
			Field:   verr.Field,
		})
		return
	}

	kind := domain.KindOf(err)
	status := statusFor(kind)
	resp := models.ErrorResponse{Message: internalMessage}

	var de *domain.Error
	if errors.As(err, &de) && kind != domain.KindInternal {
		resp.Message = de.Message
		resp.Field = de.Field
	}

	log := h.log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})
	if kind == domain.KindInternal {
		log.WithError(err).Error("request failed")
		if !h.production {
			resp.Details = err.Error()
		}
	} else {
		log.WithError(err).Debug("request rejected")
	}

	writeJSON(w, status, resp)
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	return h.validator.Struct(dst)
}

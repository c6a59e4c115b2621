// Package handlers contains HTTP request handlers for the citizen API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
)

var validate = validator.New()

// decodeJSON parses and validates a request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return apperr.Validation("invalid field %s", verrs[0].Field())
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFailure maps a domain error to its status; anything unrecognized is
// a 500 with a generic message, logged with full detail.
func respondFailure(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	if e := apperr.From(err); e != nil {
		if e.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
		}
		respondJSON(w, e.Status, map[string]string{"error": e.Message, "code": e.Code})
		return
	}
	logger.Errorw("Unhandled error", "error", err)
	respondError(w, http.StatusInternalServerError, "Something went wrong")
}

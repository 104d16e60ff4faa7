package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"dine-server/utils/errors"
)

// RecoveryMiddleware converts panics into a standardized 500 response.
func RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("panic recovered")
					WriteError(w, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes any error as a JSON APIError response. Partial writes
// surface as 500 with the committed documents named; there is no automatic
// repair.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *errors.APIError
	switch e := err.(type) {
	case *errors.APIError:
		apiErr = e
	case *errors.PartialWriteError:
		apiErr = errors.NewAPIError("PARTIAL_WRITE", "Operation failed after committing part of its writes", http.StatusInternalServerError, e.Error())
	default:
		apiErr = errors.Wrap(err, "UNKNOWN_ERROR", "Unexpected error", errors.ErrInternal.Status)
	}

	if apiErr.Status >= 500 {
		log.Error().Str("code", apiErr.Code).Str("details", apiErr.Details).Msg(apiErr.Message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(apiErr)
}

package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

const (
	msgNoToken      = "not authorized, no token"
	msgBadToken     = "wrong or expired token"
	msgInternal     = "internal error"
	maxJSONBodySize = 1 << 20
)

type errorResponse struct {
	Error string `json:"error"`
}

type msgResponse struct {
	Msg string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

var statusTable = []struct {
	status int
	errs   []error
}{
	{http.StatusBadRequest, []error{
		common.ErrorValidation,
		common.ErrMissingCredentials,
		common.ErrInvalidEmailFormat,
		common.ErrInvalidPasswordFormat,
		common.ErrSelfFollow,
		common.ErrMalformedAuthHeader,
		common.ErrEmptyPost,
		common.ErrEmptyComment,
		common.ErrInvalidUpload,
		common.ErrorAlreadyExists,
		common.ErrEmailTaken,
		common.ErrUsernameTaken,
	}},
	{http.StatusUnauthorized, []error{common.ErrInvalidCredentials}},
	{http.StatusForbidden, []error{
		common.ErrInvalidToken,
		common.ErrTokenExpired,
		common.ErrorForbidden,
	}},
	{http.StatusNotFound, []error{common.ErrorNotFound}},
	{http.StatusRequestEntityTooLarge, []error{common.ErrUploadTooLarge}},
}

// statusFor maps an error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	for _, row := range statusTable {
		for _, target := range row.errs {
			if errors.Is(err, target) {
				return row.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err using the status table. Internal errors are logged
// and hidden from the client.
func (s *HTTPServer) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, msgInternal)
		return
	}
	writeError(w, status, err.Error())
}

// decodeJSON reads a JSON body into dst. Unknown fields are ignored. The
// decoder error stays in the chain, so an empty body matches io.EOF.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", common.ErrorValidation, err)
	}
	return nil
}

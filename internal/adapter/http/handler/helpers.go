package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/iho/transferhub/internal/adapter/http/dto"
	"github.com/iho/transferhub/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxBodyBytes    = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Success: false,
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status statusFor assigns to it.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err.Error())
}

// sentinelStatus is matched in order with errors.Is; the first hit wins.
var sentinelStatus = []struct {
	target error
	status int
}{
	{domain.ErrLedgerEntryNotFound, http.StatusNotFound},
	{domain.ErrCycleNotFound, http.StatusNotFound},
	{domain.ErrEntryNotFound, http.StatusNotFound},
	{domain.ErrCaseNotFound, http.StatusNotFound},

	{domain.ErrAlreadyRefunded, http.StatusConflict},
	{domain.ErrInvalidTransition, http.StatusConflict},
	{domain.ErrCycleAlreadyPosted, http.StatusConflict},
	{domain.ErrCycleAwaitingReview, http.StatusConflict},
	{domain.ErrEntryLocked, http.StatusConflict},
	{domain.ErrPostingInProgress, http.StatusConflict},
	{domain.ErrCaseAlreadyResolved, http.StatusConflict},

	{domain.ErrNotRefundable, http.StatusUnprocessableEntity},
	{domain.ErrNoEligibleEntries, http.StatusUnprocessableEntity},

	// money may have moved; a reconciliation case is already open
	{domain.ErrOutcomeUnknown, http.StatusAccepted},
	{domain.ErrBatchOutcomeUnknown, http.StatusAccepted},
	{domain.ErrPostingUnrecorded, http.StatusAccepted},

	{domain.ErrGatewayRejected, http.StatusBadGateway},
	{domain.ErrMalformedResponse, http.StatusBadGateway},
	{domain.ErrGatewayUnavailable, http.StatusServiceUnavailable},
}

// statusFor maps a use case error to the HTTP status the API reports.
func statusFor(err error) int {
	switch {
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case domain.IsRejection(err):
		return http.StatusUnprocessableEntity
	}
	for _, s := range sentinelStatus {
		if errors.Is(err, s.target) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// decodeBody reads at most 1 MiB of JSON into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// pageFromQuery reads limit and offset. Missing, malformed or negative
// values fall back to the defaults and limit is capped at maxPageSize.
func pageFromQuery(r *http.Request) (limit, offset int) {
	q := r.URL.Query()

	limit = defaultPageSize
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		limit = min(n, maxPageSize)
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}

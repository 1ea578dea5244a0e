package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/gpbank/internal/gate"
	"github.com/mmynk/gpbank/internal/ledger"
)

type errorResponse struct {
	Error   string   `json:"error"`
	LoanIDs []string `json:"loan_ids,omitempty"`
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErr maps a ledger error to a status code and a JSON body.
func writeErr(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	var ambiguous *ledger.AmbiguousLoanTargetError
	if errors.As(err, &ambiguous) {
		resp.LoanIDs = ambiguous.LoanIDs
	}
	writeJSON(w, statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gate.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrMissingLender),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrLoanNotFound),
		errors.Is(err, ledger.ErrNoMatchingLoan),
		errors.Is(err, ledger.ErrNoTransactions):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrLoanAlreadyResolved),
		errors.Is(err, ledger.ErrBorrowerMismatch),
		errors.Is(err, ledger.ErrAmbiguousLoanTarget),
		errors.Is(err, ledger.ErrBalanceOverflow):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

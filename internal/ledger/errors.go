package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/gpbank/internal/amount"
)

var (
	// ErrInvalidAmount is returned when an amount is not strictly positive.
	ErrInvalidAmount = amount.ErrInvalidAmount

	// ErrInsufficientBalance matches every *InsufficientBalanceError.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNoTransactions signals an account or loan without any logged activity.
	ErrNoTransactions = errors.New("no transactions")

	ErrLoanNotFound        = errors.New("loan not found")
	ErrLoanAlreadyResolved = errors.New("loan is already resolved")
	ErrBorrowerMismatch    = errors.New("borrower does not match loan")
	ErrNoMatchingLoan      = errors.New("no unresolved loan found")
	ErrMissingLender       = errors.New("lender name is required")

	// ErrAmbiguousLoanTarget matches every *AmbiguousLoanTargetError.
	ErrAmbiguousLoanTarget = errors.New("ambiguous loan target")

	// ErrBalanceOverflow is returned when an addition would not fit in an int64.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// InsufficientBalanceError reports a withdrawal larger than the balance.
type InsufficientBalanceError struct {
	Requested int64
	Balance   int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %d, current balance %d", e.Requested, e.Balance)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// AmbiguousLoanTargetError lists every open loan that matched a lender-name
// target so the caller can retry with an explicit id.
type AmbiguousLoanTargetError struct {
	LoanIDs []string
}

func (e *AmbiguousLoanTargetError) Error() string {
	return fmt.Sprintf("ambiguous loan target: %d open loans match, retry with one of: %s",
		len(e.LoanIDs), strings.Join(e.LoanIDs, ", "))
}

func (e *AmbiguousLoanTargetError) Is(target error) bool {
	return target == ErrAmbiguousLoanTarget
}

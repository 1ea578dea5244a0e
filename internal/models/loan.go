package models

// Loan statuses.
const (
	LoanOpen     = "open"
	LoanResolved = "resolved"
)

// Loan transaction types.
const (
	LoanTxLoan    = "loan"
	LoanTxRepay   = "repay"
	LoanTxAccrue  = "accrue"
	LoanTxResolve = "resolve"
)

// UnknownBorrower is recorded when a loan is created without a borrower name.
const UnknownBorrower = "Unknown"

// Loan is a debt owed by BorrowerName to LenderName.
// Only Balance and Status change after creation.
type Loan struct {
	BorrowerName string `json:"borrowerName"`
	LenderName   string `json:"lenderName"`

	// Balance is the outstanding amount, never negative.
	Balance int64 `json:"balance"`

	// Status is LoanOpen or LoanResolved.
	Status string `json:"status"`

	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`

	Note string `json:"note"`
}

// Resolved reports whether the loan has been fully repaid.
func (l Loan) Resolved() bool {
	return l.Status == LoanResolved
}

// LoanTransaction is an immutable entry in a loan's append-only log.
type LoanTransaction struct {
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`

	// Amount is the requested amount; 0 for LoanTxResolve.
	Amount  int64  `json:"amount"`
	ActorID string `json:"actorId"`
	Note    string `json:"note"`
}

package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmynk/gpbank/internal/models"
)

// RepayResult describes the effect of a repayment.
type RepayResult struct {
	LoanID     string
	OldBalance int64
	NewBalance int64
	Resolved   bool
}

// AccrueResult describes the effect of an accrual.
type AccrueResult struct {
	LoanID     string
	OldBalance int64
	NewBalance int64
}

// DebtEntry is one open loan seen from the borrower's side.
type DebtEntry struct {
	LoanID     string
	LenderName string
	Balance    int64
}

// CreditEntry is one open loan seen from the lender's side.
type CreditEntry struct {
	LoanID       string
	BorrowerName string
	Balance      int64
}

// CreateLoan records a new open loan of amount owed by borrower to lender and
// returns its id. An empty borrower is recorded as models.UnknownBorrower.
func (e *Engine) CreateLoan(borrower, lender string, amount int64, actorID, note string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	lender = strings.TrimSpace(lender)
	if lender == "" {
		return "", ErrMissingLender
	}
	borrower = borrowerOrUnknown(borrower)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	id := ""
	for attempt := 0; attempt < maxLoanIDAttempts; attempt++ {
		candidate := e.newID(now)
		if _, taken := e.state.Loans[candidate]; candidate != "" && !taken {
			id = candidate
			break
		}
	}
	if id == "" {
		return "", fmt.Errorf("failed to generate unique loan id after %d attempts", maxLoanIDAttempts)
	}

	ts := now.UnixMilli()
	e.state.Loans[id] = &models.Loan{
		BorrowerName: borrower,
		LenderName:   lender,
		Balance:      amount,
		Status:       models.LoanOpen,
		Timestamp:    ts,
		Note:         note,
	}
	e.state.LoanTransactions[id] = append(e.state.LoanTransactions[id], models.LoanTransaction{
		Timestamp: ts,
		Type:      models.LoanTxLoan,
		Amount:    amount,
		ActorID:   actorID,
		Note:      note,
	})
	return id, nil
}

// Repay reduces the balance of the loan selected by target, which is either a
// loan id or a lender name. The balance is clamped at zero and the loan is
// resolved when it gets there. The logged repay amount is always the requested
// amount, not the clamped delta.
func (e *Engine) Repay(borrower string, amount int64, target, actorID string) (RepayResult, error) {
	if amount <= 0 {
		return RepayResult{}, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id, loan, err := e.resolveTarget(borrower, target)
	if err != nil {
		return RepayResult{}, err
	}

	old := loan.Balance
	balance := old - amount
	if balance < 0 {
		balance = 0
	}
	loan.Balance = balance
	e.appendLoanTx(id, models.LoanTxRepay, amount, actorID, "")

	res := RepayResult{LoanID: id, OldBalance: old, NewBalance: balance}
	if balance == 0 {
		loan.Status = models.LoanResolved
		e.appendLoanTx(id, models.LoanTxResolve, 0, actorID, "")
		res.Resolved = true
	}
	return res, nil
}

// Accrue adds amount to the balance of the loan selected by target. Resolved
// loans cannot accrue and the status never changes.
func (e *Engine) Accrue(borrower string, amount int64, target, actorID string) (AccrueResult, error) {
	if amount <= 0 {
		return AccrueResult{}, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id, loan, err := e.resolveTarget(borrower, target)
	if err != nil {
		return AccrueResult{}, err
	}

	old := loan.Balance
	balance, ok := addChecked(old, amount)
	if !ok {
		return AccrueResult{}, ErrBalanceOverflow
	}
	loan.Balance = balance
	e.appendLoanTx(id, models.LoanTxAccrue, amount, actorID, "")
	return AccrueResult{LoanID: id, OldBalance: old, NewBalance: balance}, nil
}

// Loan returns a copy of the loan with the given id.
func (e *Engine) Loan(id string) (models.Loan, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	id, ok := e.lookupID(id)
	if !ok {
		return models.Loan{}, ErrLoanNotFound
	}
	return *e.state.Loans[id], nil
}

// LoanHistory returns the most recent limit entries of a loan's log, oldest
// first. A limit <= 0 returns the whole log.
func (e *Engine) LoanHistory(id string, limit int) ([]models.LoanTransaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	id, ok := e.lookupID(id)
	if !ok {
		return nil, ErrLoanNotFound
	}
	log := e.state.LoanTransactions[id]
	if len(log) == 0 {
		return nil, ErrNoTransactions
	}
	return window(log, limit), nil
}

// DebtsOfBorrower lists the open loans owed by name, largest balance first.
func (e *Engine) DebtsOfBorrower(name string) []DebtEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []DebtEntry
	for _, id := range e.openLoans(func(l *models.Loan) bool { return sameParty(l.BorrowerName, name) }) {
		l := e.state.Loans[id]
		out = append(out, DebtEntry{LoanID: id, LenderName: l.LenderName, Balance: l.Balance})
	}
	return out
}

// LoansOfLender lists the open loans owed to name, largest balance first.
func (e *Engine) LoansOfLender(name string) []CreditEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []CreditEntry
	for _, id := range e.openLoans(func(l *models.Loan) bool { return sameParty(l.LenderName, name) }) {
		l := e.state.Loans[id]
		out = append(out, CreditEntry{LoanID: id, BorrowerName: l.BorrowerName, Balance: l.Balance})
	}
	return out
}

// openLoans returns the ids of unresolved loans with a positive balance that
// satisfy match, ordered by balance descending, then age, then id.
func (e *Engine) openLoans(match func(*models.Loan) bool) []string {
	var ids []string
	for id, l := range e.state.Loans {
		if l.Resolved() || l.Balance <= 0 || !match(l) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := e.state.Loans[ids[i]], e.state.Loans[ids[j]]
		if a.Balance != b.Balance {
			return a.Balance > b.Balance
		}
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return ids[i] < ids[j]
	})
	return ids
}

// resolveTarget picks the loan a repay or accrue applies to and validates it
// against borrower. Must be called with e.mu held.
func (e *Engine) resolveTarget(borrower, target string) (string, *models.Loan, error) {
	borrower = borrowerOrUnknown(borrower)

	id, ok := e.lookupID(target)
	if !ok {
		var matches []string
		for candidate, l := range e.state.Loans {
			if l.Resolved() {
				continue
			}
			if sameParty(l.BorrowerName, borrower) && sameParty(l.LenderName, target) {
				matches = append(matches, candidate)
			}
		}
		switch len(matches) {
		case 0:
			return "", nil, ErrNoMatchingLoan
		case 1:
			id = matches[0]
		default:
			sort.Strings(matches)
			return "", nil, &AmbiguousLoanTargetError{LoanIDs: matches}
		}
	}

	loan, ok := e.state.Loans[id]
	if !ok {
		return "", nil, ErrLoanNotFound
	}
	if loan.Resolved() {
		return "", nil, ErrLoanAlreadyResolved
	}
	if !sameParty(loan.BorrowerName, borrower) {
		return "", nil, ErrBorrowerMismatch
	}
	return id, loan, nil
}

// lookupID finds a loan by its id as typed, then in normalized form.
func (e *Engine) lookupID(id string) (string, bool) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", false
	}
	if _, ok := e.state.Loans[trimmed]; ok {
		return trimmed, true
	}
	normalized := normalizeLoanID(trimmed)
	if _, ok := e.state.Loans[normalized]; ok {
		return normalized, true
	}
	return "", false
}

func (e *Engine) appendLoanTx(id, typ string, amount int64, actorID, note string) {
	e.state.LoanTransactions[id] = append(e.state.LoanTransactions[id], models.LoanTransaction{
		Timestamp: e.timestamp(),
		Type:      typ,
		Amount:    amount,
		ActorID:   actorID,
		Note:      note,
	})
}

func borrowerOrUnknown(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.UnknownBorrower
	}
	return name
}

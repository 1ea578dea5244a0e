package models

import "encoding/json"

// State is the full snapshot of the ledger.
type State struct {
	Balances     map[string]int64         `json:"balances"`
	Transactions map[string][]Transaction `json:"transactions"`

	// Profiles belongs to the identity layer in front of the ledger. The core
	// never interprets it and writes it back exactly as it was read.
	Profiles map[string]json.RawMessage `json:"profiles"`

	Loans            map[string]*Loan             `json:"loans"`
	LoanTransactions map[string][]LoanTransaction `json:"loanTransactions"`
}

// NewState returns an empty state with every container allocated.
func NewState() *State {
	s := &State{}
	s.Backfill()
	return s
}

// Backfill allocates any container missing from an older snapshot and drops
// null loan entries.
func (s *State) Backfill() {
	if s.Balances == nil {
		s.Balances = make(map[string]int64)
	}
	if s.Transactions == nil {
		s.Transactions = make(map[string][]Transaction)
	}
	if s.Profiles == nil {
		s.Profiles = make(map[string]json.RawMessage)
	}
	if s.Loans == nil {
		s.Loans = make(map[string]*Loan)
	}
	for id, l := range s.Loans {
		if l == nil {
			delete(s.Loans, id)
		}
	}
	if s.LoanTransactions == nil {
		s.LoanTransactions = make(map[string][]LoanTransaction)
	}
}

// Clone returns a deep copy of the state. Logs are copied so that appends to
// the source state never show through the copy; a null log stays null.
func (s *State) Clone() *State {
	c := &State{
		Balances:         make(map[string]int64, len(s.Balances)),
		Transactions:     make(map[string][]Transaction, len(s.Transactions)),
		Profiles:         make(map[string]json.RawMessage, len(s.Profiles)),
		Loans:            make(map[string]*Loan, len(s.Loans)),
		LoanTransactions: make(map[string][]LoanTransaction, len(s.LoanTransactions)),
	}
	for k, v := range s.Balances {
		c.Balances[k] = v
	}
	for k, v := range s.Transactions {
		if v == nil {
			c.Transactions[k] = nil
			continue
		}
		c.Transactions[k] = append(make([]Transaction, 0, len(v)), v...)
	}
	for k, v := range s.Profiles {
		c.Profiles[k] = append(json.RawMessage(nil), v...)
	}
	for k, v := range s.Loans {
		if v == nil {
			continue
		}
		loan := *v
		c.Loans[k] = &loan
	}
	for k, v := range s.LoanTransactions {
		if v == nil {
			c.LoanTransactions[k] = nil
			continue
		}
		c.LoanTransactions[k] = append(make([]LoanTransaction, 0, len(v)), v...)
	}
	return c
}

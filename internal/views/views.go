// Package views computes read-only rankings derived from the ledger state.
package views

import (
	"math"
	"sort"

	"github.com/mmynk/gpbank/internal/models"
)

// Ranked is one row of a ranking.
type Ranked struct {
	Name   string
	Amount int64
}

// TopBalances ranks accounts with a positive balance, largest first.
// A limit <= 0 returns every ranked account.
func TopBalances(balances map[string]int64, limit int) []Ranked {
	rows := make([]Ranked, 0, len(balances))
	for name, balance := range balances {
		if balance > 0 {
			rows = append(rows, Ranked{Name: name, Amount: balance})
		}
	}
	return rank(rows, limit)
}

// TopDebtors ranks borrowers by the total balance of their unresolved loans.
//
// Borrowers are grouped by the exact name stored on the loan, so "Bob" and
// "bob " are ranked separately even though repay and accrue treat them as the
// same party.
func TopDebtors(loans map[string]*models.Loan, limit int) []Ranked {
	totals := make(map[string]int64)
	for _, l := range loans {
		if l.Resolved() {
			continue
		}
		totals[l.BorrowerName] = saturatingAdd(totals[l.BorrowerName], l.Balance)
	}

	rows := make([]Ranked, 0, len(totals))
	for name, total := range totals {
		if total > 0 {
			rows = append(rows, Ranked{Name: name, Amount: total})
		}
	}
	return rank(rows, limit)
}

// saturatingAdd adds non-negative balances, pinning at math.MaxInt64.
func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// rank sorts descending by amount with names breaking ties, then truncates.
func rank(rows []Ranked, limit int) []Ranked {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Amount != rows[j].Amount {
			return rows[i].Amount > rows[j].Amount
		}
		return rows[i].Name < rows[j].Name
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

package ledger

import "github.com/mmynk/gpbank/internal/views"

// TopBalances ranks accounts by balance. See views.TopBalances.
func (e *Engine) TopBalances(limit int) []views.Ranked {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return views.TopBalances(e.state.Balances, limit)
}

// TopDebtors ranks borrowers by outstanding debt. See views.TopDebtors.
func (e *Engine) TopDebtors(limit int) []views.Ranked {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return views.TopDebtors(e.state.Loans, limit)
}

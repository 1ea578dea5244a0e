package ledger

import (
	"strings"

	"github.com/mmynk/gpbank/internal/models"
)

// Balance returns the balance of name, or 0 for an account never seen.
func (e *Engine) Balance(name string) int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Balances[strings.TrimSpace(name)]
}

// Deposit adds amount to the account and returns the new balance.
func (e *Engine) Deposit(name string, amount int64, actorID, note string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	name = strings.TrimSpace(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	balance, ok := addChecked(e.state.Balances[name], amount)
	if !ok {
		return 0, ErrBalanceOverflow
	}
	e.state.Balances[name] = balance
	e.appendTx(name, models.TxDeposit, amount, actorID, note)
	return balance, nil
}

// Withdraw subtracts amount from the account and returns the new balance.
// A withdrawal larger than the balance is rejected with an
// *InsufficientBalanceError and leaves the account untouched.
func (e *Engine) Withdraw(name string, amount int64, actorID, note string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	name = strings.TrimSpace(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.state.Balances[name]
	if amount > current {
		return 0, &InsufficientBalanceError{Requested: amount, Balance: current}
	}
	e.state.Balances[name] = current - amount
	e.appendTx(name, models.TxWithdraw, amount, actorID, note)
	return current - amount, nil
}

// History returns the most recent limit transactions of name, oldest first.
// A limit <= 0 returns the whole log. An account without transactions yields
// ErrNoTransactions rather than an empty slice.
func (e *Engine) History(name string, limit int) ([]models.Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	log := e.state.Transactions[strings.TrimSpace(name)]
	if len(log) == 0 {
		return nil, ErrNoTransactions
	}
	return window(log, limit), nil
}

func (e *Engine) appendTx(name, typ string, amount int64, actorID, note string) {
	e.state.Transactions[name] = append(e.state.Transactions[name], models.Transaction{
		Timestamp: e.timestamp(),
		Type:      typ,
		Amount:    amount,
		ActorID:   actorID,
		Note:      note,
	})
}

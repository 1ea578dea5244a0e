// Package service exposes the ledger operations to outer surfaces.
//
// Every mutating call runs under the mutation gate and, when it succeeds,
// writes a full snapshot before the gate is released. Reads go straight to
// the engine.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/gpbank/internal/amount"
	"github.com/mmynk/gpbank/internal/gate"
	"github.com/mmynk/gpbank/internal/ledger"
	"github.com/mmynk/gpbank/internal/metrics"
	"github.com/mmynk/gpbank/internal/models"
	"github.com/mmynk/gpbank/internal/storage"
	"github.com/mmynk/gpbank/internal/views"
)

// LedgerService ties the engine, the gate and the snapshot store together.
type LedgerService struct {
	engine  *ledger.Engine
	gate    *gate.Gate
	store   storage.Store
	metrics *metrics.Metrics
}

// NewLedgerService creates a LedgerService. m may be nil.
func NewLedgerService(engine *ledger.Engine, g *gate.Gate, store storage.Store, m *metrics.Metrics) *LedgerService {
	return &LedgerService{engine: engine, gate: g, store: store, metrics: m}
}

// Deposit credits rawAmount to name.
func (s *LedgerService) Deposit(ctx context.Context, name string, rawAmount any, actorID, note string) (int64, error) {
	var balance int64
	err := s.mutate(ctx, "deposit", func() error {
		amt, err := amount.Parse(rawAmount)
		if err != nil {
			return err
		}
		balance, err = s.engine.Deposit(name, amt, actorID, note)
		if err != nil {
			return err
		}
		slog.Info("Deposit applied", "account", name, "amount", amt, "balance", balance, "actor_id", actorID)
		return nil
	})
	return balance, err
}

// Withdraw debits rawAmount from name.
func (s *LedgerService) Withdraw(ctx context.Context, name string, rawAmount any, actorID, note string) (int64, error) {
	var balance int64
	err := s.mutate(ctx, "withdraw", func() error {
		amt, err := amount.Parse(rawAmount)
		if err != nil {
			return err
		}
		balance, err = s.engine.Withdraw(name, amt, actorID, note)
		if err != nil {
			return err
		}
		slog.Info("Withdrawal applied", "account", name, "amount", amt, "balance", balance, "actor_id", actorID)
		return nil
	})
	return balance, err
}

// CreateLoan records a loan of rawAmount from lender to borrower.
func (s *LedgerService) CreateLoan(ctx context.Context, borrower, lender string, rawAmount any, actorID, note string) (string, error) {
	var id string
	err := s.mutate(ctx, "loan", func() error {
		amt, err := amount.Parse(rawAmount)
		if err != nil {
			return err
		}
		id, err = s.engine.CreateLoan(borrower, lender, amt, actorID, note)
		if err != nil {
			return err
		}
		slog.Info("Loan created", "loan_id", id, "borrower", borrower, "lender", lender, "amount", amt, "actor_id", actorID)
		return nil
	})
	return id, err
}

// Repay applies a repayment against the loan selected by target.
func (s *LedgerService) Repay(ctx context.Context, borrower string, rawAmount any, target, actorID string) (ledger.RepayResult, error) {
	var res ledger.RepayResult
	err := s.mutate(ctx, "repay", func() error {
		amt, err := amount.Parse(rawAmount)
		if err != nil {
			return err
		}
		res, err = s.engine.Repay(borrower, amt, target, actorID)
		if err != nil {
			return err
		}
		slog.Info("Repayment applied",
			"loan_id", res.LoanID,
			"amount", amt,
			"old_balance", res.OldBalance,
			"new_balance", res.NewBalance,
			"resolved", res.Resolved,
			"actor_id", actorID,
		)
		return nil
	})
	return res, err
}

// Accrue adds interest or fees to the loan selected by target.
func (s *LedgerService) Accrue(ctx context.Context, borrower string, rawAmount any, target, actorID string) (ledger.AccrueResult, error) {
	var res ledger.AccrueResult
	err := s.mutate(ctx, "accrue", func() error {
		amt, err := amount.Parse(rawAmount)
		if err != nil {
			return err
		}
		res, err = s.engine.Accrue(borrower, amt, target, actorID)
		if err != nil {
			return err
		}
		slog.Info("Accrual applied",
			"loan_id", res.LoanID,
			"amount", amt,
			"old_balance", res.OldBalance,
			"new_balance", res.NewBalance,
			"actor_id", actorID,
		)
		return nil
	})
	return res, err
}

// Balance returns the balance of name.
func (s *LedgerService) Balance(name string) int64 {
	return s.engine.Balance(name)
}

// History returns the latest limit transactions of name.
func (s *LedgerService) History(name string, limit int) ([]models.Transaction, error) {
	return s.engine.History(name, limit)
}

// Loan returns the loan with the given id.
func (s *LedgerService) Loan(id string) (models.Loan, error) {
	return s.engine.Loan(id)
}

// LoanHistory returns the latest limit entries of a loan's log.
func (s *LedgerService) LoanHistory(id string, limit int) ([]models.LoanTransaction, error) {
	return s.engine.LoanHistory(id, limit)
}

// DebtsOfBorrower lists the open loans owed by name.
func (s *LedgerService) DebtsOfBorrower(name string) []ledger.DebtEntry {
	return s.engine.DebtsOfBorrower(name)
}

// LoansOfLender lists the open loans owed to name.
func (s *LedgerService) LoansOfLender(name string) []ledger.CreditEntry {
	return s.engine.LoansOfLender(name)
}

// TopBalances ranks accounts by balance.
func (s *LedgerService) TopBalances(limit int) []views.Ranked {
	return s.engine.TopBalances(limit)
}

// TopDebtors ranks borrowers by outstanding debt.
func (s *LedgerService) TopDebtors(limit int) []views.Ranked {
	return s.engine.TopDebtors(limit)
}

// Flush writes the current state regardless of the gate. It is meant for
// shutdown, after the surfaces have stopped accepting requests.
func (s *LedgerService) Flush(ctx context.Context) error {
	return s.store.Save(ctx, s.engine.Snapshot())
}

// mutate runs fn under the gate and persists the state if fn succeeds.
func (s *LedgerService) mutate(ctx context.Context, op string, fn func() error) error {
	return s.gate.Do(op, func() error {
		if err := fn(); err != nil {
			slog.Debug("Operation rejected", "op", op, "error", err)
			return err
		}
		s.persist(ctx, op)
		return nil
	})
}

// persist saves the snapshot. A failure is logged and counted but does not
// undo the mutation; memory stays ahead of disk until the next good save.
func (s *LedgerService) persist(ctx context.Context, op string) {
	start := time.Now()
	err := s.store.Save(ctx, s.engine.Snapshot())
	if s.metrics != nil {
		s.metrics.SaveDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		slog.Error("Snapshot save failed, in-memory state kept", "op", op, "error", err)
		if s.metrics != nil {
			s.metrics.SaveFailures.Inc()
		}
	}
}

// Package server exposes the ledger over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mmynk/gpbank/internal/middleware"
	"github.com/mmynk/gpbank/internal/models"
	"github.com/mmynk/gpbank/internal/service"
	"github.com/mmynk/gpbank/internal/views"
)

const defaultLimit = 10

var errBadRequest = errors.New("bad request")

// Server holds the HTTP handlers.
type Server struct {
	svc *service.LedgerService
}

// New creates a Server backed by svc.
func New(svc *service.LedgerService) *Server {
	return &Server{svc: svc}
}

// Handler returns the API routes. Mount it behind middleware.Actor so
// mutations are attributed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /accounts/{name}/balance", s.balance)
	mux.HandleFunc("GET /accounts/{name}/history", s.history)
	mux.HandleFunc("POST /accounts/{name}/deposit", s.deposit)
	mux.HandleFunc("POST /accounts/{name}/withdraw", s.withdraw)
	mux.HandleFunc("POST /loans", s.createLoan)
	mux.HandleFunc("POST /loans/repay", s.repay)
	mux.HandleFunc("POST /loans/accrue", s.accrue)
	mux.HandleFunc("GET /loans/{id}", s.loan)
	mux.HandleFunc("GET /loans/{id}/history", s.loanHistory)
	mux.HandleFunc("GET /borrowers/{name}/debts", s.debts)
	mux.HandleFunc("GET /lenders/{name}/loans", s.credits)
	mux.HandleFunc("GET /rankings/balances", s.topBalances)
	mux.HandleFunc("GET /rankings/debtors", s.topDebtors)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

type accountRequest struct {
	Amount any    `json:"amount"`
	Note   string `json:"note"`
}

type loanRequest struct {
	Borrower string `json:"borrower"`
	Lender   string `json:"lender"`
	Amount   any    `json:"amount"`
	Note     string `json:"note"`
}

type loanTargetRequest struct {
	Borrower string `json:"borrower"`
	Amount   any    `json:"amount"`
	Target   string `json:"target"`
}

type balanceResponse struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type historyResponse struct {
	Name         string               `json:"name"`
	Transactions []models.Transaction `json:"transactions"`
}

type loanResponse struct {
	LoanID string `json:"loan_id"`
	models.Loan
}

type loanHistoryResponse struct {
	LoanID       string                   `json:"loan_id"`
	Transactions []models.LoanTransaction `json:"transactions"`
}

type repayResponse struct {
	LoanID     string `json:"loan_id"`
	OldBalance int64  `json:"old_balance"`
	NewBalance int64  `json:"new_balance"`
	Resolved   bool   `json:"resolved"`
}

type accrueResponse struct {
	LoanID     string `json:"loan_id"`
	OldBalance int64  `json:"old_balance"`
	NewBalance int64  `json:"new_balance"`
}

type debtResponse struct {
	LoanID       string `json:"loan_id"`
	Counterparty string `json:"counterparty"`
	Balance      int64  `json:"balance"`
}

type rankedResponse struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	writeJSON(w, http.StatusOK, balanceResponse{Name: name, Balance: s.svc.Balance(name)})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	name := r.PathValue("name")
	txs, err := s.svc.History(name, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Name: name, Transactions: txs})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	s.accountMutation(w, r, s.svc.Deposit)
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	s.accountMutation(w, r, s.svc.Withdraw)
}

type accountOp func(ctx context.Context, name string, rawAmount any, actorID, note string) (int64, error)

func (s *Server) accountMutation(w http.ResponseWriter, r *http.Request, op accountOp) {
	var req accountRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	name := r.PathValue("name")
	balance, err := op(r.Context(), name, req.Amount, middleware.GetActorID(r.Context()), req.Note)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Name: name, Balance: balance})
}

func (s *Server) createLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	id, err := s.svc.CreateLoan(r.Context(), req.Borrower, req.Lender, req.Amount, middleware.GetActorID(r.Context()), req.Note)
	if err != nil {
		writeErr(w, err)
		return
	}
	loan, err := s.svc.Loan(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loanResponse{LoanID: id, Loan: loan})
}

func (s *Server) repay(w http.ResponseWriter, r *http.Request) {
	var req loanTargetRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	res, err := s.svc.Repay(r.Context(), req.Borrower, req.Amount, req.Target, middleware.GetActorID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repayResponse{
		LoanID:     res.LoanID,
		OldBalance: res.OldBalance,
		NewBalance: res.NewBalance,
		Resolved:   res.Resolved,
	})
}

func (s *Server) accrue(w http.ResponseWriter, r *http.Request) {
	var req loanTargetRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	res, err := s.svc.Accrue(r.Context(), req.Borrower, req.Amount, req.Target, middleware.GetActorID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accrueResponse{
		LoanID:     res.LoanID,
		OldBalance: res.OldBalance,
		NewBalance: res.NewBalance,
	})
}

func (s *Server) loan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	loan, err := s.svc.Loan(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loanResponse{LoanID: id, Loan: loan})
}

func (s *Server) loanHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	id := r.PathValue("id")
	txs, err := s.svc.LoanHistory(id, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loanHistoryResponse{LoanID: id, Transactions: txs})
}

func (s *Server) debts(w http.ResponseWriter, r *http.Request) {
	entries := s.svc.DebtsOfBorrower(r.PathValue("name"))
	out := make([]debtResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, debtResponse{LoanID: e.LoanID, Counterparty: e.LenderName, Balance: e.Balance})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) credits(w http.ResponseWriter, r *http.Request) {
	entries := s.svc.LoansOfLender(r.PathValue("name"))
	out := make([]debtResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, debtResponse{LoanID: e.LoanID, Counterparty: e.BorrowerName, Balance: e.Balance})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) topBalances(w http.ResponseWriter, r *http.Request) {
	s.ranking(w, r, s.svc.TopBalances)
}

func (s *Server) topDebtors(w http.ResponseWriter, r *http.Request) {
	s.ranking(w, r, s.svc.TopDebtors)
}

func (s *Server) ranking(w http.ResponseWriter, r *http.Request, rank func(int) []views.Ranked) {
	limit, err := limitParam(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	rows := rank(limit)
	out := make([]rankedResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, rankedResponse{Name: row.Name, Amount: row.Amount})
	}
	writeJSON(w, http.StatusOK, out)
}

// decode reads a JSON body, keeping numbers as json.Number so amount parsing
// sees exactly what the client sent.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", errBadRequest)
	}
	return n, nil
}

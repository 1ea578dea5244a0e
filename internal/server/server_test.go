package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/gpbank/internal/gate"
	"github.com/mmynk/gpbank/internal/ledger"
	"github.com/mmynk/gpbank/internal/metrics"
	"github.com/mmynk/gpbank/internal/middleware"
	"github.com/mmynk/gpbank/internal/service"
	"github.com/mmynk/gpbank/internal/storage/jsonfile"
)

type testServer struct {
	handler http.Handler
	gate    *gate.Gate
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := jsonfile.New(t.TempDir() + "/ledger.json")
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	g := gate.New(m)
	svc := service.NewLedgerService(ledger.NewEngine(nil), g, store, m)
	return &testServer{handler: middleware.Actor(New(svc).Handler()), gate: g}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(middleware.ActorHeader, "tester")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestAccountEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/accounts/Alice/deposit", `{"amount": "120.9", "note": "pay"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 120.0, body["balance"])

	rec, body = ts.do(t, http.MethodPost, "/accounts/Alice/withdraw", `{"amount": 20}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100.0, body["balance"])

	rec, body = ts.do(t, http.MethodGet, "/accounts/Alice/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100.0, body["balance"])

	rec, body = ts.do(t, http.MethodGet, "/accounts/Alice/history?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	txs := body["transactions"].([]any)
	require.Len(t, txs, 1)
	last := txs[0].(map[string]any)
	assert.Equal(t, "withdraw", last["type"])
	assert.Equal(t, "tester", last["actorId"])
}

func TestAccountErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "non numeric amount", method: http.MethodPost, path: "/accounts/A/deposit", body: `{"amount": "abc"}`, want: http.StatusBadRequest},
		{name: "negative amount", method: http.MethodPost, path: "/accounts/A/deposit", body: `{"amount": -1}`, want: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: "/accounts/A/deposit", body: `{`, want: http.StatusBadRequest},
		{name: "insufficient balance", method: http.MethodPost, path: "/accounts/A/withdraw", body: `{"amount": 5}`, want: http.StatusConflict},
		{name: "empty history", method: http.MethodGet, path: "/accounts/A/history", want: http.StatusNotFound},
		{name: "bad limit", method: http.MethodGet, path: "/rankings/balances?limit=x", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestLoanLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/loans", `{"borrower": "Bob", "lender": "Alice", "amount": 100, "note": "rent"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["loan_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "open", body["status"])

	rec, body = ts.do(t, http.MethodPost, "/loans/accrue", `{"borrower": "bob", "amount": 10, "target": "alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 110.0, body["new_balance"])

	rec, _ = ts.do(t, http.MethodGet, "/borrowers/Bob/debts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var debts []debtResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &debts))
	require.Len(t, debts, 1)
	assert.Equal(t, debtResponse{LoanID: id, Counterparty: "Alice", Balance: 110}, debts[0])

	rec, _ = ts.do(t, http.MethodGet, "/rankings/debtors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ranked []rankedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
	assert.Equal(t, []rankedResponse{{Name: "Bob", Amount: 110}}, ranked)

	rec, body = ts.do(t, http.MethodPost, "/loans/repay", `{"borrower": "Bob", "amount": 500, "target": "`+id+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, body["new_balance"])
	assert.Equal(t, true, body["resolved"])

	rec, body = ts.do(t, http.MethodPost, "/loans/repay", `{"borrower": "Bob", "amount": 1, "target": "`+id+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, body["error"], "already resolved")

	rec, body = ts.do(t, http.MethodGet, "/loans/"+id+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["transactions"], 4)

	rec, _ = ts.do(t, http.MethodGet, "/lenders/Alice/loans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestLoanErrors(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodPost, "/loans", `{"borrower": "Bob", "lender": " ", "amount": 5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/loans/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = ts.do(t, http.MethodPost, "/loans/repay", `{"borrower": "Bob", "amount": 5, "target": "Alice"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for i := 0; i < 2; i++ {
		rec, _ = ts.do(t, http.MethodPost, "/loans", `{"borrower": "Bob", "lender": "Alice", "amount": 5}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec, body := ts.do(t, http.MethodPost, "/loans/repay", `{"borrower": "Bob", "amount": 5, "target": "Alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, body["loan_ids"], 2)
}

func TestBusyGate(t *testing.T) {
	ts := newTestServer(t)
	require.True(t, ts.gate.TryAcquire())
	defer ts.gate.Release()

	rec, _ := ts.do(t, http.MethodPost, "/accounts/A/deposit", `{"amount": 1}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/accounts/A/balance", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

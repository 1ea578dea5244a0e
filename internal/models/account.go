package models

// Transaction types for the account log.
const (
	TxDeposit  = "deposit"
	TxWithdraw = "withdraw"
)

// Transaction is an immutable entry in an account's append-only log.
type Transaction struct {
	// Timestamp is the wall-clock time of the operation in Unix milliseconds.
	// It is advisory; log order is the source of truth for ordering.
	Timestamp int64 `json:"timestamp"`

	// Type is TxDeposit or TxWithdraw.
	Type string `json:"type"`

	// Amount is always positive.
	Amount int64 `json:"amount"`

	// ActorID is the opaque identifier of whoever performed the operation.
	ActorID string `json:"actorId"`

	Note string `json:"note"`
}

package model

import (
	"encoding/json"
	"time"
)

// Transaction is a pact command together with its execution result.
type Transaction struct {
	Block        string
	RequestKey   string
	ChainID      ChainID
	Height       int64
	CreationTime time.Time
	Code         *string
	Data         json.RawMessage
	Continuation json.RawMessage
	GoodResult   json.RawMessage
	BadResult    json.RawMessage
	Gas          int64
	GasLimit     int64
	GasPrice     float64
	Logs         *string
	Metadata     json.RawMessage
	Nonce        string
	NumEvents    *int64
	PactID       *string
	Proof        *string
	Rollback     *bool
	Sender       string
	Step         *int64
	TTL          int64
	TxID         *int64
}

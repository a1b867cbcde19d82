package model

import "encoding/json"

// Event is a pact event emitted by a transaction.
type Event struct {
	Block      string
	RequestKey string
	Idx        int64
	ChainID    ChainID
	Height     int64
	Module     string
	ModuleHash string
	Name       string
	Params     json.RawMessage
	ParamText  string
	QualName   string
	PactID     *string
}

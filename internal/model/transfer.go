package model

import "github.com/shopspring/decimal"

// Transfer is a token movement derived from a TRANSFER event.
type Transfer struct {
	Block       string
	RequestKey  string
	Idx         int64
	ChainID     ChainID
	Height      int64
	ModuleHash  string
	ModuleName  string
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	PactID      *string
}

// MalformedTransfer is a transfer-shaped event whose parameters could not be parsed.
type MalformedTransfer struct {
	Block      string
	RequestKey string
	Idx        int64
	ChainID    ChainID
	Height     int64
	Module     string
	Params     string
	Reason     string
}

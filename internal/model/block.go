package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Block is a chainweb block header joined with its payload metadata.
type Block struct {
	ChainID      ChainID
	Hash         string
	Height       int64
	Parent       string
	CreationTime time.Time
	Epoch        time.Time
	Flags        decimal.Decimal
	Miner        string
	Predicate    string
	Nonce        decimal.Decimal
	Payload      string
	PowHash      string
	Target       decimal.Decimal
	Weight       decimal.Decimal
}

// FullBlock is a block with the transactions and events it carries.
type FullBlock struct {
	Block        Block
	Transactions []Transaction
	Events       []Event
}

// OrphanedBlock records a block removed from the canonical view by a reorg.
type OrphanedBlock struct {
	ChainID    ChainID
	Hash       string
	Height     int64
	Parent     string
	ReplacedBy string
	OrphanedAt time.Time
}

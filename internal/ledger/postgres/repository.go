// Package postgres implements the ledger store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		Observe(operation string, chain model.ChainID, err error, started time.Time)
	}
)

// Repository is the PostgreSQL ledger store.
type Repository struct {
	db      *sql.DB
	metrics Metrics
}

// NewRepository opens a connection pool for dsn and checks it is reachable.
func NewRepository(ctx context.Context, dsn string, maxConns int, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	if metrics == nil {
		return nil, errors.New("metrics is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Repository{db: db, metrics: metrics}, nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

func firstChain[T any](items []T) model.ChainID {
	if len(items) == 0 {
		return -1
	}

	switch v := any(items[0]).(type) {
	case model.Block:
		return v.ChainID
	case model.Transaction:
		return v.ChainID
	case model.Event:
		return v.ChainID
	case model.Transfer:
		return v.ChainID
	case model.MalformedTransfer:
		return v.ChainID
	case model.BalanceDelta:
		return v.ChainID
	case model.OrphanedBlock:
		return v.ChainID
	default:
		return -1
	}
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

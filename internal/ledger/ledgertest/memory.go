// Package ledgertest provides an in-memory ledger store for tests.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goodnatureofminers/chainweb-indexer/internal/ledger"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/shopspring/decimal"
)

var (
	// ErrHeightTaken mirrors the unique (height, chain_id) constraint.
	ErrHeightTaken = errors.New("another block is stored at this height")
	// ErrMissingBlock mirrors the foreign key from child rows to blocks.
	ErrMissingBlock = errors.New("owning block is not stored")
)

type heightKey struct {
	chain  model.ChainID
	height int64
}

type rowKey struct {
	block      string
	requestKey string
	idx        int64
}

type state struct {
	blocks    map[string]model.Block
	heights   map[heightKey]string
	txs       map[rowKey]model.Transaction
	events    map[rowKey]model.Event
	transfers map[rowKey]model.Transfer
	malformed map[rowKey]model.MalformedTransfer
	balances  map[model.BalanceKey]model.Balance
	orphans   []model.OrphanedBlock
}

func newState() *state {
	return &state{
		blocks:    map[string]model.Block{},
		heights:   map[heightKey]string{},
		txs:       map[rowKey]model.Transaction{},
		events:    map[rowKey]model.Event{},
		transfers: map[rowKey]model.Transfer{},
		malformed: map[rowKey]model.MalformedTransfer{},
		balances:  map[model.BalanceKey]model.Balance{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.blocks {
		c.blocks[k] = v
	}
	for k, v := range s.heights {
		c.heights[k] = v
	}
	for k, v := range s.txs {
		c.txs[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	for k, v := range s.malformed {
		c.malformed[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	c.orphans = append(c.orphans, s.orphans...)
	return c
}

// Store is an in-memory ledger.Store. Writers are serialized and readers only
// ever observe committed state.
type Store struct {
	writeMu sync.Mutex

	mu          sync.Mutex
	committed   *state
	commitErr   error
	commitCount int
}

// New returns an empty store.
func New() *Store {
	return &Store{committed: newState()}
}

var _ ledger.Store = (*Store)(nil)

// FailNextCommit makes the next Commit return err and discard the transaction.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

// Commits returns the number of successful commits.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitCount
}

func (s *Store) read() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

func (s *Store) Tip(_ context.Context, chain model.ChainID) (*model.Block, error) {
	st := s.read()
	var tip *model.Block
	for _, b := range st.blocks {
		if b.ChainID != chain {
			continue
		}
		if tip == nil || b.Height > tip.Height {
			b := b
			tip = &b
		}
	}
	return tip, nil
}

func (s *Store) CanonicalBlock(_ context.Context, chain model.ChainID, height int64) (*model.Block, error) {
	st := s.read()
	hash, ok := st.heights[heightKey{chain: chain, height: height}]
	if !ok {
		return nil, nil
	}
	b := st.blocks[hash]
	return &b, nil
}

func (s *Store) CanonicalBlocksFrom(_ context.Context, chain model.ChainID, height int64) ([]model.Block, error) {
	var out []model.Block
	for _, b := range s.Blocks(chain) {
		if b.Height >= height {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) MissingRanges(_ context.Context, chain model.ChainID, lower, upper int64) ([]model.HeightRange, error) {
	st := s.read()
	var out []model.HeightRange
	for h := lower; h <= upper; h++ {
		if _, ok := st.heights[heightKey{chain: chain, height: h}]; ok {
			continue
		}
		if n := len(out); n > 0 && out[n-1].To == h-1 {
			out[n-1].To = h
			continue
		}
		out = append(out, model.HeightRange{ChainID: chain, From: h, To: h})
	}
	return out, nil
}

// Begin blocks until no other transaction is open.
func (s *Store) Begin(ctx context.Context) (ledger.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.writeMu.Lock()
	return &Tx{store: s, st: s.read().clone()}, nil
}

// Blocks returns the stored blocks of the chain in height order.
func (s *Store) Blocks(chain model.ChainID) []model.Block {
	st := s.read()
	var out []model.Block
	for _, b := range st.blocks {
		if b.ChainID == chain {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height < out[j].Height })
	return out
}

// Transfers returns every stored transfer of the chain.
func (s *Store) Transfers(chain model.ChainID) []model.Transfer {
	st := s.read()
	var out []model.Transfer
	for _, t := range st.transfers {
		if t.ChainID == chain {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Height != out[j].Height {
			return out[i].Height < out[j].Height
		}
		return out[i].Idx < out[j].Idx
	})
	return out
}

// Balance returns the balance amount, zero when the row does not exist.
func (s *Store) Balance(key model.BalanceKey) decimal.Decimal {
	st := s.read()
	return st.balances[key].Amount
}

// Balances returns every balance row of the chain.
func (s *Store) Balances(chain model.ChainID) []model.Balance {
	st := s.read()
	var out []model.Balance
	for _, b := range st.balances {
		if b.ChainID == chain {
			out = append(out, b)
		}
	}
	return out
}

// RowsReferencing counts transactions, events, transfers and malformed transfers owned by block.
func (s *Store) RowsReferencing(block string) int {
	st := s.read()
	n := 0
	for k := range st.txs {
		if k.block == block {
			n++
		}
	}
	for k := range st.events {
		if k.block == block {
			n++
		}
	}
	for k := range st.transfers {
		if k.block == block {
			n++
		}
	}
	for k := range st.malformed {
		if k.block == block {
			n++
		}
	}
	return n
}

// Malformed returns the malformed transfers of the chain.
func (s *Store) Malformed(chain model.ChainID) []model.MalformedTransfer {
	st := s.read()
	var out []model.MalformedTransfer
	for _, m := range st.malformed {
		if m.ChainID == chain {
			out = append(out, m)
		}
	}
	return out
}

// Orphans returns the recorded orphaned blocks.
func (s *Store) Orphans() []model.OrphanedBlock {
	st := s.read()
	return append([]model.OrphanedBlock(nil), st.orphans...)
}

// Tx is a transaction over a private copy of the committed state.
type Tx struct {
	store *Store
	st    *state
	done  bool
}

func (t *Tx) check(ctx context.Context) error {
	if t.done {
		return ledger.ErrTxDone
	}
	return ctx.Err()
}

func (t *Tx) TransfersByBlocks(ctx context.Context, hashes []string) ([]model.Transfer, error) {
	if err := t.check(ctx); err != nil {
		return nil, err
	}
	want := hashSet(hashes)
	var out []model.Transfer
	for k, tr := range t.st.transfers {
		if _, ok := want[k.block]; ok {
			out = append(out, tr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Block != out[j].Block {
			return out[i].Block < out[j].Block
		}
		return out[i].Idx < out[j].Idx
	})
	return out, nil
}

func (t *Tx) TransactionsByBlocks(ctx context.Context, hashes []string) ([]model.Transaction, error) {
	if err := t.check(ctx); err != nil {
		return nil, err
	}
	want := hashSet(hashes)
	var out []model.Transaction
	for k, tx := range t.st.txs {
		if _, ok := want[k.block]; ok {
			out = append(out, model.Transaction{
				Block:      tx.Block,
				RequestKey: tx.RequestKey,
				ChainID:    tx.ChainID,
				Height:     tx.Height,
				PactID:     tx.PactID,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Block != out[j].Block {
			return out[i].Block < out[j].Block
		}
		return out[i].RequestKey < out[j].RequestKey
	})
	return out, nil
}

func (t *Tx) EventsByBlocks(ctx context.Context, hashes []string) ([]model.Event, error) {
	if err := t.check(ctx); err != nil {
		return nil, err
	}
	want := hashSet(hashes)
	var out []model.Event
	for k, ev := range t.st.events {
		if _, ok := want[k.block]; ok {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Block != out[j].Block {
			return out[i].Block < out[j].Block
		}
		if out[i].RequestKey != out[j].RequestKey {
			return out[i].RequestKey < out[j].RequestKey
		}
		return out[i].Idx < out[j].Idx
	})
	return out, nil
}

func (t *Tx) DeleteTransfers(ctx context.Context, hashes []string) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	want := hashSet(hashes)
	for k := range t.st.transfers {
		if _, ok := want[k.block]; ok {
			delete(t.st.transfers, k)
		}
	}
	for k := range t.st.malformed {
		if _, ok := want[k.block]; ok {
			delete(t.st.malformed, k)
		}
	}
	return nil
}

func hashSet(hashes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set
}

func (t *Tx) DeleteBlocks(ctx context.Context, hashes []string) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	for _, h := range hashes {
		b, ok := t.st.blocks[h]
		if !ok {
			continue
		}
		delete(t.st.blocks, h)
		delete(t.st.heights, heightKey{chain: b.ChainID, height: b.Height})
		for k := range t.st.txs {
			if k.block == h {
				delete(t.st.txs, k)
			}
		}
		for k := range t.st.events {
			if k.block == h {
				delete(t.st.events, k)
			}
		}
		for k := range t.st.transfers {
			if k.block == h {
				delete(t.st.transfers, k)
			}
		}
		for k := range t.st.malformed {
			if k.block == h {
				delete(t.st.malformed, k)
			}
		}
	}
	return nil
}

func (t *Tx) RecordOrphans(ctx context.Context, orphans []model.OrphanedBlock) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	t.st.orphans = append(t.st.orphans, orphans...)
	return nil
}

func (t *Tx) InsertBlock(ctx context.Context, b model.Block) (bool, error) {
	if err := t.check(ctx); err != nil {
		return false, err
	}
	if _, ok := t.st.blocks[b.Hash]; ok {
		return false, nil
	}
	hk := heightKey{chain: b.ChainID, height: b.Height}
	if other, ok := t.st.heights[hk]; ok {
		return false, fmt.Errorf("insert block %s: %w (%s)", b.Hash, ErrHeightTaken, other)
	}
	t.st.blocks[b.Hash] = b
	t.st.heights[hk] = b.Hash
	return true, nil
}

func (t *Tx) owned(block string) error {
	if _, ok := t.st.blocks[block]; !ok {
		return fmt.Errorf("%w: %s", ErrMissingBlock, block)
	}
	return nil
}

func (t *Tx) InsertTransactions(ctx context.Context, txs []model.Transaction) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := t.owned(tx.Block); err != nil {
			return err
		}
		k := rowKey{block: tx.Block, requestKey: tx.RequestKey}
		if _, ok := t.st.txs[k]; !ok {
			t.st.txs[k] = tx
		}
	}
	return nil
}

func (t *Tx) InsertEvents(ctx context.Context, events []model.Event) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	for _, ev := range events {
		if err := t.owned(ev.Block); err != nil {
			return err
		}
		k := rowKey{block: ev.Block, requestKey: ev.RequestKey, idx: ev.Idx}
		if _, ok := t.st.events[k]; !ok {
			t.st.events[k] = ev
		}
	}
	return nil
}

func (t *Tx) InsertTransfers(ctx context.Context, transfers []model.Transfer) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	for _, tr := range transfers {
		if err := t.owned(tr.Block); err != nil {
			return err
		}
		k := rowKey{block: tr.Block, requestKey: tr.RequestKey, idx: tr.Idx}
		if _, ok := t.st.transfers[k]; !ok {
			t.st.transfers[k] = tr
		}
	}
	return nil
}

func (t *Tx) InsertMalformedTransfers(ctx context.Context, malformed []model.MalformedTransfer) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	for _, m := range malformed {
		if err := t.owned(m.Block); err != nil {
			return err
		}
		t.st.malformed[rowKey{block: m.Block, requestKey: m.RequestKey, idx: m.Idx}] = m
	}
	return nil
}

func (t *Tx) ApplyBalanceDeltas(ctx context.Context, deltas []model.BalanceDelta) error {
	if err := t.check(ctx); err != nil {
		return err
	}
	for _, d := range deltas {
		k := d.Key()
		b, ok := t.st.balances[k]
		if !ok {
			b = model.Balance{Account: d.Account, ChainID: d.ChainID, QualName: d.QualName, Module: d.Module, Height: d.Height}
		}
		b.Amount = b.Amount.Add(d.Amount)
		if d.Height > b.Height {
			b.Height = d.Height
		}
		t.st.balances[k] = b
	}
	return nil
}

func (t *Tx) Commit() error {
	if t.done {
		return ledger.ErrTxDone
	}
	t.done = true
	defer t.store.writeMu.Unlock()

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if err := t.store.commitErr; err != nil {
		t.store.commitErr = nil
		return err
	}
	t.store.committed = t.st
	t.store.commitCount++
	return nil
}

func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.writeMu.Unlock()
	return nil
}

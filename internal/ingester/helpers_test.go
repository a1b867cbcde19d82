package ingester

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/chainweb-indexer/internal/chainweb"
	"github.com/goodnatureofminers/chainweb-indexer/internal/derivation"
	"github.com/goodnatureofminers/chainweb-indexer/internal/ledger/ledgertest"
	"github.com/goodnatureofminers/chainweb-indexer/internal/metrics"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/goodnatureofminers/chainweb-indexer/internal/reconciler"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testChain model.ChainID = 0

var errStreamEnded = errors.New("stream ended")

// block builds a block of testChain whose hash is prefix+height.
func block(prefix, parentPrefix string, height, weight int64) *model.FullBlock {
	return &model.FullBlock{Block: model.Block{
		ChainID: testChain,
		Hash:    fmt.Sprintf("%s%d", prefix, height),
		Parent:  fmt.Sprintf("%s%d", parentPrefix, height-1),
		Height:  height,
		Weight:  decimal.NewFromInt(weight),
	}}
}

// fakeNode serves one canonical branch of testChain.
type fakeNode struct {
	mu        sync.Mutex
	blocks    map[int64]*model.FullBlock
	head      int64
	failFetch func(from, to int64) error
	fetches   [][2]int64
	live      chan *model.FullBlock
	subscribe func() error
}

func newFakeNode() *fakeNode {
	return &fakeNode{blocks: make(map[int64]*model.FullBlock), head: -1}
}

// extend appends blocks prefix<from>..prefix<to>; the block at from links to
// parentPrefix<from-1>.
func (n *fakeNode) extend(prefix, parentPrefix string, from, to, weightBonus int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	parent := parentPrefix
	for h := from; h <= to; h++ {
		n.blocks[h] = block(prefix, parent, h, 10*h+weightBonus)
		parent = prefix
	}
	n.head = max(n.head, to)
}

func (n *fakeNode) at(height int64) *model.FullBlock {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.blocks[height]
}

func (n *fakeNode) Chains(context.Context) ([]model.ChainID, error) {
	return []model.ChainID{testChain}, nil
}

func (n *fakeNode) LatestHeight(context.Context, model.ChainID) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.head, nil
}

func (n *fakeNode) FetchRange(_ context.Context, _ model.ChainID, from, to int64) ([]*model.FullBlock, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fetches = append(n.fetches, [2]int64{from, to})
	if n.failFetch != nil {
		if err := n.failFetch(from, to); err != nil {
			return nil, err
		}
	}
	if from > n.head {
		return nil, chainweb.ErrBlockNotFound
	}
	var out []*model.FullBlock
	for h := from; h <= min(to, n.head); h++ {
		out = append(out, n.blocks[h])
	}
	return out, nil
}

func (n *fakeNode) Subscribe(ctx context.Context, _ model.ChainID, fn func(*model.FullBlock) error) error {
	if n.subscribe != nil {
		if err := n.subscribe(); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fb, ok := <-n.live:
			if !ok {
				return errStreamEnded
			}
			if err := fn(fb); err != nil {
				return err
			}
		}
	}
}

type harness struct {
	store *ledgertest.Store
	node  *fakeNode
	state *reconciler.ChainState
	rec   *reconciler.Reconciler
}

func newHarness(t *testing.T, sink reconciler.GapSink) *harness {
	t.Helper()
	h := &harness{
		store: ledgertest.New(),
		node:  newFakeNode(),
		state: reconciler.NewChainState(testChain),
	}
	rec, err := reconciler.New(h.state, h.store, derivation.NewDeriver(nil), sink,
		metrics.NewReconciler(model.Testnet), reconciler.Config{}, zap.NewNop())
	require.NoError(t, err)
	h.rec = rec
	return h
}

// write stores blocks directly, bypassing reconciliation.
func (h *harness) write(t *testing.T, blocks ...*model.FullBlock) {
	t.Helper()
	ctx := context.Background()
	tx, err := h.store.Begin(ctx)
	require.NoError(t, err)
	for _, fb := range blocks {
		_, err := tx.InsertBlock(ctx, fb.Block)
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())
}

// copyNode stores the node's blocks in [from, to].
func (h *harness) copyNode(t *testing.T, from, to int64) {
	t.Helper()
	var blocks []*model.FullBlock
	for height := from; height <= to; height++ {
		blocks = append(blocks, h.node.at(height))
	}
	h.write(t, blocks...)
}

func (h *harness) hashes() []string {
	var out []string
	for _, b := range h.store.Blocks(testChain) {
		out = append(out, b.Hash)
	}
	return out
}

func nodeHashes(prefixAt func(int64) string, from, to int64) []string {
	var out []string
	for h := from; h <= to; h++ {
		out = append(out, fmt.Sprintf("%s%d", prefixAt(h), h))
	}
	return out
}

func newTestPool(t *testing.T, h *harness, cfg BackfillConfig) *BackfillPool {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	m := NewMockBackfillMetrics(ctrl)
	m.EXPECT().ObserveRange(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().ObserveFetch(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().SetInFlight(gomock.Any()).AnyTimes()

	pool, err := NewBackfillPool(h.node, []Reconciler{h.rec}, m, cfg, zap.NewNop())
	require.NoError(t, err)
	pool.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return pool
}

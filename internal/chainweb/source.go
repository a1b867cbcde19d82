package chainweb

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/goodnatureofminers/chainweb-indexer/pkg/workerpool"
	"go.uber.org/zap"
)

const (
	payloadBatchSize        = 50
	payloadFetchConcurrency = 4
)

var (
	// ErrBlockNotFound is returned when a requested height is above the node's head.
	ErrBlockNotFound = errors.New("block not found")
	// ErrUnknownChain is returned for a chain that is not part of the node's cut.
	ErrUnknownChain = errors.New("unknown chain")
)

// Source fetches complete blocks from a chainweb node.
type Source struct {
	client *Client
	logger *zap.Logger
}

// NewSource creates a Source over client.
func NewSource(client *Client, logger *zap.Logger) (*Source, error) {
	if client == nil {
		return nil, errors.New("node client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{client: client, logger: logger.Named("chainweb_source")}, nil
}

// Chains returns the chains of the node's current cut in ascending order.
func (s *Source) Chains(ctx context.Context) ([]model.ChainID, error) {
	cut, err := s.client.cut(ctx)
	if err != nil {
		return nil, err
	}
	chains := make([]model.ChainID, 0, len(cut.Hashes))
	for key := range cut.Hashes {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cut chain id %q: %w", key, err)
		}
		chains = append(chains, model.ChainID(id))
	}
	slices.Sort(chains)
	return chains, nil
}

// LatestHeight returns the height of the chain's head in the node's cut.
func (s *Source) LatestHeight(ctx context.Context, chain model.ChainID) (int64, error) {
	head, err := s.head(ctx, chain)
	if err != nil {
		return 0, err
	}
	return head.Height, nil
}

func (s *Source) head(ctx context.Context, chain model.ChainID) (wireBlockHash, error) {
	cut, err := s.client.cut(ctx)
	if err != nil {
		return wireBlockHash{}, err
	}
	head, ok := cut.Hashes[chain.String()]
	if !ok {
		return wireBlockHash{}, fmt.Errorf("chain %d: %w", chain, ErrUnknownChain)
	}
	return head, nil
}

// FetchBlock retrieves the block at height on the node's current branch.
func (s *Source) FetchBlock(ctx context.Context, chain model.ChainID, height int64) (*model.FullBlock, error) {
	blocks, err := s.FetchRange(ctx, chain, height, height)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("chain %d height %d: %w", chain, height, ErrBlockNotFound)
	}
	return blocks[0], nil
}

// FetchRange retrieves the blocks in [from, to] on the node's current branch in
// ascending height order. The range is clamped to the head of the chain.
func (s *Source) FetchRange(ctx context.Context, chain model.ChainID, from, to int64) ([]*model.FullBlock, error) {
	if from < 0 || to < from {
		return nil, fmt.Errorf("invalid range [%d..%d]", from, to)
	}
	head, err := s.head(ctx, chain)
	if err != nil {
		return nil, err
	}
	if from > head.Height {
		return nil, fmt.Errorf("chain %d height %d above head %d: %w", chain, from, head.Height, ErrBlockNotFound)
	}
	to = min(to, head.Height)

	headers, err := s.client.headerBranch(ctx, chain, head.Hash, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch headers of chain %d [%d..%d]: %w", chain, from, to, err)
	}

	hashes := make([]string, 0, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if _, ok := seen[h.PayloadHash]; ok {
			continue
		}
		seen[h.PayloadHash] = struct{}{}
		hashes = append(hashes, h.PayloadHash)
	}
	payloads, err := s.fetchPayloads(ctx, chain, hashes)
	if err != nil {
		return nil, fmt.Errorf("fetch payloads of chain %d [%d..%d]: %w", chain, from, to, err)
	}

	blocks := make([]*model.FullBlock, 0, len(headers))
	for _, h := range headers {
		p, ok := payloads[h.PayloadHash]
		if !ok {
			return nil, fmt.Errorf("payload %s of block %s missing from node response", h.PayloadHash, h.Hash)
		}
		fb, err := convertBlock(h, p, "")
		if err != nil {
			return nil, fmt.Errorf("convert block %s: %w", h.Hash, err)
		}
		blocks = append(blocks, fb)
	}
	return blocks, nil
}

// fetchPayloads requests payloads in batches, a few batches at a time. The
// first failed batch cancels the rest.
func (s *Source) fetchPayloads(ctx context.Context, chain model.ChainID, hashes []string) (map[string]payloadWithOutputs, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]payloadWithOutputs, len(hashes))
	)
	batches := slices.Collect(slices.Chunk(hashes, payloadBatchSize))
	err := workerpool.Process(ctx, payloadFetchConcurrency, batches, func(ctx context.Context, batch []string) error {
		payloads, err := s.client.payloadsWithOutputs(ctx, chain, batch)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		maps.Copy(out, payloads)
		return nil
	}, func() {
		s.logger.Debug("payload batch failed, cancelling the others", zap.Int64("chain", int64(chain)))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Subscribe streams new blocks of chain to fn until the stream ends, fn fails
// or ctx is done. The returned error is never nil.
func (s *Source) Subscribe(ctx context.Context, chain model.ChainID, fn func(*model.FullBlock) error) error {
	logger := s.logger.With(zap.Int64("chain", int64(chain)))
	logger.Debug("subscribing to header updates")

	return s.client.headerUpdates(ctx, func(ev headerEvent) error {
		if model.ChainID(ev.Header.ChainID) != chain {
			return nil
		}
		payloads, err := s.client.payloadsWithOutputs(ctx, chain, []string{ev.Header.PayloadHash})
		if err != nil {
			return fmt.Errorf("fetch payload of block %s: %w", ev.Header.Hash, err)
		}
		p, ok := payloads[ev.Header.PayloadHash]
		if !ok {
			return fmt.Errorf("payload %s of block %s missing from node response", ev.Header.PayloadHash, ev.Header.Hash)
		}
		fb, err := convertBlock(ev.Header, p, ev.PowHash)
		if err != nil {
			return fmt.Errorf("convert block %s: %w", ev.Header.Hash, err)
		}
		logger.Debug("received block",
			zap.Int64("height", fb.Block.Height),
			zap.String("hash", fb.Block.Hash),
			zap.Int("tx_count", len(fb.Transactions)),
		)
		return fn(fb)
	})
}

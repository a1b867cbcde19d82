package reconciler

import (
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

type parkedBlock struct {
	block    *model.FullBlock
	parkedAt time.Time
	// side marks blocks that attach but lost fork choice.
	side bool
}

// parkedPool holds blocks waiting for their ancestors, indexed by parent hash.
type parkedPool struct {
	capacity int
	timeout  time.Duration
	blocks   map[string]*parkedBlock
	children map[string]map[string]struct{}
}

func newParkedPool(capacity int, timeout time.Duration) *parkedPool {
	return &parkedPool{
		capacity: capacity,
		timeout:  timeout,
		blocks:   make(map[string]*parkedBlock),
		children: make(map[string]map[string]struct{}),
	}
}

func (p *parkedPool) len() int {
	return len(p.blocks)
}

func (p *parkedPool) get(hash string) *model.FullBlock {
	if pb, ok := p.blocks[hash]; ok {
		return pb.block
	}
	return nil
}

// add parks the block and returns the blocks evicted to make room for it.
func (p *parkedPool) add(fb *model.FullBlock, side bool, now time.Time) []*parkedBlock {
	hash := fb.Block.Hash
	if pb, ok := p.blocks[hash]; ok {
		pb.side = pb.side || side
		return nil
	}

	var evicted []*parkedBlock
	for len(p.blocks) >= p.capacity {
		oldest := p.oldest()
		p.remove(oldest.block.Block.Hash)
		evicted = append(evicted, oldest)
	}

	p.blocks[hash] = &parkedBlock{block: fb, parkedAt: now, side: side}
	kids, ok := p.children[fb.Block.Parent]
	if !ok {
		kids = make(map[string]struct{})
		p.children[fb.Block.Parent] = kids
	}
	kids[hash] = struct{}{}
	return evicted
}

func (p *parkedPool) remove(hash string) {
	pb, ok := p.blocks[hash]
	if !ok {
		return
	}
	delete(p.blocks, hash)
	parent := pb.block.Block.Parent
	if kids, ok := p.children[parent]; ok {
		delete(kids, hash)
		if len(kids) == 0 {
			delete(p.children, parent)
		}
	}
}

// pendingChild returns the preferred block extending parent that is still
// waiting for its ancestors, or nil. Blocks that already lost fork choice are
// skipped.
func (p *parkedPool) pendingChild(parent model.Block) *model.FullBlock {
	var best *model.FullBlock
	for hash := range p.children[parent.Hash] {
		pb := p.blocks[hash]
		fb := pb.block
		if pb.side || fb.Block.Height != parent.Height+1 {
			continue
		}
		if best == nil || prefers(fb.Block, best.Block) {
			best = fb
		}
	}
	return best
}

// expire removes and returns blocks parked for longer than the timeout.
func (p *parkedPool) expire(now time.Time) []*parkedBlock {
	var expired []*parkedBlock
	for _, pb := range p.blocks {
		if now.Sub(pb.parkedAt) >= p.timeout {
			expired = append(expired, pb)
		}
	}
	for _, pb := range expired {
		p.remove(pb.block.Block.Hash)
	}
	return expired
}

func (p *parkedPool) oldest() *parkedBlock {
	var oldest *parkedBlock
	for _, pb := range p.blocks {
		if oldest == nil || pb.parkedAt.Before(oldest.parkedAt) ||
			(pb.parkedAt.Equal(oldest.parkedAt) && pb.block.Block.Hash < oldest.block.Block.Hash) {
			oldest = pb
		}
	}
	return oldest
}

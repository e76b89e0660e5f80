package dag

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/latticedag/consensus/block"
	"github.com/latticedag/consensus/ids"
)

type stubVote struct{ label string }

func newTestDAG() *DAG[stubVote] { return New[stubVote](nil) }

func genesisID() ids.BlockID {
	var id ids.BlockID
	id[0] = 0xFE
	return id
}

func TestDAGAttachIsIdempotent(t *testing.T) {
	d := newTestDAG()
	genesis := d.Init(block.NewGenesis(genesisID()), stubVote{label: "genesis"})

	b := block.New([]ids.BlockID{genesis.Block().ID()}, ids.IssuerID{1}, nil)
	first := d.Attach(b)
	second := d.Attach(b)
	require.Same(t, first, second)

	got, ok := d.Get(b.ID())
	require.True(t, ok)
	require.Same(t, first, got)
}

func TestDAGBlockReadyOnlyAfterAllParentsProcessed(t *testing.T) {
	d := newTestDAG()
	genesis := d.Init(block.NewGenesis(genesisID()), stubVote{label: "genesis"})

	child := block.New([]ids.BlockID{genesis.Block().ID()}, ids.IssuerID{1}, nil)

	var readyCount atomic.Int64
	d.OnBlockReady(func(g *ResourceGuard[stubVote]) {
		readyCount.Add(1)
		g.Release()
	})

	d.Attach(child)
	require.Equal(t, int64(1), readyCount.Load(), "genesis already processed, child should become ready immediately")
}

func TestDAGBlockWithMissingParentStaysPending(t *testing.T) {
	d := newTestDAG()

	var unresolved ids.BlockID
	unresolved[0] = 0xAB

	orphan := block.New([]ids.BlockID{unresolved}, ids.IssuerID{2}, nil)

	var readyCount atomic.Int64
	d.OnBlockReady(func(g *ResourceGuard[stubVote]) {
		readyCount.Add(1)
		g.Release()
	})

	d.Attach(orphan)
	require.Equal(t, int64(0), readyCount.Load())

	// Once the missing parent shows up (as genesis-equivalent, processed
	// immediately), the orphan becomes ready.
	d.Init(block.NewGenesis(unresolved), stubVote{label: "late-genesis"})
	require.Equal(t, int64(1), readyCount.Load())
}

func TestDAGReadyFiresExactlyOncePerBlockUnderConcurrency(t *testing.T) {
	d := newTestDAG()
	genesis := d.Init(block.NewGenesis(genesisID()), stubVote{label: "genesis"})

	const fanout = 64
	var readyCount atomic.Int64
	d.OnBlockReady(func(g *ResourceGuard[stubVote]) {
		readyCount.Add(1)
		g.Release()
	})

	blocks := make([]*block.Block, fanout)
	for i := 0; i < fanout; i++ {
		blocks[i] = block.New([]ids.BlockID{genesis.Block().ID()}, ids.IssuerID{byte(i)}, nil)
	}

	var g errgroup.Group
	for _, b := range blocks {
		b := b
		g.Go(func() error {
			d.Attach(b)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, int64(fanout), readyCount.Load())
}

func TestResourceGuardReleaseIsIdempotent(t *testing.T) {
	d := newTestDAG()
	genesis := d.Init(block.NewGenesis(genesisID()), stubVote{label: "genesis"})

	var processedCount atomic.Int64
	d.OnBlockReady(func(g *ResourceGuard[stubVote]) {
		g.Metadata().OnProcessed(func(*struct{}) { processedCount.Add(1) })
		g.Release()
		g.Release()
	})

	child := block.New([]ids.BlockID{genesis.Block().ID()}, ids.IssuerID{9}, nil)
	d.Attach(child)

	require.Equal(t, int64(1), processedCount.Load())
}

// Package dag implements the block DAG readiness protocol of §4.3: blocks
// are attached by ID, a block becomes "ready" once every parent has been
// attached and processed, and readiness fires once through a ResourceGuard
// whose Release marks the block itself processed in turn.
package dag

import (
	"sync"
	"weak"

	"github.com/luxfi/log"

	"github.com/latticedag/consensus/block"
	"github.com/latticedag/consensus/ids"
	"github.com/latticedag/consensus/reactive"
)

// AcceptanceState records the position the consensus driver assigned a block
// once it accepted it: which chain, at which milestone height, and at what
// position in that milestone's reverse-BFS past-cone order. It lives on
// BlockMetadata as a one-shot Signal (§4.5): a block is accepted at most
// once, so the Signal being set is itself the "is this block accepted"
// fact — no separate boolean is needed.
type AcceptanceState struct {
	ChainID    uint64
	Height     uint64
	RoundIndex uint64
}

// BlockMetadata is the DAG's bookkeeping wrapper around a Block: its parents
// resolved to weak references, a lazily-populated vote of type V, and the
// one-shot processed/accepted signals of §4.3/§4.5. V is generic so that this
// package has no dependency on the votes package that builds V.
type BlockMetadata[V any] struct {
	block *block.Block

	parentsMu sync.Mutex
	parents   []weak.Pointer[BlockMetadata[V]]

	vote      *reactive.Signal[V]
	processed *reactive.Signal[struct{}]
	accepted  *reactive.Signal[AcceptanceState]
	buildErr  *reactive.Variable[error]

	extMu sync.Mutex
	ext   map[string]any
}

func newBlockMetadata[V any](b *block.Block) *BlockMetadata[V] {
	return &BlockMetadata[V]{
		block:     b,
		parents:   make([]weak.Pointer[BlockMetadata[V]], len(b.Parents())),
		vote:      reactive.NewSignal[V](),
		processed: reactive.NewSignal[struct{}](),
		accepted:  reactive.NewSignal[AcceptanceState](),
		buildErr:  reactive.NewVariable[error](),
	}
}

// Block returns the underlying block.
func (m *BlockMetadata[V]) Block() *block.Block { return m.block }

// Vote returns the block's vote and whether it has been built yet.
func (m *BlockMetadata[V]) Vote() (V, bool) { return m.vote.Get() }

// SetVote publishes the block's vote, notifying anyone waiting on it.
func (m *BlockMetadata[V]) SetVote(v V) { m.vote.Set(v) }

// OnVote registers cb to run once the vote is available (immediately if it
// already is).
func (m *BlockMetadata[V]) OnVote(cb func(*V)) *reactive.Subscription { return m.vote.Subscribe(cb) }

// BuildError is a reactive.Variable carrying the most recent vote-construction
// error for this block, if any (§7: errors are recorded, never halt the DAG).
func (m *BlockMetadata[V]) BuildError() *reactive.Variable[error] { return m.buildErr }

// OnProcessed registers cb to run once this block has been marked processed
// (immediately if it already has been).
func (m *BlockMetadata[V]) OnProcessed(cb func(*struct{})) *reactive.Subscription {
	return m.processed.Subscribe(cb)
}

// Accepted returns the block's acceptance state and whether it has been set.
func (m *BlockMetadata[V]) Accepted() (AcceptanceState, bool) { return m.accepted.Get() }

// SetAccepted publishes the block's acceptance state. A block is accepted at
// most once; subsequent calls are no-ops.
func (m *BlockMetadata[V]) SetAccepted(s AcceptanceState) { m.accepted.Set(s) }

// OnAccepted registers cb to run once the block is accepted.
func (m *BlockMetadata[V]) OnAccepted(cb func(*AcceptanceState)) *reactive.Subscription {
	return m.accepted.Subscribe(cb)
}

// Parent returns the weak reference stored at the given positional parent
// index, or the zero weak.Pointer if it has not resolved yet.
func (m *BlockMetadata[V]) Parent(index int) weak.Pointer[BlockMetadata[V]] {
	m.parentsMu.Lock()
	defer m.parentsMu.Unlock()
	return m.parents[index]
}

func (m *BlockMetadata[V]) registerParent(index int, parent weak.Pointer[BlockMetadata[V]]) {
	m.parentsMu.Lock()
	defer m.parentsMu.Unlock()
	m.parents[index] = parent
}

func (m *BlockMetadata[V]) markProcessed() { m.processed.Set(struct{}{}) }

// SetExtension stores an arbitrary keyed value on the block's metadata, for
// small per-subsystem annotations that should not widen BlockMetadata itself.
func (m *BlockMetadata[V]) SetExtension(key string, value any) {
	m.extMu.Lock()
	defer m.extMu.Unlock()
	if m.ext == nil {
		m.ext = make(map[string]any)
	}
	m.ext[key] = value
}

// Extension retrieves a value stored with SetExtension.
func (m *BlockMetadata[V]) Extension(key string) (any, bool) {
	m.extMu.Lock()
	defer m.extMu.Unlock()
	v, ok := m.ext[key]
	return v, ok
}

// ResourceGuard is handed to DAG.OnBlockReady subscribers. The callback must
// call Release exactly once (typically via defer) when it is done consuming
// the block; Release is what marks the block processed, which in turn lets
// its children become ready. This is the Go idiom standing in for the
// original's RAII Drop-triggered mark_processed: Go has no destructors, so
// release is explicit rather than implicit.
type ResourceGuard[V any] struct {
	metadata *BlockMetadata[V]
	once     sync.Once
}

// Metadata returns the ready block's metadata.
func (g *ResourceGuard[V]) Metadata() *BlockMetadata[V] { return g.metadata }

// Release marks the block processed. Safe to call more than once; only the
// first call has effect.
func (g *ResourceGuard[V]) Release() {
	g.once.Do(func() { g.metadata.markProcessed() })
}

// address is a single block ID's slot: a Signal that is fulfilled once the
// block is attached, shared by every caller racing to attach or look up the
// same ID.
type address[V any] struct {
	data *reactive.Signal[*BlockMetadata[V]]
}

func newAddress[V any]() *address[V] { return &address[V]{data: reactive.NewSignal[*BlockMetadata[V]]()} }

func (a *address[V]) publish(b *block.Block) *BlockMetadata[V] {
	return a.data.GetOrInsertWith(func() *BlockMetadata[V] { return newBlockMetadata[V](b) })
}

func (a *address[V]) onAvailable(cb func(*BlockMetadata[V])) *reactive.Subscription {
	return a.data.Subscribe(func(m **BlockMetadata[V]) { cb(*m) })
}

// DAG is the block DAG readiness protocol of §4.3, generic over the vote
// type V a downstream package (e.g. votes) attaches to each block.
type DAG[V any] struct {
	mu         sync.Mutex
	addresses  map[ids.BlockID]*address[V]
	readyEvent *reactive.Event[*ResourceGuard[V]]
	genesis    *reactive.Variable[*BlockMetadata[V]]
	log        log.Logger
}

// New creates an empty DAG. A nil logger defaults to a no-op logger.
func New[V any](logger log.Logger) *DAG[V] {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &DAG[V]{
		addresses:  make(map[ids.BlockID]*address[V]),
		readyEvent: reactive.NewEvent[*ResourceGuard[V]](),
		genesis:    reactive.NewVariable[*BlockMetadata[V]](),
		log:        logger,
	}
}

// Init attaches the genesis block, assigns its vote, and marks it processed
// immediately (§4.3: genesis is bootstrapped, not derived through the normal
// readiness protocol, since it has no parents to wait on).
func (d *DAG[V]) Init(genesis *block.Block, vote V) *BlockMetadata[V] {
	metadata := d.Attach(genesis)
	metadata.SetVote(vote)
	metadata.markProcessed()
	d.genesis.Set(metadata)
	d.log.Info("genesis initialized", "block", genesis.ID())
	return metadata
}

// Genesis returns the genesis block's metadata, once Init has run.
func (d *DAG[V]) Genesis() (*BlockMetadata[V], bool) { return d.genesis.Get() }

// Attach registers block under its own ID, returning its metadata. Attaching
// the same ID twice returns the same metadata both times.
func (d *DAG[V]) Attach(b *block.Block) *BlockMetadata[V] {
	return d.address(b.ID()).publish(b)
}

// Get returns a previously attached block's metadata.
func (d *DAG[V]) Get(id ids.BlockID) (*BlockMetadata[V], bool) {
	d.mu.Lock()
	a, ok := d.addresses[id]
	d.mu.Unlock()
	if !ok {
		return nil, false
	}
	return a.data.Get()
}

// OnBlockReady registers cb to fire once for every block once all of its
// parents have been attached and marked processed. cb must call the guard's
// Release when it is done with the block.
func (d *DAG[V]) OnBlockReady(cb func(*ResourceGuard[V])) *reactive.Subscription {
	return d.readyEvent.Subscribe(func(g **ResourceGuard[V]) { cb(*g) })
}

func (d *DAG[V]) address(id ids.BlockID) *address[V] {
	d.mu.Lock()
	a, ok := d.addresses[id]
	isNew := !ok
	if isNew {
		a = newAddress[V]()
		d.addresses[id] = a
	}
	d.mu.Unlock()

	if isNew {
		d.monitorAddress(a)
	}
	return a
}

func (d *DAG[V]) monitorAddress(addr *address[V]) {
	addr.onAvailable(func(b *BlockMetadata[V]) {
		// Genesis is marked processed by Init, never through readiness.
		if b.Block().Kind() == block.Genesis {
			return
		}
		d.onAllParentsProcessed(b, func() {
			guard := &ResourceGuard[V]{metadata: b}
			d.readyEvent.Trigger(&guard)
		})
	}).Forever()
}

func (d *DAG[V]) onAllParentsProcessed(metadata *BlockMetadata[V], callback func()) {
	parents := metadata.Block().Parents()
	pending := reactive.NewCountdown(len(parents))
	pending.Subscribe(func(*struct{}) { callback() }).Forever()

	for index, parentID := range parents {
		index := index
		metadata := metadata
		d.address(parentID).onAvailable(func(parent *BlockMetadata[V]) {
			metadata.registerParent(index, weak.Make(parent))
			parent.OnProcessed(func(*struct{}) { pending.Decrease() }).Forever()
		}).Forever()
	}
}

package votes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedag/consensus/block"
	"github.com/latticedag/consensus/committee"
	"github.com/latticedag/consensus/config"
	"github.com/latticedag/consensus/ids"
)

func pipelineCommittee(n int) (*committee.Committee, []ids.IssuerID) {
	members := make([]committee.Member, n)
	memberIDs := make([]ids.IssuerID, n)
	for i := 0; i < n; i++ {
		var id ids.IssuerID
		id[0] = byte(i + 1)
		memberIDs[i] = id
		members[i] = committee.Member{ID: id, Weight: 1, Online: true}
	}
	return committee.New(members), memberIDs
}

func pipelineConfig(c *committee.Committee) *config.Config {
	return &config.Config{
		GenesisTimeValue:  0,
		OfflineThresholdV: 10,
		Committee:         config.FixedCommittee(c),
		Leader:            config.RoundRobinLeader(),
		Slot:              config.StaticSlotDuration(10),
	}
}

func TestAttachBuilderBuildsVoteOnceBlockIsReady(t *testing.T) {
	require := require.New(t)

	comm, memberIDs := pipelineCommittee(4)
	cfg := pipelineConfig(comm)

	d := NewDAG(nil)

	var genesisID ids.BlockID
	genesisID[0] = 0xFE
	genesisMeta := d.Init(block.NewGenesis(genesisID), BuildGenesis(cfg))

	var clock uint64
	timeSource := func(*block.Block) uint64 {
		clock++
		return clock
	}

	AttachBuilder(d, cfg, timeSource, nil)

	child := block.New([]ids.BlockID{genesisMeta.Block().ID()}, memberIDs[0], nil)
	childMeta := d.Attach(child)

	v, ok := childMeta.Vote()
	require.True(ok, "vote must be built as soon as the block's only parent (genesis) is processed")
	require.Equal(uint64(1), v.Time())

	_, hasErr := childMeta.BuildError().Get()
	require.False(hasErr)
}

func TestAttachBuilderRecordsBuildErrorOnTimeRegression(t *testing.T) {
	require := require.New(t)

	comm, memberIDs := pipelineCommittee(4)
	cfg := pipelineConfig(comm)

	d := NewDAG(nil)

	var genesisID ids.BlockID
	genesisID[0] = 0xFE
	genesisMeta := d.Init(block.NewGenesis(genesisID), BuildGenesis(cfg))

	// A time source that always returns a value older than genesis's time
	// forces Build to reject every block with ErrTimeMustIncrease is not
	// quite right here since genesis time is 0; instead simulate a second
	// block referencing a first block whose vote already advanced time,
	// by making the clock go backward after the first call.
	calls := 0
	timeSource := func(*block.Block) uint64 {
		calls++
		if calls == 1 {
			return 5
		}
		return 1
	}

	AttachBuilder(d, cfg, timeSource, nil)

	first := block.New([]ids.BlockID{genesisMeta.Block().ID()}, memberIDs[0], nil)
	firstMeta := d.Attach(first)
	_, ok := firstMeta.Vote()
	require.True(ok)

	second := block.New([]ids.BlockID{first.ID()}, memberIDs[1], nil)
	secondMeta := d.Attach(second)

	_, voteOK := secondMeta.Vote()
	require.False(voteOK, "a block whose vote construction fails must never publish a vote")

	buildErr, ok := secondMeta.BuildError().Get()
	require.True(ok)
	require.ErrorIs(buildErr, ErrTimeMustIncrease)
}

func TestResolveReturnsBlockNotFoundForUnattachedID(t *testing.T) {
	require := require.New(t)

	comm, _ := pipelineCommittee(1)

	d := NewDAG(nil)

	var genesisID ids.BlockID
	genesisID[0] = 0xFE
	genesisMeta := d.Init(block.NewGenesis(genesisID), BuildGenesis(pipelineConfig(comm)))

	found, err := Resolve(d, genesisID)
	require.NoError(err)
	require.Same(genesisMeta, found)

	var unknownID ids.BlockID
	unknownID[0] = 0xAA
	_, err = Resolve(d, unknownID)
	require.ErrorIs(err, ErrBlockNotFound)
}

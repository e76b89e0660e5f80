package consensusdriver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedag/consensus/committee"
	"github.com/latticedag/consensus/config"
	"github.com/latticedag/consensus/ids"
	"github.com/latticedag/consensus/votes"
)

func testCommittee(n int) (*committee.Committee, []ids.IssuerID) {
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

func testConfig(c *committee.Committee) *config.Config {
	return &config.Config{
		GenesisTimeValue:  0,
		OfflineThresholdV: 10,
		Committee:         config.FixedCommittee(c),
		Leader:            config.RoundRobinLeader(),
		Slot:              config.StaticSlotDuration(10),
	}
}

func TestObserveVoteOnGenesisPopulatesHeaviestMilestone(t *testing.T) {
	require := require.New(t)

	comm, _ := testCommittee(4)
	cfg := testConfig(comm)
	genesis := votes.BuildGenesis(cfg)

	d := New(nil, nil, nil)

	// Genesis itself carries a milestone, so observing it must populate
	// HeaviestMilestone.
	d.ObserveVote(genesis)
	hv, ok := d.HeaviestMilestone.Get()
	require.True(ok)
	require.Same(genesis, hv)
}

func TestObserveVoteAdvancesHeaviestMilestoneAndCommittee(t *testing.T) {
	require := require.New(t)

	comm, memberIDs := testCommittee(4)
	cfg := testConfig(comm)
	genesis := votes.BuildGenesis(cfg)

	d := New(nil, nil, nil)
	d.ObserveVote(genesis)

	parentVotes := votes.NewVoteSet(genesis)
	v1, err := votes.Build(nil, memberIDs[0], 1, parentVotes, cfg)
	require.NoError(err)

	d.ObserveVote(v1)

	hv, ok := d.HeaviestMilestone.Get()
	require.True(ok)
	require.Same(v1, hv)

	c, ok := d.Committee.Get()
	require.True(ok)
	require.Equal(v1.Committee().Commitment(), c.Commitment())
}

func TestObserveVoteFirstAcceptedMilestoneSkipsPastConeExpansion(t *testing.T) {
	require := require.New(t)

	comm, _ := testCommittee(4)
	cfg := testConfig(comm)
	genesis := votes.BuildGenesis(cfg)

	d := New(nil, nil, nil)

	var fired bool
	d.AcceptedBlocksEvent.Subscribe(func(**AcceptedBlocks) { fired = true }).Forever()

	d.ObserveVote(genesis)

	am, ok := d.LatestAcceptedMilestone.Get()
	require.True(ok)
	require.Same(genesis, am)
	require.False(fired, "the first accepted milestone must not expand a past cone (§4.5 quirk)")
}

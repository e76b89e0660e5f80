package votes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedag/consensus/committee"
	"github.com/latticedag/consensus/config"
	"github.com/latticedag/consensus/ids"
)

// testCommittee builds the four-member, equally-weighted committee used by
// spec.md §8's end-to-end scenarios.
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

func TestBuildGenesisSelfReferentialMilestone(t *testing.T) {
	require := require.New(t)

	comm, memberIDs := testCommittee(4)
	cfg := testConfig(comm)

	g := BuildGenesis(cfg)
	require.True(g.Issuer().IsGenesis())
	require.Equal(uint64(0), g.Slot())
	require.Equal(uint64(0), g.Round())

	m, err := g.Milestone()
	require.NoError(err)
	require.Equal(uint64(0), m.Height)

	prev, err := g.PrevVote()
	require.NoError(err)
	require.Same(g, prev)

	accepted, err := g.AcceptedVote()
	require.NoError(err)
	require.Same(g, accepted)

	for _, id := range memberIDs {
		require.Contains(g.ReferencedIssuers(), id)
	}
}

func TestBuildSingleRoundAggregation(t *testing.T) {
	require := require.New(t)

	comm, memberIDs := testCommittee(4)
	cfg := testConfig(comm)
	genesis := BuildGenesis(cfg)

	v1, err := Build(nil, memberIDs[0], 1, NewVoteSet(genesis), cfg)
	require.NoError(err)
	require.Equal(uint64(1), v1.Time())

	// Genesis seeds every committee member as having already voted at round
	// 0 (§4.4's bootstrap), so the first real vote already observes the full
	// committee weight referencing round 0 and opens round 1 immediately.
	m, err := v1.Milestone()
	require.NoError(err)
	require.Equal(uint64(1), m.Height)
	require.Equal(uint64(1), v1.Round())
}

func TestBuildRejectsTimeRegression(t *testing.T) {
	require := require.New(t)

	comm, memberIDs := testCommittee(4)
	cfg := testConfig(comm)
	genesis := BuildGenesis(cfg)

	v1, err := Build(nil, memberIDs[0], 5, NewVoteSet(genesis), cfg)
	require.NoError(err)

	_, err = Build(nil, memberIDs[1], 1, NewVoteSet(v1), cfg)
	require.ErrorIs(err, ErrTimeMustIncrease)
}

func TestBuildRejectsEmptyParentVotes(t *testing.T) {
	require := require.New(t)

	comm, memberIDs := testCommittee(4)
	cfg := testConfig(comm)

	_, err := Build(nil, memberIDs[0], 1, NewVoteSet(), cfg)
	require.ErrorIs(err, ErrVotesMustNotBeEmpty)
}

func TestBuildChainOfVotesAdvancesMonotonically(t *testing.T) {
	require := require.New(t)

	comm, memberIDs := testCommittee(4)
	cfg := testConfig(comm)
	genesis := BuildGenesis(cfg)

	votes := NewVoteSet(genesis)
	var lastHeight uint64
	for i, id := range memberIDs {
		v, err := Build(nil, id, uint64(i+1), votes, cfg)
		require.NoError(err)
		votes.Add(v)

		m, err := v.Milestone()
		require.NoError(err)
		require.GreaterOrEqual(m.Height, lastHeight, "milestone height must never regress along the chain")
		lastHeight = m.Height
	}
}

func TestSlotComputedFromTimeViaOracle(t *testing.T) {
	require := require.New(t)

	comm, memberIDs := testCommittee(4)
	cfg := testConfig(comm)
	genesis := BuildGenesis(cfg)

	v, err := Build(nil, memberIDs[0], 25, NewVoteSet(genesis), cfg)
	require.NoError(err)
	require.Equal(cfg.SlotOf(25), v.Slot())
	require.NotEqual(genesis.Slot(), v.Slot())
}

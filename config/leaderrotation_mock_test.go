package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/latticedag/consensus/committee"
	"github.com/latticedag/consensus/config"
	"github.com/latticedag/consensus/config/configmock"
	"github.com/latticedag/consensus/ids"
)

func TestRoundRobinLeaderDispatchesAgainstMockedVoteView(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)

	var alice, bob ids.IssuerID
	alice[0], bob[0] = 0x01, 0x02
	comm := committee.New([]committee.Member{
		{ID: alice, Weight: 1, Online: true},
		{ID: bob, Weight: 1, Online: true},
	})

	cfg := &config.Config{Leader: config.RoundRobinLeader()}

	view := configmock.NewVoteView(ctrl)
	view.EXPECT().IssuerID().Return(bob, true)
	view.EXPECT().Committee().Return(comm)
	view.EXPECT().Round().Return(uint64(3))

	// bob is index 1; (1 + 3 - 1) % 2 == 1.
	require.Equal(uint64(1), cfg.LeaderWeight(view))
}

func TestRoundRobinLeaderReturnsZeroForUnknownIssuer(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)

	var alice, stranger ids.IssuerID
	alice[0], stranger[0] = 0x01, 0xFF
	comm := committee.New([]committee.Member{{ID: alice, Weight: 1, Online: true}})

	cfg := &config.Config{Leader: config.RoundRobinLeader()}

	view := configmock.NewVoteView(ctrl)
	view.EXPECT().IssuerID().Return(stranger, true)
	view.EXPECT().Committee().Return(comm)

	require.Equal(uint64(0), cfg.LeaderWeight(view))
}

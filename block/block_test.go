package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedag/consensus/ids"
)

func TestNewGenesisUsesConfiguredID(t *testing.T) {
	require := require.New(t)

	var id ids.BlockID
	id[0] = 0xFE

	g := NewGenesis(id)
	require.Equal(Genesis, g.Kind())
	require.Equal(id, g.ID())
	require.Empty(g.Parents())
	require.True(g.Issuer().Empty())
}

func TestNewDerivesContentAddressFromParentsAndIssuer(t *testing.T) {
	require := require.New(t)

	var parent ids.BlockID
	parent[0] = 1
	var issuer ids.IssuerID
	issuer[0] = 9

	a := New([]ids.BlockID{parent}, issuer, []byte("payload"))
	b := New([]ids.BlockID{parent}, issuer, []byte("different payload"))
	require.Equal(a.ID(), b.ID(), "payload must not affect the content address")
	require.Equal(Network, a.Kind())
	require.Equal([]byte("payload"), a.Payload())

	var otherIssuer ids.IssuerID
	otherIssuer[0] = 10
	c := New([]ids.BlockID{parent}, otherIssuer, nil)
	require.NotEqual(a.ID(), c.ID(), "issuer must affect the content address")

	var otherParent ids.BlockID
	otherParent[0] = 2
	d := New([]ids.BlockID{otherParent}, issuer, nil)
	require.NotEqual(a.ID(), d.ID(), "parent set must affect the content address")
}

func TestNewOrderOfParentsAffectsID(t *testing.T) {
	require := require.New(t)

	var p1, p2 ids.BlockID
	p1[0], p2[0] = 1, 2
	var issuer ids.IssuerID

	a := New([]ids.BlockID{p1, p2}, issuer, nil)
	b := New([]ids.BlockID{p2, p1}, issuer, nil)
	require.NotEqual(a.ID(), b.ID(), "positional parent order is part of the encoding")
}

func TestParentsAreCopiedOnConstruction(t *testing.T) {
	require := require.New(t)

	var p ids.BlockID
	p[0] = 1
	parents := []ids.BlockID{p}

	b := New(parents, ids.IssuerID{}, nil)
	parents[0][1] = 0xFF

	require.NotEqual(parents[0], b.Parents()[0], "mutating the caller's slice after New must not affect the block")
}

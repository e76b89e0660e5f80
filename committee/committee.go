// Package committee implements the immutable committee snapshot of §4.2: a
// fixed member set with a copy-on-write online/offline flag per member, BFT
// consensus thresholds, and a canonical commitment digest.
package committee

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/luxfi/crypto/hashing"
	"golang.org/x/exp/maps"

	"github.com/latticedag/consensus/ids"
)

// Member is one committee participant: a fixed identity and weight, plus an
// online flag that is the only thing a derived snapshot ever changes.
type Member struct {
	ID     ids.IssuerID
	Index  uint64
	Weight uint64
	Online bool
}

// Committee is an immutable snapshot of committee membership and online
// state. Deriving a new snapshot via SetOnline shares every Member untouched
// by the change; only the flipped member and the snapshot's own bookkeeping
// are reallocated.
type Committee struct {
	members      map[ids.IssuerID]*Member
	order        []ids.IssuerID // index order, fixed at construction
	totalWeight  uint64
	onlineWeight uint64
	commitment   [32]byte
}

// New builds a Committee from members, assigning each one's Index in the
// given order.
func New(members []Member) *Committee {
	byID := make(map[ids.IssuerID]*Member, len(members))
	order := make([]ids.IssuerID, len(members))
	var total, online uint64

	for i, m := range members {
		m.Index = uint64(i)
		stored := m
		byID[m.ID] = &stored
		order[i] = m.ID
		total += m.Weight
		if m.Online {
			online += m.Weight
		}
	}

	c := &Committee{members: byID, order: order, totalWeight: total, onlineWeight: online}
	c.commitment = computeCommitment(c)
	return c
}

// Commitment returns the canonical digest of the committee's membership and
// online weight (§6).
func (c *Committee) Commitment() [32]byte { return c.commitment }

// TotalWeight is the sum of every member's weight, online or not.
func (c *Committee) TotalWeight() uint64 { return c.totalWeight }

// OnlineWeight is the sum of weight of members currently marked online.
func (c *Committee) OnlineWeight() uint64 { return c.onlineWeight }

// Size is the number of members in the committee.
func (c *Committee) Size() int { return len(c.order) }

// Member looks up a member by ID.
func (c *Committee) Member(id ids.IssuerID) (Member, bool) {
	m, ok := c.members[id]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// MemberWeight returns the member's weight, or 0 if id is not a member.
func (c *Committee) MemberWeight(id ids.IssuerID) uint64 {
	if m, ok := c.members[id]; ok {
		return m.Weight
	}
	return 0
}

// IsMemberOnline reports whether id is a member currently marked online.
func (c *Committee) IsMemberOnline(id ids.IssuerID) bool {
	m, ok := c.members[id]
	return ok && m.Online
}

// Members returns every member, ordered by Index.
func (c *Committee) Members() []Member {
	out := make([]Member, len(c.order))
	for i, id := range c.order {
		out[i] = *c.members[id]
	}
	return out
}

// SetOnline derives a new Committee snapshot with id's online flag set to
// online. If id is not a member, or the flag is already what was requested,
// the receiver is returned unchanged (no allocation).
func (c *Committee) SetOnline(id ids.IssuerID, online bool) *Committee {
	member, ok := c.members[id]
	if !ok || member.Online == online {
		return c
	}

	newMembers := make(map[ids.IssuerID]*Member, len(c.members))
	for k, v := range c.members {
		newMembers[k] = v
	}
	updated := *member
	updated.Online = online
	newMembers[id] = &updated

	onlineWeight := c.onlineWeight
	if online {
		onlineWeight += member.Weight
	} else {
		onlineWeight -= member.Weight
	}

	nc := &Committee{
		members:      newMembers,
		order:        c.order,
		totalWeight:  c.totalWeight,
		onlineWeight: onlineWeight,
	}
	nc.commitment = computeCommitment(nc)
	return nc
}

// ConsensusThreshold returns the BFT weight threshold to use and whether
// crossing it counts as confirmation (true) rather than mere acceptance
// (false): the committee uses the confirmation threshold (2/3+ of total
// weight) whenever enough weight is online to ever reach it, and falls back
// to the acceptance threshold (2/3+ of online weight) otherwise.
func (c *Committee) ConsensusThreshold() (threshold uint64, doesConfirm bool) {
	confirmation := c.totalWeight - c.totalWeight/3
	acceptance := c.onlineWeight - c.onlineWeight/3

	if c.onlineWeight >= confirmation {
		return confirmation, true
	}
	return acceptance, false
}

// computeCommitment hashes the canonical serialization of c: members sorted
// by ID ascending (each as id || index || weight || online byte), followed
// by total weight and online weight, both as 8-byte big-endian integers.
func computeCommitment(c *Committee) [32]byte {
	sorted := maps.Keys(c.members)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	buf := make([]byte, 0, len(sorted)*49+16)
	var word [8]byte
	for _, id := range sorted {
		m := c.members[id]
		buf = append(buf, id[:]...)
		binary.BigEndian.PutUint64(word[:], m.Index)
		buf = append(buf, word[:]...)
		binary.BigEndian.PutUint64(word[:], m.Weight)
		buf = append(buf, word[:]...)
		if m.Online {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	binary.BigEndian.PutUint64(word[:], c.totalWeight)
	buf = append(buf, word[:]...)
	binary.BigEndian.PutUint64(word[:], c.onlineWeight)
	buf = append(buf, word[:]...)

	return hashing.ComputeHash256Array(buf)
}

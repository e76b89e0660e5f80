package consensusdriver

import "github.com/latticedag/consensus/votes"

// pastCone performs the BFS of §4.5 over self's parents, stopping at blocks
// already marked accepted, and returns the visited metadata in insertion
// (discovery) order. Ground on block_metadata_ext.rs's IndexSet-backed walk:
// self is visited first (if it qualifies), then every parent breadth-first.
func pastCone(self *votes.Metadata) ([]*votes.Metadata, error) {
	seen := make(map[*votes.Metadata]struct{})
	var order []*votes.Metadata

	visit := func(m *votes.Metadata) bool {
		if _, already := seen[m]; already {
			return false
		}
		if _, accepted := m.Accepted(); accepted {
			return false
		}
		seen[m] = struct{}{}
		order = append(order, m)
		return true
	}

	if !visit(self) {
		return nil, nil
	}

	queue := []*votes.Metadata{self}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		parentIDs := current.Block().Parents()
		for i := range parentIDs {
			ref := current.Parent(i)
			parent := ref.Value()
			if parent == nil {
				return nil, ErrBlockMetadataEvicted
			}
			if visit(parent) {
				queue = append(queue, parent)
			}
		}
	}

	return order, nil
}

// reversed returns a copy of m in reverse order, giving each block's
// "reverse BFS position" (§4.5): the deepest ancestors get the lowest
// round_index, the milestone block itself the highest.
func reversed(m []*votes.Metadata) []*votes.Metadata {
	out := make([]*votes.Metadata, len(m))
	for i, v := range m {
		out[len(m)-1-i] = v
	}
	return out
}

package votes

import (
	"github.com/luxfi/log"

	"github.com/latticedag/consensus/block"
	"github.com/latticedag/consensus/config"
	"github.com/latticedag/consensus/ids"
	"github.com/latticedag/consensus/reactive"
)

// Resolve dereferences a previously attached block's metadata by ID,
// returning ErrBlockNotFound if no block with that ID has ever been
// attached to d.
func Resolve(d *DAG, id ids.BlockID) (*Metadata, error) {
	m, ok := d.Get(id)
	if !ok {
		return nil, ErrBlockNotFound
	}
	return m, nil
}

// TimeSource supplies the issuing time an arriving block carries. The core
// treats a block's payload as opaque (§3) and its vote-building time as an
// external input alongside the block itself (§4.4: "given a block B with
// issuer I, time T"), so the surrounding collaborator that issues or
// receives blocks is responsible for recording and supplying it here.
type TimeSource func(*block.Block) uint64

// AttachBuilder subscribes to d's readiness pipeline and runs the vote
// builder for every block as it becomes ready (§4.3 lifecycle: "processed"
// fires once after parents are processed and the vote has been built). A
// block's ResourceGuard is released only once its vote has been set or its
// build error recorded, so children never see a parent processed without
// either outcome.
func AttachBuilder(d *DAG, cfg *config.Config, timeOf TimeSource, logger log.Logger) *reactive.Subscription {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}

	return d.OnBlockReady(func(guard *Guard) {
		defer guard.Release()

		metadata := guard.Metadata()
		b := metadata.Block()

		parentVotes := make(VoteSet)
		for _, parentID := range b.Parents() {
			// Readiness guarantees every parent has been attached and
			// processed by now; a miss here means the DAG's own invariant
			// broke, not an ordinary orphan.
			parentMetadata, err := Resolve(d, parentID)
			if err != nil {
				logger.Error("parent block not found for ready block", "block", b.ID(), "parent", parentID, "error", err)
				metadata.BuildError().Set(err)
				return
			}
			parentVote, ok := parentMetadata.Vote()
			if !ok {
				continue
			}
			parentVotes.Add(parentVote)
		}

		vote, err := Build(metadata, b.Issuer(), timeOf(b), parentVotes, cfg)
		if err != nil {
			logger.Error("vote build failed", "block", b.ID(), "error", err)
			metadata.BuildError().Set(err)
			return
		}

		logger.Debug("vote built", "block", b.ID(), "round", vote.Round())
		metadata.SetVote(vote)
	}).Forever()
}

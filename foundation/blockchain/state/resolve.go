package state

import (
	"github.com/minichain/minichain/foundation/blockchain/consensus"
	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/metrics"
)

// ProcessRemoteChain runs consensus resolution between the local chain
// and a candidate received from a peer, replacing the local chain
// wholesale when the candidate wins. A consensus.ErrBothChainsInvalid
// result is returned untouched so the caller can escalate it; the node
// must not continue from that state.
func (s *State) ProcessRemoteChain(candidate []database.Block) error {
	s.evHandler("state: ProcessRemoteChain: started: candidate len[%d]", len(candidate))
	defer s.evHandler("state: ProcessRemoteChain: completed")

	local := s.db.Chain()

	chosen, err := consensus.Resolve(s.db, local, candidate, s.evHandler)
	if err != nil {
		return err
	}

	// Keeping the local chain needs no further work.
	if chosen[len(chosen)-1].Hash == local[len(local)-1].Hash && len(chosen) == len(local) {
		return nil
	}

	// The chain is about to move; an in-flight mining operation would be
	// building on a stale tip, so stop it first.
	s.Worker.SignalCancelMining()

	if err := s.db.Replace(chosen); err != nil {
		return err
	}

	metrics.ChainsReplaced.Inc()
	s.evHandler("state: ProcessRemoteChain: chain replaced: height[%d] tip[%s]", len(chosen), chosen[len(chosen)-1].Hash)

	return nil
}

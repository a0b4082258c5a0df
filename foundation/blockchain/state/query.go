package state

import (
	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/peer"
)

// RetrieveNodeID returns this node's process-scoped identity.
func (s *State) RetrieveNodeID() string {
	return s.nodeID
}

// RetrieveGenesis returns the network settings the node runs with.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveChain returns a copy of the local chain.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Chain()
}

// RetrieveLatestBlock returns the current tip of the local chain.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveHeight returns the number of blocks in the local chain.
func (s *State) RetrieveHeight() int {
	return s.db.Height()
}

// RetrieveKnownPeers returns the peers this node currently knows about.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy("")
}

// AddKnownPeer records a peer reported by discovery. It reports whether
// the peer was new.
func (s *State) AddKnownPeer(p peer.Peer) bool {
	added := s.knownPeers.Add(p)
	if added {
		s.evHandler("state: AddKnownPeer: peer[%s]", p.ID)
	}
	return added
}

// RemoveKnownPeer drops a peer reported as expired by discovery.
func (s *State) RemoveKnownPeer(p peer.Peer) {
	s.knownPeers.Remove(p)
	s.evHandler("state: RemoveKnownPeer: peer[%s]", p.ID)
}

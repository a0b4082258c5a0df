// Package peer maintains the set of peers this node has seen on the
// gossip network. Membership is driven purely by discovery events; the
// node never probes for peers itself.
package peer

import (
	"sync"
)

// Peer represents a node seen on the network, identified by its
// transport level peer id.
type Peer struct {
	ID string
}

// New constructs a new peer value.
func New(id string) Peer {
	return Peer{
		ID: id,
	}
}

// Match validates if the specified id matches this peer.
func (p Peer) Match(id string) bool {
	return p.ID == id
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new set to manage peer membership.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new peer to the set. It reports whether the peer was not
// already present.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Remove removes a peer from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns a list of the known peers, excluding the peer with the
// specified id.
func (ps *PeerSet) Copy(id string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for peer := range ps.set {
		if !peer.Match(id) {
			peers = append(peers, peer)
		}
	}

	return peers
}

// Count returns the number of known peers.
func (ps *PeerSet) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Package state is the core API for the ledger node and implements all
// the business rules and processing. State exclusively owns the chain;
// every mutation flows through it from the event loop.
package state

import (
	"github.com/google/uuid"

	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events occur in
// the processing of blocks and chains.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented
// by any package providing support for mining and chain synchronization.
type Worker interface {
	Shutdown()
	SignalStartMining(payload string)
	SignalCancelMining()
	SignalRequestChain(receiver string)
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Genesis    genesis.Genesis
	KnownPeers *peer.PeerSet
	EvHandler  EventHandler
}

// State manages the blockchain node.
type State struct {
	nodeID     string
	genesis    genesis.Genesis
	knownPeers *peer.PeerSet
	db         *database.Database
	evHandler  EventHandler

	Worker Worker
}

// New constructs a new node state for chain management. The node id is
// freshly generated on every start and never persisted.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	state := State{
		nodeID:     uuid.NewString(),
		genesis:    cfg.Genesis,
		knownPeers: cfg.KnownPeers,
		db:         database.New(cfg.Genesis, ev),
		evHandler:  ev,
	}

	// The Worker is not set here. The call to worker.Run will assign
	// itself and start the event loop and mining goroutines.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop the event loop and any in-flight mining.
	s.Worker.Shutdown()

	return nil
}

package p2p

import (
	"encoding/json"
	"fmt"

	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/validate"
)

// The two message kinds peers exchange on the gossip topic. A request
// asks peers for their chain state; a response carries a full chain.
const (
	KindRequest  = "request"
	KindResponse = "response"
)

// Envelope is the minimum message shape carried on the gossip topic.
// Receiver, when set, addresses the message to a single peer; everyone
// else filters it out.
type Envelope struct {
	Kind     string           `json:"kind" validate:"required,oneof=request response"`
	Sender   string           `json:"sender" validate:"required"`
	Receiver string           `json:"receiver,omitempty"`
	Chain    []database.Block `json:"chain,omitempty"`
}

// decodeEnvelope unmarshals and validates a raw gossip message.
func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	if err := validate.Check(env); err != nil {
		return Envelope{}, fmt.Errorf("invalid envelope: %w", err)
	}

	return env, nil
}

// =============================================================================

// EventKind classifies the events the transport hands to the node's
// event loop.
type EventKind string

const (
	EventEnvelope    EventKind = "envelope"
	EventPeerSeen    EventKind = "peer-seen"
	EventPeerExpired EventKind = "peer-expired"
)

// Event represents one inbound network event: a decoded envelope or a
// peer membership change reported by discovery.
type Event struct {
	Kind     EventKind
	Peer     string
	Envelope Envelope
}

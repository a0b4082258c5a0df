package worker

import (
	"context"
	"errors"
	"time"

	"github.com/minichain/minichain/foundation/blockchain/consensus"
	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/peer"
	"github.com/minichain/minichain/foundation/metrics"
	"github.com/minichain/minichain/foundation/p2p"
)

// publishTimeout bounds one publish to the gossip topic so the loop is
// never stuck on the network.
const publishTimeout = 5 * time.Second

// eventLoop multiplexes the node's event sources. Exactly one event is
// drawn and handled completely per iteration; no two events are ever
// processed concurrently and only this goroutine mutates the chain.
func (w *Worker) eventLoop() {
	w.evHandler("worker: eventLoop: G started")
	defer w.evHandler("worker: eventLoop: G completed")

	operator := w.operator
	netEvents := w.net.Events()

	for {
		select {
		case line, ok := <-operator:
			if !ok {
				operator = nil
				continue
			}
			if w.operatorHandler != nil {
				w.operatorHandler(line)
			}

		case env := <-w.outbound:
			w.publishOutbound(env)

		case evt, ok := <-netEvents:
			if !ok {
				netEvents = nil
				continue
			}
			w.handleNetEvent(evt)

		case block := <-w.mined:
			w.handleMinedBlock(block)

		case <-w.shut:
			w.evHandler("worker: eventLoop: received shut signal")
			return
		}
	}
}

// =============================================================================

// publishOutbound emits one queued envelope on the broadcast channel.
// Delivery failures are logged and otherwise ignored; the transport
// owns any retry policy.
func (w *Worker) publishOutbound(env p2p.Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := w.net.Publish(ctx, env); err != nil {
		w.evHandler("worker: publishOutbound: kind[%s]: ERROR: %s", env.Kind, err)
	}
}

// handleNetEvent dispatches one inbound network event.
func (w *Worker) handleNetEvent(evt p2p.Event) {
	switch evt.Kind {
	case p2p.EventPeerSeen:
		w.state.AddKnownPeer(peer.New(evt.Peer))

	case p2p.EventPeerExpired:
		w.state.RemoveKnownPeer(peer.New(evt.Peer))

	case p2p.EventEnvelope:
		w.handleEnvelope(evt.Envelope)

	default:
		w.evHandler("worker: handleNetEvent: unhandled event: kind[%s] peer[%s]", evt.Kind, evt.Peer)
	}
}

// handleEnvelope processes a chain request or a chain response drawn
// from the gossip topic.
func (w *Worker) handleEnvelope(env p2p.Envelope) {
	switch env.Kind {
	case p2p.KindRequest:
		w.evHandler("worker: handleEnvelope: chain requested by peer[%s]", env.Sender)
		w.enqueueOutbound(p2p.Envelope{
			Kind:     p2p.KindResponse,
			Sender:   w.net.HostID(),
			Receiver: env.Sender,
			Chain:    w.state.RetrieveChain(),
		})

	case p2p.KindResponse:
		if err := w.state.ProcessRemoteChain(env.Chain); err != nil {
			if errors.Is(err, consensus.ErrBothChainsInvalid) {
				w.evHandler("worker: handleEnvelope: FATAL: %s", err)
				w.raiseFatal(err)
				return
			}
			w.evHandler("worker: handleEnvelope: remote chain from peer[%s] not applied: %s", env.Sender, err)
		}

	default:
		metrics.EnvelopesRejected.Inc()
		w.evHandler("worker: handleEnvelope: unknown kind[%s] from peer[%s]: ignored", env.Kind, env.Sender)
	}
}

// handleMinedBlock commits a mining result. The tip may have moved
// while the mining ran; a stale block fails validation and is dropped.
func (w *Worker) handleMinedBlock(block database.Block) {
	if err := w.state.WriteMinedBlock(block); err != nil {
		w.evHandler("worker: handleMinedBlock: blk[%d] rejected: %s", block.ID, err)
		return
	}

	// Share the new chain state with the network.
	w.enqueueOutbound(p2p.Envelope{
		Kind:   p2p.KindResponse,
		Sender: w.net.HostID(),
		Chain:  w.state.RetrieveChain(),
	})
}

// enqueueOutbound queues an envelope for the loop to drain to the
// broadcast channel. The queue is bounded; when it is full the envelope
// is dropped rather than blocking the caller.
func (w *Worker) enqueueOutbound(env p2p.Envelope) {
	select {
	case w.outbound <- env:
	default:
		w.evHandler("worker: enqueueOutbound: queue full, %s envelope dropped", env.Kind)
	}
}

// raiseFatal hands an unrecoverable condition to the supervisor. The
// loop keeps running until the supervisor reacts; repeated signals are
// collapsed.
func (w *Worker) raiseFatal(err error) {
	if w.fatal == nil {
		return
	}
	select {
	case w.fatal <- err:
	default:
	}
}

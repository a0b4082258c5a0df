// Package public maintains the group of handlers for public access to
// the node.
package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/minichain/minichain/foundation/blockchain/state"
	"github.com/minichain/minichain/foundation/events"
	"github.com/minichain/minichain/foundation/validate"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
	WS    websocket.Upgrader
}

// Status returns the node's identity and a summary of its chain.
func (h Handlers) Status(w http.ResponseWriter, r *http.Request) {
	tip := h.State.RetrieveLatestBlock()

	st := status{
		NodeID:          h.State.RetrieveNodeID(),
		Height:          h.State.RetrieveHeight(),
		LatestBlockHash: tip.Hash,
		KnownPeers:      len(h.State.RetrieveKnownPeers()),
	}

	respond(w, http.StatusOK, st)
}

// Chain returns the full local chain.
func (h Handlers) Chain(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.State.RetrieveChain())
}

// Peers returns the peers this node currently knows about.
func (h Handlers) Peers(w http.ResponseWriter, r *http.Request) {
	peers := h.State.RetrieveKnownPeers()

	ids := make([]string, len(peers))
	for i, p := range peers {
		ids[i] = p.ID
	}

	respond(w, http.StatusOK, ids)
}

// Mine stages new content and signals a mining operation for it. Mining
// is asynchronous; the block shows up on the chain once the proof of
// work completes and validates against the tip.
func (h Handlers) Mine(w http.ResponseWriter, r *http.Request) {
	var nb newBlock
	if err := json.NewDecoder(r.Body).Decode(&nb); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("unable to decode payload: %w", err))
		return
	}

	if err := validate.Check(nb); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	h.State.Worker.SignalStartMining(nb.Payload)

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	respond(w, http.StatusAccepted, resp)
}

// Events handles a web socket to provide node activity to a client.
func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Errorw("events", "ERROR", err)
		return
	}
	defer c.Close()

	id := uuid.NewString()
	ch := h.Evts.Acquire(id)
	defer h.Evts.Release(id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// =============================================================================

func respond(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, err error) {
	respond(w, statusCode, struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	})
}

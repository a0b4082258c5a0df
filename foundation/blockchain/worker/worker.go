// Package worker implements the synchronization event loop and the
// mining support for the node. The loop is the single writer of the
// chain: operator commands, queued outbound responses, inbound network
// events and mining completions are multiplexed onto one goroutine and
// handled one at a time.
package worker

import (
	"context"
	"sync"

	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/state"
	"github.com/minichain/minichain/foundation/p2p"
)

// maxOutbound bounds the queue of envelopes waiting for the loop to
// drain them to the broadcast channel.
const maxOutbound = 16

// Net represents the behavior required from the gossip transport: a
// stream of inbound events and the ability to publish envelopes.
type Net interface {
	Events() <-chan p2p.Event
	Publish(ctx context.Context, env p2p.Envelope) error
	HostID() string
}

// OperatorHandler is called with each line drawn from the operator
// input source. Parsing the line is the application's concern.
type OperatorHandler func(line string)

// =============================================================================

// Config represents the dependencies the worker multiplexes.
type Config struct {
	Net             Net
	Operator        <-chan string
	OperatorHandler OperatorHandler
	Fatal           chan<- error
	EvHandler       state.EventHandler
}

// Worker manages the event loop and the mining goroutine for the node.
type Worker struct {
	state           *state.State
	net             Net
	operator        <-chan string
	operatorHandler OperatorHandler
	fatal           chan<- error
	evHandler       state.EventHandler

	wg           sync.WaitGroup
	shut         chan struct{}
	startMining  chan string
	cancelMining chan bool
	mined        chan database.Block
	outbound     chan p2p.Envelope
}

// Run creates a worker, registers the worker with the state package, and
// starts the event loop and mining goroutines.
func Run(st *state.State, cfg Config) *Worker {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	w := Worker{
		state:           st,
		net:             cfg.Net,
		operator:        cfg.Operator,
		operatorHandler: cfg.OperatorHandler,
		fatal:           cfg.Fatal,
		evHandler:       ev,
		shut:            make(chan struct{}),
		startMining:     make(chan string, 1),
		cancelMining:    make(chan bool, 1),
		mined:           make(chan database.Block, 1),
		outbound:        make(chan p2p.Envelope, maxOutbound),
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Ask the network for the current chain state before anything else
	// so a restarted node catches up.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.eventLoop,
		w.miningOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining requests a mining operation for the specified
// payload. One request can be pending at a time; while the mining
// goroutine is busy, extra requests are dropped.
func (w *Worker) SignalStartMining(payload string) {
	select {
	case w.startMining <- payload:
		w.evHandler("worker: SignalStartMining: mining signaled: payload[%s]", payload)
	default:
		w.evHandler("worker: SignalStartMining: mining already pending, payload dropped: payload[%s]", payload)
	}
}

// SignalCancelMining signals the goroutine executing the mining
// operation to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// SignalRequestChain enqueues a chain request for broadcast. An empty
// receiver asks every peer; otherwise only the named peer answers.
func (w *Worker) SignalRequestChain(receiver string) {
	w.enqueueOutbound(p2p.Envelope{
		Kind:     p2p.KindRequest,
		Sender:   w.net.HostID(),
		Receiver: receiver,
	})
}

// =============================================================================

// Sync requests the current chain state from the network.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: requesting chain state from peers")
	w.SignalRequestChain("")
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/minichain/minichain/foundation/metrics"
)

// miningOperations waits for mining requests and executes them one at a
// time on this dedicated goroutine, so proof of work never starves the
// event loop.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case payload := <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation(payload)
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines one block and hands the result back to the
// event loop through the mined channel. The loop owns the chain; this
// goroutine never touches it.
func (w *Worker) runMiningOperation(payload string) {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// Drain any stale cancel signal before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
			metrics.MiningCancels.Inc()
		case <-w.shut:
		case <-ctx.Done():
		}
	}()

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		t := time.Now()
		block, err := w.state.MineNewBlock(ctx, payload)
		duration := time.Since(t)

		w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

		if err != nil {
			switch {
			case ctx.Err() != nil:
				w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
			}
			return
		}

		// Hand the candidate to the event loop for validation and append.
		select {
		case w.mined <- block:
		case <-w.shut:
		}
	}()

	// Wait for both G's to terminate.
	wg.Wait()
}

package state

import (
	"context"
	"time"

	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/metrics"
)

// MineNewBlock performs the proof of work on top of the current tip.
// This runs on the mining goroutine and does not mutate the chain; the
// mined candidate is handed back to the event loop, which commits it
// through WriteMinedBlock.
func (s *State) MineNewBlock(ctx context.Context, payload string) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: payload[%s]", payload)

	tip := s.db.LatestBlock()
	block, err := database.POW(ctx, tip, payload, time.Now().UTC().Unix(), s.genesis.DifficultyPrefix, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	// One more check in case cancellation raced the solution.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	return block, nil
}

// WriteMinedBlock validates a mined candidate against the current tip
// and appends it to the chain. The tip may have moved while the mining
// ran; a stale candidate fails validation and is not appended. Only the
// event loop calls this.
func (s *State) WriteMinedBlock(block database.Block) error {
	if err := s.db.Write(block); err != nil {
		return err
	}

	metrics.BlocksMined.Inc()
	s.evHandler("state: WriteMinedBlock: block appended: blk[%d] hash[%s]", block.ID, block.Hash)

	return nil
}

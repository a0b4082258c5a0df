package database

import (
	"context"
	"fmt"

	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// Block represents the unit of storage replicated between nodes. The
// stored hash must be reproducible from the remaining fields.
type Block struct {
	ID        uint64 `json:"id"`
	Hash      string `json:"hash"`
	PrevHash  string `json:"previous_hash"`
	Timestamp int64  `json:"timestamp"`
	Payload   string `json:"payload"`
	Nonce     uint64 `json:"nonce"`
}

// POW constructs the next block on top of the specified tip and performs
// the work of finding a nonce whose digest satisfies the difficulty
// prefix. The search is CPU bound and runs until a solution is found or
// ctx is canceled.
func POW(ctx context.Context, tip Block, payload string, timestamp int64, difficultyPrefix string, ev func(v string, args ...any)) (Block, error) {
	b := Block{
		ID:        tip.ID + 1,
		PrevHash:  tip.Hash,
		Timestamp: timestamp,
		Payload:   payload,
	}

	ev("database: POW: MINING: started: blk[%d]", b.ID)
	defer ev("database: POW: MINING: completed: blk[%d]", b.ID)

	// The nonce starts at zero and increments by one so identical inputs
	// always produce the identical block on every node.
	for nonce := uint64(0); ; nonce++ {
		if nonce != 0 && nonce%100_000 == 0 {
			ev("database: POW: MINING: attempts[%d]", nonce)
		}

		// Did the caller cancel the mining operation.
		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED: blk[%d]", b.ID)
			return Block{}, ctx.Err()
		}

		digest := signature.Hash(b.ID, b.Timestamp, b.PrevHash, b.Payload, nonce)
		if !signature.Solved(difficultyPrefix, digest) {
			continue
		}

		b.Nonce = nonce
		b.Hash = signature.HashHex(b.ID, b.Timestamp, b.PrevHash, b.Payload, nonce)

		ev("database: POW: MINING: SOLVED: blk[%d]: nonce[%d]: hash[%s]", b.ID, b.Nonce, b.Hash)
		return b, nil
	}
}

// ValidateBlock validates a candidate block against the block it claims
// to extend. The checks run in order and the first failure rejects the
// candidate; there is no partial acceptance.
func ValidateBlock(candidate Block, tip Block, difficultyPrefix string, ev func(v string, args ...any)) error {
	ev("database: ValidateBlock: validate: blk[%d]: check: previous hash matches tip", candidate.ID)

	if candidate.PrevHash != tip.Hash {
		return fmt.Errorf("previous hash doesn't match tip, got %s, exp %s", candidate.PrevHash, tip.Hash)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", candidate.ID)

	if !signature.IsHashSolved(difficultyPrefix, candidate.Hash) {
		return fmt.Errorf("%s invalid proof of work", candidate.Hash)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: block id is the next id", candidate.ID)

	if candidate.ID != tip.ID+1 {
		return fmt.Errorf("this block is not the next id, got %d, exp %d", candidate.ID, tip.ID+1)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: stored hash is reproducible", candidate.ID)

	hash := signature.HashHex(candidate.ID, candidate.Timestamp, candidate.PrevHash, candidate.Payload, candidate.Nonce)
	if hash != candidate.Hash {
		return fmt.Errorf("block hash doesn't match its fields, got %s, exp %s", candidate.Hash, hash)
	}

	return nil
}

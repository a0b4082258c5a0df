// Package database handles all the lower level support for maintaining
// the chain of blocks in memory. The chain is append-only; the single
// exception is a wholesale replacement when consensus resolution favors
// a remote chain. There is no persistence, the chain lives and dies
// with the process.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/minichain/minichain/foundation/blockchain/genesis"
)

// Database manages the in-memory chain of blocks.
type Database struct {
	mu               sync.RWMutex
	chain            []Block
	genesisBlock     Block
	difficultyPrefix string
	evHandler        func(v string, args ...any)
}

// New constructs a chain database seeded with the genesis block.
func New(gen genesis.Genesis, ev func(v string, args ...any)) *Database {
	genesisBlock := Block{
		ID:        genesis.BlockID,
		Hash:      genesis.Hash,
		PrevHash:  genesis.PrevHash,
		Timestamp: genesis.Timestamp,
		Payload:   genesis.Payload,
		Nonce:     genesis.Nonce,
	}

	db := Database{
		chain:            []Block{genesisBlock},
		genesisBlock:     genesisBlock,
		difficultyPrefix: gen.DifficultyPrefix,
		evHandler:        ev,
	}

	return &db
}

// Write validates the candidate block against the current tip and
// appends it to the chain.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tip := db.chain[len(db.chain)-1]
	if err := ValidateBlock(block, tip, db.difficultyPrefix, db.evHandler); err != nil {
		return err
	}

	db.chain = append(db.chain, block)
	return nil
}

// Replace swaps the whole chain for the specified one. The caller is
// expected to have run consensus resolution first, but the chain is
// still fully validated before it is accepted.
func (db *Database) Replace(chain []Block) error {
	if err := db.ValidateChain(chain); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.chain = append([]Block(nil), chain...)
	return nil
}

// ValidateChain validates an entire chain starting at the genesis
// block. An empty chain or a chain not rooted at this network's genesis
// block is rejected.
func (db *Database) ValidateChain(chain []Block) error {
	if len(chain) == 0 {
		return errors.New("empty chain")
	}

	if chain[0] != db.genesisBlock {
		return errors.New("chain doesn't start at the genesis block")
	}

	for i := 1; i < len(chain); i++ {
		if err := ValidateBlock(chain[i], chain[i-1], db.difficultyPrefix, db.evHandler); err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
	}

	return nil
}

// LatestBlock returns the current tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.chain[len(db.chain)-1]
}

// Chain returns a copy of the chain.
func (db *Database) Chain() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return append([]Block(nil), db.chain...)
}

// Height returns the number of blocks in the chain, genesis included.
func (db *Database) Height() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// GenesisBlock returns the fixed first block of the chain.
func (db *Database) GenesisBlock() Block {
	return db.genesisBlock
}

package database_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

const difficultyPrefix = "00"

func noopEv(v string, args ...any) {}

// mineOn solves a block on top of the specified tip for test setup.
func mineOn(t *testing.T, tip database.Block, payload string) database.Block {
	t.Helper()

	block, err := database.POW(context.Background(), tip, payload, time.Now().UTC().Unix(), difficultyPrefix, noopEv)
	if err != nil {
		t.Fatalf("Test setup:\tShould be able to mine a block: %s", err)
	}

	return block
}

func Test_MineAndWrite(t *testing.T) {
	db := database.New(genesis.New(difficultyPrefix), noopEv)

	tip := db.LatestBlock()
	if tip.ID != genesis.BlockID || tip.Hash != genesis.Hash {
		t.Fatal("Test mine:\tShould start with the genesis block as the tip.")
	}

	block := mineOn(t, tip, "new block data!")

	if block.ID != tip.ID+1 {
		t.Logf("Test mine:\tgot: %d", block.ID)
		t.Logf("Test mine:\texp: %d", tip.ID+1)
		t.Fatal("Test mine:\tShould mine the next block id.")
	}

	if block.PrevHash != tip.Hash {
		t.Fatal("Test mine:\tShould link the mined block to the tip.")
	}

	if !signature.IsHashSolved(difficultyPrefix, block.Hash) {
		t.Fatal("Test mine:\tShould mine a hash that satisfies the difficulty prefix.")
	}

	if err := db.Write(block); err != nil {
		t.Fatalf("Test mine:\tShould be able to write the mined block: %s", err)
	}

	if db.Height() != 2 {
		t.Logf("Test mine:\tgot: %d", db.Height())
		t.Logf("Test mine:\texp: %d", 2)
		t.Fatal("Test mine:\tShould have two blocks on the chain.")
	}
}

func Test_ValidateBlockFailures(t *testing.T) {
	db := database.New(genesis.New(difficultyPrefix), noopEv)
	tip := db.LatestBlock()
	good := mineOn(t, tip, "valid block")

	type table struct {
		name   string
		mutate func(b database.Block) database.Block
	}

	tt := []table{
		{
			name: "broken_link",
			mutate: func(b database.Block) database.Block {
				b.PrevHash = "not the tip hash"
				return b
			},
		},
		{
			name: "unsolved_hash",
			mutate: func(b database.Block) database.Block {
				b.Hash = strings.Repeat("ff", 32)
				return b
			},
		},
		{
			name: "wrong_id",
			mutate: func(b database.Block) database.Block {
				b.ID++
				return b
			},
		},
		{
			name: "tampered_payload",
			mutate: func(b database.Block) database.Block {
				b.Payload = "tampered"
				return b
			},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			bad := tst.mutate(good)
			if err := database.ValidateBlock(bad, tip, difficultyPrefix, noopEv); err == nil {
				t.Fatalf("Test %s:\tShould reject the mutated block.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}

	if err := database.ValidateBlock(good, tip, difficultyPrefix, noopEv); err != nil {
		t.Fatalf("Test valid:\tShould accept the untouched block: %s", err)
	}
}

func Test_ValidateChain(t *testing.T) {
	db := database.New(genesis.New(difficultyPrefix), noopEv)

	b1 := mineOn(t, db.LatestBlock(), "first")
	if err := db.Write(b1); err != nil {
		t.Fatalf("Test chain:\tShould be able to write block one: %s", err)
	}
	b2 := mineOn(t, db.LatestBlock(), "second")
	if err := db.Write(b2); err != nil {
		t.Fatalf("Test chain:\tShould be able to write block two: %s", err)
	}

	if err := db.ValidateChain(db.Chain()); err != nil {
		t.Fatalf("Test chain:\tShould validate its own chain: %s", err)
	}

	if err := db.ValidateChain(nil); err == nil {
		t.Fatal("Test chain:\tShould reject an empty chain.")
	}

	wrongGenesis := db.Chain()
	wrongGenesis[0].Payload = "not genesis"
	if err := db.ValidateChain(wrongGenesis); err == nil {
		t.Fatal("Test chain:\tShould reject a chain not rooted at the genesis block.")
	}

	tampered := db.Chain()
	tampered[1].Payload = "tampered"
	if err := db.ValidateChain(tampered); err == nil {
		t.Fatal("Test chain:\tShould reject a chain with a tampered block.")
	}
}

func Test_Replace(t *testing.T) {
	dbA := database.New(genesis.New(difficultyPrefix), noopEv)
	dbB := database.New(genesis.New(difficultyPrefix), noopEv)

	for _, payload := range []string{"one", "two"} {
		block := mineOn(t, dbB.LatestBlock(), payload)
		if err := dbB.Write(block); err != nil {
			t.Fatalf("Test replace:\tShould be able to build the other chain: %s", err)
		}
	}

	if err := dbA.Replace(dbB.Chain()); err != nil {
		t.Fatalf("Test replace:\tShould be able to replace with a valid chain: %s", err)
	}

	if dbA.Height() != dbB.Height() {
		t.Logf("Test replace:\tgot: %d", dbA.Height())
		t.Logf("Test replace:\texp: %d", dbB.Height())
		t.Fatal("Test replace:\tShould have adopted the full chain.")
	}

	bad := dbB.Chain()
	bad[1].Payload = "tampered"
	if err := dbA.Replace(bad); err == nil {
		t.Fatal("Test replace:\tShould reject an invalid replacement chain.")
	}
}

func Test_POWCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db := database.New(genesis.New(difficultyPrefix), noopEv)
	if _, err := database.POW(ctx, db.LatestBlock(), "never mined", time.Now().UTC().Unix(), difficultyPrefix, noopEv); err == nil {
		t.Fatal("Test cancel:\tShould stop mining when the context is canceled.")
	}
}

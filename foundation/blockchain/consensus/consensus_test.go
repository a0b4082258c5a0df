package consensus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minichain/minichain/foundation/blockchain/consensus"
	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/genesis"
)

const difficultyPrefix = "00"

func noopEv(v string, args ...any) {}

// buildChain mines the specified payloads onto a fresh chain and returns
// the resulting blocks.
func buildChain(t *testing.T, payloads ...string) []database.Block {
	t.Helper()

	db := database.New(genesis.New(difficultyPrefix), noopEv)
	for _, payload := range payloads {
		block, err := database.POW(context.Background(), db.LatestBlock(), payload, time.Now().UTC().Unix(), difficultyPrefix, noopEv)
		if err != nil {
			t.Fatalf("Test setup:\tShould be able to mine %q: %s", payload, err)
		}
		if err := db.Write(block); err != nil {
			t.Fatalf("Test setup:\tShould be able to write %q: %s", payload, err)
		}
	}

	return db.Chain()
}

func tamper(chain []database.Block) []database.Block {
	bad := append([]database.Block(nil), chain...)
	bad[len(bad)-1].Payload = "tampered"
	return bad
}

func Test_Resolve(t *testing.T) {
	validator := database.New(genesis.New(difficultyPrefix), noopEv)

	chainA := buildChain(t, "a1", "a2")
	chainB := buildChain(t, "b1", "b2")
	longerA := buildChain(t, "a1", "a2", "a3")

	type table struct {
		name   string
		local  []database.Block
		remote []database.Block
		exp    []database.Block
	}

	tt := []table{
		{name: "remote_longer", local: chainB, remote: longerA, exp: longerA},
		{name: "local_longer", local: longerA, remote: chainB, exp: longerA},
		{name: "tie_keeps_local_a", local: chainA, remote: chainB, exp: chainA},
		{name: "tie_keeps_local_b", local: chainB, remote: chainA, exp: chainB},
		{name: "remote_invalid", local: chainA, remote: tamper(longerA), exp: chainA},
		{name: "local_invalid", local: tamper(longerA), remote: chainB, exp: chainB},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			chosen, err := consensus.Resolve(validator, tst.local, tst.remote, noopEv)
			if err != nil {
				t.Fatalf("Test %s:\tShould resolve without error: %s", tst.name, err)
			}

			if len(chosen) != len(tst.exp) || chosen[len(chosen)-1].Hash != tst.exp[len(tst.exp)-1].Hash {
				t.Logf("Test %s:\tgot: len[%d] tip[%s]", tst.name, len(chosen), chosen[len(chosen)-1].Hash)
				t.Logf("Test %s:\texp: len[%d] tip[%s]", tst.name, len(tst.exp), tst.exp[len(tst.exp)-1].Hash)
				t.Fatalf("Test %s:\tShould choose the right chain.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_ResolveBothInvalid(t *testing.T) {
	validator := database.New(genesis.New(difficultyPrefix), noopEv)

	chainA := tamper(buildChain(t, "a1"))
	chainB := tamper(buildChain(t, "b1"))

	if _, err := consensus.Resolve(validator, chainA, chainB, noopEv); !errors.Is(err, consensus.ErrBothChainsInvalid) {
		t.Logf("Test both_invalid:\tgot: %v", err)
		t.Logf("Test both_invalid:\texp: %v", consensus.ErrBothChainsInvalid)
		t.Fatal("Test both_invalid:\tShould report that both chains are invalid.")
	}
}

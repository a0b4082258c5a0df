package state_test

import (
	"context"
	"testing"

	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/peer"
	"github.com/minichain/minichain/foundation/blockchain/state"
)

const difficultyPrefix = "00"

// stubWorker records the signals the state package raises so the tests
// can assert on them without running the real event loop.
type stubWorker struct {
	cancels  int
	mines    []string
	requests []string
}

func (w *stubWorker) Shutdown()                          {}
func (w *stubWorker) SignalStartMining(payload string)   { w.mines = append(w.mines, payload) }
func (w *stubWorker) SignalCancelMining()                { w.cancels++ }
func (w *stubWorker) SignalRequestChain(receiver string) { w.requests = append(w.requests, receiver) }

func newTestState(t *testing.T) (*state.State, *stubWorker) {
	t.Helper()

	st, err := state.New(state.Config{
		Genesis:    genesis.New(difficultyPrefix),
		KnownPeers: peer.NewPeerSet(),
	})
	if err != nil {
		t.Fatalf("Test setup:\tShould be able to construct state: %s", err)
	}

	w := stubWorker{}
	st.Worker = &w

	return st, &w
}

// growChain mines and commits the payloads in order.
func growChain(t *testing.T, st *state.State, payloads ...string) {
	t.Helper()

	for _, payload := range payloads {
		block, err := st.MineNewBlock(context.Background(), payload)
		if err != nil {
			t.Fatalf("Test setup:\tShould be able to mine %q: %s", payload, err)
		}
		if err := st.WriteMinedBlock(block); err != nil {
			t.Fatalf("Test setup:\tShould be able to commit %q: %s", payload, err)
		}
	}
}

func Test_MineAndCommit(t *testing.T) {
	st, _ := newTestState(t)

	block, err := st.MineNewBlock(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Test mine:\tShould be able to mine a block: %s", err)
	}

	// Mining alone must not touch the chain.
	if st.RetrieveHeight() != 1 {
		t.Logf("Test mine:\tgot: %d", st.RetrieveHeight())
		t.Logf("Test mine:\texp: %d", 1)
		t.Fatal("Test mine:\tShould not grow the chain before the commit.")
	}

	if err := st.WriteMinedBlock(block); err != nil {
		t.Fatalf("Test mine:\tShould be able to commit the mined block: %s", err)
	}

	if st.RetrieveHeight() != 2 {
		t.Logf("Test mine:\tgot: %d", st.RetrieveHeight())
		t.Logf("Test mine:\texp: %d", 2)
		t.Fatal("Test mine:\tShould have two blocks after the commit.")
	}

	if st.RetrieveLatestBlock().Hash != block.Hash {
		t.Fatal("Test mine:\tShould have the mined block as the tip.")
	}
}

func Test_StaleMinedBlock(t *testing.T) {
	st, _ := newTestState(t)

	// Two candidates mined on the same tip; only the first can land.
	first, err := st.MineNewBlock(context.Background(), "first")
	if err != nil {
		t.Fatalf("Test stale:\tShould be able to mine the first block: %s", err)
	}
	second, err := st.MineNewBlock(context.Background(), "second")
	if err != nil {
		t.Fatalf("Test stale:\tShould be able to mine the second block: %s", err)
	}

	if err := st.WriteMinedBlock(first); err != nil {
		t.Fatalf("Test stale:\tShould be able to commit the first block: %s", err)
	}

	if err := st.WriteMinedBlock(second); err == nil {
		t.Fatal("Test stale:\tShould reject a block mined on a stale tip.")
	}
}

func Test_ProcessRemoteChainReplace(t *testing.T) {
	local, w := newTestState(t)

	remote, _ := newTestState(t)
	growChain(t, remote, "r1", "r2")

	if err := local.ProcessRemoteChain(remote.RetrieveChain()); err != nil {
		t.Fatalf("Test replace:\tShould be able to process the remote chain: %s", err)
	}

	if local.RetrieveHeight() != 3 {
		t.Logf("Test replace:\tgot: %d", local.RetrieveHeight())
		t.Logf("Test replace:\texp: %d", 3)
		t.Fatal("Test replace:\tShould have adopted the longer remote chain.")
	}

	if w.cancels != 1 {
		t.Logf("Test replace:\tgot: %d", w.cancels)
		t.Logf("Test replace:\texp: %d", 1)
		t.Fatal("Test replace:\tShould cancel in-flight mining before replacing the chain.")
	}
}

func Test_ProcessRemoteChainTie(t *testing.T) {
	local, w := newTestState(t)
	growChain(t, local, "l1")
	tip := local.RetrieveLatestBlock()

	remote, _ := newTestState(t)
	growChain(t, remote, "r1")

	if err := local.ProcessRemoteChain(remote.RetrieveChain()); err != nil {
		t.Fatalf("Test tie:\tShould be able to process the remote chain: %s", err)
	}

	if local.RetrieveLatestBlock().Hash != tip.Hash {
		t.Fatal("Test tie:\tShould keep the local chain on a tie.")
	}

	if w.cancels != 0 {
		t.Logf("Test tie:\tgot: %d", w.cancels)
		t.Logf("Test tie:\texp: %d", 0)
		t.Fatal("Test tie:\tShould not cancel mining when the chain is kept.")
	}
}

func Test_KnownPeers(t *testing.T) {
	st, _ := newTestState(t)

	if !st.AddKnownPeer(peer.New("peer1")) {
		t.Fatal("Test peers:\tShould report a new peer as added.")
	}
	if st.AddKnownPeer(peer.New("peer1")) {
		t.Fatal("Test peers:\tShould not report a known peer as added.")
	}

	if len(st.RetrieveKnownPeers()) != 1 {
		t.Fatal("Test peers:\tShould know one peer.")
	}

	st.RemoveKnownPeer(peer.New("peer1"))
	if len(st.RetrieveKnownPeers()) != 0 {
		t.Fatal("Test peers:\tShould have forgotten the peer.")
	}
}

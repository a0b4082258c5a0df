package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/minichain/minichain/foundation/blockchain/state"
)

// handleOperatorCommand dispatches a single line of operator input read
// from stdin. Output meant for the operator goes straight to stdout so
// it isn't interleaved with structured log fields.
//
//	ls p                list the known peers
//	ls c                print the local chain as JSON
//	req c [peer]        request the chain from a peer, or from everyone
//	create b <payload>  mine a new block carrying the payload
func handleOperatorCommand(log *zap.SugaredLogger, st *state.State, line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}

	switch {
	case args[0] == "ls" && len(args) == 2 && args[1] == "p":
		peers := st.RetrieveKnownPeers()
		fmt.Printf("known peers: %d\n", len(peers))
		for _, p := range peers {
			fmt.Println(p.ID)
		}

	case args[0] == "ls" && len(args) == 2 && args[1] == "c":
		data, err := json.MarshalIndent(st.RetrieveChain(), "", "  ")
		if err != nil {
			log.Errorw("operator", "command", line, "ERROR", err)
			return
		}
		fmt.Println(string(data))

	case args[0] == "req" && len(args) >= 2 && args[1] == "c":
		var receiver string
		if len(args) == 3 {
			receiver = args[2]
		}
		st.Worker.SignalRequestChain(receiver)

	case args[0] == "create" && len(args) >= 3 && args[1] == "b":
		payload := strings.Join(args[2:], " ")
		st.Worker.SignalStartMining(payload)

	default:
		log.Errorw("operator", "ERROR", "unknown command", "command", line)
	}
}

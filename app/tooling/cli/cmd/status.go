package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

type status struct {
	NodeID          string `json:"node_id"`
	Height          int    `json:"height"`
	LatestBlockHash string `json:"latest_block_hash"`
	KnownPeers      int    `json:"known_peers"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the node's identity and chain summary.",
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	var st status
	resp, err := client().R().SetResult(&st).Get("/v1/node/status")
	if err != nil {
		log.Fatal(err)
	}
	if resp.IsError() {
		log.Fatalf("node returned %s: %s", resp.Status(), resp.String())
	}

	fmt.Println("Node ID:    ", st.NodeID)
	fmt.Println("Height:     ", st.Height)
	fmt.Println("Latest Hash:", st.LatestBlockHash)
	fmt.Println("Known Peers:", st.KnownPeers)
}

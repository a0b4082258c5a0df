package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Print the peers the node currently knows about.",
	Run:   peersRun,
}

func init() {
	rootCmd.AddCommand(peersCmd)
}

func peersRun(cmd *cobra.Command, args []string) {
	var peers []string
	resp, err := client().R().SetResult(&peers).Get("/v1/peers")
	if err != nil {
		log.Fatal(err)
	}
	if resp.IsError() {
		log.Fatalf("node returned %s: %s", resp.Status(), resp.String())
	}

	fmt.Println("known peers:", len(peers))
	for _, p := range peers {
		fmt.Println(p)
	}
}

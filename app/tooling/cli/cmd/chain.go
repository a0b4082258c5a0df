package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the node's full chain as JSON.",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func chainRun(cmd *cobra.Command, args []string) {
	resp, err := client().R().Get("/v1/chain")
	if err != nil {
		log.Fatal(err)
	}
	if resp.IsError() {
		log.Fatalf("node returned %s: %s", resp.Status(), resp.String())
	}

	var chain []json.RawMessage
	if err := json.Unmarshal(resp.Body(), &chain); err != nil {
		log.Fatal(err)
	}

	data, err := json.MarshalIndent(chain, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(data))
}

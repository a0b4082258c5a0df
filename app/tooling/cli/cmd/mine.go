package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine [payload]",
	Short: "Signal the node to mine a new block with the payload.",
	Args:  cobra.MinimumNArgs(1),
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) {
	body := struct {
		Payload string `json:"payload"`
	}{
		Payload: strings.Join(args, " "),
	}

	resp, err := client().R().SetBody(body).Post("/v1/mine")
	if err != nil {
		log.Fatal(err)
	}
	if resp.IsError() {
		log.Fatalf("node returned %s: %s", resp.Status(), resp.String())
	}

	fmt.Println(resp.String())
}

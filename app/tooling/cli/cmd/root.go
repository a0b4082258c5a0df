// Package cmd contains the node cli app.
package cmd

import (
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var nodeURL string

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "cli",
	Short: "Query and drive a running node",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// client constructs the REST client used by every subcommand.
func client() *resty.Client {
	return resty.New().
		SetBaseURL(nodeURL).
		SetTimeout(10 * time.Second)
}

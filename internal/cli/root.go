// Package cli wires the skipgraphd commands: a long-running overlay node and
// a one-shot search client.
package cli

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "skipgraphd",
	Short: "skip graph overlay node",
	Long:  "a distributed, order-preserving overlay supporting identifier search over a dynamic peer-to-peer network",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func setupLogging() {
	level := log15.LvlInfo
	if verbose {
		level = log15.LvlDebug
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(level, log15.StderrHandler))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

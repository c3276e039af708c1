package cli

import (
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"skipgraph/internal/model"
	"skipgraph/internal/node"
	"skipgraph/internal/quicnet"
	"skipgraph/internal/search"
)

var (
	searchTarget string
	searchVia    string
	searchReply  string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "resolve an identifier through an overlay node",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchTarget, "target", "", "identifier to resolve, hex encoded")
	searchCmd.Flags().StringVar(&searchVia, "via", "", "address of an overlay node to ask")
	searchCmd.Flags().StringVar(&searchReply, "reply-addr", "127.0.0.1:7947", "local address for the reply")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	setupLogging()
	if searchTarget == "" || searchVia == "" {
		return errors.New("both --target and --via are required")
	}
	target, err := model.IdentifierFromHex(searchTarget)
	if err != nil {
		return errors.Wrap(err, "parse --target")
	}
	via, err := model.ParseAddress(searchVia)
	if err != nil {
		return errors.Wrap(err, "parse --via")
	}
	replyAddr, err := model.ParseAddress(searchReply)
	if err != nil {
		return errors.Wrap(err, "parse --reply-addr")
	}

	identity, err := mintIdentity(replyAddr)
	if err != nil {
		return err
	}
	net := quicnet.New(replyAddr, nil)
	n := node.New(identity, net, node.Options{})
	if err := net.Start(); err != nil {
		return err
	}
	defer net.Stop()
	// a one-shot client is its own overlay of one; it never joins the
	// target overlay, it only relays a search through it
	if err := n.Join(model.Address{}); err != nil {
		return err
	}

	res, err := n.SearchVia(via, target)
	if err != nil {
		return err
	}
	switch res.Outcome {
	case search.OutcomeFound:
		color.Green("found %s", res.Termination.ID)
		color.White("  addr: %s", res.Termination.Addr)
	default:
		color.Yellow("not found, closest node %s", res.Termination.ID)
		color.White("  addr: %s", res.Termination.Addr)
		if res.ExceededHopLimit {
			color.Red("  hop limit exceeded")
		}
	}
	return nil
}

package cli

import (
	"crypto/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"skipgraph/internal/config"
	"skipgraph/internal/metrics"
	"skipgraph/internal/model"
	"skipgraph/internal/node"
	"skipgraph/internal/pprofutil"
	"skipgraph/internal/quicnet"
)

var (
	nodeListen     string
	nodeIntroducer string
	nodeConfigPath string
	nodePprof      bool
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "run an overlay node",
	Long:  "run a skip graph node, optionally joining an existing overlay through an introducer",
	RunE:  runNode,
}

func init() {
	nodeCmd.Flags().StringVar(&nodeListen, "listen", "", "listen address (host:port)")
	nodeCmd.Flags().StringVar(&nodeIntroducer, "introducer", "", "address of an existing overlay node")
	nodeCmd.Flags().StringVar(&nodeConfigPath, "config", "", "path to an ini config file")
	nodeCmd.Flags().BoolVar(&nodePprof, "pprof", false, "serve pprof on loopback")
	rootCmd.AddCommand(nodeCmd)
}

func loadNodeConfig() (config.Config, error) {
	cfg := config.Default()
	if nodeConfigPath != "" {
		loaded, err := config.Load(nodeConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if nodeListen != "" {
		addr, err := model.ParseAddress(nodeListen)
		if err != nil {
			return cfg, errors.Wrap(err, "parse --listen")
		}
		cfg.ListenAddr = addr
	}
	if nodeIntroducer != "" {
		addr, err := model.ParseAddress(nodeIntroducer)
		if err != nil {
			return cfg, errors.Wrap(err, "parse --introducer")
		}
		cfg.Introducer = addr
	}
	if verbose {
		cfg.Debug = true
	}
	if nodePprof {
		cfg.Pprof = true
	}
	return cfg, nil
}

// mintIdentity builds the node's identity for addr: a fresh membership
// vector, and an identifier derived from that vector and the address.
func mintIdentity(addr model.Address) (model.Identity, error) {
	mv, err := model.RandomMembershipVector(rand.Reader)
	if err != nil {
		return model.Identity{}, err
	}
	seed := append(mv.Bytes(), addr.String()...)
	return model.NewIdentity(model.HashIdentifier(seed), mv, addr), nil
}

func runNode(cmd *cobra.Command, args []string) error {
	setupLogging()
	cfg, err := loadNodeConfig()
	if err != nil {
		return err
	}
	pprofSrv, err := pprofutil.Start(pprofutil.Options{
		Enabled:     cfg.Pprof,
		Addr:        cfg.PprofAddr,
		AllowPublic: cfg.PprofAllowPublic,
		Logger:      log15.New("module", "pprof"),
	})
	if err != nil {
		return err
	}
	defer pprofSrv.Stop()

	identity, err := mintIdentity(cfg.ListenAddr)
	if err != nil {
		return err
	}
	logger := log15.New("module", "node", "id", identity.ID.String()[:8])

	net := quicnet.New(cfg.ListenAddr, log15.New("module", "quicnet"))
	m := metrics.New()
	n := node.New(identity, net, node.Options{
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
		Metrics: m,
	})
	if err := net.Start(); err != nil {
		return err
	}

	if err := n.Join(cfg.Introducer); err != nil {
		net.Stop()
		return errors.Wrap(err, "join overlay")
	}

	color.Green("node active")
	color.White("  id:     %s", identity.ID)
	color.White("  addr:   %s", identity.Addr)
	if !cfg.Introducer.IsZero() {
		color.White("  joined: %s", cfg.Introducer)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	if err := n.Leave(); err != nil {
		// the transport is going away regardless
		logger.Warn("leave failed", "err", err)
		return net.Stop()
	}
	return nil
}

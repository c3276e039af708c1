// Package pprofutil runs the daemon's optional profiling endpoint. It is
// driven by the node configuration rather than ambient environment state;
// binding beyond loopback must be requested explicitly.
package pprofutil

import (
	"net"
	"net/http"
	_ "net/http/pprof"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

const DefaultAddr = "127.0.0.1:6060"

type Options struct {
	Enabled     bool
	Addr        string
	AllowPublic bool
	Logger      log15.Logger
}

// Server is a running profiling endpoint. The zero value of *Server (nil)
// is a disabled endpoint; Addr and Stop are safe on it.
type Server struct {
	ln  net.Listener
	srv *http.Server
}

// Start brings up the pprof HTTP server described by opts. It returns nil
// when profiling is disabled.
func Start(opts Options) (*Server, error) {
	if !opts.Enabled {
		return nil, nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = log15.New("module", "pprof")
	}
	addr := opts.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	if !opts.AllowPublic && !isLoopbackBind(addr) {
		return nil, errors.Errorf("pprof address %s is not loopback; set pprof_allow_public to expose it", addr)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "pprof listen")
	}
	srv := &http.Server{
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go srv.Serve(ln)
	logger.Info("pprof enabled", "addr", ln.Addr().String())
	return &Server{ln: ln, srv: srv}, nil
}

// Addr reports the bound address, empty when disabled.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) Stop() error {
	if s == nil {
		return nil
	}
	return s.srv.Close()
}

func isLoopbackBind(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	host = strings.TrimSpace(host)
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

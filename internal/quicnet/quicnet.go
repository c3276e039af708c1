// Package quicnet implements the network contract over QUIC. Every message
// travels as one length-prefixed frame on its own stream; replies arrive as
// separate messages on separate streams, correlated by id at the node layer.
package quicnet

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	quic "github.com/quic-go/quic-go"

	"skipgraph/internal/model"
	"skipgraph/internal/network"
)

const dialTimeout = 5 * time.Second

// Network is a QUIC-backed transport bound to one listen address.
type Network struct {
	listenAddr model.Address
	log        log15.Logger

	mu         sync.RWMutex
	processors map[model.Address]network.Processor
	listener   *quic.Listener
	started    bool
}

var _ network.Network = (*Network)(nil)

func New(listenAddr model.Address, logger log15.Logger) *Network {
	if logger == nil {
		logger = log15.New("module", "quicnet")
	}
	return &Network{
		listenAddr: listenAddr,
		log:        logger,
		processors: make(map[model.Address]network.Processor),
	}
}

func (n *Network) RegisterProcessor(addr model.Address, p network.Processor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.processors[addr] = p
}

// Start begins listening and accepting inbound streams.
func (n *Network) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return errors.New("quic network already started")
	}
	tlsConf, err := serverTLSConfig()
	if err != nil {
		return errors.Wrap(err, "build server tls config")
	}
	listener, err := quic.ListenAddr(n.listenAddr.String(), tlsConf, nil)
	if err != nil {
		return errors.Wrapf(err, "quic listen on %s", n.listenAddr)
	}
	n.listener = listener
	n.started = true
	n.log.Info("quic listen ready", "addr", n.listenAddr)
	go n.acceptLoop(listener)
	return nil
}

// Stop closes the listener; accepted connections drain on their own.
func (n *Network) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.started {
		return nil
	}
	n.started = false
	return n.listener.Close()
}

// Send dials the target, writes one frame and closes the stream.
func (n *Network) Send(msg network.Message) error {
	tlsConf := clientTLSConfig()
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := quic.DialAddr(ctx, msg.Target.String(), tlsConf, nil)
	if err != nil {
		return network.NewTransportError(msg.Target, errors.Wrap(err, "dial"))
	}
	defer conn.CloseWithError(0, "")

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return network.NewTransportError(msg.Target, errors.Wrap(err, "open stream"))
	}
	if err := network.WriteFrame(stream, msg); err != nil {
		stream.Close()
		return network.NewTransportError(msg.Target, err)
	}
	if err := stream.Close(); err != nil {
		return network.NewTransportError(msg.Target, errors.Wrap(err, "close stream"))
	}
	return nil
}

func (n *Network) acceptLoop(listener *quic.Listener) {
	for {
		conn, err := listener.Accept(context.Background())
		if err != nil {
			n.mu.RLock()
			stopped := !n.started
			n.mu.RUnlock()
			if !stopped {
				n.log.Error("quic accept failed", "err", err)
			}
			return
		}
		go n.handleConn(conn)
	}
}

func (n *Network) handleConn(conn *quic.Conn) {
	for {
		stream, err := conn.AcceptStream(context.Background())
		if err != nil {
			return
		}
		go n.handleStream(stream)
	}
}

func (n *Network) handleStream(stream *quic.Stream) {
	defer stream.Close()
	msg, err := network.ReadFrame(stream)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			n.log.Warn("dropping undecodable frame", "err", err)
		}
		return
	}
	n.mu.RLock()
	p, ok := n.processors[msg.Target]
	n.mu.RUnlock()
	if !ok {
		n.log.Warn("dropping message for unregistered address", "target", msg.Target)
		return
	}
	if err := p.Process(msg); err != nil {
		n.log.Warn("inbound processing failed", "kind", msg.Payload.Kind(), "err", err)
	}
}

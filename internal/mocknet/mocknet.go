// Package mocknet implements the network contract with an in-process hub.
// It backs the test suite and single-process deployments: registered
// processors receive messages directly, with optional asynchrony, loss and
// latency.
package mocknet

import (
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"skipgraph/internal/model"
	"skipgraph/internal/network"
)

// Options configures a hub. The zero value is the deterministic mode:
// synchronous delivery on the caller, no loss, no latency.
type Options struct {
	// Async delivers every message on its own goroutine.
	Async bool

	// Latency delays each delivery. Only meaningful with Async.
	Latency time.Duration

	Logger log15.Logger
}

// Hub routes messages between locally registered processors, keyed by
// address. Handles are shared; all methods are safe for concurrent use.
type Hub struct {
	log     log15.Logger
	async   bool
	latency time.Duration

	mu         sync.RWMutex
	processors map[model.Address]network.Processor
	dropped    map[model.Address]bool
}

func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = log15.New("module", "mocknet")
	}
	return &Hub{
		log:        logger,
		async:      opts.Async,
		latency:    opts.Latency,
		processors: make(map[model.Address]network.Processor),
		dropped:    make(map[model.Address]bool),
	}
}

// Register binds a processor at addr, replacing any previous registration.
func (h *Hub) Register(addr model.Address, p network.Processor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processors[addr] = p
}

// Deregister removes the binding at addr.
func (h *Hub) Deregister(addr model.Address) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.processors, addr)
}

// Drop starts silently discarding messages addressed to addr, simulating
// loss. Sends still report success.
func (h *Hub) Drop(addr model.Address) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropped[addr] = true
}

// Restore undoes Drop.
func (h *Hub) Restore(addr model.Address) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.dropped, addr)
}

// Route delivers msg to the processor registered at its target. Unknown
// targets are a transport error; dropped targets swallow the message.
func (h *Hub) Route(msg network.Message) error {
	h.mu.RLock()
	p, ok := h.processors[msg.Target]
	isDropped := h.dropped[msg.Target]
	h.mu.RUnlock()

	if isDropped {
		h.log.Debug("dropping message", "target", msg.Target, "kind", msg.Payload.Kind())
		return nil
	}
	if !ok {
		return network.NewTransportError(msg.Target, errors.New("no processor registered"))
	}

	if !h.async {
		return h.deliver(p, msg)
	}
	go func() {
		if h.latency > 0 {
			time.Sleep(h.latency)
		}
		if err := h.deliver(p, msg); err != nil {
			h.log.Warn("async delivery failed", "target", msg.Target, "err", err)
		}
	}()
	return nil
}

func (h *Hub) deliver(p network.Processor, msg network.Message) error {
	if err := p.Process(msg); err != nil {
		return errors.Wrap(err, "process message")
	}
	return nil
}

// Network is one node's view of the hub, implementing the network contract.
type Network struct {
	hub  *Hub
	addr model.Address
}

var _ network.Network = (*Network)(nil)

// NewNetwork binds a network handle for addr on the hub.
func NewNetwork(hub *Hub, addr model.Address) *Network {
	return &Network{hub: hub, addr: addr}
}

func (n *Network) Send(msg network.Message) error {
	return n.hub.Route(msg)
}

func (n *Network) RegisterProcessor(addr model.Address, p network.Processor) {
	n.hub.Register(addr, p)
}

func (n *Network) Start() error { return nil }

func (n *Network) Stop() error {
	n.hub.Deregister(n.addr)
	return nil
}

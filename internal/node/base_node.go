package node

import (
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"skipgraph/internal/lookup"
	"skipgraph/internal/metrics"
	"skipgraph/internal/model"
	"skipgraph/internal/network"
	"skipgraph/internal/search"
)

// Options tunes a BaseNode. Zero values pick defaults.
type Options struct {
	Table   lookup.Table
	Timeout time.Duration
	Logger  log15.Logger
	Metrics *metrics.Metrics
}

// BaseNode is the primary Node implementation. A single RwLock guards the
// mutable fields (state, pending map); it is never held across a network
// send. The lookup table carries its own lock.
type BaseNode struct {
	identity model.Identity
	table    lookup.Table
	net      network.Network
	log      log15.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration

	mu      sync.RWMutex
	state   State
	pending map[network.MessageID]chan network.Payload
	cancel  chan struct{}
}

var (
	_ Node              = (*BaseNode)(nil)
	_ network.Processor = (*BaseNode)(nil)
)

// New builds a node in the created state and registers it as the inbound
// processor at its own address.
func New(identity model.Identity, net network.Network, opts Options) *BaseNode {
	table := opts.Table
	if table == nil {
		table = lookup.NewArrayTable(identity)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log15.New("module", "node", "id", identity.ID.String()[:8])
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	n := &BaseNode{
		identity: identity,
		table:    table,
		net:      net,
		log:      logger,
		metrics:  m,
		timeout:  timeout,
		state:    StateCreated,
		pending:  make(map[network.MessageID]chan network.Payload),
		cancel:   make(chan struct{}),
	}
	net.RegisterProcessor(identity.Addr, n)
	return n
}

func (n *BaseNode) Identity() model.Identity {
	return n.identity
}

func (n *BaseNode) LookupTable() lookup.Table {
	return n.table
}

func (n *BaseNode) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

func (n *BaseNode) setState(s State) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
}

// SearchByID resolves target starting from this node's own table.
func (n *BaseNode) SearchByID(target model.Identifier) (search.Result, error) {
	if st := n.State(); st != StateActive {
		return search.Result{}, errors.Wrapf(ErrInvalidState, "search on %s node", st)
	}
	n.metrics.IncSearchStarted()
	return n.searchStep(search.Request{Target: target, Level: lookup.Levels - 1})
}

// SearchVia resolves target by asking the node at addr to run the search.
// Join bootstrapping and one-shot clients use it before having any overlay
// state of their own.
func (n *BaseNode) SearchVia(addr model.Address, target model.Identifier) (search.Result, error) {
	reply, err := n.request(addr, &network.SearchByIDRequest{Target: target, RemainingLevel: lookup.Levels - 1, Hops: 1})
	if err != nil {
		return search.Result{}, err
	}
	res, ok := reply.(*network.SearchByIDResult)
	if !ok {
		return search.Result{}, errors.Errorf("unexpected reply %s to search request", reply.Kind())
	}
	return resultFromPayload(target, res), nil
}

// searchStep runs one node-local step of the distributed descent: answer
// locally when possible, otherwise forward to the best non-overshooting
// neighbor and relay its correlated reply.
func (n *BaseNode) searchStep(req search.Request) (search.Result, error) {
	if n.identity.ID.Equal(req.Target) {
		n.metrics.IncSearchFound()
		return search.Result{Target: req.Target, Outcome: search.OutcomeFound, Termination: n.identity}, nil
	}
	req.Direction = search.DirectionTo(n.identity.ID, req.Target)
	best, level, ok, err := search.BestCandidate(n.table, req)
	if err != nil {
		return search.Result{}, errors.Wrap(err, "local descent")
	}
	if !ok {
		n.metrics.IncSearchNotFound()
		return search.Result{Target: req.Target, Outcome: search.OutcomeNotFound, Termination: n.identity}, nil
	}
	if req.Hops >= lookup.HopLimit {
		n.metrics.IncSearchHopLimit()
		n.log.Warn("hop limit exceeded", "target", req.Target, "hops", req.Hops)
		return search.Result{Target: req.Target, Outcome: search.OutcomeNotFound, Termination: n.identity, ExceededHopLimit: true}, nil
	}
	n.metrics.IncSearchForwarded()
	n.log.Debug("forwarding search", "target", req.Target, "to", best.Addr, "level", level, "hops", req.Hops)
	reply, err := n.request(best.Addr, &network.SearchByIDRequest{Target: req.Target, RemainingLevel: level, Hops: req.Hops + 1})
	if err != nil {
		return search.Result{}, err
	}
	res, ok := reply.(*network.SearchByIDResult)
	if !ok {
		return search.Result{}, errors.Errorf("unexpected reply %s to search request", reply.Kind())
	}
	return resultFromPayload(req.Target, res), nil
}

// request sends a correlated request and blocks for its reply, the deadline
// or cancellation. The pending entry is removed on every exit path.
func (n *BaseNode) request(to model.Address, p network.Payload) (network.Payload, error) {
	id, err := network.NewMessageID()
	if err != nil {
		return nil, err
	}
	ch := make(chan network.Payload, 1)
	n.mu.Lock()
	n.pending[id] = ch
	n.mu.Unlock()
	defer func() {
		n.mu.Lock()
		delete(n.pending, id)
		n.mu.Unlock()
	}()

	msg := network.Message{ID: id, Source: n.identity.Addr, Target: to, Payload: p}
	if err := n.net.Send(msg); err != nil {
		n.metrics.IncTransportError()
		if network.IsTransportError(err) {
			return nil, err
		}
		return nil, network.NewTransportError(to, err)
	}

	timer := time.NewTimer(n.timeout)
	defer timer.Stop()
	select {
	case reply := <-ch:
		return reply, nil
	case <-timer.C:
		n.metrics.IncTimeout()
		return nil, errors.Wrapf(ErrTimeout, "awaiting %s reply from %s", p.Kind(), to)
	case <-n.cancel:
		return nil, errors.Errorf("node departed while awaiting %s reply", p.Kind())
	}
}

// send fires a message without awaiting a reply.
func (n *BaseNode) send(msg network.Message) error {
	if err := n.net.Send(msg); err != nil {
		n.metrics.IncTransportError()
		return errors.Wrapf(err, "send %s to %s", msg.Payload.Kind(), msg.Target)
	}
	return nil
}

// Leave departs the overlay and releases the transport registration.
func (n *BaseNode) Leave() error {
	n.mu.Lock()
	if n.state != StateActive {
		st := n.state
		n.mu.Unlock()
		return errors.Wrapf(ErrInvalidState, "leave on %s node", st)
	}
	n.state = StateDeparted
	close(n.cancel)
	n.mu.Unlock()
	return n.net.Stop()
}

func (n *BaseNode) pendingCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.pending)
}

func resultFromPayload(target model.Identifier, p *network.SearchByIDResult) search.Result {
	outcome := search.OutcomeNotFound
	if p.Found {
		outcome = search.OutcomeFound
	}
	return search.Result{
		Target:           target,
		Outcome:          outcome,
		Termination:      p.Termination,
		Level:            p.Level,
		ExceededHopLimit: p.ExceededHopLimit,
	}
}

func payloadFromResult(res search.Result) *network.SearchByIDResult {
	return &network.SearchByIDResult{
		Found:            res.Outcome == search.OutcomeFound,
		Termination:      res.Termination,
		Level:            res.Level,
		ExceededHopLimit: res.ExceededHopLimit,
	}
}

package node

import (
	"github.com/pkg/errors"

	"skipgraph/internal/lookup"
	"skipgraph/internal/model"
	"skipgraph/internal/network"
	"skipgraph/internal/search"
)

// Process dispatches one inbound message. It is invoked by the transport,
// possibly concurrently; replies to the node's own outstanding requests are
// delivered to their sinks, fresh requests are gated by the node state.
func (n *BaseNode) Process(msg network.Message) error {
	switch p := msg.Payload.(type) {
	case *network.SearchByIDResult:
		return n.deliverReply(msg, p)
	case *network.JoinAtLevelResult:
		return n.deliverReply(msg, p)
	case *network.GetSlotResult:
		return n.deliverReply(msg, p)
	case *network.SearchByIDRequest:
		return n.handleSearchRequest(msg, p)
	case *network.JoinAtLevelRequest:
		return n.handleJoinAtLevel(msg, p)
	case *network.GetSlotRequest:
		return n.handleGetSlot(msg, p)
	default:
		n.metrics.IncDroppedInvalid()
		n.log.Warn("dropping message with unknown payload", "from", msg.Source)
		return nil
	}
}

func (n *BaseNode) deliverReply(msg network.Message, p network.Payload) error {
	n.mu.RLock()
	st := n.state
	ch, ok := n.pending[msg.ID]
	n.mu.RUnlock()

	if st == StateCreated || st == StateDeparted {
		n.metrics.IncDroppedInvalid()
		n.log.Warn("dropping reply in inactive state", "state", st, "kind", p.Kind(), "from", msg.Source)
		return nil
	}
	if !ok {
		// late reply after a timeout, or an id this node never issued
		n.metrics.IncDroppedUnknown()
		n.log.Warn("dropping reply with unknown id", "id", msg.ID, "kind", p.Kind(), "from", msg.Source)
		return nil
	}
	select {
	case ch <- p:
	default:
		n.metrics.IncDroppedUnknown()
		n.log.Warn("dropping duplicate reply", "id", msg.ID, "from", msg.Source)
	}
	return nil
}

func (n *BaseNode) handleSearchRequest(msg network.Message, p *network.SearchByIDRequest) error {
	if st := n.State(); st != StateActive {
		n.metrics.IncDroppedInvalid()
		n.log.Warn("dropping search request in inactive state", "state", st, "from", msg.Source)
		return nil
	}
	if p.RemainingLevel < 0 || p.RemainingLevel >= lookup.Levels || p.Hops < 0 {
		n.metrics.IncDroppedInvalid()
		n.log.Warn("dropping malformed search request", "level", p.RemainingLevel, "hops", p.Hops, "from", msg.Source)
		return nil
	}
	res, err := n.searchStep(search.Request{Target: p.Target, Level: p.RemainingLevel, Hops: p.Hops})
	if err != nil {
		// the descent failed downstream of us; the originator's deadline
		// handles the missing reply
		return errors.Wrap(err, "forwarded search")
	}
	return n.send(msg.Reply(n.identity.Addr, payloadFromResult(res)))
}

func (n *BaseNode) handleJoinAtLevel(msg network.Message, p *network.JoinAtLevelRequest) error {
	if st := n.State(); st != StateActive && st != StateJoining {
		return n.send(msg.Reply(n.identity.Addr, &network.JoinAtLevelResult{OK: false, Reason: network.RejectNotAcceptingJoins}))
	}
	if p.Level < 0 || p.Level >= lookup.Levels || !p.Side.Valid() {
		n.metrics.IncDroppedInvalid()
		n.log.Warn("dropping malformed join request", "level", p.Level, "from", msg.Source)
		return nil
	}
	if p.Joiner.ID.Equal(n.identity.ID) {
		return n.send(msg.Reply(n.identity.Addr, &network.JoinAtLevelResult{OK: false, Reason: network.RejectDuplicateIdentifier}))
	}

	// a competing joiner already sits strictly between us and this one; its
	// view of the neighborhood is stale
	if existing, set, err := n.table.GetEntry(p.Level, p.Side); err == nil && set && between(n.identity.ID, existing.ID, p.Joiner.ID, p.Side) {
		n.metrics.IncJoinRejection()
		return n.send(msg.Reply(n.identity.Addr, &network.JoinAtLevelResult{OK: false, Reason: network.RejectConcurrentUpdate}))
	}

	if err := n.table.UpdateEntry(p.Level, p.Side, p.Joiner); err != nil {
		reason := network.RejectInvariantViolation
		if !lookup.IsInvariantViolation(err) {
			n.log.Error("join update failed", "level", p.Level, "err", err)
		}
		n.metrics.IncJoinRejection()
		return n.send(msg.Reply(n.identity.Addr, &network.JoinAtLevelResult{OK: false, Reason: reason}))
	}

	ack := &network.JoinAtLevelResult{OK: true}
	if next := p.Level + 1; next < lookup.Levels {
		if hint, set, err := n.table.GetEntry(next, p.Side.Opposite()); err == nil && set {
			ack.NeighborAtNextLevel = &hint
		}
	}
	n.log.Debug("adopted joiner", "level", p.Level, "side", p.Side, "joiner", p.Joiner.ID)
	return n.send(msg.Reply(n.identity.Addr, ack))
}

func (n *BaseNode) handleGetSlot(msg network.Message, p *network.GetSlotRequest) error {
	if st := n.State(); st != StateActive {
		n.metrics.IncDroppedInvalid()
		n.log.Warn("dropping slot probe in inactive state", "state", st, "from", msg.Source)
		return nil
	}
	if p.Level < 0 || p.Level >= lookup.Levels || !p.Direction.Valid() {
		n.metrics.IncDroppedInvalid()
		n.log.Warn("dropping malformed slot probe", "level", p.Level, "from", msg.Source)
		return nil
	}
	res := &network.GetSlotResult{}
	if entry, set, err := n.table.GetEntry(p.Level, p.Direction); err == nil && set {
		res.Slot = &entry
	}
	return n.send(msg.Reply(n.identity.Addr, res))
}

// between reports whether candidate sits strictly between self and far on
// the given side of self.
func between(self, candidate, far model.Identifier, side model.Direction) bool {
	if side == model.DirectionRight {
		return self.Less(candidate) && candidate.Less(far)
	}
	return candidate.Less(self) && far.Less(candidate)
}

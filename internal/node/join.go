package node

import (
	"github.com/pkg/errors"

	"skipgraph/internal/lookup"
	"skipgraph/internal/model"
	"skipgraph/internal/network"
)

// Join inserts the node into the overlay, discovering neighbors level by
// level from level 0 upward. A zero introducer bootstraps a fresh overlay:
// the node becomes active with an empty table.
func (n *BaseNode) Join(introducer model.Address) error {
	n.mu.Lock()
	if n.state != StateCreated {
		st := n.state
		n.mu.Unlock()
		return errors.Wrapf(ErrInvalidState, "join on %s node", st)
	}
	n.state = StateJoining
	n.mu.Unlock()
	n.metrics.IncJoinStarted()

	if introducer.IsZero() {
		n.setState(StateActive)
		n.metrics.IncJoinCompleted()
		n.log.Info("bootstrapped fresh overlay")
		return nil
	}

	if err := n.joinViaIntroducer(introducer); err != nil {
		n.setState(StateFailed)
		n.metrics.IncJoinFailed()
		return err
	}
	n.setState(StateActive)
	n.metrics.IncJoinCompleted()
	n.log.Info("joined overlay", "introducer", introducer)
	return nil
}

func (n *BaseNode) joinViaIntroducer(introducer model.Address) error {
	// the search for our own identifier lands on the closest existing node;
	// that node and its far-side level-0 neighbor bracket our position
	res, err := n.SearchVia(introducer, n.identity.ID)
	if err != nil {
		return errors.Wrap(err, "bootstrap search")
	}
	boundary := res.Termination
	if boundary.IsZero() {
		return errors.New("bootstrap search returned no termination node")
	}
	if boundary.ID.Equal(n.identity.ID) {
		return &RejectedError{Reason: network.RejectDuplicateIdentifier}
	}

	var left, right model.Identity
	var haveLeft, haveRight bool
	if boundary.ID.Less(n.identity.ID) {
		left, haveLeft = boundary, true
		right, haveRight, err = n.probeSlot(boundary.Addr, 0, model.DirectionRight)
	} else {
		right, haveRight = boundary, true
		left, haveLeft, err = n.probeSlot(boundary.Addr, 0, model.DirectionLeft)
	}
	if err != nil {
		return errors.Wrap(err, "probe far-side level-0 neighbor")
	}
	// the probed far-side neighbor may be ourselves from a previous partial
	// join attempt, or already superseded; ignore anything not on its side
	if haveRight && !n.identity.ID.Less(right.ID) {
		haveRight = false
	}
	if haveLeft && !left.ID.Less(n.identity.ID) {
		haveLeft = false
	}

	for level := 0; level < lookup.Levels && (haveLeft || haveRight); level++ {
		if haveLeft {
			left, haveLeft, err = n.joinSide(level, left, model.DirectionLeft)
			if err != nil {
				return errors.Wrapf(err, "join level %d left", level)
			}
		}
		if haveRight {
			right, haveRight, err = n.joinSide(level, right, model.DirectionRight)
			if err != nil {
				return errors.Wrapf(err, "join level %d right", level)
			}
		}
		n.metrics.IncJoinLevel()
	}
	return nil
}

// joinSide inserts self next to neighbor at the given level (side is the
// direction from self toward neighbor), then derives the side's neighbor for
// the next level: the nearest node in that direction whose membership vector
// shares at least level+1 bits with ours, reached by walking the level's
// links away from self.
func (n *BaseNode) joinSide(level int, neighbor model.Identity, side model.Direction) (model.Identity, bool, error) {
	if err := n.joinAtLevel(level, neighbor, side); err != nil {
		return model.Identity{}, false, err
	}
	if err := n.table.UpdateEntry(level, side, neighbor); err != nil {
		return model.Identity{}, false, errors.Wrap(err, "install neighbor")
	}
	if level+1 >= lookup.Levels {
		return model.Identity{}, false, nil
	}

	cur := neighbor
	for hop := 0; hop < lookup.HopLimit; hop++ {
		if n.identity.MemVec.CommonPrefix(cur.MemVec) >= level+1 {
			return cur, true, nil
		}
		next, ok, err := n.probeSlot(cur.Addr, level, side)
		if err != nil {
			return model.Identity{}, false, errors.Wrap(err, "walk level links")
		}
		if !ok {
			return model.Identity{}, false, nil
		}
		cur = next
	}
	n.log.Warn("level walk exceeded hop limit", "level", level, "side", side)
	return model.Identity{}, false, nil
}

// joinAtLevel asks neighbor to adopt us at the given level, retrying once on
// a concurrent-update rejection.
func (n *BaseNode) joinAtLevel(level int, neighbor model.Identity, side model.Direction) error {
	req := &network.JoinAtLevelRequest{Level: level, Joiner: n.identity, Side: side.Opposite()}
	for attempt := 0; ; attempt++ {
		reply, err := n.request(neighbor.Addr, req)
		if err != nil {
			return err
		}
		ack, ok := reply.(*network.JoinAtLevelResult)
		if !ok {
			return errors.Errorf("unexpected reply %s to join request", reply.Kind())
		}
		if ack.OK {
			return nil
		}
		n.metrics.IncJoinRejection()
		if ack.Reason == network.RejectConcurrentUpdate && attempt == 0 {
			n.log.Debug("join rejected, retrying once", "level", level, "neighbor", neighbor.ID)
			continue
		}
		return &RejectedError{Reason: ack.Reason}
	}
}

func (n *BaseNode) probeSlot(addr model.Address, level int, dir model.Direction) (model.Identity, bool, error) {
	reply, err := n.request(addr, &network.GetSlotRequest{Level: level, Direction: dir})
	if err != nil {
		return model.Identity{}, false, err
	}
	res, ok := reply.(*network.GetSlotResult)
	if !ok {
		return model.Identity{}, false, errors.Errorf("unexpected reply %s to slot probe", reply.Kind())
	}
	if res.Slot == nil {
		return model.Identity{}, false, nil
	}
	return *res.Slot, true, nil
}

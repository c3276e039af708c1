// Package node implements the participating skip graph node: the message
// driven state machine executing identifier searches and the level-by-level
// join protocol over a network transport.
package node

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"skipgraph/internal/lookup"
	"skipgraph/internal/model"
	"skipgraph/internal/search"
)

// DefaultRequestTimeout bounds every outbound request awaiting its reply.
const DefaultRequestTimeout = 30 * time.Second

// State is the lifecycle phase of a node. Only active nodes serve forwarded
// searches; joining nodes accept only join traffic directed at them.
type State uint8

const (
	StateCreated State = iota
	StateJoining
	StateActive
	StateFailed
	StateDeparted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateJoining:
		return "joining"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	case StateDeparted:
		return "departed"
	default:
		return "unknown"
	}
}

// Node is the contract a participating node implements. Handles are shared:
// every handle observes the same underlying state.
type Node interface {
	Identity() model.Identity
	State() State

	// SearchByID resolves target in the overlay, blocking until a result or
	// an error. Only permitted on an active node.
	SearchByID(target model.Identifier) (search.Result, error)

	// Join inserts the node into the overlay through the introducer. A zero
	// introducer bootstraps a fresh overlay of one.
	Join(introducer model.Address) error

	// Leave departs the overlay. Best effort: no neighbor repair is
	// attempted.
	Leave() error

	// LookupTable exposes the live neighbor table. Peers use it during join;
	// read-only inspection goes through its Neighbors snapshot.
	LookupTable() lookup.Table
}

var (
	ErrTimeout      = errors.New("request timed out")
	ErrInvalidState = errors.New("operation not permitted in current node state")
)

// RejectedError reports a peer declining a join step.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("join rejected: %s", e.Reason)
}

func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

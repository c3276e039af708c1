package network

import "skipgraph/internal/model"

// Payload kinds, used as the type tag on the wire.
const (
	KindSearchByIDRequest  = "search_by_id_request"
	KindSearchByIDResult   = "search_by_id_result"
	KindJoinAtLevelRequest = "join_at_level_request"
	KindJoinAtLevelResult  = "join_at_level_result"
	KindGetSlotRequest     = "get_slot_request"
	KindGetSlotResult      = "get_slot_result"
)

// Rejection reasons carried by JoinAtLevelResult.
const (
	RejectConcurrentUpdate    = "concurrent update"
	RejectDuplicateIdentifier = "duplicate identifier"
	RejectNotAcceptingJoins   = "not accepting joins"
	RejectInvariantViolation  = "invariant violation"
)

// Payload is the sealed union of message bodies.
type Payload interface {
	Kind() string
}

// SearchByIDRequest asks the receiver to continue an identifier search from
// RemainingLevel downward. Hops counts forwards consumed so far.
type SearchByIDRequest struct {
	Target         model.Identifier `json:"target"`
	RemainingLevel int              `json:"remaining_level"`
	Hops           int              `json:"hops"`
}

func (*SearchByIDRequest) Kind() string { return KindSearchByIDRequest }

// SearchByIDResult terminates a search. Termination is the match when Found,
// otherwise the closest node encountered in the chosen direction.
type SearchByIDResult struct {
	Found            bool           `json:"found"`
	Termination      model.Identity `json:"termination"`
	Level            int            `json:"level"`
	ExceededHopLimit bool           `json:"exceeded_hop_limit,omitempty"`
}

func (*SearchByIDResult) Kind() string { return KindSearchByIDResult }

// JoinAtLevelRequest asks the receiver to adopt Joiner as its neighbor at
// Level. Side is the direction from the receiver toward the joiner.
type JoinAtLevelRequest struct {
	Level  int             `json:"level"`
	Joiner model.Identity  `json:"joiner"`
	Side   model.Direction `json:"side"`
}

func (*JoinAtLevelRequest) Kind() string { return KindJoinAtLevelRequest }

// JoinAtLevelResult acknowledges a JoinAtLevelRequest. On success
// NeighborAtNextLevel carries the receiver's neighbor at Level+1 on its side
// away from the joiner, as a hint for the joiner's next-level discovery.
type JoinAtLevelResult struct {
	OK                  bool            `json:"ok"`
	Reason              string          `json:"reason,omitempty"`
	NeighborAtNextLevel *model.Identity `json:"neighbor_at_next_level,omitempty"`
}

func (*JoinAtLevelResult) Kind() string { return KindJoinAtLevelResult }

// GetSlotRequest reads one lookup table slot of the receiver.
type GetSlotRequest struct {
	Level     int             `json:"level"`
	Direction model.Direction `json:"direction"`
}

func (*GetSlotRequest) Kind() string { return KindGetSlotRequest }

type GetSlotResult struct {
	Slot *model.Identity `json:"slot,omitempty"`
}

func (*GetSlotResult) Kind() string { return KindGetSlotResult }

// Package network defines the transport boundary of the skip graph core: the
// Message envelope, the payload union, the Network send contract and the
// Processor inbound contract. Implementations live in mocknet and quicnet.
package network

import (
	"errors"
	"fmt"

	"skipgraph/internal/model"
)

// Processor handles inbound messages delivered by a Network. Process may be
// invoked concurrently; implementations are internally thread-safe. A reply
// is not returned from Process but sent as a separate message correlated by
// id.
type Processor interface {
	Process(msg Message) error
}

// Network is the minimal transport contract search and join rely on. Send is
// fire-and-forget; ordering between messages to the same target is not
// guaranteed.
type Network interface {
	Send(msg Message) error

	// RegisterProcessor binds the inbound delivery target at addr. A second
	// registration at the same address replaces the first.
	RegisterProcessor(addr model.Address, p Processor)

	Start() error
	Stop() error
}

// TransportError reports a failed delivery: unreachable or unknown address,
// dial failure or codec failure.
type TransportError struct {
	Addr model.Address
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport error sending to %s", e.Addr)
	}
	return fmt.Sprintf("transport error sending to %s: %v", e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func NewTransportError(addr model.Address, err error) error {
	return &TransportError{Addr: addr, Err: err}
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

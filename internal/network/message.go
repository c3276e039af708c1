package network

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"

	"skipgraph/internal/model"
)

const MessageIDSize = 16

// MessageID is the 128-bit random correlation id of a request. Replies carry
// the id of the request they answer.
type MessageID [MessageIDSize]byte

// NewMessageID samples an id from crypto/rand.
func NewMessageID() (MessageID, error) {
	var id MessageID
	if _, err := io.ReadFull(rand.Reader, id[:]); err != nil {
		return id, errors.Wrap(err, "sample message id")
	}
	return id, nil
}

func MessageIDFromHex(s string) (MessageID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return MessageID{}, errors.Wrap(err, "decode message id hex")
	}
	if len(b) != MessageIDSize {
		return MessageID{}, errors.Errorf("message id must be %d bytes, got %d", MessageIDSize, len(b))
	}
	var id MessageID
	copy(id[:], b)
	return id, nil
}

func (id MessageID) String() string {
	return hex.EncodeToString(id[:])
}

// Message is the transport envelope. The payload is one of the variants in
// payload.go.
type Message struct {
	ID      MessageID
	Source  model.Address
	Target  model.Address
	Payload Payload
}

// Reply builds the response envelope for m: same id, source and target
// swapped to the replier's own address.
func (m Message) Reply(from model.Address, p Payload) Message {
	return Message{ID: m.ID, Source: from, Target: m.Source, Payload: p}
}

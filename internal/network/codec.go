package network

import (
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"skipgraph/internal/model"
)

// MaxFrameSize bounds a single encoded message on the wire.
const MaxFrameSize = 1 << 20

type envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Source  model.Address   `json:"source"`
	Target  model.Address   `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes a message as a self-describing JSON envelope.
func Encode(m Message) ([]byte, error) {
	if m.Payload == nil {
		return nil, errors.New("encode message without payload")
	}
	body, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}
	env := envelope{
		Type:    m.Payload.Kind(),
		ID:      m.ID.String(),
		Source:  m.Source,
		Target:  m.Target,
		Payload: body,
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "marshal envelope")
	}
	if len(out) > MaxFrameSize {
		return nil, errors.Errorf("encoded message exceeds %d bytes", MaxFrameSize)
	}
	return out, nil
}

// Decode parses an envelope produced by Encode. Unknown payload types are an
// error.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, errors.Wrap(err, "unmarshal envelope")
	}
	id, err := MessageIDFromHex(env.ID)
	if err != nil {
		return Message{}, err
	}
	payload, err := emptyPayload(env.Type)
	if err != nil {
		return Message{}, err
	}
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return Message{}, errors.Wrapf(err, "unmarshal %s payload", env.Type)
	}
	return Message{ID: id, Source: env.Source, Target: env.Target, Payload: payload}, nil
}

func emptyPayload(kind string) (Payload, error) {
	switch kind {
	case KindSearchByIDRequest:
		return &SearchByIDRequest{}, nil
	case KindSearchByIDResult:
		return &SearchByIDResult{}, nil
	case KindJoinAtLevelRequest:
		return &JoinAtLevelRequest{}, nil
	case KindJoinAtLevelResult:
		return &JoinAtLevelResult{}, nil
	case KindGetSlotRequest:
		return &GetSlotRequest{}, nil
	case KindGetSlotResult:
		return &GetSlotResult{}, nil
	default:
		return nil, errors.Errorf("unknown payload type %q", kind)
	}
}

// WriteFrame writes one encoded message behind a 4-byte big-endian length
// prefix.
func WriteFrame(w io.Writer, m Message) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "write frame length")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write frame body")
	}
	return nil
}

// ReadFrame reads one length-prefixed message from r.
func ReadFrame(r io.Reader) (Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Message{}, errors.Wrap(err, "read frame length")
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 || n > MaxFrameSize {
		return Message{}, errors.Errorf("invalid frame size %d", n)
	}
	data := make([]byte, int(n))
	if _, err := io.ReadFull(r, data); err != nil {
		return Message{}, errors.Wrap(err, "read frame body")
	}
	return Decode(data)
}

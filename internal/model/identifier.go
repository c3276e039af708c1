package model

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const identifierHashPrefix = "skipgraph:id:v1"

// Identifier is the fixed 32-byte key naming a node in the overlay. Ordering
// is unsigned lexicographic over the raw bytes, most significant byte first.
type Identifier [IdentifierSizeBytes]byte

var ZeroIdentifier = Identifier{}

var MaxIdentifier = func() Identifier {
	var id Identifier
	for i := range id {
		id[i] = 0xff
	}
	return id
}()

// IdentifierFromBytes converts a byte slice of at most 32 bytes into an
// Identifier, left-padding short input with zeros.
func IdentifierFromBytes(b []byte) (Identifier, error) {
	var id Identifier
	if len(b) > IdentifierSizeBytes {
		return id, errors.Errorf("identifier too large, expected at most %d bytes, got %d", IdentifierSizeBytes, len(b))
	}
	copy(id[IdentifierSizeBytes-len(b):], b)
	return id, nil
}

// IdentifierFromHex parses a lowercase or uppercase hex string of at most 64
// characters into an Identifier.
func IdentifierFromHex(s string) (Identifier, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Identifier{}, errors.Wrap(err, "decode identifier hex")
	}
	return IdentifierFromBytes(b)
}

// HashIdentifier derives an Identifier from arbitrary data under a fixed
// domain separator.
func HashIdentifier(data []byte) Identifier {
	buf := make([]byte, 0, len(identifierHashPrefix)+len(data))
	buf = append(buf, identifierHashPrefix...)
	buf = append(buf, data...)
	return Identifier(sha3.Sum256(buf))
}

func (id Identifier) Compare(other Identifier) int {
	return bytes.Compare(id[:], other[:])
}

func (id Identifier) Equal(other Identifier) bool {
	return id == other
}

func (id Identifier) Less(other Identifier) bool {
	return id.Compare(other) < 0
}

func (id Identifier) Bytes() []byte {
	out := make([]byte, IdentifierSizeBytes)
	copy(out, id[:])
	return out
}

func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := IdentifierFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

package model

import (
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

// MembershipVector is the per-node 32-byte random bit-vector deciding level
// membership. Bits are read from the most significant bit of byte 0 downward.
// It is sampled once at node creation and never changes.
type MembershipVector [MembershipVectorSizeBytes]byte

// MemVecFromBytes converts a byte slice of at most 32 bytes into a
// MembershipVector, left-padding short input with zeros.
func MemVecFromBytes(b []byte) (MembershipVector, error) {
	var mv MembershipVector
	if len(b) > MembershipVectorSizeBytes {
		return mv, errors.Errorf("membership vector too large, expected at most %d bytes, got %d", MembershipVectorSizeBytes, len(b))
	}
	copy(mv[MembershipVectorSizeBytes-len(b):], b)
	return mv, nil
}

// MemVecFromHex parses a hex string of at most 64 characters into a
// MembershipVector.
func MemVecFromHex(s string) (MembershipVector, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return MembershipVector{}, errors.Wrap(err, "decode membership vector hex")
	}
	return MemVecFromBytes(b)
}

// RandomMembershipVector samples a vector from the given entropy source.
// Production callers pass crypto/rand.Reader.
func RandomMembershipVector(r io.Reader) (MembershipVector, error) {
	var mv MembershipVector
	if _, err := io.ReadFull(r, mv[:]); err != nil {
		return mv, errors.Wrap(err, "sample membership vector")
	}
	return mv, nil
}

// CommonPrefix returns the number of leading bits shared with other, in the
// range 0 to 256 inclusive.
func (mv MembershipVector) CommonPrefix(other MembershipVector) int {
	common := 0
	for i := 0; i < MembershipVectorSizeBytes; i++ {
		xor := mv[i] ^ other[i]
		if xor == 0 {
			common += 8
			continue
		}
		for bit := 7; bit >= 0; bit-- {
			if xor&(1<<uint(bit)) != 0 {
				return common
			}
			common++
		}
	}
	return common
}

func (mv MembershipVector) Equal(other MembershipVector) bool {
	return mv == other
}

func (mv MembershipVector) Bytes() []byte {
	out := make([]byte, MembershipVectorSizeBytes)
	copy(out, mv[:])
	return out
}

func (mv MembershipVector) String() string {
	return hex.EncodeToString(mv[:])
}

func (mv MembershipVector) MarshalText() ([]byte, error) {
	return []byte(mv.String()), nil
}

func (mv *MembershipVector) UnmarshalText(text []byte) error {
	parsed, err := MemVecFromHex(string(text))
	if err != nil {
		return err
	}
	*mv = parsed
	return nil
}

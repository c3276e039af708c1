package model

import (
	"bytes"
	"strings"
	"testing"
)

func TestIdentifierFromBytes(t *testing.T) {
	zero := make([]byte, IdentifierSizeBytes)
	id, err := IdentifierFromBytes(zero)
	if err != nil {
		t.Fatalf("from bytes failed: %v", err)
	}
	if !bytes.Equal(id.Bytes(), zero) {
		t.Fatalf("round trip mismatch for zero identifier")
	}

	ones := bytes.Repeat([]byte{0xff}, IdentifierSizeBytes)
	id, err = IdentifierFromBytes(ones)
	if err != nil {
		t.Fatalf("from bytes failed: %v", err)
	}
	if !bytes.Equal(id.Bytes(), ones) {
		t.Fatalf("round trip mismatch for max identifier")
	}
	if !id.Equal(MaxIdentifier) {
		t.Fatalf("expected max identifier")
	}

	short := []byte{0xab, 0xcd}
	id, err = IdentifierFromBytes(short)
	if err != nil {
		t.Fatalf("from bytes failed: %v", err)
	}
	got := id.Bytes()
	if got[IdentifierSizeBytes-2] != 0xab || got[IdentifierSizeBytes-1] != 0xcd {
		t.Fatalf("short input not right-aligned: %x", got)
	}
	for _, b := range got[:IdentifierSizeBytes-2] {
		if b != 0 {
			t.Fatalf("short input not zero padded: %x", got)
		}
	}

	if _, err := IdentifierFromBytes(make([]byte, IdentifierSizeBytes+1)); err == nil {
		t.Fatalf("expected error for oversized input")
	}
}

func TestIdentifierHex(t *testing.T) {
	id, err := IdentifierFromHex("0a0b0c")
	if err != nil {
		t.Fatalf("from hex failed: %v", err)
	}
	want := strings.Repeat("00", IdentifierSizeBytes-3) + "0a0b0c"
	if id.String() != want {
		t.Fatalf("hex mismatch: got %s want %s", id, want)
	}
	if _, err := IdentifierFromHex("not-hex"); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
}

func TestIdentifierCompare(t *testing.T) {
	a, _ := IdentifierFromBytes([]byte{0x01})
	b, _ := IdentifierFromBytes([]byte{0x02})
	if a.Compare(b) >= 0 {
		t.Fatalf("expected a < b")
	}
	if b.Compare(a) <= 0 {
		t.Fatalf("expected b > a")
	}
	if a.Compare(a) != 0 {
		t.Fatalf("expected a == a")
	}
	if !a.Less(b) || b.Less(a) {
		t.Fatalf("less is inconsistent with compare")
	}
	if ZeroIdentifier.Compare(MaxIdentifier) >= 0 {
		t.Fatalf("expected zero < max")
	}

	// the comparison is big-endian: a high leading byte dominates
	hi, _ := IdentifierFromBytes(append([]byte{0x01}, make([]byte, IdentifierSizeBytes-1)...))
	lo, _ := IdentifierFromBytes(bytes.Repeat([]byte{0xff}, IdentifierSizeBytes-1))
	if !lo.Less(hi) {
		t.Fatalf("expected leading byte to dominate ordering")
	}
}

func TestHashIdentifierDeterministic(t *testing.T) {
	a := HashIdentifier([]byte("hello"))
	b := HashIdentifier([]byte("hello"))
	c := HashIdentifier([]byte("world"))
	if !a.Equal(b) {
		t.Fatalf("hash identifier not deterministic")
	}
	if a.Equal(c) {
		t.Fatalf("distinct inputs mapped to the same identifier")
	}
}

func TestIdentifierTextRoundTrip(t *testing.T) {
	id := HashIdentifier([]byte("text"))
	text, err := id.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back Identifier
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !back.Equal(id) {
		t.Fatalf("text round trip mismatch")
	}
}

package model

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestCommonPrefix(t *testing.T) {
	var a, b MembershipVector
	if got := a.CommonPrefix(b); got != MembershipVectorSizeBits {
		t.Fatalf("identical vectors: got %d want %d", got, MembershipVectorSizeBits)
	}

	// differ in the most significant bit of byte 0
	b[0] = 0x80
	if got := a.CommonPrefix(b); got != 0 {
		t.Fatalf("msb mismatch: got %d want 0", got)
	}

	// differ in the least significant bit of byte 0
	b[0] = 0x01
	if got := a.CommonPrefix(b); got != 7 {
		t.Fatalf("lsb mismatch: got %d want 7", got)
	}

	// differ in the msb of byte 1
	b[0] = 0
	b[1] = 0x80
	if got := a.CommonPrefix(b); got != 8 {
		t.Fatalf("second byte mismatch: got %d want 8", got)
	}

	// symmetry
	if a.CommonPrefix(b) != b.CommonPrefix(a) {
		t.Fatalf("common prefix is not symmetric")
	}
}

func TestMemVecFromBytes(t *testing.T) {
	short := []byte{0x7f}
	mv, err := MemVecFromBytes(short)
	if err != nil {
		t.Fatalf("from bytes failed: %v", err)
	}
	got := mv.Bytes()
	if got[MembershipVectorSizeBytes-1] != 0x7f {
		t.Fatalf("short input not right-aligned: %x", got)
	}
	if _, err := MemVecFromBytes(make([]byte, MembershipVectorSizeBytes+1)); err == nil {
		t.Fatalf("expected error for oversized input")
	}
}

func TestRandomMembershipVector(t *testing.T) {
	a, err := RandomMembershipVector(rand.Reader)
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	b, err := RandomMembershipVector(rand.Reader)
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("two samples collided, source is suspect")
	}
}

func TestMemVecTextRoundTrip(t *testing.T) {
	mv, err := MemVecFromHex("deadbeef")
	if err != nil {
		t.Fatalf("from hex failed: %v", err)
	}
	text, err := mv.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back MembershipVector
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !back.Equal(mv) {
		t.Fatalf("text round trip mismatch")
	}
}

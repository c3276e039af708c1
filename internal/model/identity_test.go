package model

import "testing"

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("127.0.0.1:9000")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if addr.Host != "127.0.0.1" || addr.Port != "9000" {
		t.Fatalf("unexpected address: %+v", addr)
	}
	if addr.String() != "127.0.0.1:9000" {
		t.Fatalf("string mismatch: %s", addr)
	}
	if _, err := ParseAddress("no-port"); err == nil {
		t.Fatalf("expected error for address without port")
	}
	if !addr.Equal(NewAddress("127.0.0.1", "9000")) {
		t.Fatalf("structural equality broken")
	}
	if addr.IsZero() {
		t.Fatalf("non-empty address reported zero")
	}
	if !(Address{}).IsZero() {
		t.Fatalf("empty address not reported zero")
	}
}

func TestDirection(t *testing.T) {
	if DirectionLeft.Opposite() != DirectionRight || DirectionRight.Opposite() != DirectionLeft {
		t.Fatalf("opposite is broken")
	}
	if DirectionLeft.String() != "left" || DirectionRight.String() != "right" {
		t.Fatalf("direction strings wrong")
	}
	var d Direction
	if err := d.UnmarshalText([]byte("right")); err != nil || d != DirectionRight {
		t.Fatalf("unmarshal right failed: %v", err)
	}
	if err := d.UnmarshalText([]byte("up")); err == nil {
		t.Fatalf("expected error for bad direction")
	}
	if _, err := Direction(9).MarshalText(); err == nil {
		t.Fatalf("expected error marshaling invalid direction")
	}
}

func TestIdentityEqual(t *testing.T) {
	id := HashIdentifier([]byte("n1"))
	mv, _ := MemVecFromHex("0102")
	addr := NewAddress("localhost", "4000")
	a := NewIdentity(id, mv, addr)
	b := NewIdentity(id, mv, addr)
	if !a.Equal(b) {
		t.Fatalf("identical identities not equal")
	}
	b.Addr = NewAddress("localhost", "4001")
	if a.Equal(b) {
		t.Fatalf("different identities reported equal")
	}
	if a.IsZero() {
		t.Fatalf("populated identity reported zero")
	}
	if !(Identity{}).IsZero() {
		t.Fatalf("empty identity not reported zero")
	}
}

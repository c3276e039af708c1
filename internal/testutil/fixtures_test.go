package testutil

import (
	"testing"

	"skipgraph/internal/model"
)

func TestSortedIdentifiers(t *testing.T) {
	r := Rand(70)
	ids := SortedIdentifiers(r, 16)
	if len(ids) != 16 {
		t.Fatalf("expected 16 identifiers, got %d", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if !ids[i-1].Less(ids[i]) {
			t.Fatalf("identifiers not strictly ascending at %d", i)
		}
	}
}

func TestOffsetIdentifier(t *testing.T) {
	id, _ := model.IdentifierFromBytes([]byte{0x01, 0x00})
	up := OffsetIdentifier(id, 1)
	want, _ := model.IdentifierFromBytes([]byte{0x01, 0x01})
	if !up.Equal(want) {
		t.Fatalf("offset +1 wrong: %s", up)
	}

	// carry across byte boundaries
	edge, _ := model.IdentifierFromBytes([]byte{0x00, 0xff})
	up = OffsetIdentifier(edge, 1)
	want, _ = model.IdentifierFromBytes([]byte{0x01, 0x00})
	if !up.Equal(want) {
		t.Fatalf("carry wrong: %s", up)
	}

	// borrow across byte boundaries
	down := OffsetIdentifier(up, -1)
	if !down.Equal(edge) {
		t.Fatalf("borrow wrong: %s", down)
	}

	if !OffsetIdentifier(id, 0).Equal(id) {
		t.Fatalf("zero offset changed the identifier")
	}
}

func TestMemVecWithPrefix(t *testing.T) {
	r := Rand(71)
	base := RandomMemVec(r)
	for _, bits := range []int{0, 1, 7, 8, 9, 64, 255} {
		mv := MemVecWithPrefix(r, base, bits)
		if got := base.CommonPrefix(mv); got != bits {
			t.Fatalf("prefix %d: got %d", bits, got)
		}
	}
	full := MemVecWithPrefix(r, base, model.MembershipVectorSizeBits)
	if !full.Equal(base) {
		t.Fatalf("full prefix must return the base vector")
	}
}

func TestNeighborIdentity(t *testing.T) {
	r := Rand(72)
	owner := RandomIdentity(r)
	for level := 0; level < 8; level++ {
		left := NeighborIdentity(r, owner, level, model.DirectionLeft)
		if !left.ID.Less(owner.ID) {
			t.Fatalf("left neighbor not smaller at level %d", level)
		}
		if got := owner.MemVec.CommonPrefix(left.MemVec); got < level {
			t.Fatalf("left neighbor prefix %d below level %d", got, level)
		}
		right := NeighborIdentity(r, owner, level, model.DirectionRight)
		if !owner.ID.Less(right.ID) {
			t.Fatalf("right neighbor not greater at level %d", level)
		}
	}
}

package search

import (
	"testing"

	"skipgraph/internal/lookup"
	"skipgraph/internal/model"
	"skipgraph/internal/testutil"
)

func TestDirectionTo(t *testing.T) {
	a, _ := model.IdentifierFromBytes([]byte{0x01})
	b, _ := model.IdentifierFromBytes([]byte{0x02})
	if DirectionTo(a, b) != model.DirectionRight {
		t.Fatalf("expected right toward greater target")
	}
	if DirectionTo(b, a) != model.DirectionLeft {
		t.Fatalf("expected left toward smaller target")
	}
}

func TestBestCandidateEmptyTable(t *testing.T) {
	r := testutil.Rand(20)
	owner := testutil.RandomIdentity(r)
	lt := lookup.NewArrayTable(owner)
	_, _, ok, err := BestCandidate(lt, Request{Target: testutil.RandomIdentifier(r), Level: lookup.Levels - 1, Direction: model.DirectionRight})
	if err != nil {
		t.Fatalf("best candidate failed: %v", err)
	}
	if ok {
		t.Fatalf("empty table produced a candidate")
	}
}

func TestBestCandidatePicksClosestWithoutOvershoot(t *testing.T) {
	r := testutil.Rand(21)
	owner := testutil.RandomIdentity(r)
	owner.ID, _ = model.IdentifierFromBytes([]byte{0x10})
	lt := lookup.NewArrayTable(owner)

	// right neighbors at increasing distance per level
	mk := func(last byte, level int) model.Identity {
		id, _ := model.IdentifierFromBytes([]byte{last})
		return model.NewIdentity(id, testutil.MemVecWithPrefix(r, owner.MemVec, level), testutil.RandomAddress(r))
	}
	if err := lt.UpdateEntry(0, model.DirectionRight, mk(0x20, 0)); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := lt.UpdateEntry(1, model.DirectionRight, mk(0x40, 1)); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := lt.UpdateEntry(2, model.DirectionRight, mk(0x80, 2)); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	target, _ := model.IdentifierFromBytes([]byte{0x50})
	best, level, ok, err := BestCandidate(lt, Request{Target: target, Level: lookup.Levels - 1, Direction: model.DirectionRight})
	if err != nil || !ok {
		t.Fatalf("best candidate failed: ok=%v err=%v", ok, err)
	}
	// 0x80 overshoots, 0x40 is the greatest admissible
	want, _ := model.IdentifierFromBytes([]byte{0x40})
	if !best.ID.Equal(want) {
		t.Fatalf("picked %s, want %s", best.ID, want)
	}
	if level != 1 {
		t.Fatalf("picked level %d, want 1", level)
	}
}

func TestBestCandidateRespectsLevelCap(t *testing.T) {
	r := testutil.Rand(22)
	owner := testutil.RandomIdentity(r)
	owner.ID, _ = model.IdentifierFromBytes([]byte{0x10})
	lt := lookup.NewArrayTable(owner)

	id2, _ := model.IdentifierFromBytes([]byte{0x40})
	n2 := model.NewIdentity(id2, testutil.MemVecWithPrefix(r, owner.MemVec, 2), testutil.RandomAddress(r))
	if err := lt.UpdateEntry(2, model.DirectionRight, n2); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	target, _ := model.IdentifierFromBytes([]byte{0x50})
	// a cap below the populated level hides the entry
	_, _, ok, err := BestCandidate(lt, Request{Target: target, Level: 1, Direction: model.DirectionRight})
	if err != nil {
		t.Fatalf("best candidate failed: %v", err)
	}
	if ok {
		t.Fatalf("candidate above the level cap leaked into the scan")
	}
}

func TestBestCandidateLeftDirection(t *testing.T) {
	r := testutil.Rand(23)
	owner := testutil.RandomIdentity(r)
	owner.ID, _ = model.IdentifierFromBytes([]byte{0x80})
	lt := lookup.NewArrayTable(owner)

	mk := func(last byte, level int) model.Identity {
		id, _ := model.IdentifierFromBytes([]byte{last})
		return model.NewIdentity(id, testutil.MemVecWithPrefix(r, owner.MemVec, level), testutil.RandomAddress(r))
	}
	if err := lt.UpdateEntry(0, model.DirectionLeft, mk(0x60, 0)); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := lt.UpdateEntry(1, model.DirectionLeft, mk(0x20, 1)); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// 0x20 overshoots a target of 0x50 going left; 0x60 is admissible
	target, _ := model.IdentifierFromBytes([]byte{0x50})
	best, _, ok, err := BestCandidate(lt, Request{Target: target, Level: lookup.Levels - 1, Direction: model.DirectionLeft})
	if err != nil || !ok {
		t.Fatalf("best candidate failed: ok=%v err=%v", ok, err)
	}
	want, _ := model.IdentifierFromBytes([]byte{0x60})
	if !best.ID.Equal(want) {
		t.Fatalf("picked %s, want %s", best.ID, want)
	}
}

func TestBestCandidateExactMatch(t *testing.T) {
	r := testutil.Rand(24)
	owner := testutil.RandomIdentity(r)
	owner.ID, _ = model.IdentifierFromBytes([]byte{0x10})
	lt := lookup.NewArrayTable(owner)

	id, _ := model.IdentifierFromBytes([]byte{0x42})
	n := model.NewIdentity(id, testutil.MemVecWithPrefix(r, owner.MemVec, 0), testutil.RandomAddress(r))
	if err := lt.UpdateEntry(0, model.DirectionRight, n); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	best, _, ok, err := BestCandidate(lt, Request{Target: id, Level: lookup.Levels - 1, Direction: model.DirectionRight})
	if err != nil || !ok {
		t.Fatalf("best candidate failed: ok=%v err=%v", ok, err)
	}
	if !best.ID.Equal(id) {
		t.Fatalf("exact neighbor match not selected")
	}
}

func TestBestCandidateBadLevel(t *testing.T) {
	r := testutil.Rand(25)
	lt := lookup.NewArrayTable(testutil.RandomIdentity(r))
	if _, _, _, err := BestCandidate(lt, Request{Level: lookup.Levels}); err == nil {
		t.Fatalf("expected error for out-of-range level")
	}
	if _, _, _, err := BestCandidate(lt, Request{Level: -1}); err == nil {
		t.Fatalf("expected error for negative level")
	}
}

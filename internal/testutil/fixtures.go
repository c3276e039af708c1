// Package testutil provides deterministic fixtures for skip graph tests.
// All randomness flows through a caller-supplied seeded source so failures
// reproduce.
package testutil

import (
	"math/rand"
	"sort"
	"strconv"

	"skipgraph/internal/model"
)

// Rand returns a seeded source for one test.
func Rand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func RandomIdentifier(r *rand.Rand) model.Identifier {
	var id model.Identifier
	r.Read(id[:])
	return id
}

// SortedIdentifiers generates n distinct identifiers in ascending order.
func SortedIdentifiers(r *rand.Rand, n int) []model.Identifier {
	seen := make(map[model.Identifier]bool, n)
	ids := make([]model.Identifier, 0, n)
	for len(ids) < n {
		id := RandomIdentifier(r)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

func RandomMemVec(r *rand.Rand) model.MembershipVector {
	var mv model.MembershipVector
	r.Read(mv[:])
	return mv
}

// MemVecWithPrefix returns a vector sharing exactly `bits` leading bits with
// base. The remainder is random.
func MemVecWithPrefix(r *rand.Rand, base model.MembershipVector, bits int) model.MembershipVector {
	mv := RandomMemVec(r)
	if bits >= model.MembershipVectorSizeBits {
		return base
	}
	for i := 0; i < bits/8; i++ {
		mv[i] = base[i]
	}
	rem := bits % 8
	byteIdx := bits / 8
	mask := byte(0xff) << uint(8-rem)
	mv[byteIdx] = (base[byteIdx] & mask) | (mv[byteIdx] &^ mask)
	// force a mismatch right after the prefix
	flip := byte(0x80) >> uint(rem)
	mv[byteIdx] = (mv[byteIdx] &^ flip) | (^base[byteIdx] & flip)
	return mv
}

func RandomAddress(r *rand.Rand) model.Address {
	port := 1024 + r.Intn(65535-1024)
	return model.NewAddress("127.0.0.1", strconv.Itoa(port))
}

func RandomIdentity(r *rand.Rand) model.Identity {
	return model.NewIdentity(RandomIdentifier(r), RandomMemVec(r), RandomAddress(r))
}

// OffsetIdentifier adds delta to the identifier interpreted as a big-endian
// unsigned integer. Overflow wraps; callers pick deltas that do not.
func OffsetIdentifier(id model.Identifier, delta int64) model.Identifier {
	out := id
	if delta >= 0 {
		carry := uint64(delta)
		for i := model.IdentifierSizeBytes - 1; i >= 0 && carry > 0; i-- {
			sum := uint64(out[i]) + carry&0xff
			out[i] = byte(sum)
			carry = carry>>8 + sum>>8
		}
		return out
	}
	borrow := uint64(-delta)
	for i := model.IdentifierSizeBytes - 1; i >= 0 && borrow > 0; i-- {
		sub := borrow & 0xff
		if uint64(out[i]) >= sub {
			out[i] -= byte(sub)
			borrow >>= 8
		} else {
			out[i] = byte(uint64(out[i]) + 256 - sub)
			borrow = borrow>>8 + 1
		}
	}
	return out
}

// NeighborIdentity builds an identity that is legal at (level, dir) in a
// table owned by owner: right side greater, left side smaller, membership
// prefix of exactly `level` bits.
func NeighborIdentity(r *rand.Rand, owner model.Identity, level int, dir model.Direction) model.Identity {
	delta := int64(1 + r.Intn(1<<16))
	if dir == model.DirectionLeft {
		delta = -delta
	}
	return model.NewIdentity(
		OffsetIdentifier(owner.ID, delta),
		MemVecWithPrefix(r, owner.MemVec, level),
		RandomAddress(r),
	)
}

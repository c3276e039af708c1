// Package model holds the value types of the skip graph overlay: identifiers,
// membership vectors, addresses, directions and node identities.
package model

const (
	IdentifierSizeBytes       = 32
	MembershipVectorSizeBytes = 32
	MembershipVectorSizeBits  = MembershipVectorSizeBytes * 8
)

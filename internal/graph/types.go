// Package graph defines the snapshot data model: the heap object graph and
// the collector statistics that accompany it. Object identities are
// snapshot-local integers and must never be dereferenced after capture.
package graph

// ObjectID identifies one heap object within a single snapshot. It is the
// object's address at capture time, so it is only meaningful for the
// lifetime of the captured process and becomes stale once the object is
// collected.
type ObjectID uint64

// GenStats holds the counters reported by the collector for one generation.
// Counter names are runtime-specific and treated as opaque.
type GenStats map[string]uint64

// Node describes a single live object.
type Node struct {
	// Desc is a short best-effort textual rendering of the object.
	Desc string `cbor:"desc"`
	// Size approximates the object's own representation in bytes,
	// excluding anything it references.
	Size uint64 `cbor:"size"`
	// Referents are the identities this object points at directly.
	Referents []ObjectID `cbor:"refs"`
	// Referrers are the identities pointing at this object directly.
	Referrers []ObjectID `cbor:"back"`
}

// Graph maps object identity to its node. Edge identities are not
// guaranteed to have a corresponding entry; consumers must tolerate
// dangling references.
type Graph map[ObjectID]Node

// Snapshot is the unit of persistence: optional collector statistics plus
// one object graph. A nil Stats means the runtime did not expose collector
// statistics; a nil Graph means the snapshot has not been gathered or
// loaded yet.
type Snapshot struct {
	Stats []GenStats `cbor:"stats"`
	Graph Graph      `cbor:"graph"`
}

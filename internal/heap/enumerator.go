// Package heap captures the live object graph of the running process. The
// introspection primitives are behind the Enumerator and StatsProvider
// interfaces so the capture algorithm can be exercised against a fake heap.
package heap

import "github.com/promdump/promdump/internal/graph"

// Handle is an opaque reference to one live object, valid for a single
// enumeration pass.
type Handle any

// Enumerator exposes the runtime's view of the live heap: every tracked
// object plus its identity, size and direct in/out edges. Enumeration order
// carries no meaning.
type Enumerator interface {
	// Objects enumerates every live object tracked by the collector.
	Objects() []Handle

	// ID returns the object's snapshot-local identity.
	ID(h Handle) graph.ObjectID

	// Describe renders a short textual description of the object. It may
	// panic for adversarial objects; callers must recover and substitute
	// a fallback.
	Describe(h Handle) string

	// ShallowSize approximates the byte size of the object's own
	// representation, excluding referenced objects.
	ShallowSize(h Handle) uint64

	// Referents returns the identities the object points at directly.
	Referents(h Handle) []graph.ObjectID

	// Referrers returns the identities pointing at the object directly.
	// The result is approximate: structures belonging to a live walk can
	// show up as spurious referrers. This is a measurement artifact of
	// any in-process heap walk.
	Referrers(h Handle) []graph.ObjectID
}

// StatsProvider forces collection passes and reports per-generation
// collector statistics when the runtime exposes them.
type StatsProvider interface {
	// Collect forces a full collection pass across all generations.
	Collect()

	// Stats returns one record per collector generation, in generation
	// order, or ErrStatsUnavailable when the runtime has no such
	// facility.
	Stats() ([]graph.GenStats, error)
}

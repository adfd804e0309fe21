package heap

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aquilax/truncate"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/promdump/promdump/internal/graph"
)

// maxDescLen caps description length so one large object cannot blow up the
// snapshot.
const maxDescLen = 128

// RuntimeEnumerator walks the objects reachable from registered roots using
// reflection. Pointer targets, maps and slice backing arrays become graph
// nodes keyed by their address; struct, array and interface values are
// traversed inline as part of their containing object.
//
// The walker's own bookkeeping is unreachable from the roots, so it is never
// enumerated, but a root registry mutated concurrently can still surface as
// a spurious referrer.
type RuntimeEnumerator struct {
	mu    sync.Mutex
	roots []namedRoot
	nodes map[graph.ObjectID]*liveObject
}

type namedRoot struct {
	name string
	val  reflect.Value
}

type liveObject struct {
	id        graph.ObjectID
	val       reflect.Value // Pointer, Map or Slice
	referents mapset.Set[graph.ObjectID]
	referrers mapset.Set[graph.ObjectID]
}

// NewRuntimeEnumerator returns an enumerator pre-seeded with a root
// describing the process itself, so a capture is never empty.
func NewRuntimeEnumerator() *RuntimeEnumerator {
	e := &RuntimeEnumerator{}
	start := time.Now()
	_ = e.RegisterRoot("process", &processRoot{
		Args:    &os.Args,
		Started: &start,
	})
	return e
}

// processRoot is the built-in root every enumeration starts from.
type processRoot struct {
	Args    *[]string
	Started *time.Time
}

// RegisterRoot adds a starting point for the walk. Typical usage registers
// the application's long-lived top-level structures (caches, registries).
// The root must be a non-nil pointer.
func (e *RuntimeEnumerator) RegisterRoot(name string, root any) error {
	rv := reflect.ValueOf(root)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("root %q: must be a non-nil pointer, got %T", name, root)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.roots = append(e.roots, namedRoot{name: name, val: rv})
	return nil
}

// Objects performs the walk. The node table is rebuilt on every call; edges
// between objects visited in the same pass are inverted afterwards to
// produce referrers.
func (e *RuntimeEnumerator) Objects() []Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nodes = make(map[graph.ObjectID]*liveObject)
	var order []Handle

	queue := make([]reflect.Value, 0, len(e.roots))
	for _, r := range e.roots {
		queue = append(queue, r.val)
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		id := identityOf(v)
		if id == 0 {
			continue
		}
		if _, ok := e.nodes[id]; ok {
			continue
		}

		obj := &liveObject{
			id:        id,
			val:       v,
			referents: mapset.NewThreadUnsafeSet[graph.ObjectID](),
			referrers: mapset.NewThreadUnsafeSet[graph.ObjectID](),
		}
		e.nodes[id] = obj

		for _, out := range referentValues(v) {
			tid := identityOf(out)
			if tid == 0 {
				continue
			}
			obj.referents.Add(tid)
			queue = append(queue, out)
		}

		order = append(order, Handle(obj))
	}

	for id, obj := range e.nodes {
		for _, tid := range obj.referents.ToSlice() {
			if target, ok := e.nodes[tid]; ok {
				target.referrers.Add(id)
			}
		}
	}

	return order
}

func (e *RuntimeEnumerator) ID(h Handle) graph.ObjectID {
	return h.(*liveObject).id
}

func (e *RuntimeEnumerator) Describe(h Handle) string {
	obj := h.(*liveObject)
	return describeValue(obj.val, obj.id)
}

func (e *RuntimeEnumerator) ShallowSize(h Handle) uint64 {
	v := h.(*liveObject).val
	switch v.Kind() {
	case reflect.Pointer:
		return uint64(v.Type().Elem().Size())
	case reflect.Map:
		// bucket layout is runtime-internal; approximate with the
		// entries' own footprint
		per := v.Type().Key().Size() + v.Type().Elem().Size()
		return uint64(v.Type().Size()) + uint64(v.Len())*uint64(per)
	case reflect.Slice:
		return uint64(v.Cap()) * uint64(v.Type().Elem().Size())
	}
	return 0
}

func (e *RuntimeEnumerator) Referents(h Handle) []graph.ObjectID {
	return sortedIDs(h.(*liveObject).referents)
}

func (e *RuntimeEnumerator) Referrers(h Handle) []graph.ObjectID {
	return sortedIDs(h.(*liveObject).referrers)
}

// identityOf returns the address-based identity for node kinds, 0 for
// anything that does not become a node of its own.
func identityOf(v reflect.Value) graph.ObjectID {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		return graph.ObjectID(v.Pointer())
	}
	return 0
}

// referentValues returns the one-hop boundary values reachable from the
// object v denotes.
func referentValues(v reflect.Value) []reflect.Value {
	var out []reflect.Value
	emit := func(b reflect.Value) { out = append(out, b) }

	switch v.Kind() {
	case reflect.Pointer:
		collectBoundaries(v.Elem(), emit)
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			collectBoundaries(iter.Key(), emit)
			collectBoundaries(iter.Value(), emit)
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			collectBoundaries(v.Index(i), emit)
		}
	}
	return out
}

// collectBoundaries descends inline through value kinds and emits every
// pointer, map or slice it reaches. Recursion terminates because any cycle
// in memory must pass through one of the emitted boundary kinds.
func collectBoundaries(v reflect.Value, emit func(reflect.Value)) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if !v.IsNil() {
			emit(v)
		}
	case reflect.Interface:
		if !v.IsNil() {
			collectBoundaries(v.Elem(), emit)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			collectBoundaries(v.Field(i), emit)
		}
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			collectBoundaries(v.Index(i), emit)
		}
	}
}

var descSanitizer = strings.NewReplacer("\n", `\n`, "\t", `\t`, "\r", `\r`)

// describeValue renders "type: value", truncated, with control characters
// escaped so the report's tab-separated table stays intact. Values reached
// through unexported fields cannot be interfaced and get the fallback.
func describeValue(v reflect.Value, id graph.ObjectID) (s string) {
	defer func() {
		if recover() != nil {
			s = fallbackDesc(v.Type(), id)
		}
	}()

	display := v
	if v.Kind() == reflect.Pointer {
		display = v.Elem()
	}
	if !display.CanInterface() {
		return fallbackDesc(v.Type(), id)
	}

	s = fmt.Sprintf("%s: %v", display.Type(), display.Interface())
	s = descSanitizer.Replace(s)
	return truncate.Truncate(s, maxDescLen, "...", truncate.PositionEnd)
}

func fallbackDesc(t reflect.Type, id graph.ObjectID) string {
	return fmt.Sprintf("<%s@0x%x>", t, uint64(id))
}

func sortedIDs(s mapset.Set[graph.ObjectID]) []graph.ObjectID {
	ids := s.ToSlice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

package heap

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promdump/promdump/internal/graph"
)

type box struct {
	Name  string
	Next  *box
	Items []int
	Meta  map[string]int
}

func idOf(v any) graph.ObjectID {
	return graph.ObjectID(reflect.ValueOf(v).Pointer())
}

func nodeByID(t *testing.T, e *RuntimeEnumerator, id graph.ObjectID) Handle {
	t.Helper()
	for _, h := range e.Objects() {
		if e.ID(h) == id {
			return h
		}
	}
	t.Fatalf("object 0x%x not enumerated", uint64(id))
	return nil
}

func TestRuntimeEnumeratorWalk(t *testing.T) {
	root := &box{
		Name:  "root",
		Next:  &box{Name: "leaf"},
		Items: []int{1, 2, 3},
		Meta:  map[string]int{"a": 1},
	}

	e := &RuntimeEnumerator{}
	require.NoError(t, e.RegisterRoot("app", root))

	handles := e.Objects()
	require.NotEmpty(t, handles)

	rootID := idOf(root)
	nextID := idOf(root.Next)
	itemsID := graph.ObjectID(reflect.ValueOf(root.Items).Pointer())
	metaID := graph.ObjectID(reflect.ValueOf(root.Meta).Pointer())

	rootHandle := nodeByID(t, e, rootID)
	refs := e.Referents(rootHandle)
	assert.Contains(t, refs, nextID)
	assert.Contains(t, refs, itemsID)
	assert.Contains(t, refs, metaID)

	// referrers come from edge inversion over the visited set
	leafHandle := nodeByID(t, e, nextID)
	assert.Contains(t, e.Referrers(leafHandle), rootID)
	assert.Empty(t, e.Referents(leafHandle))

	assert.Contains(t, e.Describe(rootHandle), "box")
	assert.Contains(t, e.Describe(rootHandle), "root")
}

func TestRuntimeEnumeratorCycles(t *testing.T) {
	a := &box{Name: "a"}
	b := &box{Name: "b", Next: a}
	a.Next = b

	e := &RuntimeEnumerator{}
	require.NoError(t, e.RegisterRoot("cycle", a))

	handles := e.Objects()
	require.Len(t, handles, 2, "a cycle must be walked exactly once per object")

	aHandle := nodeByID(t, e, idOf(a))
	assert.Equal(t, []graph.ObjectID{idOf(b)}, e.Referents(aHandle))
	assert.Equal(t, []graph.ObjectID{idOf(b)}, e.Referrers(aHandle))
}

func TestRuntimeEnumeratorDefaultRoot(t *testing.T) {
	e := NewRuntimeEnumerator()

	handles := e.Objects()
	require.NotEmpty(t, handles, "a capture of any running process has live objects")

	seen := make(map[graph.ObjectID]bool)
	for _, h := range handles {
		id := e.ID(h)
		assert.NotZero(t, id)
		assert.False(t, seen[id], "identities must be distinct")
		seen[id] = true
	}
}

func TestRegisterRootRejectsNonPointers(t *testing.T) {
	e := &RuntimeEnumerator{}

	assert.Error(t, e.RegisterRoot("value", box{}))
	assert.Error(t, e.RegisterRoot("nil", (*box)(nil)))
}

func TestShallowSize(t *testing.T) {
	root := &box{Items: make([]int, 0, 10)}

	e := &RuntimeEnumerator{}
	require.NoError(t, e.RegisterRoot("app", root))

	rootHandle := nodeByID(t, e, idOf(root))
	assert.Equal(t, uint64(reflect.TypeOf(box{}).Size()), e.ShallowSize(rootHandle))

	itemsID := graph.ObjectID(reflect.ValueOf(root.Items).Pointer())
	itemsHandle := nodeByID(t, e, itemsID)
	assert.Equal(t, uint64(10*reflect.TypeOf(int(0)).Size()), e.ShallowSize(itemsHandle),
		"slice nodes are sized by their backing array capacity")
}

func TestDescribeValueSanitizesAndTruncates(t *testing.T) {
	long := strings.Repeat("x", 1000) + "\nwith\tcontrol"
	v := reflect.ValueOf(&long)

	desc := describeValue(v, 1)
	assert.LessOrEqual(t, len(desc), maxDescLen)
	assert.NotContains(t, desc, "\n")
	assert.NotContains(t, desc, "\t")
}

// Package report renders a loaded snapshot as text for a human reader.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/promdump/promdump/internal/graph"
)

// ErrIncompleteSnapshot is returned when a report is requested before a
// graph has been gathered or loaded.
var ErrIncompleteSnapshot = errors.New("snapshot has no object graph")

// headerEvery re-emits the table header periodically as a readability aid.
// It is not a semantic boundary.
const headerEvery = 100

// Report writes the statistics block (when present) followed by the object
// table. Iteration order of the graph is not meaningful. The snapshot is
// only read, never mutated.
func Report(snap *graph.Snapshot, w io.Writer) error {
	if snap == nil || snap.Graph == nil {
		return ErrIncompleteSnapshot
	}

	bw := bufio.NewWriter(w)

	if snap.Stats != nil {
		fmt.Fprintln(bw, "Collection statistics")
		for i, gen := range snap.Stats {
			fmt.Fprintf(bw, "%d: %v\n", i, gen)
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, "Object graph")
	var total uint64
	i := 0
	for id, node := range snap.Graph {
		if i%headerEvery == 0 {
			fmt.Fprintln(bw, "ID\tObject")
		}
		fmt.Fprintf(bw, "%d\t%s\n", uint64(id), node.Desc)
		total += node.Size
		i++
	}

	fmt.Fprintf(bw, "\n%d objects, %s approximate shallow bytes\n",
		len(snap.Graph), humanize.Bytes(total))

	return bw.Flush()
}

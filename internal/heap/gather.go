package heap

import (
	"fmt"

	"github.com/promdump/promdump/internal/graph"
	"github.com/promdump/promdump/internal/logging"
)

// Gatherer produces one snapshot of the current heap per Gather call.
type Gatherer struct {
	enum  Enumerator
	stats StatsProvider
	log   logging.Logger
}

func NewGatherer(enum Enumerator, stats StatsProvider, log logging.Logger) *Gatherer {
	if log == nil {
		log = logging.Nop{}
	}
	return &Gatherer{enum: enum, stats: stats, log: log}
}

// Gather forces a collection pass, harvests collector statistics when
// available and walks every live object into the graph. It runs inside
// signal-handling contexts, so per-object failures are swallowed and
// missing statistics never abort the capture.
func (g *Gatherer) Gather() (*graph.Snapshot, error) {
	g.log.Debug("forcing collection pass")
	g.stats.Collect()

	stats, err := g.stats.Stats()
	if err != nil {
		g.log.Debug("proceeding without collector statistics: %v", err)
		stats = nil
	}

	g.log.Debug("gathering object graph")
	handles := g.enum.Objects()

	gr := make(graph.Graph, len(handles))
	for _, h := range handles {
		id := g.enum.ID(h)
		gr[id] = graph.Node{
			Desc:      g.describe(h, id),
			Size:      g.enum.ShallowSize(h),
			Referents: g.enum.Referents(h),
			Referrers: g.enum.Referrers(h),
		}
	}
	g.log.Debug("gathered %d objects", len(gr))

	return &graph.Snapshot{Stats: stats, Graph: gr}, nil
}

// describe substitutes a fallback rendering when a single object's
// description panics, so one adversarial object cannot abort the walk.
func (g *Gatherer) describe(h Handle, id graph.ObjectID) (desc string) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Debug("rendering object 0x%x failed: %v", uint64(id), r)
			desc = fmt.Sprintf("<unrenderable object 0x%x>", uint64(id))
		}
	}()
	return g.enum.Describe(h)
}

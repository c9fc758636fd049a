package cycles

import (
	"sort"

	"github.com/ritzau/brandos-canvas/pkg/graph"
)

// Loop is a set of nodes that feed back into each other. Loops are reported
// to the canvas, never rejected.
type Loop struct {
	Nodes []string `json:"nodes"` // sorted instance ids
}

// FindLoops finds all feedback loops on the board
func FindLoops(bg *graph.BoardGraph) []Loop {
	sccs := NewTarjanSCC(bg.Graph()).FindSCCs()

	loops := make([]Loop, 0, len(sccs))
	for _, scc := range sccs {
		nodes := make([]string, 0, len(scc))
		for _, id := range scc {
			if name, ok := bg.Name(id); ok {
				nodes = append(nodes, name)
			}
		}
		if len(nodes) < 2 {
			continue
		}
		sort.Strings(nodes)
		loops = append(loops, Loop{Nodes: nodes})
	}

	sort.Slice(loops, func(i, j int) bool {
		return loops[i].Nodes[0] < loops[j].Nodes[0]
	})
	return loops
}

// Contains reports whether id takes part in any loop
func Contains(loops []Loop, id string) bool {
	for _, l := range loops {
		if i := sort.SearchStrings(l.Nodes, id); i < len(l.Nodes) && l.Nodes[i] == id {
			return true
		}
	}
	return false
}

package graph

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/brandos-canvas/pkg/topology"
)

var (
	ErrUnknownNode   = errors.New("unknown node")
	ErrUnknownHandle = errors.New("unknown handle")
	ErrDirection     = errors.New("handle direction mismatch")
	ErrSelfLoop      = errors.New("node cannot connect to itself")
)

// Edge connects an output handle of one node to an input handle of another
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}

func (e Edge) String() string {
	return fmt.Sprintf("%s#%s -> %s#%s", e.Source, e.SourceHandle, e.Target, e.TargetHandle)
}

// Endpoint is a node together with the handles its current data resolves to
type Endpoint struct {
	ID      string
	Handles []topology.HandlePoint
}

// ValidateConnection checks that e starts at an output handle of src and ends
// at an input handle of dst
func ValidateConnection(src, dst Endpoint, e Edge) error {
	if e.Source != src.ID || e.Target != dst.ID {
		return fmt.Errorf("edge %s: endpoints %s, %s: %w", e, src.ID, dst.ID, ErrUnknownNode)
	}
	if e.Source == e.Target {
		return fmt.Errorf("edge %s: %w", e, ErrSelfLoop)
	}

	out, ok := topology.Find(src.Handles, e.SourceHandle)
	if !ok {
		return fmt.Errorf("edge %s: source handle %q: %w", e, e.SourceHandle, ErrUnknownHandle)
	}
	in, ok := topology.Find(dst.Handles, e.TargetHandle)
	if !ok {
		return fmt.Errorf("edge %s: target handle %q: %w", e, e.TargetHandle, ErrUnknownHandle)
	}

	if out.Direction != topology.Output {
		return fmt.Errorf("edge %s: source handle %q is an %s: %w", e, out.ID, out.Direction, ErrDirection)
	}
	if in.Direction != topology.Input {
		return fmt.Errorf("edge %s: target handle %q is an %s: %w", e, in.ID, in.Direction, ErrDirection)
	}
	return nil
}

// BoardGraph is the node-level view of a board: one graph node per instance,
// one graph edge per connected pair regardless of handles
type BoardGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // instance id -> graph id
	names  map[int64]string // graph id -> instance id
	nextID int64
}

// NewBoardGraph creates an empty board graph
func NewBoardGraph() *BoardGraph {
	return &BoardGraph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// AddNode adds an instance to the graph
func (bg *BoardGraph) AddNode(id string) {
	if _, exists := bg.ids[id]; exists {
		return
	}

	bg.ids[id] = bg.nextID
	bg.names[bg.nextID] = id
	bg.graph.AddNode(simple.Node(bg.nextID))
	bg.nextID++
}

// AddEdge adds the node pair of e. Self edges are ignored since gonum's
// simple graph rejects them and ValidateConnection never admits one.
func (bg *BoardGraph) AddEdge(e Edge) {
	if e.Source == e.Target {
		return
	}
	bg.AddNode(e.Source)
	bg.AddNode(e.Target)

	from, to := bg.ids[e.Source], bg.ids[e.Target]
	if !bg.graph.HasEdgeFromTo(from, to) {
		bg.graph.SetEdge(bg.graph.NewEdge(bg.graph.Node(from), bg.graph.Node(to)))
	}
}

// Graph returns the underlying directed graph
func (bg *BoardGraph) Graph() *simple.DirectedGraph {
	return bg.graph
}

// Name returns the instance id for a graph id
func (bg *BoardGraph) Name(id int64) (string, bool) {
	name, ok := bg.names[id]
	return name, ok
}

// Len returns the number of nodes
func (bg *BoardGraph) Len() int {
	return len(bg.ids)
}

// Downstream returns the instances id feeds into, sorted
func (bg *BoardGraph) Downstream(id string) []string {
	gid, exists := bg.ids[id]
	if !exists {
		return nil
	}

	var out []string
	iter := bg.graph.From(gid)
	for iter.Next() {
		out = append(out, bg.names[iter.Node().ID()])
	}
	sort.Strings(out)
	return out
}

// Build creates a board graph from instance ids and edges
func Build(nodeIDs []string, edges []Edge) *BoardGraph {
	bg := NewBoardGraph()
	for _, id := range nodeIDs {
		bg.AddNode(id)
	}
	for _, e := range edges {
		bg.AddEdge(e)
	}
	return bg
}

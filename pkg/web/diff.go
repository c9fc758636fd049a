package web

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/go-cmp/cmp"

	"github.com/ritzau/brandos-canvas/pkg/chrome"
	"github.com/ritzau/brandos-canvas/pkg/cycles"
	"github.com/ritzau/brandos-canvas/pkg/graph"
)

// BoardDiff is the difference between a board the client already holds
// (Base) and the current one (Hash)
type BoardDiff struct {
	Hash          string            `json:"hash"`
	Base          string            `json:"base,omitempty"`
	Full          bool              `json:"full"` // Base was unknown; Added* holds the whole board
	AddedNodes    []chrome.NodeView `json:"addedNodes"`
	ModifiedNodes []chrome.NodeView `json:"modifiedNodes"`
	RemovedNodes  []string          `json:"removedNodes"`
	AddedEdges    []graph.Edge      `json:"addedEdges"`
	RemovedEdges  []string          `json:"removedEdges"`
	Loops         []cycles.Loop     `json:"loops"`
	Dangling      []graph.Edge      `json:"dangling"`
}

// snapshot is a cached board state for diffing
type snapshot struct {
	hash  string
	nodes map[string]chrome.NodeView
	edges map[string]graph.Edge
}

func newSnapshot(view BoardView) *snapshot {
	s := &snapshot{
		nodes: make(map[string]chrome.NodeView, len(view.Nodes)),
		edges: make(map[string]graph.Edge, len(view.Edges)),
	}
	for _, n := range view.Nodes {
		s.nodes[n.ID] = n
	}
	for _, e := range view.Edges {
		s.edges[e.ID] = e
	}

	jsonData, _ := json.Marshal(view)
	s.hash = fmt.Sprintf("%x", sha256.Sum256(jsonData))
	return s
}

// computeDiff computes the difference from old to cur. A nil old yields the
// full board.
func computeDiff(old, cur *snapshot, view BoardView) BoardDiff {
	diff := BoardDiff{
		Hash:          cur.hash,
		AddedNodes:    []chrome.NodeView{},
		ModifiedNodes: []chrome.NodeView{},
		RemovedNodes:  []string{},
		AddedEdges:    []graph.Edge{},
		RemovedEdges:  []string{},
		Loops:         view.Loops,
		Dangling:      view.Dangling,
	}

	if old == nil {
		diff.Full = true
		diff.AddedNodes = view.Nodes
		diff.AddedEdges = view.Edges
		return diff
	}
	diff.Base = old.hash

	// Keep the stacking order of the current view
	for _, n := range view.Nodes {
		prev, exists := old.nodes[n.ID]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, n)
		case !cmp.Equal(prev, n):
			diff.ModifiedNodes = append(diff.ModifiedNodes, n)
		}
	}
	for id := range old.nodes {
		if _, exists := cur.nodes[id]; !exists {
			diff.RemovedNodes = append(diff.RemovedNodes, id)
		}
	}

	for _, e := range view.Edges {
		if _, exists := old.edges[e.ID]; !exists {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	for id := range old.edges {
		if _, exists := cur.edges[id]; !exists {
			diff.RemovedEdges = append(diff.RemovedEdges, id)
		}
	}

	sort.Strings(diff.RemovedNodes)
	sort.Strings(diff.RemovedEdges)
	return diff
}

// snapshotCache keeps the most recent board snapshots by hash
type snapshotCache struct {
	mu     sync.Mutex
	limit  int
	order  []string
	byHash map[string]*snapshot
}

func newSnapshotCache(limit int) *snapshotCache {
	return &snapshotCache{limit: limit, byHash: make(map[string]*snapshot)}
}

func (c *snapshotCache) get(hash string) *snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byHash[hash]
}

func (c *snapshotCache) put(s *snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byHash[s.hash]; exists {
		return
	}
	c.byHash[s.hash] = s
	c.order = append(c.order, s.hash)
	for len(c.order) > c.limit {
		delete(c.byHash, c.order[0])
		c.order = c.order[1:]
	}
}

// Package board is the in-memory node store behind the canvas. It owns the
// instances and edges, applies onChange patches and publishes every change.
package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ritzau/brandos-canvas/pkg/chrome"
	"github.com/ritzau/brandos-canvas/pkg/cycles"
	"github.com/ritzau/brandos-canvas/pkg/fields"
	"github.com/ritzau/brandos-canvas/pkg/graph"
	"github.com/ritzau/brandos-canvas/pkg/logging"
	"github.com/ritzau/brandos-canvas/pkg/nodetype"
	"github.com/ritzau/brandos-canvas/pkg/pubsub"
)

var (
	ErrNotFound  = errors.New("node not found")
	ErrEmptyType = errors.New("empty node type")
)

// LockedKey is the data key that mirrors the lock state
const LockedKey = "isLocked"

// Instance is one node on the board
type Instance struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	Size     fields.Size    `json:"size"`
	Selected bool           `json:"selected"`
	Locked   bool           `json:"locked"`
}

// State returns the chrome state of the instance
func (i Instance) State() chrome.State {
	return chrome.State{Selected: i.Selected, Locked: i.Locked}
}

// ChromeNode returns the fields chrome renders from
func (i Instance) ChromeNode() chrome.Node {
	return chrome.Node{ID: i.ID, Type: i.Type, Data: i.Data, Size: i.Size}
}

func (i Instance) clone() Instance {
	i.Data = fields.Merge(i.Data, nil)
	return i
}

func lockedIn(data map[string]any) bool {
	locked, _ := data[LockedKey].(bool)
	return locked
}

// Option configures a Store
type Option func(*Store)

// WithPublisher sends change events to p on pubsub.BoardTopic
func WithPublisher(p pubsub.Publisher) Option {
	return func(s *Store) { s.pub = p }
}

// WithPersister writes every change through to p
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persist = p }
}

// Store holds the board. All mutations are serialized, so patches apply in
// the order OnChange is invoked.
type Store struct {
	mu      sync.Mutex
	reg     *nodetype.Registry
	nodes   map[string]*Instance
	edges   map[string]graph.Edge
	editors map[string]*fields.Editor
	pub     pubsub.Publisher
	persist Persister
}

// NewStore creates an empty board resolving types against reg
func NewStore(reg *nodetype.Registry, opts ...Option) *Store {
	s := &Store{
		reg:     reg,
		nodes:   make(map[string]*Instance),
		edges:   make(map[string]graph.Edge),
		editors: make(map[string]*fields.Editor),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the type registry the store resolves against
func (s *Store) Registry() *nodetype.Registry {
	return s.reg
}

// Load replaces the board with the persisted one
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	nodes, edges, err := s.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Instance, len(nodes))
	s.edges = make(map[string]graph.Edge, len(edges))
	s.editors = make(map[string]*fields.Editor)
	for _, n := range nodes {
		n.Locked = lockedIn(n.Data)
		n.Selected = false
		s.nodes[n.ID] = &n
	}
	for _, e := range edges {
		s.edges[e.ID] = e
	}
	logging.InfoContext(ctx, "board loaded", "nodes", len(nodes), "edges", len(edges))
	return nil
}

// Create adds a node. Unknown types are kept and render as the placeholder.
// A zero size takes the type's minimum size.
func (s *Store) Create(typeTag string, data map[string]any, size fields.Size) (Instance, error) {
	if typeTag == "" {
		return Instance{}, ErrEmptyType
	}

	d, err := s.reg.Resolve(typeTag)
	if err != nil {
		logging.Warn("creating node of unknown type", "type", typeTag)
		d = nodetype.Placeholder(typeTag)
	}

	inst := &Instance{
		ID:   uuid.NewString(),
		Type: typeTag,
		Data: fields.Merge(data, nil),
		Size: chrome.ClampSize(d, size),
	}
	inst.Locked = lockedIn(inst.Data)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes[inst.ID] = inst
	s.save(*inst)
	s.publish(pubsub.NodeCreated, nodeEvent(*inst, nil))
	logging.Debug("node created", "nodeID", inst.ID, "type", typeTag)
	return inst.clone(), nil
}

// Get returns a copy of the node with id
func (s *Store) Get(id string) (Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.nodes[id]
	if !ok {
		return Instance{}, false
	}
	return inst.clone(), true
}

// List returns copies of every node, sorted by id
func (s *Store) List() []Instance {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Instance, 0, len(s.nodes))
	for _, inst := range s.nodes {
		out = append(out, inst.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OnChange shallow-merges data into the node and replaces its size when one
// is given. Unknown ids are logged and ignored.
func (s *Store) OnChange(nodeID string, data fields.Patch, size *fields.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.nodes[nodeID]
	if !ok {
		logging.Warn("change for unknown node dropped", "nodeID", nodeID, "keys", len(data))
		return
	}

	inst.Data = fields.Merge(inst.Data, data)
	inst.Locked = lockedIn(inst.Data)
	if size != nil {
		inst.Size = chrome.ClampSize(s.reg.ResolveOrPlaceholder(inst.Type), *size)
	}

	if ed, ok := s.editors[nodeID]; ok {
		ed.Sync(inst.Data)
		ed.SetLocked(inst.Locked)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.save(*inst)
	s.publish(pubsub.NodeChanged, nodeEvent(*inst, keys))
	logging.Trace("node changed", "nodeID", nodeID, "keys", len(keys), "resized", size != nil)
}

// Select sets the selection flag of a node
func (s *Store) Select(id string, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	inst.Selected = selected
	s.publish(pubsub.NodeSelected, nodeEvent(*inst, nil))
	return nil
}

// Delete removes a node together with every edge attached to it
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	delete(s.nodes, id)
	delete(s.editors, id)

	for eid, e := range s.edges {
		if e.Source == id || e.Target == id {
			delete(s.edges, eid)
			s.publish(pubsub.EdgeDeleted, edgeEvent(e))
		}
	}

	if s.persist != nil {
		if err := s.persist.DeleteNode(context.Background(), id); err != nil {
			logging.Error("failed to delete persisted node", "nodeID", id, "error", err)
		}
	}
	s.publish(pubsub.NodeDeleted, pubsub.NodeEvent{ID: id})
	logging.Debug("node deleted", "nodeID", id)
	return nil
}

// Connect validates e against the handles both nodes currently resolve to
// and adds it. An empty edge id is assigned; connecting the same handle pair
// twice returns the existing edge.
func (s *Store) Connect(e graph.Edge) (graph.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.endpoint(e.Source)
	if err != nil {
		return graph.Edge{}, err
	}
	dst, err := s.endpoint(e.Target)
	if err != nil {
		return graph.Edge{}, err
	}
	if err := graph.ValidateConnection(src, dst, e); err != nil {
		return graph.Edge{}, err
	}

	for _, existing := range s.edges {
		if sameHandles(existing, e) {
			return existing, nil
		}
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.edges[e.ID] = e

	if s.persist != nil {
		if err := s.persist.SaveEdge(context.Background(), e); err != nil {
			logging.Error("failed to persist edge", "edge", e.String(), "error", err)
		}
	}
	s.publish(pubsub.EdgeCreated, edgeEvent(e))
	logging.Debug("edge created", "source", e.Source, "target", e.Target,
		"sourceHandle", e.SourceHandle, "targetHandle", e.TargetHandle)
	return e, nil
}

// Disconnect removes an edge
func (s *Store) Disconnect(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.edges[id]
	if !ok {
		return fmt.Errorf("edge %s: %w", id, ErrNotFound)
	}
	delete(s.edges, id)

	if s.persist != nil {
		if err := s.persist.DeleteEdge(context.Background(), id); err != nil {
			logging.Error("failed to delete persisted edge", "edge", e.String(), "error", err)
		}
	}
	s.publish(pubsub.EdgeDeleted, edgeEvent(e))
	return nil
}

// Edges returns every edge, sorted by id
func (s *Store) Edges() []graph.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedEdges()
}

// DanglingEdges returns the edges whose node is gone or whose handle the
// node no longer resolves to, e.g. input_7 after a switch changed to
// Broadcaster. They are kept so a later change can revive them.
func (s *Store) DanglingEdges() []graph.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []graph.Edge
	for _, e := range s.sortedEdges() {
		src, err := s.endpoint(e.Source)
		if err != nil {
			out = append(out, e)
			continue
		}
		dst, err := s.endpoint(e.Target)
		if err != nil {
			out = append(out, e)
			continue
		}
		if graph.ValidateConnection(src, dst, e) != nil {
			out = append(out, e)
		}
	}
	return out
}

// Loops returns the feedback loops formed by the current edges
func (s *Store) Loops() []cycles.Loop {
	s.mu.Lock()
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	edges := s.sortedEdges()
	s.mu.Unlock()

	slices.Sort(ids)
	return cycles.FindLoops(graph.Build(ids, edges))
}

// Editor returns the server-side field editor of a node, creating it on
// first use. Its changes flow back through OnChange.
func (s *Store) Editor(id string) (*fields.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if ed, ok := s.editors[id]; ok {
		return ed, nil
	}

	d := s.reg.ResolveOrPlaceholder(inst.Type)
	ed := d.Editor(id, inst.Data, inst.Locked, s)
	s.editors[id] = ed
	return ed, nil
}

// endpoint must be called with s.mu held
func (s *Store) endpoint(id string) (graph.Endpoint, error) {
	inst, ok := s.nodes[id]
	if !ok {
		return graph.Endpoint{}, fmt.Errorf("%s: %w", id, graph.ErrUnknownNode)
	}
	d := s.reg.ResolveOrPlaceholder(inst.Type)
	handles, err := d.Handles(d.Normalize(inst.Data))
	if err != nil {
		return graph.Endpoint{}, fmt.Errorf("%s: %w", id, err)
	}
	return graph.Endpoint{ID: id, Handles: handles}, nil
}

// sortedEdges must be called with s.mu held
func (s *Store) sortedEdges() []graph.Edge {
	out := make([]graph.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// save must be called with s.mu held
func (s *Store) save(inst Instance) {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveNode(context.Background(), inst); err != nil {
		logging.Error("failed to persist node", "nodeID", inst.ID, "error", err)
	}
}

// publish must be called with s.mu held so events keep mutation order
func (s *Store) publish(eventType string, payload any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(pubsub.BoardTopic, eventType, payload); err != nil {
		logging.Warn("failed to publish board event", "type", eventType, "error", err)
	}
}

func sameHandles(a, b graph.Edge) bool {
	return a.Source == b.Source && a.SourceHandle == b.SourceHandle &&
		a.Target == b.Target && a.TargetHandle == b.TargetHandle
}

func nodeEvent(inst Instance, keys []string) pubsub.NodeEvent {
	return pubsub.NodeEvent{
		ID:       inst.ID,
		Type:     inst.Type,
		Data:     fields.Merge(inst.Data, nil),
		Width:    inst.Size.Width,
		Height:   inst.Size.Height,
		Keys:     keys,
		Selected: inst.Selected,
	}
}

func edgeEvent(e graph.Edge) pubsub.EdgeEvent {
	return pubsub.EdgeEvent{
		ID:           e.ID,
		Source:       e.Source,
		SourceHandle: e.SourceHandle,
		Target:       e.Target,
		TargetHandle: e.TargetHandle,
	}
}

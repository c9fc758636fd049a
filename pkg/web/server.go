package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/brandos-canvas/pkg/board"
	"github.com/ritzau/brandos-canvas/pkg/chrome"
	"github.com/ritzau/brandos-canvas/pkg/cycles"
	"github.com/ritzau/brandos-canvas/pkg/fields"
	"github.com/ritzau/brandos-canvas/pkg/graph"
	"github.com/ritzau/brandos-canvas/pkg/logging"
	"github.com/ritzau/brandos-canvas/pkg/nodedata"
	"github.com/ritzau/brandos-canvas/pkg/nodetype"
	"github.com/ritzau/brandos-canvas/pkg/pubsub"
)

//go:embed static/*
var staticFiles embed.FS

// BoardView is the full board as the canvas renders it
type BoardView struct {
	Nodes    []chrome.NodeView `json:"nodes"`
	Edges    []graph.Edge      `json:"edges"`
	Loops    []cycles.Loop     `json:"loops"`
	Dangling []graph.Edge      `json:"dangling"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	store     *board.Store
	publisher pubsub.Publisher
	snapshots *snapshotCache
}

// NewPublisher creates the publisher the board and server share
func NewPublisher() *pubsub.SSEPublisher {
	p := pubsub.NewSSEPublisher()

	// board: replay the recent change history so a reconnecting canvas
	// can catch up without refetching
	p.ConfigureTopic(pubsub.BoardTopic, pubsub.TopicConfig{
		BufferSize: 50,
		ReplayAll:  true,
	})
	return p
}

// NewServer creates a new web server over store
func NewServer(store *board.Store, publisher pubsub.Publisher) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		store:     store,
		publisher: publisher,
		snapshots: newSnapshotCache(32),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler including the request-id middleware
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoint
	s.router.HandleFunc("/api/subscribe/board", s.handleSubscribeBoard).Methods("GET")

	// Node type catalog
	s.router.HandleFunc("/api/node-types", s.handleNodeTypes).Methods("GET")
	s.router.HandleFunc("/api/node-types/{tag}", s.handleNodeType).Methods("GET")
	s.router.HandleFunc("/api/node-types/{tag}/handles", s.handleHandles).Methods("GET")

	// Board
	s.router.HandleFunc("/api/board", s.handleBoard).Methods("GET")
	s.router.HandleFunc("/api/board/diff", s.handleBoardDiff).Methods("GET")
	s.router.HandleFunc("/api/nodes", s.handleCreateNode).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}", s.handleGetNode).Methods("GET")
	s.router.HandleFunc("/api/nodes/{id}", s.handlePatchNode).Methods("PATCH")
	s.router.HandleFunc("/api/nodes/{id}", s.handleDeleteNode).Methods("DELETE")
	s.router.HandleFunc("/api/nodes/{id}/select", s.handleSelect).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}/lock", s.handleLock).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}/resize", s.handleResize).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}/fields/{key}", s.handleField).Methods("POST")
	s.router.HandleFunc("/api/edges", s.handleConnect).Methods("POST")
	s.router.HandleFunc("/api/edges/{id}", s.handleDisconnect).Methods("DELETE")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("static files missing", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

func (s *Server) handleSubscribeBoard(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	// Create subscription
	sub, err := s.publisher.Subscribe(r.Context(), pubsub.BoardTopic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer sub.Close()

	// Stream events until the client goes away
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "error writing SSE event", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleNodeTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Registry().Export())
}

func (s *Server) handleNodeType(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]

	d, err := s.store.Registry().Resolve(tag)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":       err.Error(),
			"placeholder": nodetype.Render(nodetype.Placeholder(tag)),
		})
		return
	}

	rendered := nodetype.Render(d)
	if target, ok := s.store.Registry().AliasOf(tag); ok {
		rendered.TypeTag = tag
		rendered.AliasOf = target
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (s *Server) handleHandles(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]

	d, err := s.store.Registry().Resolve(tag)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	data := map[string]any{}
	if mode := r.URL.Query().Get("mode"); mode != "" {
		data["mode"] = mode
	}
	handles, err := d.Handles(d.Normalize(data))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, handles)
}

func (s *Server) boardView() BoardView {
	reg := s.store.Registry()
	instances := s.store.List()

	views := make([]chrome.NodeView, len(instances))
	for i, inst := range instances {
		views[i] = chrome.View(reg, inst.ChromeNode(), inst.State())
	}

	return BoardView{
		Nodes:    chrome.Stack(views),
		Edges:    nonNil(s.store.Edges()),
		Loops:    nonNil(s.store.Loops()),
		Dangling: nonNil(s.store.DanglingEdges()),
	}
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.boardView())
}

// handleBoardDiff returns the changes since the board with hash ?since=.
// Unknown or missing hashes get the full board.
func (s *Server) handleBoardDiff(w http.ResponseWriter, r *http.Request) {
	view := s.boardView()
	cur := newSnapshot(view)
	old := s.snapshots.get(r.URL.Query().Get("since"))
	s.snapshots.put(cur)

	writeJSON(w, http.StatusOK, computeDiff(old, cur, view))
}

type createRequest struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
	Size fields.Size    `json:"size"`
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}

	inst, err := s.store.Create(req.Type, req.Data, req.Size)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

// nodeResponse is one node as rendered plus its decoded payload
type nodeResponse struct {
	Node    chrome.NodeView `json:"node"`
	Typed   map[string]any  `json:"typed,omitempty"`
	Derived map[string]any  `json:"derived,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	inst, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%s: %w", id, board.ErrNotFound))
		return
	}

	reg := s.store.Registry()
	resp := nodeResponse{Node: chrome.View(reg, inst.ChromeNode(), inst.State())}

	// Unknown types still render; the decode error rides along
	data, err := nodedata.Decode(reg, inst.Type, inst.Data)
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if resp.Typed, err = nodedata.Encode(data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	resp.Derived = nodedata.Derived(data)
	writeJSON(w, http.StatusOK, resp)
}

type patchRequest struct {
	Data fields.Patch `json:"data"`
	Size *fields.Size `json:"size"`
}

func (s *Server) handlePatchNode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.store.Get(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%s: %w", id, board.ErrNotFound))
		return
	}

	var req patchRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Size != nil && !req.Size.Positive() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("size must be positive"))
		return
	}

	s.store.OnChange(id, req.Data, req.Size)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Selected bool `json:"selected"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.Select(mux.Vars(r)["id"], req.Selected); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.store.Get(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%s: %w", id, board.ErrNotFound))
		return
	}

	var req struct {
		Locked bool `json:"locked"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.store.OnChange(id, fields.Patch{board.LockedKey: req.Locked}, nil)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	inst, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%s: %w", id, board.ErrNotFound))
		return
	}

	var req fields.Size
	if !decode(w, r, &req) {
		return
	}

	d := s.store.Registry().ResolveOrPlaceholder(inst.Type)
	size, ok := chrome.Resize(d, inst.State(), req)
	if !ok {
		writeError(w, http.StatusLocked, fmt.Errorf("%s: resize handle is not active", id))
		return
	}

	s.store.OnChange(id, nil, &size)
	writeJSON(w, http.StatusAccepted, size)
}

type fieldRequest struct {
	Value any    `json:"value"`
	Event string `json:"event"` // input or blur
}

type fieldResponse struct {
	Key     string `json:"key"`
	Value   any    `json:"value"`
	Pending bool   `json:"pending"` // a draft is waiting for blur
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, key := vars["id"], vars["key"]

	ed, err := s.store.Editor(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	var req fieldRequest
	if !decode(w, r, &req) {
		return
	}

	switch req.Event {
	case "", "input":
		err = ed.Input(key, req.Value)
	case "blur":
		err = ed.Blur(key)
	default:
		err = fmt.Errorf("unknown field event %q", req.Event)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	_, pending := ed.Draft(key)
	writeJSON(w, http.StatusOK, fieldResponse{Key: key, Value: ed.Value(key), Pending: pending})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var e graph.Edge
	if !decode(w, r, &e) {
		return
	}

	created, err := s.store.Connect(e)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Disconnect(mux.Vars(r)["id"]); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, board.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fields.ErrLocked):
		return http.StatusLocked
	default:
		return http.StatusBadRequest
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Start serves on port until ctx is cancelled
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Info("shutting down web server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

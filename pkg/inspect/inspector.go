// Package inspect provides a development-time window into a running
// reactor engine.
//
// An Inspector implements reactor.Observer and mirrors engine activity
// into its own model: cells, dependency edges, last known values,
// evaluation counts, and callback registrations. The model is served over
// HTTP as JSON, streamed live over a WebSocket, and can be captured as
// point-in-time snapshots to disk or S3.
//
// The engine itself is single-threaded, so the Inspector never calls into
// the Reactor. Observer callbacks mutate the mirror under a write lock on
// the engine owner's goroutine; HTTP handlers only read the mirror. Live
// stream clients should fetch /graph once and then follow /live.
package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/vango-dev/reactor"
)

// CellKind distinguishes the two cell kinds in the mirror.
type CellKind string

const (
	CellKindInput   CellKind = "input"
	CellKindCompute CellKind = "compute"
)

// Cell is the inspector's view of one engine cell. Value holds the last
// value the inspector saw: the stored value for input cells, and the most
// recent callback delivery for compute cells (null until one fires, since
// the inspector never evaluates cells itself).
type Cell struct {
	ID          string   `json:"id"`
	Kind        CellKind `json:"kind"`
	Deps        []string `json:"deps,omitempty"`
	Value       any      `json:"value"`
	Evaluations uint64   `json:"evaluations"`
	Callbacks   int      `json:"callbacks"`
	Seq         int      `json:"seq"`
}

// Graph is the full mirror model, with cells in creation order.
type Graph struct {
	Cells          []Cell `json:"cells"`
	Mutations      uint64 `json:"mutations"`
	CallbacksFired uint64 `json:"callbacks_fired"`
}

// Event is one frame on the live stream.
type Event struct {
	Type      string   `json:"type"`
	Cell      string   `json:"cell,omitempty"`
	Callback  string   `json:"callback,omitempty"`
	Deps      []string `json:"deps,omitempty"`
	Value     any      `json:"value,omitempty"`
	Affected  int      `json:"affected,omitempty"`
	Notified  int      `json:"notified,omitempty"`
	ElapsedMS float64  `json:"elapsed_ms,omitempty"`
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ins *Inspector) {
		if logger != nil {
			ins.logger = logger
		}
	}
}

// WithSink sets the snapshot sink used by POST /snapshots. Without a sink
// the endpoint answers 503.
func WithSink(sink Sink) Option {
	return func(ins *Inspector) {
		ins.sink = sink
	}
}

// WithCheckOrigin sets the origin check for live stream upgrades.
// Defaults to the websocket package's same-origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(ins *Inspector) {
		ins.upgrader.CheckOrigin = fn
	}
}

// Inspector mirrors a Reactor's activity and serves it for inspection.
// Attach it with reactor.WithObserver.
type Inspector struct {
	logger   *slog.Logger
	sink     Sink
	upgrader websocket.Upgrader

	// mu protects the mirror model below.
	mu        sync.RWMutex
	cells     map[string]*Cell
	order     []string
	mutations uint64
	fired     uint64

	// clientsMu protects the live stream client set.
	clientsMu sync.Mutex
	clients   map[*client]struct{}
}

var _ reactor.Observer = (*Inspector)(nil)

// New creates an Inspector.
func New(opts ...Option) *Inspector {
	ins := &Inspector{
		cells:   make(map[string]*Cell),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(ins)
	}
	if ins.logger == nil {
		ins.logger = slog.Default()
	}
	ins.logger = ins.logger.With("component", "inspect")
	return ins
}

// InputCreated implements reactor.Observer.
func (ins *Inspector) InputCreated(id reactor.InputCellID, initial any) {
	ins.mu.Lock()
	ins.addCell(id.String(), CellKindInput, nil, initial)
	ins.mu.Unlock()

	ins.broadcast(Event{Type: "cell_created", Cell: id.String(), Value: initial})
}

// ComputeCreated implements reactor.Observer.
func (ins *Inspector) ComputeCreated(id reactor.ComputeCellID, deps []reactor.CellID) {
	names := make([]string, len(deps))
	for i, dep := range deps {
		names[i] = dep.String()
	}

	ins.mu.Lock()
	ins.addCell(id.String(), CellKindCompute, names, nil)
	ins.mu.Unlock()

	ins.broadcast(Event{Type: "cell_created", Cell: id.String(), Deps: names})
}

// CellEvaluated implements reactor.Observer. Evaluations only bump a
// counter; they are far too frequent to stream.
func (ins *Inspector) CellEvaluated(id reactor.ComputeCellID) {
	ins.mu.Lock()
	if c, ok := ins.cells[id.String()]; ok {
		c.Evaluations++
	}
	ins.mu.Unlock()
}

// InputSet implements reactor.Observer.
func (ins *Inspector) InputSet(id reactor.InputCellID, value any, affected, notified int, elapsed time.Duration) {
	ins.mu.Lock()
	ins.mutations++
	if c, ok := ins.cells[id.String()]; ok {
		c.Value = value
	}
	ins.mu.Unlock()

	ins.broadcast(Event{
		Type:      "input_set",
		Cell:      id.String(),
		Value:     value,
		Affected:  affected,
		Notified:  notified,
		ElapsedMS: float64(elapsed) / float64(time.Millisecond),
	})
}

// CallbackAdded implements reactor.Observer.
func (ins *Inspector) CallbackAdded(cell reactor.ComputeCellID, id reactor.CallbackID) {
	ins.mu.Lock()
	if c, ok := ins.cells[cell.String()]; ok {
		c.Callbacks++
	}
	ins.mu.Unlock()

	ins.broadcast(Event{Type: "callback_added", Cell: cell.String(), Callback: id.String()})
}

// CallbackRemoved implements reactor.Observer.
func (ins *Inspector) CallbackRemoved(cell reactor.ComputeCellID, id reactor.CallbackID) {
	ins.mu.Lock()
	if c, ok := ins.cells[cell.String()]; ok {
		c.Callbacks--
	}
	ins.mu.Unlock()

	ins.broadcast(Event{Type: "callback_removed", Cell: cell.String(), Callback: id.String()})
}

// CallbackFired implements reactor.Observer.
func (ins *Inspector) CallbackFired(cell reactor.ComputeCellID, id reactor.CallbackID, value any) {
	ins.mu.Lock()
	ins.fired++
	if c, ok := ins.cells[cell.String()]; ok {
		c.Value = value
	}
	ins.mu.Unlock()

	ins.broadcast(Event{Type: "callback_fired", Cell: cell.String(), Callback: id.String(), Value: value})
}

// addCell inserts a new mirror cell. Caller holds mu.
func (ins *Inspector) addCell(id string, kind CellKind, deps []string, value any) {
	ins.cells[id] = &Cell{
		ID:    id,
		Kind:  kind,
		Deps:  deps,
		Value: value,
		Seq:   len(ins.order),
	}
	ins.order = append(ins.order, id)
}

// GraphModel returns a copy of the current mirror model.
func (ins *Inspector) GraphModel() Graph {
	ins.mu.RLock()
	defer ins.mu.RUnlock()
	return Graph{
		Cells:          ins.cellList(),
		Mutations:      ins.mutations,
		CallbacksFired: ins.fired,
	}
}

// CellInfo returns the mirror's view of one cell by its ID string.
func (ins *Inspector) CellInfo(id string) (Cell, bool) {
	ins.mu.RLock()
	defer ins.mu.RUnlock()
	c, ok := ins.cells[id]
	if !ok {
		return Cell{}, false
	}
	return *c, true
}

// Snapshot captures the mirror as a point-in-time snapshot.
func (ins *Inspector) Snapshot() *Snapshot {
	ins.mu.RLock()
	defer ins.mu.RUnlock()
	return &Snapshot{
		TakenAt: time.Now().UTC(),
		Cells:   ins.cellList(),
	}
}

// cellList copies the cells in creation order. Caller holds mu.
func (ins *Inspector) cellList() []Cell {
	out := make([]Cell, 0, len(ins.order))
	for _, id := range ins.order {
		out = append(out, *ins.cells[id])
	}
	return out
}

// Router returns the inspector's HTTP API:
//
//	GET  /healthz     liveness probe
//	GET  /graph       the full mirror model
//	GET  /cells/{id}  one cell by ID string, e.g. /cells/input:1
//	POST /snapshots   store a snapshot via the configured sink
//	GET  /live        WebSocket event stream
func (ins *Inspector) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", ins.handleHealthz)
	r.Get("/graph", ins.handleGraph)
	r.Get("/cells/{id}", ins.handleCell)
	r.Post("/snapshots", ins.handleSnapshot)
	r.Get("/live", ins.handleLive)
	return r
}

func (ins *Inspector) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ins.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (ins *Inspector) handleGraph(w http.ResponseWriter, r *http.Request) {
	ins.writeJSON(w, http.StatusOK, ins.GraphModel())
}

func (ins *Inspector) handleCell(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cell, ok := ins.CellInfo(id)
	if !ok {
		ins.writeJSON(w, http.StatusNotFound, map[string]string{"error": "cell not found"})
		return
	}
	ins.writeJSON(w, http.StatusOK, cell)
}

func (ins *Inspector) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if ins.sink == nil {
		ins.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot sink configured"})
		return
	}

	location, err := ins.sink.Store(r.Context(), ins.Snapshot())
	if err != nil {
		ins.logger.Error("snapshot store failed", "error", err)
		ins.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot store failed"})
		return
	}

	ins.logger.Info("snapshot stored", "location", location)
	ins.writeJSON(w, http.StatusCreated, map[string]string{"location": location})
}

func (ins *Inspector) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ins.logger.Error("response encode failed", "error", err)
	}
}

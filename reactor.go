package reactor

import "log/slog"

// ComputeFunc derives a compute cell's value from the current values of its
// dependencies. The slice matches the dependency list passed to
// CreateCompute in length and order.
//
// Compute functions must be pure. The Reactor re-derives values on every
// query and both before and after each mutation, and assumes equal inputs
// produce equal outputs.
type ComputeFunc[T any] func(deps []T) T

// Reactor owns a graph of cells holding values of type T.
//
// Input cells hold a value directly and change only through SetValue.
// Compute cells derive their value from other cells through a pure function
// and are recomputed on demand; nothing is cached. Callbacks registered on
// compute cells fire when a mutation changes the cell's value.
//
// A Reactor is not safe for concurrent use: all methods must be called from
// one goroutine at a time, and compute functions, callbacks, and observers
// must not call back into the Reactor. Cells are never removed, and the
// dependency graph is acyclic by construction since a compute cell can only
// depend on cells that already exist.
type Reactor[T any] struct {
	// graph maps every cell to its dependency list. Input cells map to an
	// empty list. Key presence doubles as the existence check.
	graph map[CellID][]CellID

	// inputs holds the current value of each input cell.
	inputs map[InputCellID]T

	// computes holds each compute cell's derivation function.
	computes map[ComputeCellID]ComputeFunc[T]

	// order lists compute cells in creation order. Mutations visit
	// affected cells in this order so callback delivery is deterministic.
	order []ComputeCellID

	// callbacks is the per-cell callback registry. An inner map is created
	// on first registration and persists even when emptied; RemoveCallback
	// distinguishes the two cases.
	callbacks map[ComputeCellID]map[CallbackID]Callback[T]

	// cbOrder lists each cell's live callbacks in registration order.
	cbOrder map[ComputeCellID][]CallbackID

	equal     func(T, T) bool
	logger    *slog.Logger
	observers []Observer
}

// Option configures a Reactor.
type Option[T any] func(*Reactor[T])

// WithEquals sets the equality function used to decide whether a compute
// cell's value changed across a mutation. If unset, values are compared
// with == for common comparable types and reflect.DeepEqual for others.
func WithEquals[T any](fn func(a, b T) bool) Option[T] {
	return func(r *Reactor[T]) {
		r.equal = fn
	}
}

// WithLogger sets the logger for debug-level activity summaries.
// Defaults to slog.Default().
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(r *Reactor[T]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers an observer for Reactor activity. The option may
// be given multiple times; observers are notified in registration order.
func WithObserver[T any](obs Observer) Option[T] {
	return func(r *Reactor[T]) {
		if obs != nil {
			r.observers = append(r.observers, obs)
		}
	}
}

// New creates an empty Reactor.
func New[T any](opts ...Option[T]) *Reactor[T] {
	r := &Reactor[T]{
		graph:     make(map[CellID][]CellID),
		inputs:    make(map[InputCellID]T),
		computes:  make(map[ComputeCellID]ComputeFunc[T]),
		callbacks: make(map[ComputeCellID]map[CallbackID]Callback[T]),
		cbOrder:   make(map[ComputeCellID][]CallbackID),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "reactor")
	return r
}

// CreateInput registers a new input cell holding initial and returns its
// ID. Input cells have no dependencies and always succeed.
func (r *Reactor[T]) CreateInput(initial T) InputCellID {
	id := InputCellID{id: nextID()}
	r.inputs[id] = initial
	r.graph[id] = nil
	r.observeInputCreated(id, initial)
	r.logger.Debug("input cell created", "cell", id)
	return id
}

// CreateCompute registers a new compute cell deriving its value from deps
// through fn. The dependency list is fixed for the life of the cell and may
// name cells of either kind, in any order, including duplicates; every
// entry must already exist. On the first missing dependency a
// *MissingDependencyError naming it is returned and nothing is registered.
//
// fn is called with the dependency values in declaration order. The Reactor
// does not check that fn actually uses them all.
func (r *Reactor[T]) CreateCompute(deps []CellID, fn ComputeFunc[T]) (ComputeCellID, error) {
	for _, dep := range deps {
		if _, ok := r.graph[dep]; !ok {
			return ComputeCellID{}, &MissingDependencyError{Dependency: dep}
		}
	}

	id := ComputeCellID{id: nextID()}
	edges := make([]CellID, len(deps))
	copy(edges, deps)
	r.graph[id] = edges
	r.computes[id] = fn
	r.order = append(r.order, id)
	r.observeComputeCreated(id, edges)
	r.logger.Debug("compute cell created", "cell", id, "deps", len(edges))
	return id, nil
}

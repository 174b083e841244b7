package reactor

import "time"

// Observer receives notifications about Reactor activity. Implementations
// must be fast and must not call back into the Reactor; they run
// synchronously on the calling goroutine, after the observed operation has
// taken effect. Rejected operations report nothing.
//
// Dependency slices passed to observers are owned by the Reactor and must
// not be retained or modified.
type Observer interface {
	// InputCreated reports a new input cell and its initial value.
	InputCreated(id InputCellID, initial any)

	// ComputeCreated reports a new compute cell and its dependency list.
	ComputeCreated(id ComputeCellID, deps []CellID)

	// CellEvaluated reports one invocation of a compute cell's function.
	// Evaluation is uncached, so a single query or mutation may report the
	// same cell several times.
	CellEvaluated(id ComputeCellID)

	// InputSet reports a completed SetValue: the value written, how many
	// compute cells were affected, how many callback invocations fired,
	// and how long the whole mutation took.
	InputSet(id InputCellID, value any, affected, notified int, elapsed time.Duration)

	// CallbackAdded reports a callback registration.
	CallbackAdded(cell ComputeCellID, id CallbackID)

	// CallbackRemoved reports a callback removal.
	CallbackRemoved(cell ComputeCellID, id CallbackID)

	// CallbackFired reports one callback invocation and the value the
	// callback received.
	CallbackFired(cell ComputeCellID, id CallbackID, value any)
}

// NopObserver implements Observer with no-ops. Embed it to implement only
// the methods you care about.
type NopObserver struct{}

func (NopObserver) InputCreated(InputCellID, any)                      {}
func (NopObserver) ComputeCreated(ComputeCellID, []CellID)             {}
func (NopObserver) CellEvaluated(ComputeCellID)                        {}
func (NopObserver) InputSet(InputCellID, any, int, int, time.Duration) {}
func (NopObserver) CallbackAdded(ComputeCellID, CallbackID)            {}
func (NopObserver) CallbackRemoved(ComputeCellID, CallbackID)          {}
func (NopObserver) CallbackFired(ComputeCellID, CallbackID, any)       {}

func (r *Reactor[T]) observeInputCreated(id InputCellID, initial T) {
	for _, o := range r.observers {
		o.InputCreated(id, initial)
	}
}

func (r *Reactor[T]) observeComputeCreated(id ComputeCellID, deps []CellID) {
	for _, o := range r.observers {
		o.ComputeCreated(id, deps)
	}
}

func (r *Reactor[T]) observeCellEvaluated(id ComputeCellID) {
	for _, o := range r.observers {
		o.CellEvaluated(id)
	}
}

func (r *Reactor[T]) observeInputSet(id InputCellID, value T, affected, notified int, elapsed time.Duration) {
	for _, o := range r.observers {
		o.InputSet(id, value, affected, notified, elapsed)
	}
}

func (r *Reactor[T]) observeCallbackAdded(cell ComputeCellID, id CallbackID) {
	for _, o := range r.observers {
		o.CallbackAdded(cell, id)
	}
}

func (r *Reactor[T]) observeCallbackRemoved(cell ComputeCellID, id CallbackID) {
	for _, o := range r.observers {
		o.CallbackRemoved(cell, id)
	}
}

func (r *Reactor[T]) observeCallbackFired(cell ComputeCellID, id CallbackID, value T) {
	for _, o := range r.observers {
		o.CallbackFired(cell, id, value)
	}
}

package reactor

// Callback receives a compute cell's new value after a mutation changed it.
// Callbacks must not call back into the Reactor.
type Callback[T any] func(value T)

// AddCallback registers fn on the compute cell and returns the callback's
// ID. It reports false if cell names no compute cell in this Reactor. A
// cell may carry any number of callbacks; each fires at most once per
// mutation, in registration order.
func (r *Reactor[T]) AddCallback(cell ComputeCellID, fn Callback[T]) (CallbackID, bool) {
	if _, ok := r.computes[cell]; !ok {
		return CallbackID{}, false
	}

	id := CallbackID{id: nextID()}
	registry, ok := r.callbacks[cell]
	if !ok {
		registry = make(map[CallbackID]Callback[T])
		r.callbacks[cell] = registry
	}
	registry[id] = fn
	r.cbOrder[cell] = append(r.cbOrder[cell], id)
	r.observeCallbackAdded(cell, id)
	return id, true
}

// RemoveCallback deregisters a callback so it never fires again.
//
// It returns ErrNonexistentCell if the cell has no callback registry, which
// is the case for any cell that never had a callback added, and
// ErrNonexistentCallback if the registry exists but does not contain cb.
// A registry persists once created, so removing the same callback twice
// yields ErrNonexistentCallback, not ErrNonexistentCell.
func (r *Reactor[T]) RemoveCallback(cell ComputeCellID, cb CallbackID) error {
	registry, ok := r.callbacks[cell]
	if !ok {
		return ErrNonexistentCell
	}
	if _, ok := registry[cb]; !ok {
		return ErrNonexistentCallback
	}

	delete(registry, cb)
	live := r.cbOrder[cell]
	for i, existing := range live {
		if existing == cb {
			r.cbOrder[cell] = append(live[:i], live[i+1:]...)
			break
		}
	}
	r.observeCallbackRemoved(cell, cb)
	return nil
}

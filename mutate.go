package reactor

import "time"

// snapshot is a cell value captured around a mutation. ok mirrors Value's
// second return.
type snapshot[T any] struct {
	value T
	ok    bool
}

// SetValue stores newValue in the input cell and notifies callbacks on
// every compute cell whose value changed as a result. It reports false,
// changing nothing, if id names no input cell in this Reactor.
//
// The mutation runs in two phases. First every compute cell that
// transitively depends on the input is found and its current value is
// captured. Then the input is overwritten, the affected cells are
// re-derived, and for each cell whose value differs from its captured one
// every registered callback is invoked exactly once with the new value.
// A cell whose capture failed to resolve counts as changed once it
// resolves. Cells are visited in creation order and a cell's callbacks run
// in registration order.
func (r *Reactor[T]) SetValue(id InputCellID, newValue T) bool {
	if _, ok := r.inputs[id]; !ok {
		return false
	}
	start := time.Now()

	affected := make([]ComputeCellID, 0, len(r.order))
	for _, cell := range r.order {
		if r.dependsOn(cell, id) {
			affected = append(affected, cell)
		}
	}

	before := make([]snapshot[T], len(affected))
	for i, cell := range affected {
		value, ok := r.Value(cell)
		before[i] = snapshot[T]{value: value, ok: ok}
	}

	r.inputs[id] = newValue

	notified := 0
	for i, cell := range affected {
		after, ok := r.Value(cell)
		if !ok {
			// Still unresolvable; cannot happen while the graph invariants
			// hold.
			continue
		}
		if before[i].ok && r.equals(before[i].value, after) {
			continue
		}
		for _, cbID := range r.cbOrder[cell] {
			r.callbacks[cell][cbID](after)
			notified++
			r.observeCallbackFired(cell, cbID, after)
		}
	}

	elapsed := time.Since(start)
	r.observeInputSet(id, newValue, len(affected), notified, elapsed)
	r.logger.Debug("input set", "cell", id, "affected", len(affected), "notified", notified, "elapsed", elapsed)
	return true
}

// dependsOn reports whether from transitively depends on target, walking
// dependency edges depth-first with an explicit stack. The graph is
// acyclic, so the seen set only guards against re-walking shared subtrees.
func (r *Reactor[T]) dependsOn(from, target CellID) bool {
	stack := []CellID{from}
	seen := make(map[CellID]bool, len(r.graph))
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == target {
			return true
		}
		if seen[node] {
			continue
		}
		seen[node] = true
		stack = append(stack, r.graph[node]...)
	}
	return false
}

package reactor

// Value returns the current value of the cell.
//
// For an input cell this is the stored value. For a compute cell every
// dependency is resolved recursively and the cell's function is applied to
// the results; nothing is cached between calls. The second return is false
// when id names no cell in this Reactor or when a dependency cannot be
// resolved.
func (r *Reactor[T]) Value(id CellID) (T, bool) {
	switch cell := id.(type) {
	case InputCellID:
		value, ok := r.inputs[cell]
		return value, ok
	case ComputeCellID:
		fn, ok := r.computes[cell]
		if !ok {
			var zero T
			return zero, false
		}
		deps := r.graph[cell]
		args := make([]T, len(deps))
		for i, dep := range deps {
			value, ok := r.Value(dep)
			if !ok {
				var zero T
				return zero, false
			}
			args[i] = value
		}
		value := fn(args)
		r.observeCellEvaluated(cell)
		return value, true
	default:
		var zero T
		return zero, false
	}
}

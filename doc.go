// Package reactor implements a spreadsheet-like graph of reactive cells.
//
// A Reactor holds two kinds of cells. Input cells store a value of type T
// and change only when the caller sets them. Compute cells declare an
// ordered list of dependencies at creation and derive their value from
// those dependencies through a pure function; they store nothing and are
// recomputed from scratch on every read.
//
// Mutating an input with SetValue re-derives every compute cell downstream
// of it and fires the callbacks of each cell whose value actually changed,
// exactly once per callback, with the new value:
//
//	r := reactor.New[int]()
//	price := r.CreateInput(40)
//	tax, _ := r.CreateCompute([]reactor.CellID{price}, func(deps []int) int {
//		return deps[0] / 5
//	})
//	r.AddCallback(tax, func(v int) { fmt.Println("tax is now", v) })
//	r.SetValue(price, 50) // prints "tax is now 10"
//
// A Reactor is single-threaded by contract. Cross-cutting concerns live in
// the surrounding packages: pkg/observe exports Prometheus and OpenTelemetry
// observers, pkg/inspect serves a live view of a running graph over HTTP,
// and pkg/rtest has helpers for testing code built on the engine.
package reactor

// Package rtest provides small helpers for testing code built on the
// reactor engine.
package rtest

import (
	"testing"

	"github.com/vango-dev/reactor"
)

// Recorder captures callback invocations so tests can assert on firing
// counts and delivered values.
//
// Example:
//
//	rec := rtest.NewRecorder[int]()
//	r.AddCallback(cell, rec.Callback())
//	r.SetValue(in, 3)
//	if rec.Count() != 1 {
//	    t.Errorf("expected one firing, got %d", rec.Count())
//	}
type Recorder[T any] struct {
	values []T
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Callback returns the callback to register with AddCallback. Every
// invocation is appended to the recorder.
func (rec *Recorder[T]) Callback() reactor.Callback[T] {
	return func(v T) {
		rec.values = append(rec.values, v)
	}
}

// Count returns how many times the callback has fired.
func (rec *Recorder[T]) Count() int {
	return len(rec.values)
}

// Values returns the delivered values in firing order.
func (rec *Recorder[T]) Values() []T {
	out := make([]T, len(rec.values))
	copy(out, rec.values)
	return out
}

// Last returns the most recently delivered value, and false if the
// callback never fired.
func (rec *Recorder[T]) Last() (T, bool) {
	if len(rec.values) == 0 {
		var zero T
		return zero, false
	}
	return rec.values[len(rec.values)-1], true
}

// Reset forgets every recorded invocation.
func (rec *Recorder[T]) Reset() {
	rec.values = rec.values[:0]
}

// ExpectValue asserts that the cell resolves to want.
//
// Example:
//
//	rtest.ExpectValue(t, r, total, 54.0)
func ExpectValue[T comparable](t *testing.T, r *reactor.Reactor[T], id reactor.CellID, want T) {
	t.Helper()
	got, ok := r.Value(id)
	if !ok {
		t.Errorf("expected cell %v to resolve", id)
		return
	}
	if got != want {
		t.Errorf("expected cell %v to hold %v, got %v", id, want, got)
	}
}

// ExpectNoValue asserts that the ID resolves to nothing.
func ExpectNoValue[T any](t *testing.T, r *reactor.Reactor[T], id reactor.CellID) {
	t.Helper()
	if got, ok := r.Value(id); ok {
		t.Errorf("expected cell %v to not resolve, got %v", id, got)
	}
}

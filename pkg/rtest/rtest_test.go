package rtest

import (
	"testing"

	"github.com/vango-dev/reactor"
)

func TestRecorder(t *testing.T) {
	r := reactor.New[int]()
	in := r.CreateInput(1)
	plusOne, err := r.CreateCompute([]reactor.CellID{in}, func(deps []int) int {
		return deps[0] + 1
	})
	if err != nil {
		t.Fatalf("CreateCompute: %v", err)
	}

	rec := NewRecorder[int]()
	if _, ok := r.AddCallback(plusOne, rec.Callback()); !ok {
		t.Fatal("AddCallback failed")
	}

	if rec.Count() != 0 {
		t.Fatalf("expected a fresh recorder to be empty, got %d", rec.Count())
	}
	if _, ok := rec.Last(); ok {
		t.Fatal("expected Last to report nothing before any firing")
	}

	r.SetValue(in, 2)
	r.SetValue(in, 5)

	if rec.Count() != 2 {
		t.Fatalf("expected 2 firings, got %d", rec.Count())
	}
	values := rec.Values()
	if len(values) != 2 || values[0] != 3 || values[1] != 6 {
		t.Errorf("expected [3 6], got %v", values)
	}
	if last, ok := rec.Last(); !ok || last != 6 {
		t.Errorf("expected last value 6, got %v (ok=%v)", last, ok)
	}

	// Values returns a copy; mutating it must not disturb the recorder.
	values[0] = 99
	if again := rec.Values(); again[0] != 3 {
		t.Errorf("expected the recorder to be isolated from returned slices, got %v", again)
	}

	rec.Reset()
	if rec.Count() != 0 {
		t.Errorf("expected Reset to clear the recorder, got %d", rec.Count())
	}
}

func TestExpectHelpers(t *testing.T) {
	r := reactor.New[int]()
	in := r.CreateInput(7)
	double, err := r.CreateCompute([]reactor.CellID{in}, func(deps []int) int {
		return deps[0] * 2
	})
	if err != nil {
		t.Fatalf("CreateCompute: %v", err)
	}

	ExpectValue(t, r, in, 7)
	ExpectValue(t, r, double, 14)
	ExpectNoValue(t, r, reactor.ComputeCellID{})
}

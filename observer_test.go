package reactor

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

// recordingObserver captures the event stream for assertions. Evaluation
// events are counted per cell instead of appended, since one mutation
// reports many of them.
type recordingObserver struct {
	events []string
	evals  map[ComputeCellID]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{evals: make(map[ComputeCellID]int)}
}

func (o *recordingObserver) InputCreated(id InputCellID, initial any) {
	o.events = append(o.events, fmt.Sprintf("input_created %v", initial))
}

func (o *recordingObserver) ComputeCreated(id ComputeCellID, deps []CellID) {
	o.events = append(o.events, fmt.Sprintf("compute_created deps=%d", len(deps)))
}

func (o *recordingObserver) CellEvaluated(id ComputeCellID) {
	o.evals[id]++
}

func (o *recordingObserver) InputSet(id InputCellID, value any, affected, notified int, elapsed time.Duration) {
	if elapsed < 0 {
		o.events = append(o.events, "negative elapsed")
		return
	}
	o.events = append(o.events, fmt.Sprintf("input_set value=%v affected=%d notified=%d", value, affected, notified))
}

func (o *recordingObserver) CallbackAdded(cell ComputeCellID, id CallbackID) {
	o.events = append(o.events, "callback_added")
}

func (o *recordingObserver) CallbackRemoved(cell ComputeCellID, id CallbackID) {
	o.events = append(o.events, "callback_removed")
}

func (o *recordingObserver) CallbackFired(cell ComputeCellID, id CallbackID, value any) {
	o.events = append(o.events, fmt.Sprintf("callback_fired value=%v", value))
}

func TestObserverEventStream(t *testing.T) {
	obs := newRecordingObserver()
	r := New[int](WithObserver[int](obs))

	in := r.CreateInput(1)
	plusOne, err := r.CreateCompute([]CellID{in}, func(deps []int) int {
		return deps[0] + 1
	})
	if err != nil {
		t.Fatalf("CreateCompute: %v", err)
	}
	cb, _ := r.AddCallback(plusOne, func(int) {})
	r.SetValue(in, 3)
	if err := r.RemoveCallback(plusOne, cb); err != nil {
		t.Fatalf("RemoveCallback: %v", err)
	}

	want := []string{
		"input_created 1",
		"compute_created deps=1",
		"callback_added",
		"callback_fired value=4",
		"input_set value=3 affected=1 notified=1",
		"callback_removed",
	}
	if !reflect.DeepEqual(obs.events, want) {
		t.Errorf("unexpected event stream:\n got %v\nwant %v", obs.events, want)
	}

	// The mutation snapshots the cell before and after the write, so the
	// cell evaluates twice.
	if got := obs.evals[plusOne]; got != 2 {
		t.Errorf("expected 2 evaluations, got %d", got)
	}
}

func TestObserverSilentOnRejectedOperations(t *testing.T) {
	obs := newRecordingObserver()
	r := New[int](WithObserver[int](obs))

	if r.SetValue(InputCellID{}, 1) {
		t.Fatal("expected SetValue on a zero-valued ID to fail")
	}
	if _, ok := r.AddCallback(ComputeCellID{}, func(int) {}); ok {
		t.Fatal("expected AddCallback on a zero-valued ID to fail")
	}
	if _, err := r.CreateCompute([]CellID{InputCellID{}}, func(deps []int) int { return 0 }); err == nil {
		t.Fatal("expected CreateCompute with a missing dependency to fail")
	}

	if len(obs.events) != 0 {
		t.Errorf("expected no events for rejected operations, got %v", obs.events)
	}
}

func TestObserverUncachedEvaluationCounts(t *testing.T) {
	// in -> a -> b. Reading b re-derives a as well, and a mutation reads
	// every affected cell twice.
	obs := newRecordingObserver()
	r := New[int](WithObserver[int](obs))

	in := r.CreateInput(1)
	a, err := r.CreateCompute([]CellID{in}, func(deps []int) int {
		return deps[0] + 1
	})
	if err != nil {
		t.Fatalf("CreateCompute a: %v", err)
	}
	b, err := r.CreateCompute([]CellID{a}, func(deps []int) int {
		return deps[0] * 2
	})
	if err != nil {
		t.Fatalf("CreateCompute b: %v", err)
	}

	r.Value(b)
	if obs.evals[a] != 1 || obs.evals[b] != 1 {
		t.Fatalf("expected one evaluation each after a read, got a=%d b=%d", obs.evals[a], obs.evals[b])
	}

	r.SetValue(in, 2)

	// Before and after phases each read a directly and again through b.
	if obs.evals[a] != 5 {
		t.Errorf("expected 5 evaluations of a, got %d", obs.evals[a])
	}
	if obs.evals[b] != 3 {
		t.Errorf("expected 3 evaluations of b, got %d", obs.evals[b])
	}
}

// taggedObserver appends its tag to a shared log, for fanout order checks.
type taggedObserver struct {
	NopObserver
	tag string
	log *[]string
}

func (o taggedObserver) InputCreated(InputCellID, any) {
	*o.log = append(*o.log, o.tag)
}

func TestObserverFanoutOrder(t *testing.T) {
	var log []string
	r := New[int](
		WithObserver[int](taggedObserver{tag: "first", log: &log}),
		WithObserver[int](taggedObserver{tag: "second", log: &log}),
	)

	r.CreateInput(1)

	if !reflect.DeepEqual(log, []string{"first", "second"}) {
		t.Errorf("expected observers in registration order, got %v", log)
	}
}

package vox

import (
	"math"
	"testing"
)

func TestPushRoutineReplacesSameKindEvents(t *testing.T) {
	rt := NewRuntime()

	rt.PushRoutine(NewRoutine("a",
		RoutineEvent{Delta: 0.0, Event: SoundEvent(true)},
		RoutineEvent{Delta: 0.5, Event: SoundEvent(false)},
	))

	var dispatched []Event
	rt.Process(0.0, func(e Event) { dispatched = append(dispatched, e) })
	if len(dispatched) != 1 || dispatched[0].Sound != true {
		t.Fatalf("expected the immediate sound=true event to fire, got %v", dispatched)
	}

	// Pushing a new routine that also carries an EventSound must remove the
	// still-pending sound=false event rather than stack alongside it.
	rt.PushRoutine(NewRoutine("b",
		RoutineEvent{Delta: 0.1, Event: SoundEvent(true)},
	))

	dispatched = nil
	rt.Process(1.0, func(e Event) { dispatched = append(dispatched, e) })
	if len(dispatched) != 1 {
		t.Fatalf("expected exactly one dispatched event after replacement, got %d: %v", len(dispatched), dispatched)
	}
	if dispatched[0].Kind != EventSound || dispatched[0].Sound != true {
		t.Fatalf("expected the replacement routine's event to fire, got %v", dispatched[0])
	}
}

func TestPushRoutineFoldsDelayOntoFollowingEvent(t *testing.T) {
	rt := NewRuntime()
	// Cumulative fire times: tongue event at t=0.1, sound event at t=0.3.
	rt.PushRoutine(NewRoutine("a",
		RoutineEvent{Delta: 0.1, Event: TongueEvent(0, nil)},
		RoutineEvent{Delta: 0.2, Event: SoundEvent(true)},
	))

	// Replacing only the (still-pending) tongue event must fold its delay
	// onto the sound event so the sound event's absolute fire time (t=0.3)
	// is unaffected. Step with a small, regular dt (as a real-time caller
	// would) so two events never become due within the same Process call.
	rt.PushRoutine(NewRoutine("b",
		RoutineEvent{Delta: 0.05, Event: TongueEvent(1, nil)},
	))

	const step = 0.01
	fired := map[EventKind]float64{}
	var order []EventKind
	var elapsed float64
	for i := 0; i < 40 && len(fired) < 2; i++ {
		elapsed += step
		rt.Process(step, func(e Event) {
			order = append(order, e.Kind)
			fired[e.Kind] = elapsed
		})
	}

	if len(order) != 2 || order[0] != EventTongue || order[1] != EventSound {
		t.Fatalf("expected tongue then sound, got %v", order)
	}
	if got := fired[EventTongue]; math.Abs(got-0.05) > 1e-9 {
		t.Fatalf("expected tongue event at t=0.05, fired at %v", got)
	}
	if got := fired[EventSound]; math.Abs(got-0.30) > 1e-9 {
		t.Fatalf("expected the sound event at its original absolute time t=0.3 (delay folded), fired at %v", got)
	}
}

func TestRuntimeProcessDispatchesInOrder(t *testing.T) {
	rt := NewRuntime()
	rt.PushRoutine(NewRoutine("r",
		RoutineEvent{Delta: 0.0, Event: PitchEvent(0.1)},
		RoutineEvent{Delta: 0.01, Event: PitchEvent(0.2)},
		RoutineEvent{Delta: 0.01, Event: PitchEvent(0.3)},
	))

	// Step with dt equal to the events' spacing so exactly one event becomes
	// due per call: Process subtracts dt from the head only, so after a pop
	// the next event keeps its full delta until the following call.
	var values []float64
	rt.Process(0.01, func(e Event) { values = append(values, e.PitchValue) })
	if len(values) != 1 || values[0] != 0.1 {
		t.Fatalf("expected only the t=0 event to fire, got %v", values)
	}

	rt.Process(0.01, func(e Event) { values = append(values, e.PitchValue) })
	if len(values) != 2 || values[1] != 0.2 {
		t.Fatalf("expected the second event next, got %v", values)
	}

	rt.Process(0.01, func(e Event) { values = append(values, e.PitchValue) })
	if len(values) != 3 || values[2] != 0.3 {
		t.Fatalf("expected the third event last, got %v", values)
	}
}

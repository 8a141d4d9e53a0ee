package vox

// EventKind tags the six routine event variants. Kind-matching for the
// runtime's replace-on-push behavior is by this tag alone, never by
// event content.
type EventKind int

const (
	EventTongue EventKind = iota
	EventConstriction
	EventVelum
	EventPitch
	EventSound
	EventForceDiameter
)

// Event is a single timed parameter change. It is a flat struct rather
// than a tagged union so it round-trips through encoding/json directly;
// which fields are meaningful is determined by Kind. Pointer fields are
// "optional" in the same sense the preset package uses them: nil means
// "not specified".
type Event struct {
	Kind EventKind

	// EventTongue
	TongueRandom bool
	TongueIndex  int
	Speed        *float64

	// EventConstriction
	ConstrictionIndex int
	Strength          *float64

	// EventVelum
	Openness float64

	// EventPitch
	PitchValue float64

	// EventSound
	Sound bool
}

func TongueEvent(index int, speed *float64) Event {
	return Event{Kind: EventTongue, TongueIndex: index, Speed: speed}
}

func TongueRandomEvent(speed *float64) Event {
	return Event{Kind: EventTongue, TongueRandom: true, Speed: speed}
}

func ConstrictionEvent(i int, strength *float64) Event {
	return Event{Kind: EventConstriction, ConstrictionIndex: i, Strength: strength}
}

func VelumEvent(openness float64) Event {
	return Event{Kind: EventVelum, Openness: openness}
}

func PitchEvent(value float64) Event {
	return Event{Kind: EventPitch, PitchValue: value}
}

func SoundEvent(on bool) Event {
	return Event{Kind: EventSound, Sound: on}
}

func ForceDiameterEvent() Event {
	return Event{Kind: EventForceDiameter}
}

// RoutineEvent is one (delta-seconds-since-the-previous-event, Event) pair,
// the unit both a Routine and the Runtime queue are built from.
type RoutineEvent struct {
	Delta float64
	Event Event
}

// Routine is a named, ordered list of timed parameter changes that can be
// triggered as a unit.
type Routine struct {
	Name   string
	Events []RoutineEvent
}

// NewRoutine builds a routine from (deltaSeconds, Event) pairs.
func NewRoutine(name string, events ...RoutineEvent) *Routine {
	r := &Routine{Name: name, Events: append([]RoutineEvent(nil), events...)}
	return r
}

// AddEvent appends one timed event.
func (r *Routine) AddEvent(delta float64, ev Event) {
	r.Events = append(r.Events, RoutineEvent{Delta: delta, Event: ev})
}

// Runtime is the timed merge/replace event queue driving routine
// playback. Event delays are deltas from the previous queue entry, not
// absolute times; the head entry's delay is always the remaining time
// until the next dispatch.
type Runtime struct {
	events []RoutineEvent
}

// NewRuntime constructs an empty runtime queue.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// PushRoutine first removes every queued event whose kind appears in
// routine (preserving subsequent timing by folding a removed entry's
// delay onto the following one), then merges routine's events into the
// queue by delta-subtraction: whichever head has the smaller delta is
// emitted first, and the other head's delta is decremented by that
// amount.
func (rt *Runtime) PushRoutine(routine *Routine) {
	kinds := map[EventKind]bool{}
	for _, e := range routine.Events {
		kinds[e.Event.Kind] = true
	}

	i := 0
	for i < len(rt.events) {
		if kinds[rt.events[i].Event.Kind] {
			if i < len(rt.events)-1 {
				rt.events[i+1].Delta += rt.events[i].Delta
			}
			rt.events = append(rt.events[:i], rt.events[i+1:]...)
		} else {
			i++
		}
	}

	events := append([]RoutineEvent(nil), routine.Events...)
	merged := make([]RoutineEvent, 0, len(rt.events)+len(events))

	for len(rt.events) > 0 && len(events) > 0 {
		if rt.events[0].Delta < events[0].Delta {
			events[0].Delta -= rt.events[0].Delta
			merged = append(merged, rt.events[0])
			rt.events = rt.events[1:]
		} else {
			rt.events[0].Delta -= events[0].Delta
			merged = append(merged, events[0])
			events = events[1:]
		}
	}

	merged = append(merged, rt.events...)
	merged = append(merged, events...)
	rt.events = merged
}

// Process subtracts dt from the head delay once, then dispatches, in
// queue order, the head and every following event whose delay has
// reached zero or below.
func (rt *Runtime) Process(dt float64, dispatch func(Event)) {
	if len(rt.events) == 0 {
		return
	}
	rt.events[0].Delta -= dt
	for len(rt.events) > 0 && rt.events[0].Delta <= 0.0 {
		ev := rt.events[0].Event
		rt.events = rt.events[1:]
		dispatch(ev)
	}
}

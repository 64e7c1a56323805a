package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const (
	// EventNextDemo asks the demo system to advance to the next demo.
	EventNextDemo = "demo.next"
	// EventSelectDemo asks for a specific demo; Data is the demo name.
	EventSelectDemo = "demo.select"
	// EventReloadDemo asks for the current demo to be rebuilt from its scene.
	EventReloadDemo = "demo.reload"
	// EventGrab is emitted when the player presses grab.
	EventGrab = "player.grab"
)

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Take removes and returns the queued events of one type, leaving the rest.
func (q *EventQueue) Take(typ string) []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	var out []Event
	rest := q.items[:0]
	for _, evt := range q.items {
		if evt.Type == typ {
			out = append(out, evt)
			continue
		}
		rest = append(rest, evt)
	}
	q.items = rest
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}

package utils

type Event struct {
	Event  string      `json:"event"`
	UserID string      `json:"-"`
	Data   interface{} `json:"data"`
}

// EventBus fans board and menu changes out to the websocket hub. Publishing
// never blocks: events are dropped while the buffer is full.
type EventBus struct {
	events chan Event
}

func NewEventBus() *EventBus {
	return &EventBus{
		events: make(chan Event, 100),
	}
}

func (eb *EventBus) Publish(event, userID string, data interface{}) {
	e := Event{Event: event, UserID: userID, Data: data}
	select {
	case eb.events <- e:
	default:
	}
}

func (eb *EventBus) SubscribeCh() <-chan Event {
	return eb.events
}

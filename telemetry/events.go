// Package telemetry provides ecosystem health tracking, bookmarking, and snapshots.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventRescueSpawn
	EventSave
	EventTemperatureSwap
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	case EventRescueSpawn:
		return "rescue_spawn"
	case EventSave:
		return "save"
	case EventTemperatureSwap:
		return "temperature_swap"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name for JSON.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Event represents a single notable simulation event.
type Event struct {
	Type EventType `json:"type"`
	Tick int64     `json:"tick"`
	Year float64   `json:"year"`
	ID   uint32    `json:"id,omitempty"`

	// Optional fields depending on event type
	ParentID uint32  `json:"parent_id,omitempty"` // births
	Amount   float64 `json:"amount,omitempty"`    // energy at birth/death, save count
}

// NewBirthEvent creates a reproduction event.
func NewBirthEvent(tick int64, year float64, childID, parentID uint32, energy float64) Event {
	return Event{Type: EventBirth, Tick: tick, Year: year, ID: childID, ParentID: parentID, Amount: energy}
}

// NewDeathEvent creates a death event carrying the energy returned to the ground.
func NewDeathEvent(tick int64, year float64, id uint32, energy float64) Event {
	return Event{Type: EventDeath, Tick: tick, Year: year, ID: id, Amount: energy}
}

// NewRescueSpawnEvent creates an event for a spawn made to hold the minimum.
func NewRescueSpawnEvent(tick int64, year float64, id uint32) Event {
	return Event{Type: EventRescueSpawn, Tick: tick, Year: year, ID: id}
}

// NewSaveEvent creates an event for a flushed save slot.
func NewSaveEvent(tick int64, year float64, count int) Event {
	return Event{Type: EventSave, Tick: tick, Year: year, Amount: float64(count)}
}

// EventLog is a bounded buffer of recent events. When full, the oldest
// events are dropped.
type EventLog struct {
	events []Event
	limit  int
	total  int
}

// NewEventLog creates a log holding at most limit events.
func NewEventLog(limit int) *EventLog {
	if limit < 1 {
		limit = 1
	}
	return &EventLog{limit: limit}
}

// Add appends an event.
func (l *EventLog) Add(e Event) {
	if len(l.events) == l.limit {
		copy(l.events, l.events[1:])
		l.events = l.events[:l.limit-1]
	}
	l.events = append(l.events, e)
	l.total++
}

// Drain returns the buffered events and clears the buffer.
func (l *EventLog) Drain() []Event {
	out := l.events
	l.events = nil
	return out
}

// Total returns the number of events ever added.
func (l *EventLog) Total() int {
	return l.total
}

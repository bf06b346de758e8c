package events

// EventCollector is embedded in aggregates to buffer the events they raise.
// It is not safe for concurrent use.
type EventCollector struct {
	pending []DomainEvent
}

// Record buffers an event. Nil events are ignored.
func (c *EventCollector) Record(event DomainEvent) {
	if event == nil {
		return
	}
	c.pending = append(c.pending, event)
}

// Pending reports how many events are buffered.
func (c *EventCollector) Pending() int {
	return len(c.pending)
}

// ClearEvents hands over the buffered events in record order and empties the
// buffer.
func (c *EventCollector) ClearEvents() []DomainEvent {
	out := c.pending
	c.pending = nil
	return out
}

package notifications

import "context"

// Batch collects events raised inside a transaction so they can be published
// once the transaction commits. The zero value is ready to use.
type Batch struct {
	events []Event
}

// Add appends events to the batch.
func (b *Batch) Add(events ...Event) {
	b.events = append(b.events, events...)
}

// Events returns the collected events in order.
func (b *Batch) Events() []Event {
	return b.events
}

// Publish hands every collected event to p.
func (b *Batch) Publish(ctx context.Context, p Publisher) {
	for _, e := range b.events {
		p.Publish(ctx, e)
	}
}

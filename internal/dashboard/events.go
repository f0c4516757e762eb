package dashboard

import (
	"time"

	"netdash/internal/models"
)

// Trigger says what started a refresh
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerTimer    Trigger = "timer"
	TriggerSelector Trigger = "selector"
	TriggerManual   Trigger = "manual"
)

// Event is published after every refresh that was not superseded.
// Exactly one of Snapshot and Err is set. Snapshot events are delivered in
// the order the snapshots were applied, so their Seq only grows.
type Event struct {
	Seq      uint64
	Trigger  Trigger
	Snapshot *models.Snapshot
	Err      error
	Duration time.Duration
	At       time.Time
}

// Subscribe registers fn to receive refresh events. fn runs on the refreshing
// goroutine and must not block or call back into a refresh; the next refresh
// cannot apply until fn returns. The returned func removes the subscription.
func (o *Orchestrator) Subscribe(fn func(Event)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subscribers, id)
		o.mu.Unlock()
	}
}

func (o *Orchestrator) publish(evt Event) {
	o.mu.Lock()
	subs := make([]func(Event), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(evt)
	}
}

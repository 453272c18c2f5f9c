package engine

import "github.com/the4estate/t4e/internal/cet"

// TriggerBus carries TriggerContexts from producers (time advance,
// player actions) to the rule pipeline. Publish synchronously invokes
// all subscribers in subscription order and returns when the last one
// has finished.
type TriggerBus struct {
	subs   []subscriber[cet.TriggerContext]
	nextID int
}

// NewTriggerBus creates an empty bus.
func NewTriggerBus() *TriggerBus {
	return &TriggerBus{}
}

// Subscribe registers fn; the returned func removes the subscription.
// The dispatcher subscribes exactly once at wiring time.
func (b *TriggerBus) Subscribe(fn func(cet.TriggerContext)) (remove func()) {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber[cet.TriggerContext]{id: id, fn: fn})
	return func() { b.subs = removeSubscriber(b.subs, id) }
}

// Publish delivers ctx to every subscriber, inline.
func (b *TriggerBus) Publish(ctx cet.TriggerContext) {
	notify(b.subs, ctx)
}

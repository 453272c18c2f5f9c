// Package engine wires the runtime plumbing around the pure CET
// evaluator: the signal hub, the trigger bus, the timeline scheduler,
// the fired ledger, the time service, and the dispatchers that connect
// them.
//
// ARCHITECTURE:
//
// Everything here is single-threaded and synchronous. A notification
// (hub signal or bus publish) invokes its subscribers inline, in
// subscription order, before returning. Advancing time by N segments
// performs all N ticks (scheduler firings, rule evaluation, effect
// application) before control returns to the caller. There is no
// queueing, no background goroutine, and no suspension point.
//
// Determinism rests on three invariants:
//   - the calendar never skips a slot (calendar.Date.NextSegment is total),
//   - subscription order is fixed by the composing layer at wiring time,
//   - staged effects are ordered by the evaluator, not by map iteration.
//
// The composing layer must subscribe producers (scheduler, cadence)
// before consumers that want to observe "state after this tick's
// effects"; the hub itself imposes no ordering beyond subscription
// order.
package engine

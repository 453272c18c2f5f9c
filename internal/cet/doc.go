// Package cet holds the authored rule model and its pure evaluator.
//
// CET stands for condition/effect/trigger: authored rules bind a trigger
// kind and a conjunction of conditions to an ordered list of effects.
// Evaluation never mutates anything: it reads a trigger occurrence plus a
// world snapshot and returns a deterministically ordered list of staged
// effect invocations. Idempotency is consulted through the Ledger
// interface so a rule fires at most once per trigger occurrence.
//
// Conditions and effects are closed sum types: one concrete struct per
// kind, carrying only the operands that kind needs. Evaluation and
// application are type switches; a type the switch does not know is
// treated as "condition false" / "effect no-op" rather than an error.
package cet

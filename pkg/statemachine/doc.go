// Package statemachine provides a small transition table for entities
// whose state is persisted externally, such as a subscription row.
//
// A Machine holds the legal (from, event) -> to transitions and answers
// legality queries without tracking a current state of its own, which
// keeps it request-scoped friendly: many goroutines can consult one
// shared table while the authoritative state lives in the database.
//
// # Usage
//
//	m := statemachine.New()
//	_ = m.AddTransition(
//		statemachine.StringState("active"),
//		statemachine.StringState("past_due"),
//		statemachine.StringEvent("payment_failed"),
//	)
//
//	if !m.Allowed(statemachine.StringState(row.Status), event) {
//		return ErrInvalidTransition
//	}
package statemachine

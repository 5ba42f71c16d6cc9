package subscription

import (
	"github.com/momentumhq/billingkit/pkg/statemachine"
)

// Transition events consulted by the Manager before any mutation.
// Activation is absent on purpose: it is an upsert that establishes a
// fresh paid relationship from any prior state.
const (
	evRenew          statemachine.StringEvent = "renew"
	evPaymentFailure statemachine.StringEvent = "payment_failure"
	evCancel         statemachine.StringEvent = "cancel"
	evExpire         statemachine.StringEvent = "expire"
)

// newTransitionTable declares the legal subscription status transitions.
// Cancelled still behaves as active for access control until its
// effective date, but it only ever moves forward to expired.
func newTransitionTable() *statemachine.Machine {
	m := statemachine.New()

	add := func(from, to Status, ev statemachine.StringEvent) {
		if err := m.AddTransition(statemachine.StringState(from), statemachine.StringState(to), ev); err != nil {
			panic("subscription: invalid transition table: " + err.Error())
		}
	}

	add(StatusActive, StatusActive, evRenew)
	add(StatusPastDue, StatusActive, evRenew)

	add(StatusActive, StatusPastDue, evPaymentFailure)
	add(StatusPastDue, StatusPastDue, evPaymentFailure)

	add(StatusActive, StatusCancelled, evCancel)
	add(StatusPastDue, StatusCancelled, evCancel)

	add(StatusActive, StatusExpired, evExpire)
	add(StatusPastDue, StatusExpired, evExpire)
	add(StatusCancelled, StatusExpired, evExpire)

	return m
}

func (m *Manager) allowed(status Status, ev statemachine.StringEvent) bool {
	return m.table.Allowed(statemachine.StringState(status), ev)
}

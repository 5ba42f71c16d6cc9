package statemachine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentumhq/billingkit/pkg/statemachine"
)

func TestMachine_Allowed(t *testing.T) {
	t.Parallel()

	active := statemachine.StringState("active")
	pastDue := statemachine.StringState("past_due")
	expired := statemachine.StringState("expired")
	fail := statemachine.StringEvent("payment_failed")
	renew := statemachine.StringEvent("renew")

	m := statemachine.New()
	require.NoError(t, m.AddTransition(active, pastDue, fail))
	require.NoError(t, m.AddTransition(pastDue, active, renew))

	assert.True(t, m.Allowed(active, fail))
	assert.True(t, m.Allowed(pastDue, renew))
	assert.False(t, m.Allowed(active, renew))
	assert.False(t, m.Allowed(expired, fail))
	assert.False(t, m.Allowed(nil, fail))
	assert.False(t, m.Allowed(active, nil))
}

func TestMachine_Fire(t *testing.T) {
	t.Parallel()

	active := statemachine.StringState("active")
	cancelled := statemachine.StringState("cancelled")
	cancel := statemachine.StringEvent("cancel")

	m := statemachine.New()
	require.NoError(t, m.AddTransition(active, cancelled, cancel))

	to, err := m.Fire(active, cancel)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", to.Name())

	_, err = m.Fire(cancelled, cancel)
	require.Error(t, err)
	assert.True(t, statemachine.IsNoTransitionError(err))
}

func TestMachine_DuplicateTransition(t *testing.T) {
	t.Parallel()

	active := statemachine.StringState("active")
	expired := statemachine.StringState("expired")
	ev := statemachine.StringEvent("expire")

	m := statemachine.New()
	require.NoError(t, m.AddTransition(active, expired, ev))
	assert.ErrorIs(t, m.AddTransition(active, expired, ev), statemachine.ErrDuplicateTransition)
}

func TestMachine_NilArguments(t *testing.T) {
	t.Parallel()

	m := statemachine.New()
	assert.ErrorIs(t, m.AddTransition(nil, statemachine.StringState("a"), statemachine.StringEvent("e")), statemachine.ErrInvalidTransition)

	_, err := m.Fire(nil, statemachine.StringEvent("e"))
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
}

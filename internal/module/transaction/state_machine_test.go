package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine(t *testing.T) {
	sm := NewStateMachine()

	t.Run("pending to paid is allowed", func(t *testing.T) {
		assert.True(t, sm.CanTransition(PaymentStatusPending, PaymentStatusPaid))
		assert.NoError(t, sm.Validate(PaymentStatusPending, PaymentStatusPaid))
	})

	t.Run("paid is terminal", func(t *testing.T) {
		assert.False(t, sm.CanTransition(PaymentStatusPaid, PaymentStatusPending))
		assert.ErrorIs(t, sm.Validate(PaymentStatusPaid, PaymentStatusPending), ErrInvalidTransition)
	})

	t.Run("self transitions are not allowed", func(t *testing.T) {
		assert.False(t, sm.CanTransition(PaymentStatusPending, PaymentStatusPending))
		assert.False(t, sm.CanTransition(PaymentStatusPaid, PaymentStatusPaid))
	})

	t.Run("unknown states are rejected", func(t *testing.T) {
		assert.False(t, sm.CanTransition(PaymentStatus("refunded"), PaymentStatusPaid))
	})
}

func TestFulfillmentStatusIsValid(t *testing.T) {
	assert.True(t, FulfillmentWaiting.IsValid())
	assert.True(t, FulfillmentInProgress.IsValid())
	assert.True(t, FulfillmentDone.IsValid())
	assert.False(t, FulfillmentStatus("cancelled").IsValid())
}

func TestPaymentMethodIsValid(t *testing.T) {
	assert.True(t, MethodCash.IsValid())
	assert.True(t, MethodEWallet.IsValid())
	assert.False(t, PaymentMethod("card").IsValid())
}

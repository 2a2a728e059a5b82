package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcilePayment(t *testing.T) {
	t.Run("exact amount leaves no balance", func(t *testing.T) {
		payment, err := ReconcilePayment(20, 2, 10)
		assert.Nil(t, err)
		assert.Equal(t, 20.0, payment.AmountCharged)
		assert.Equal(t, 0.0, payment.Balance)
	})

	t.Run("overpayment is kept as balance", func(t *testing.T) {
		payment, err := ReconcilePayment(25, 2, 10)
		assert.Nil(t, err)
		assert.Equal(t, 20.0, payment.AmountCharged)
		assert.Equal(t, 5.0, payment.Balance)
	})

	t.Run("underpayment is rejected", func(t *testing.T) {
		payment, err := ReconcilePayment(19.99, 2, 10)
		assert.Nil(t, payment)
		be, ok := AsBookingError(err)
		assert.True(t, ok)
		assert.Equal(t, CodeInsufficientPayment, be.Code)
		assert.Equal(t, "insufficient payment: required 20.00, received 19.99", be.Message)
	})

	t.Run("amounts compare at two decimals", func(t *testing.T) {
		payment, err := ReconcilePayment(0.1+0.2, 3, 0.1)
		assert.Nil(t, err)
		assert.Equal(t, 0.3, payment.AmountCharged)
		assert.Equal(t, 0.0, payment.Balance)
	})

	t.Run("zero seats charge nothing", func(t *testing.T) {
		payment, err := ReconcilePayment(0, 0, 10)
		assert.Nil(t, err)
		assert.Equal(t, 0.0, payment.AmountCharged)
	})
}

func TestCapacityMessage(t *testing.T) {
	assert.Equal(t, "no seats remaining for this showtime", capacityMessage(0))
	assert.Equal(t, "only 1 seat remaining for this showtime", capacityMessage(1))
	assert.Equal(t, "only 7 seats remaining for this showtime", capacityMessage(7))
}

func TestJoinIDs(t *testing.T) {
	assert.Equal(t, "1, 2, 10", joinIDs([]uint{10, 1, 2}))
	assert.Equal(t, "3", joinIDs([]uint{3}))
	assert.Equal(t, "", joinIDs(nil))
}

func TestErrorCodes(t *testing.T) {
	err := Conflictf("seats already reserved: %s", joinIDs([]uint{2, 1}))
	be, ok := AsBookingError(err)
	assert.True(t, ok)
	assert.Equal(t, CodeConflict, be.Code)
	assert.Equal(t, "seats already reserved: 1, 2", be.Error())

	_, ok = AsBookingError(assert.AnError)
	assert.False(t, ok)
}

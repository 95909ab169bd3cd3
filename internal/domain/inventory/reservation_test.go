package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockReservation(t *testing.T) {
	t.Run("creates active reservation", func(t *testing.T) {
		r, err := NewStockReservation(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(2), uuid.New())
		require.NoError(t, err)
		assert.True(t, r.IsActive())
		assert.Nil(t, r.ReleasedAt)
	})

	t.Run("rejects missing references and non-positive quantity", func(t *testing.T) {
		_, err := NewStockReservation(uuid.Nil, uuid.New(), uuid.New(), decimal.NewFromInt(1), uuid.New())
		assert.Error(t, err)
		_, err = NewStockReservation(uuid.New(), uuid.Nil, uuid.New(), decimal.NewFromInt(1), uuid.New())
		assert.Error(t, err)
		_, err = NewStockReservation(uuid.New(), uuid.New(), uuid.Nil, decimal.NewFromInt(1), uuid.New())
		assert.Error(t, err)
		_, err = NewStockReservation(uuid.New(), uuid.New(), uuid.New(), decimal.Zero, uuid.New())
		assert.Error(t, err)
	})
}

func TestStockReservationRelease(t *testing.T) {
	r, err := NewStockReservation(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(1), uuid.New())
	require.NoError(t, err)

	r.Release()
	assert.False(t, r.IsActive())
	require.NotNil(t, r.ReleasedAt)

	// releasing again keeps the original timestamp
	first := *r.ReleasedAt
	r.Release()
	assert.Equal(t, first, *r.ReleasedAt)
}

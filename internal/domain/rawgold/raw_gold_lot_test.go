package rawgold

import (
	"testing"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLot(t *testing.T) *RawGoldLot {
	t.Helper()
	lot, err := NewRawGoldLot(uuid.New(), uuid.New(), valueobject.Karat21,
		valueobject.NewWeightFromFloat(100), decimal.NewFromInt(3000))
	require.NoError(t, err)
	return lot
}

func TestNewRawGoldLot(t *testing.T) {
	t.Run("creates an empty open lot", func(t *testing.T) {
		lot := newTestLot(t)
		assert.Equal(t, LotStatusOpen, lot.Status)
		assert.True(t, lot.WeightReceived.IsZero())
		assert.True(t, lot.WeightAvailable.IsZero())
		assert.True(t, lot.IsBalanced())
	})

	t.Run("rejects empty purchase order item", func(t *testing.T) {
		_, err := NewRawGoldLot(uuid.New(), uuid.Nil, valueobject.Karat21,
			valueobject.ZeroWeight(), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects unknown karat", func(t *testing.T) {
		_, err := NewRawGoldLot(uuid.New(), uuid.New(), "K14",
			valueobject.ZeroWeight(), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestRawGoldLotReceive(t *testing.T) {
	t.Run("adds to received and available", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(100)))
		assert.Equal(t, "100.000", lot.WeightReceived.StringFixed(3))
		assert.Equal(t, "100.000", lot.WeightAvailable.StringFixed(3))
		assert.True(t, lot.IsBalanced())
	})

	t.Run("rejects non-positive weight", func(t *testing.T) {
		lot := newTestLot(t)
		err := lot.Receive(valueobject.ZeroWeight())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_WEIGHT", domainErr.Code)
	})

	t.Run("reopens a depleted lot", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(10)))
		require.NoError(t, lot.Consume(valueobject.NewWeightFromFloat(10), valueobject.ZeroWeight()))
		require.Equal(t, LotStatusDepleted, lot.Status)

		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(5)))
		assert.Equal(t, LotStatusOpen, lot.Status)
	})

	t.Run("rejected on closed lot", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Close())
		assert.Error(t, lot.Receive(valueobject.NewWeightFromFloat(1)))
	})
}

func TestRawGoldLotConsume(t *testing.T) {
	t.Run("conserves weight across consumption", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(100)))
		require.NoError(t, lot.Consume(valueobject.NewWeightFromFloat(40), valueobject.NewWeightFromFloat(2)))

		assert.Equal(t, "40.000", lot.WeightConsumed.StringFixed(3))
		assert.Equal(t, "2.000", lot.WeightWasted.StringFixed(3))
		assert.Equal(t, "58.000", lot.WeightAvailable.StringFixed(3))
		assert.Equal(t, "58.000", lot.RemainingWeight().StringFixed())
		assert.True(t, lot.IsBalanced())
		assert.Equal(t, LotStatusOpen, lot.Status)
	})

	t.Run("rejects overdraw with INSUFFICIENT_RAW_GOLD", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(50)))

		err := lot.Consume(valueobject.NewWeightFromFloat(49), valueobject.NewWeightFromFloat(1.5))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_RAW_GOLD", domainErr.Code)

		// Rejection leaves the lot untouched
		assert.Equal(t, "50.000", lot.WeightAvailable.StringFixed(3))
		assert.True(t, lot.WeightConsumed.IsZero())
	})

	t.Run("allows exact drain and marks depleted", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(50)))
		require.NoError(t, lot.Consume(valueobject.NewWeightFromFloat(48), valueobject.NewWeightFromFloat(2)))
		assert.Equal(t, LotStatusDepleted, lot.Status)
		assert.True(t, lot.WeightAvailable.IsZero())
		assert.True(t, lot.IsBalanced())
	})

	t.Run("tolerates sub-milligram overdraw", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(10)))
		// 10.0004 rounds to 10.000 at milligram scale
		err := lot.Consume(valueobject.NewWeight(decimal.NewFromFloat(10.0004)), valueobject.ZeroWeight())
		require.NoError(t, err)
		assert.False(t, lot.WeightAvailable.IsNegative())
		assert.Equal(t, LotStatusDepleted, lot.Status)
	})

	t.Run("rejects zero draw", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(10)))
		assert.Error(t, lot.Consume(valueobject.ZeroWeight(), valueobject.ZeroWeight()))
	})

	t.Run("rejects negative weights", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(10)))
		assert.Error(t, lot.Consume(valueobject.NewWeightFromFloat(-1), valueobject.ZeroWeight()))
	})

	t.Run("bumps version on success", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(10)))
		before := lot.GetVersion()
		require.NoError(t, lot.Consume(valueobject.NewWeightFromFloat(1), valueobject.ZeroWeight()))
		assert.Equal(t, before+1, lot.GetVersion())
	})
}

func TestRawGoldLotRestore(t *testing.T) {
	t.Run("returns weight to availability", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(100)))
		require.NoError(t, lot.Consume(valueobject.NewWeightFromFloat(40), valueobject.NewWeightFromFloat(2)))
		require.NoError(t, lot.Restore(valueobject.NewWeightFromFloat(40), valueobject.NewWeightFromFloat(2)))

		assert.Equal(t, "100.000", lot.WeightAvailable.StringFixed(3))
		assert.True(t, lot.WeightConsumed.IsZero())
		assert.True(t, lot.WeightWasted.IsZero())
		assert.True(t, lot.IsBalanced())
	})

	t.Run("reopens a depleted lot", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(10)))
		require.NoError(t, lot.Consume(valueobject.NewWeightFromFloat(10), valueobject.ZeroWeight()))
		require.Equal(t, LotStatusDepleted, lot.Status)

		require.NoError(t, lot.Restore(valueobject.NewWeightFromFloat(10), valueobject.ZeroWeight()))
		assert.Equal(t, LotStatusOpen, lot.Status)
	})

	t.Run("cannot restore more than drawn", func(t *testing.T) {
		lot := newTestLot(t)
		require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(10)))
		require.NoError(t, lot.Consume(valueobject.NewWeightFromFloat(5), valueobject.ZeroWeight()))
		assert.Error(t, lot.Restore(valueobject.NewWeightFromFloat(6), valueobject.ZeroWeight()))
	})
}

func TestRawGoldMovementBalances(t *testing.T) {
	lot := newTestLot(t)
	require.NoError(t, lot.Receive(valueobject.NewWeightFromFloat(100)))

	mv := NewRawGoldMovement(lot, MovementKindConsumption, decimal.NewFromInt(-40), decimal.NewFromInt(100)).
		WithReference("MANUFACTURING_RECORD", "MR-1").
		WithActor(uuid.New())

	assert.Equal(t, "60", mv.BalanceAfter.String())
	assert.Equal(t, "MANUFACTURING_RECORD", mv.ReferenceType)
	assert.NotNil(t, mv.ActorID)
	assert.False(t, mv.IsReversal())

	rev := NewRawGoldMovement(lot, MovementKindReversal, decimal.NewFromInt(40), decimal.NewFromInt(60)).
		WithReversedMovement(mv.ID)
	assert.True(t, rev.IsReversal())
	assert.Equal(t, mv.ID, *rev.ReversedMovementID)
	assert.Equal(t, "100", rev.BalanceAfter.String())
}

func TestLotStatusIsValid(t *testing.T) {
	assert.True(t, LotStatusOpen.IsValid())
	assert.True(t, LotStatusDepleted.IsValid())
	assert.True(t, LotStatusClosed.IsValid())
	assert.False(t, LotStatus("MELTED").IsValid())
}

func TestMovementKindIsValid(t *testing.T) {
	for _, k := range []MovementKind{MovementKindReceipt, MovementKindConsumption, MovementKindWastage, MovementKindReversal} {
		assert.True(t, k.IsValid())
	}
	assert.False(t, MovementKind("TRANSFER").IsValid())
}

package ownership

import (
	"testing"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupplierRecord(t *testing.T, totalCost, initialPayment float64) *OwnershipRecord {
	t.Helper()
	supplierID := uuid.New()
	record, err := NewOwnershipRecord(uuid.New(), StockRefRawLot, uuid.New(),
		FundingSupplier, &supplierID,
		decimal.NewFromInt(1), valueobject.NewWeightFromFloat(100),
		valueobject.NewMoneyEGPFromFloat(totalCost),
		valueobject.NewMoneyEGPFromFloat(initialPayment))
	require.NoError(t, err)
	return record
}

func TestNewOwnershipRecord(t *testing.T) {
	t.Run("seeds owned portion pro-rata from payment", func(t *testing.T) {
		record := newSupplierRecord(t, 30000, 12000)
		// 12000/30000 = 40% of 100g
		assert.Equal(t, "40.000", record.OwnedWeight.StringFixed(3))
		assert.Equal(t, "18000.00", record.OutstandingAmount.StringFixed(2))
		assert.Equal(t, "0.4", record.Percentage().String())
		require.NoError(t, record.CheckInvariants())
	})

	t.Run("zero cost means fully owned", func(t *testing.T) {
		record, err := NewOwnershipRecord(uuid.New(), StockRefRawLot, uuid.New(),
			FundingTradeIn, nil,
			decimal.NewFromInt(1), valueobject.NewWeightFromFloat(50),
			valueobject.ZeroEGP(), valueobject.ZeroEGP())
		require.NoError(t, err)
		assert.Equal(t, "50.000", record.OwnedWeight.StringFixed(3))
		assert.Equal(t, "1", record.Percentage().String())
		assert.True(t, record.IsFullyOwned())
	})

	t.Run("supplier funding requires a supplier", func(t *testing.T) {
		_, err := NewOwnershipRecord(uuid.New(), StockRefRawLot, uuid.New(),
			FundingSupplier, nil,
			decimal.NewFromInt(1), valueobject.NewWeightFromFloat(10),
			valueobject.NewMoneyEGPFromFloat(100), valueobject.ZeroEGP())
		assert.Error(t, err)
	})

	t.Run("initial payment cannot exceed total cost", func(t *testing.T) {
		supplierID := uuid.New()
		_, err := NewOwnershipRecord(uuid.New(), StockRefRawLot, uuid.New(),
			FundingSupplier, &supplierID,
			decimal.NewFromInt(1), valueobject.NewWeightFromFloat(10),
			valueobject.NewMoneyEGPFromFloat(100), valueobject.NewMoneyEGPFromFloat(150))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYMENT_EXCEEDS_OUTSTANDING", domainErr.Code)
	})
}

func TestApplyPayment(t *testing.T) {
	t.Run("grows owned portion pro-rata", func(t *testing.T) {
		record := newSupplierRecord(t, 30000, 0)
		require.NoError(t, record.ApplyPayment(valueobject.NewMoneyEGPFromFloat(15000)))

		assert.Equal(t, "15000.00", record.AmountPaid.StringFixed(2))
		assert.Equal(t, "15000.00", record.OutstandingAmount.StringFixed(2))
		assert.Equal(t, "50.000", record.OwnedWeight.StringFixed(3))
		assert.Equal(t, "0.5", record.Percentage().String())
		require.NoError(t, record.CheckInvariants())
	})

	t.Run("full payment reaches full ownership", func(t *testing.T) {
		record := newSupplierRecord(t, 30000, 10000)
		require.NoError(t, record.ApplyPayment(valueobject.NewMoneyEGPFromFloat(20000)))
		assert.True(t, record.IsFullyOwned())
		assert.Equal(t, "100.000", record.OwnedWeight.StringFixed(3))
		assert.Equal(t, "1", record.Percentage().String())
	})

	t.Run("overpayment rejected and record untouched", func(t *testing.T) {
		record := newSupplierRecord(t, 30000, 20000)
		paidBefore := record.AmountPaid
		ownedBefore := record.OwnedWeight
		versionBefore := record.GetVersion()

		err := record.ApplyPayment(valueobject.NewMoneyEGPFromFloat(15000))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYMENT_EXCEEDS_OUTSTANDING", domainErr.Code)

		assert.True(t, record.AmountPaid.Equal(paidBefore))
		assert.True(t, record.OwnedWeight.Equal(ownedBefore))
		assert.Equal(t, versionBefore, record.GetVersion())
		assert.Empty(t, record.GetDomainEvents())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		record := newSupplierRecord(t, 30000, 0)
		assert.Error(t, record.ApplyPayment(valueobject.ZeroEGP()))
	})
}

func TestPercentageRounding(t *testing.T) {
	// 1/3 paid of a 100g position: derived percentage rounds
	// half-even at four digits
	record := newSupplierRecord(t, 30000, 10000)
	assert.Equal(t, "0.3333", record.Percentage().String())
}

func TestReceiveAdditional(t *testing.T) {
	record := newSupplierRecord(t, 30000, 30000)
	require.NoError(t, record.ReceiveAdditional(
		decimal.NewFromInt(1), valueobject.NewWeightFromFloat(100),
		valueobject.NewMoneyEGPFromFloat(30000), valueobject.ZeroEGP()))

	assert.Equal(t, "200.000", record.TotalWeight.StringFixed(3))
	assert.Equal(t, "30000.00", record.OutstandingAmount.StringFixed(2))
	assert.Equal(t, "0.5", record.Percentage().String())
	require.NoError(t, record.CheckInvariants())
}

func TestOwnershipMovementSnapshot(t *testing.T) {
	record := newSupplierRecord(t, 30000, 12000)
	mv := NewOwnershipMovement(record, MovementPaymentReceived,
		decimal.Zero, decimal.Zero, decimal.NewFromInt(12000)).
		WithReference("SUPPLIER_PAYMENT", "SP-9").
		WithActor(uuid.New())

	assert.Equal(t, "40.000", mv.OwnedWeightAfter.StringFixed(3))
	assert.Equal(t, "0.4", mv.PercentageAfter.String())
	assert.Equal(t, "SUPPLIER_PAYMENT", mv.ReferenceType)
	assert.NotNil(t, mv.ActorID)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, StockRefProduct.IsValid())
	assert.True(t, StockRefRawLot.IsValid())
	assert.False(t, StockRefKind("GEM").IsValid())

	assert.True(t, FundingSupplier.IsValid())
	assert.True(t, FundingTradeIn.IsValid())
	assert.True(t, FundingSelf.IsValid())
	assert.False(t, FundingSource("LOAN").IsValid())

	assert.True(t, MovementPaymentReceived.IsValid())
	assert.False(t, MovementType("REFUND").IsValid())
}

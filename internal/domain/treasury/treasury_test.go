package treasury

import (
	"testing"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T, balance float64) *TreasuryAccount {
	t.Helper()
	account, err := NewTreasuryAccount(uuid.New())
	require.NoError(t, err)
	if balance > 0 {
		require.NoError(t, account.Credit(valueobject.NewMoneyEGPFromFloat(balance)))
	}
	return account
}

func TestNewTreasuryAccount(t *testing.T) {
	t.Run("starts empty in EGP", func(t *testing.T) {
		account := newTestAccount(t, 0)
		assert.True(t, account.Balance.IsZero())
		assert.Equal(t, valueobject.EGP, account.Currency)
	})

	t.Run("requires a branch", func(t *testing.T) {
		_, err := NewTreasuryAccount(uuid.Nil)
		assert.Error(t, err)
	})
}

func TestAccountCredit(t *testing.T) {
	t.Run("adds to balance", func(t *testing.T) {
		account := newTestAccount(t, 0)
		require.NoError(t, account.Credit(valueobject.NewMoneyEGPFromFloat(50000)))
		assert.Equal(t, "50000.00", account.Balance.StringFixed(2))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		account := newTestAccount(t, 0)
		assert.Error(t, account.Credit(valueobject.ZeroEGP()))
	})

	t.Run("rejects currency mismatch", func(t *testing.T) {
		account := newTestAccount(t, 0)
		usd, _ := valueobject.NewMoneyFromFloat(100, valueobject.USD)
		assert.Error(t, account.Credit(usd))
	})
}

func TestAccountDebit(t *testing.T) {
	t.Run("removes from balance", func(t *testing.T) {
		account := newTestAccount(t, 50000)
		require.NoError(t, account.Debit(valueobject.NewMoneyEGPFromFloat(20000), false))
		assert.Equal(t, "30000.00", account.Balance.StringFixed(2))
	})

	t.Run("overdraw rejected by default", func(t *testing.T) {
		account := newTestAccount(t, 100)
		err := account.Debit(valueobject.NewMoneyEGPFromFloat(150), false)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_TREASURY_BALANCE", domainErr.Code)
		assert.Equal(t, "100.00", account.Balance.StringFixed(2))
	})

	t.Run("overdraw allowed when policy permits", func(t *testing.T) {
		account := newTestAccount(t, 100)
		require.NoError(t, account.Debit(valueobject.NewMoneyEGPFromFloat(150), true))
		assert.Equal(t, "-50.00", account.Balance.StringFixed(2))
	})

	t.Run("exact drain leaves zero", func(t *testing.T) {
		account := newTestAccount(t, 100)
		require.NoError(t, account.Debit(valueobject.NewMoneyEGPFromFloat(100), false))
		assert.True(t, account.Balance.IsZero())
	})
}

func TestTreasuryTransactionBalances(t *testing.T) {
	account := newTestAccount(t, 50000)
	before := account.Balance
	require.NoError(t, account.Debit(valueobject.NewMoneyEGPFromFloat(20000), false))

	tx := NewTreasuryTransaction(account, decimal.NewFromInt(20000), DirectionDebit, TransactionTypeSupplierPayment, before).
		WithReference("SUPPLIER", "S-1").
		WithActor(uuid.New()).
		WithNotes("monthly settlement")

	assert.Equal(t, "50000", tx.BalanceBefore.String())
	assert.Equal(t, "30000", tx.BalanceAfter.String())
	assert.Equal(t, DirectionDebit, tx.Direction)
	assert.Equal(t, "monthly settlement", tx.Notes)
}

func TestNewSupplier(t *testing.T) {
	t.Run("starts with zero balance", func(t *testing.T) {
		supplier, err := NewSupplier("Cairo Gold Trading")
		require.NoError(t, err)
		assert.True(t, supplier.CurrentBalance.IsZero())
	})

	t.Run("requires a name", func(t *testing.T) {
		_, err := NewSupplier("")
		assert.Error(t, err)
	})
}

func TestSupplierApplyPayment(t *testing.T) {
	newSupplierWithBalance := func(t *testing.T, balance float64) *Supplier {
		t.Helper()
		supplier, err := NewSupplier("Cairo Gold Trading")
		require.NoError(t, err)
		require.NoError(t, supplier.AddInvoice(valueobject.NewMoneyEGPFromFloat(balance)))
		return supplier
	}

	t.Run("shrinks outstanding balance", func(t *testing.T) {
		supplier := newSupplierWithBalance(t, 30000)
		require.NoError(t, supplier.ApplyPayment(valueobject.NewMoneyEGPFromFloat(20000)))
		assert.Equal(t, "10000.00", supplier.CurrentBalance.StringFixed(2))
	})

	t.Run("overpayment rejected and balance untouched", func(t *testing.T) {
		supplier := newSupplierWithBalance(t, 10000)
		versionBefore := supplier.GetVersion()

		err := supplier.ApplyPayment(valueobject.NewMoneyEGPFromFloat(15000))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYMENT_EXCEEDS_OUTSTANDING", domainErr.Code)
		assert.Equal(t, "10000.00", supplier.CurrentBalance.StringFixed(2))
		assert.Equal(t, versionBefore, supplier.GetVersion())
	})

	t.Run("exact payoff reaches zero", func(t *testing.T) {
		supplier := newSupplierWithBalance(t, 5000)
		require.NoError(t, supplier.ApplyPayment(valueobject.NewMoneyEGPFromFloat(5000)))
		assert.True(t, supplier.CurrentBalance.IsZero())
	})
}

func TestSupplierTransactionBalances(t *testing.T) {
	supplier, err := NewSupplier("Cairo Gold Trading")
	require.NoError(t, err)
	require.NoError(t, supplier.AddInvoice(valueobject.NewMoneyEGPFromFloat(30000)))
	before := supplier.CurrentBalance
	require.NoError(t, supplier.ApplyPayment(valueobject.NewMoneyEGPFromFloat(20000)))

	tx := NewSupplierTransaction(supplier, SupplierTxPayment, decimal.NewFromInt(20000), before)
	assert.Equal(t, "30000", tx.BalanceBefore.String())
	assert.Equal(t, "10000", tx.BalanceAfter.String())
}

func TestTreasuryEnums(t *testing.T) {
	assert.True(t, DirectionCredit.IsValid())
	assert.True(t, DirectionDebit.IsValid())
	assert.False(t, Direction("SIDEWAYS").IsValid())

	for _, tt := range []TransactionType{TransactionTypeAdjustment, TransactionTypeFeedFromDrawer,
		TransactionTypeSupplierPayment, TransactionTypeTransferIn, TransactionTypeTransferOut} {
		assert.True(t, tt.IsValid())
	}
	assert.False(t, TransactionType("LOTTERY").IsValid())

	assert.True(t, SupplierTxPayment.IsValid())
	assert.False(t, SupplierTransactionType("GIFT").IsValid())
}

package persistence

import (
	"context"

	manufacturingapp "github.com/aurum/backend/internal/application/manufacturing"
	ownershipapp "github.com/aurum/backend/internal/application/ownership"
	pricingapp "github.com/aurum/backend/internal/application/pricing"
	purchasingapp "github.com/aurum/backend/internal/application/purchasing"
	rawgoldapp "github.com/aurum/backend/internal/application/rawgold"
	treasuryapp "github.com/aurum/backend/internal/application/treasury"
	"github.com/aurum/backend/internal/domain/manufacturing"
	"github.com/aurum/backend/internal/domain/ownership"
	"github.com/aurum/backend/internal/domain/pricing"
	"github.com/aurum/backend/internal/domain/rawgold"
	"github.com/aurum/backend/internal/domain/treasury"
	"gorm.io/gorm"
)

// gormLedgerRepositories exposes every ledger repository bound to one
// transaction handle. A single type satisfies all of the application
// packages' repository-set interfaces, so cross-ledger units of work
// (a receipt, a consumption, a supplier payment) share the same
// transaction.
type gormLedgerRepositories struct {
	tx *gorm.DB
}

func (r gormLedgerRepositories) LotRepo() rawgold.LotRepository {
	return NewGormRawGoldLotRepository(r.tx)
}

func (r gormLedgerRepositories) MovementRepo() rawgold.MovementRepository {
	return NewGormRawGoldMovementRepository(r.tx)
}

func (r gormLedgerRepositories) OwnershipRecordRepo() ownership.RecordRepository {
	return NewGormOwnershipRecordRepository(r.tx)
}

func (r gormLedgerRepositories) OwnershipMovementRepo() ownership.MovementRepository {
	return NewGormOwnershipMovementRepository(r.tx)
}

func (r gormLedgerRepositories) RecordRepo() manufacturing.RecordRepository {
	return NewGormManufacturingRecordRepository(r.tx)
}

func (r gormLedgerRepositories) HistoryRepo() manufacturing.HistoryRepository {
	return NewGormWorkflowHistoryRepository(r.tx)
}

func (r gormLedgerRepositories) AccountRepo() treasury.AccountRepository {
	return NewGormTreasuryAccountRepository(r.tx)
}

func (r gormLedgerRepositories) TreasuryTransactionRepo() treasury.TransactionRepository {
	return NewGormTreasuryTransactionRepository(r.tx)
}

func (r gormLedgerRepositories) SupplierRepo() treasury.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

func (r gormLedgerRepositories) SupplierTransactionRepo() treasury.SupplierTransactionRepository {
	return NewGormSupplierTransactionRepository(r.tx)
}

func (r gormLedgerRepositories) RateRepo() pricing.RateRepository {
	return NewGormGoldRateRepository(r.tx)
}

// GormRawGoldTransactionScope implements rawgoldapp.TransactionScope
// using GORM database transactions
type GormRawGoldTransactionScope struct {
	db *gorm.DB
}

// NewGormRawGoldTransactionScope creates a new GormRawGoldTransactionScope
func NewGormRawGoldTransactionScope(db *gorm.DB) *GormRawGoldTransactionScope {
	return &GormRawGoldTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormRawGoldTransactionScope) Execute(ctx context.Context, fn func(repos rawgoldapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormLedgerRepositories{tx: tx})
	})
}

// GormOwnershipTransactionScope implements ownershipapp.TransactionScope
// using GORM database transactions
type GormOwnershipTransactionScope struct {
	db *gorm.DB
}

// NewGormOwnershipTransactionScope creates a new GormOwnershipTransactionScope
func NewGormOwnershipTransactionScope(db *gorm.DB) *GormOwnershipTransactionScope {
	return &GormOwnershipTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormOwnershipTransactionScope) Execute(ctx context.Context, fn func(repos ownershipapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormLedgerRepositories{tx: tx})
	})
}

// GormManufacturingTransactionScope implements manufacturingapp.TransactionScope
// using GORM database transactions
type GormManufacturingTransactionScope struct {
	db *gorm.DB
}

// NewGormManufacturingTransactionScope creates a new GormManufacturingTransactionScope
func NewGormManufacturingTransactionScope(db *gorm.DB) *GormManufacturingTransactionScope {
	return &GormManufacturingTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormManufacturingTransactionScope) Execute(ctx context.Context, fn func(repos manufacturingapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormLedgerRepositories{tx: tx})
	})
}

// GormTreasuryTransactionScope implements treasuryapp.TransactionScope
// using GORM database transactions
type GormTreasuryTransactionScope struct {
	db *gorm.DB
}

// NewGormTreasuryTransactionScope creates a new GormTreasuryTransactionScope
func NewGormTreasuryTransactionScope(db *gorm.DB) *GormTreasuryTransactionScope {
	return &GormTreasuryTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormTreasuryTransactionScope) Execute(ctx context.Context, fn func(repos treasuryapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormLedgerRepositories{tx: tx})
	})
}

// GormPurchasingTransactionScope implements purchasingapp.TransactionScope
// using GORM database transactions
type GormPurchasingTransactionScope struct {
	db *gorm.DB
}

// NewGormPurchasingTransactionScope creates a new GormPurchasingTransactionScope
func NewGormPurchasingTransactionScope(db *gorm.DB) *GormPurchasingTransactionScope {
	return &GormPurchasingTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormPurchasingTransactionScope) Execute(ctx context.Context, fn func(repos purchasingapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormLedgerRepositories{tx: tx})
	})
}

// GormPricingTransactionScope implements pricingapp.TransactionScope
// using GORM database transactions
type GormPricingTransactionScope struct {
	db *gorm.DB
}

// NewGormPricingTransactionScope creates a new GormPricingTransactionScope
func NewGormPricingTransactionScope(db *gorm.DB) *GormPricingTransactionScope {
	return &GormPricingTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormPricingTransactionScope) Execute(ctx context.Context, fn func(repos pricingapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormLedgerRepositories{tx: tx})
	})
}

// Ensure the scopes implement their application interfaces
var _ rawgoldapp.TransactionScope = (*GormRawGoldTransactionScope)(nil)
var _ ownershipapp.TransactionScope = (*GormOwnershipTransactionScope)(nil)
var _ manufacturingapp.TransactionScope = (*GormManufacturingTransactionScope)(nil)
var _ treasuryapp.TransactionScope = (*GormTreasuryTransactionScope)(nil)
var _ purchasingapp.TransactionScope = (*GormPurchasingTransactionScope)(nil)
var _ pricingapp.TransactionScope = (*GormPricingTransactionScope)(nil)

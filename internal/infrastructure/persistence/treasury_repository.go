package persistence

import (
	"context"
	"errors"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTreasuryAccountRepository implements treasury.AccountRepository using GORM
type GormTreasuryAccountRepository struct {
	db *gorm.DB
}

// NewGormTreasuryAccountRepository creates a new GormTreasuryAccountRepository
func NewGormTreasuryAccountRepository(db *gorm.DB) *GormTreasuryAccountRepository {
	return &GormTreasuryAccountRepository{db: db}
}

// FindByID finds an account by its ID. Returns nil when no account exists.
func (r *GormTreasuryAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.TreasuryAccount, error) {
	var account treasury.TreasuryAccount
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindByBranch finds the account for a branch
func (r *GormTreasuryAccountRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) (*treasury.TreasuryAccount, error) {
	var account treasury.TreasuryAccount
	if err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetOrCreate returns the account for a branch, creating it if none exists.
// The unique index on branch_id makes concurrent creation resolve to one row.
func (r *GormTreasuryAccountRepository) GetOrCreate(ctx context.Context, branchID uuid.UUID) (*treasury.TreasuryAccount, error) {
	account, err := r.FindByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	account, err = treasury.NewTreasuryAccount(branchID)
	if err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "branch_id"}},
			DoNothing: true,
		}).
		Create(account)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Lost the race; another request created the row.
		return r.FindByBranch(ctx, branchID)
	}
	return account, nil
}

// Save creates or updates an account without a version check
func (r *GormTreasuryAccountRepository) Save(ctx context.Context, account *treasury.TreasuryAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormTreasuryAccountRepository) SaveWithLock(ctx context.Context, account *treasury.TreasuryAccount) error {
	result := r.db.WithContext(ctx).
		Model(account).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Updates(map[string]interface{}{
			"balance":    account.Balance,
			"currency":   account.Currency,
			"deleted":    account.Deleted,
			"version":    account.Version,
			"updated_at": account.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GormTreasuryTransactionRepository implements treasury.TransactionRepository
// using GORM. The transaction log is append only.
type GormTreasuryTransactionRepository struct {
	db *gorm.DB
}

// NewGormTreasuryTransactionRepository creates a new GormTreasuryTransactionRepository
func NewGormTreasuryTransactionRepository(db *gorm.DB) *GormTreasuryTransactionRepository {
	return &GormTreasuryTransactionRepository{db: db}
}

// Create appends a transaction
func (r *GormTreasuryTransactionRepository) Create(ctx context.Context, tx *treasury.TreasuryTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByID finds a transaction by its ID
func (r *GormTreasuryTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.TreasuryTransaction, error) {
	var tx treasury.TreasuryTransaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// FindByAccount lists an account's transactions, most recent first
func (r *GormTreasuryTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter treasury.TransactionFilter) ([]treasury.TreasuryTransaction, error) {
	var txs []treasury.TreasuryTransaction
	query := r.db.WithContext(ctx).
		Model(&treasury.TreasuryTransaction{}).
		Where("account_id = ?", accountID)
	query = r.applyTransactionFilters(query, filter)
	query = applyListOptions(query, filter.Filter, TreasuryTransactionSortFields, "occurred_at")

	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// CountByAccount counts an account's transactions matching the filter
func (r *GormTreasuryTransactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID, filter treasury.TransactionFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&treasury.TreasuryTransaction{}).
		Where("account_id = ?", accountID)
	query = r.applyTransactionFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTreasuryTransactionRepository) applyTransactionFilters(query *gorm.DB, filter treasury.TransactionFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at < ?", *filter.To)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	return query
}

// GormSupplierRepository implements treasury.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Supplier, error) {
	var supplier treasury.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

// FindAll lists suppliers
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]treasury.Supplier, error) {
	var suppliers []treasury.Supplier
	query := r.db.WithContext(ctx).Model(&treasury.Supplier{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	query = applyListOptions(query, filter, SupplierSortFields, "name")

	if err := query.Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Save creates or updates a supplier without a version check
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *treasury.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormSupplierRepository) SaveWithLock(ctx context.Context, supplier *treasury.Supplier) error {
	result := r.db.WithContext(ctx).
		Model(supplier).
		Where("id = ? AND version = ?", supplier.ID, supplier.Version-1).
		Updates(map[string]interface{}{
			"name":            supplier.Name,
			"phone":           supplier.Phone,
			"current_balance": supplier.CurrentBalance,
			"version":         supplier.Version,
			"updated_at":      supplier.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GormSupplierTransactionRepository implements treasury.SupplierTransactionRepository
// using GORM. The transaction log is append only.
type GormSupplierTransactionRepository struct {
	db *gorm.DB
}

// NewGormSupplierTransactionRepository creates a new GormSupplierTransactionRepository
func NewGormSupplierTransactionRepository(db *gorm.DB) *GormSupplierTransactionRepository {
	return &GormSupplierTransactionRepository{db: db}
}

// Create appends a transaction
func (r *GormSupplierTransactionRepository) Create(ctx context.Context, tx *treasury.SupplierTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindBySupplier lists a supplier's transactions, most recent first
func (r *GormSupplierTransactionRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]treasury.SupplierTransaction, error) {
	var txs []treasury.SupplierTransaction
	query := r.db.WithContext(ctx).
		Model(&treasury.SupplierTransaction{}).
		Where("supplier_id = ?", supplierID)
	query = applyListOptions(query, filter, TreasuryTransactionSortFields, "occurred_at")

	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Ensure the repositories implement their domain interfaces
var _ treasury.AccountRepository = (*GormTreasuryAccountRepository)(nil)
var _ treasury.TransactionRepository = (*GormTreasuryTransactionRepository)(nil)
var _ treasury.SupplierRepository = (*GormSupplierRepository)(nil)
var _ treasury.SupplierTransactionRepository = (*GormSupplierTransactionRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/aurum/backend/internal/domain/ownership"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOwnershipRecordRepository implements ownership.RecordRepository using GORM
type GormOwnershipRecordRepository struct {
	db *gorm.DB
}

// NewGormOwnershipRecordRepository creates a new GormOwnershipRecordRepository
func NewGormOwnershipRecordRepository(db *gorm.DB) *GormOwnershipRecordRepository {
	return &GormOwnershipRecordRepository{db: db}
}

// FindByID finds an ownership record by its ID. Returns nil when no record exists.
func (r *GormOwnershipRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*ownership.OwnershipRecord, error) {
	var record ownership.OwnershipRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindByIDForBranch finds an ownership record by ID within a branch
func (r *GormOwnershipRecordRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*ownership.OwnershipRecord, error) {
	var record ownership.OwnershipRecord
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindByStockRef finds the record tracking a stock reference.
// Each stock reference has at most one ownership record.
func (r *GormOwnershipRecordRepository) FindByStockRef(ctx context.Context, refKind ownership.StockRefKind, refID uuid.UUID) (*ownership.OwnershipRecord, error) {
	var record ownership.OwnershipRecord
	if err := r.db.WithContext(ctx).
		Where("stock_ref_kind = ? AND stock_ref_id = ?", refKind, refID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindOutstandingBySupplier lists records with debt owed to a supplier, oldest first.
// Supplier payments settle debt in this order.
func (r *GormOwnershipRecordRepository) FindOutstandingBySupplier(ctx context.Context, supplierID uuid.UUID) ([]ownership.OwnershipRecord, error) {
	var records []ownership.OwnershipRecord
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND outstanding_amount > 0", supplierID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAllForBranch lists ownership records for a branch
func (r *GormOwnershipRecordRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]ownership.OwnershipRecord, error) {
	var records []ownership.OwnershipRecord
	query := r.db.WithContext(ctx).Model(&ownership.OwnershipRecord{}).Where("branch_id = ?", branchID)
	query = r.applyFilters(query, filter)
	query = applyListOptions(query, filter, OwnershipRecordSortFields, "created_at")

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a record without a version check
func (r *GormOwnershipRecordRepository) Save(ctx context.Context, record *ownership.OwnershipRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormOwnershipRecordRepository) SaveWithLock(ctx context.Context, record *ownership.OwnershipRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"funding_source":     record.FundingSource,
			"supplier_id":        record.SupplierID,
			"total_quantity":     record.TotalQuantity,
			"total_weight":       record.TotalWeight,
			"owned_quantity":     record.OwnedQuantity,
			"owned_weight":       record.OwnedWeight,
			"total_cost":         record.TotalCost,
			"amount_paid":        record.AmountPaid,
			"outstanding_amount": record.OutstandingAmount,
			"version":            record.Version,
			"updated_at":         record.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountForBranch counts ownership records for a branch
func (r *GormOwnershipRecordRepository) CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&ownership.OwnershipRecord{}).Where("branch_id = ?", branchID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormOwnershipRecordRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "funding_source":
			query = query.Where("funding_source = ?", value)
		case "stock_ref_kind":
			query = query.Where("stock_ref_kind = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "outstanding_only":
			if value == true {
				query = query.Where("outstanding_amount > 0")
			}
		}
	}
	return query
}

// GormOwnershipMovementRepository implements ownership.MovementRepository using GORM.
// The movement log is append only.
type GormOwnershipMovementRepository struct {
	db *gorm.DB
}

// NewGormOwnershipMovementRepository creates a new GormOwnershipMovementRepository
func NewGormOwnershipMovementRepository(db *gorm.DB) *GormOwnershipMovementRepository {
	return &GormOwnershipMovementRepository{db: db}
}

// Create appends a movement to the log
func (r *GormOwnershipMovementRepository) Create(ctx context.Context, movement *ownership.OwnershipMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByRecord lists a record's movements in chronological order
func (r *GormOwnershipMovementRepository) FindByRecord(ctx context.Context, recordID uuid.UUID) ([]ownership.OwnershipMovement, error) {
	var movements []ownership.OwnershipMovement
	if err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("occurred_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Ensure the repositories implement their domain interfaces
var _ ownership.RecordRepository = (*GormOwnershipRecordRepository)(nil)
var _ ownership.MovementRepository = (*GormOwnershipMovementRepository)(nil)

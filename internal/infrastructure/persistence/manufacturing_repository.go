package persistence

import (
	"context"
	"errors"

	"github.com/aurum/backend/internal/domain/manufacturing"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormManufacturingRecordRepository implements manufacturing.RecordRepository using GORM
type GormManufacturingRecordRepository struct {
	db *gorm.DB
}

// NewGormManufacturingRecordRepository creates a new GormManufacturingRecordRepository
func NewGormManufacturingRecordRepository(db *gorm.DB) *GormManufacturingRecordRepository {
	return &GormManufacturingRecordRepository{db: db}
}

// FindByID finds a record by its ID, materials included. Returns nil when no record exists.
func (r *GormManufacturingRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.ManufacturingRecord, error) {
	var record manufacturing.ManufacturingRecord
	if err := r.db.WithContext(ctx).
		Preload("Materials").
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindByIDForBranch finds a record by ID within a branch
func (r *GormManufacturingRecordRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*manufacturing.ManufacturingRecord, error) {
	var record manufacturing.ManufacturingRecord
	if err := r.db.WithContext(ctx).
		Preload("Materials").
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindByBatchNumber finds a record by its batch number within a branch
func (r *GormManufacturingRecordRepository) FindByBatchNumber(ctx context.Context, branchID uuid.UUID, batchNumber string) (*manufacturing.ManufacturingRecord, error) {
	var record manufacturing.ManufacturingRecord
	if err := r.db.WithContext(ctx).
		Preload("Materials").
		Where("branch_id = ? AND batch_number = ?", branchID, batchNumber).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindAllForBranch lists records for a branch
func (r *GormManufacturingRecordRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]manufacturing.ManufacturingRecord, error) {
	var records []manufacturing.ManufacturingRecord
	query := r.db.WithContext(ctx).
		Model(&manufacturing.ManufacturingRecord{}).
		Preload("Materials").
		Where("branch_id = ?", branchID)
	query = r.applyFilters(query, filter)
	query = applyListOptions(query, filter, ManufacturingRecordSortFields, "created_at")

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByStatus lists records in a given status for a branch
func (r *GormManufacturingRecordRepository) FindByStatus(ctx context.Context, branchID uuid.UUID, status manufacturing.WorkflowStatus, filter shared.Filter) ([]manufacturing.ManufacturingRecord, error) {
	var records []manufacturing.ManufacturingRecord
	query := r.db.WithContext(ctx).
		Model(&manufacturing.ManufacturingRecord{}).
		Preload("Materials").
		Where("branch_id = ? AND status = ?", branchID, status)
	query = applyListOptions(query, filter, ManufacturingRecordSortFields, "created_at")

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a record and its materials without a version check
func (r *GormManufacturingRecordRepository) Save(ctx context.Context, record *manufacturing.ManufacturingRecord) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(record).Error
}

// SaveWithLock saves with optimistic locking (checks version), then syncs
// the material rows. Materials are only ever appended or updated in place;
// the workflow never removes a consumed material.
func (r *GormManufacturingRecordRepository) SaveWithLock(ctx context.Context, record *manufacturing.ManufacturingRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"product_id":        record.ProductID,
			"technician_id":     record.TechnicianID,
			"technician_name":   record.TechnicianName,
			"status":            record.Status,
			"quality_notes":     record.QualityNotes,
			"approval_notes":    record.ApprovalNotes,
			"rejection_reason":  record.RejectionReason,
			"cost_per_gram":     record.CostPerGram,
			"raw_material_cost": record.RawMaterialCost,
			"total_cost":        record.TotalCost,
			"completed_at":      record.CompletedAt,
			"version":           record.Version,
			"updated_at":        record.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	for i := range record.Materials {
		record.Materials[i].RecordID = record.ID
		if err := r.db.WithContext(ctx).Save(&record.Materials[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// CountForBranch counts records for a branch
func (r *GormManufacturingRecordRepository) CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&manufacturing.ManufacturingRecord{}).
		Where("branch_id = ?", branchID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormManufacturingRecordRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "technician_id":
			query = query.Where("technician_id = ?", value)
		}
	}
	if filter.Search != "" {
		query = query.Where("batch_number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// GormWorkflowHistoryRepository implements manufacturing.HistoryRepository using GORM.
// The history log is append only.
type GormWorkflowHistoryRepository struct {
	db *gorm.DB
}

// NewGormWorkflowHistoryRepository creates a new GormWorkflowHistoryRepository
func NewGormWorkflowHistoryRepository(db *gorm.DB) *GormWorkflowHistoryRepository {
	return &GormWorkflowHistoryRepository{db: db}
}

// Create appends a history entry
func (r *GormWorkflowHistoryRepository) Create(ctx context.Context, entry *manufacturing.WorkflowHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByRecord lists a record's history in chronological order
func (r *GormWorkflowHistoryRepository) FindByRecord(ctx context.Context, recordID uuid.UUID) ([]manufacturing.WorkflowHistoryEntry, error) {
	var entries []manufacturing.WorkflowHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("occurred_at ASC, created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure the repositories implement their domain interfaces
var _ manufacturing.RecordRepository = (*GormManufacturingRecordRepository)(nil)
var _ manufacturing.HistoryRepository = (*GormWorkflowHistoryRepository)(nil)

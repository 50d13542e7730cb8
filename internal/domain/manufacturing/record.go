package manufacturing

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManufacturingMaterial is a line item declaring raw gold drawn from a
// lot for one manufacturing record. Movement IDs are filled in when
// production starts so a rejection can reverse exactly what was drawn.
type ManufacturingMaterial struct {
	ID                    uuid.UUID              `gorm:"type:uuid;primaryKey"`
	RecordID              uuid.UUID              `gorm:"type:uuid;not null;index:idx_mfg_material_record"`
	LotID                 uuid.UUID              `gorm:"type:uuid;not null;index:idx_mfg_material_lot"`
	Karat                 valueobject.KaratGrade `gorm:"type:varchar(4);not null"`
	ConsumedWeight        decimal.Decimal        `gorm:"type:decimal(12,3);not null;default:0"`
	WastedWeight          decimal.Decimal        `gorm:"type:decimal(12,3);not null;default:0"`
	UnitCost              decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"` // Lot cost per gram at consumption
	OwnershipPercentage   decimal.Decimal        `gorm:"type:decimal(7,4);not null;default:0"`  // Lot ownership at consumption
	ConsumptionMovementID *uuid.UUID             `gorm:"type:uuid"`
	WastageMovementID     *uuid.UUID             `gorm:"type:uuid"`
	CreatedAt             time.Time              `gorm:"type:timestamptz;not null"`
	UpdatedAt             time.Time              `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (ManufacturingMaterial) TableName() string {
	return "manufacturing_materials"
}

// NewManufacturingMaterial creates a material declaration for a record
func NewManufacturingMaterial(recordID, lotID uuid.UUID, karat valueobject.KaratGrade, consumed, wasted valueobject.Weight, unitCost decimal.Decimal) *ManufacturingMaterial {
	now := time.Now()
	return &ManufacturingMaterial{
		ID:             uuid.New(),
		RecordID:       recordID,
		LotID:          lotID,
		Karat:          karat,
		ConsumedWeight: consumed.Grams(),
		WastedWeight:   wasted.Grams(),
		UnitCost:       unitCost.Round(2),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TotalDraw returns consumed plus wasted weight for the line
func (m *ManufacturingMaterial) TotalDraw() valueobject.Weight {
	return valueobject.NewWeight(m.ConsumedWeight.Add(m.WastedWeight))
}

// RecordConsumption stamps the line with the movements and ownership
// captured when production started
func (m *ManufacturingMaterial) RecordConsumption(consumptionMovementID uuid.UUID, wastageMovementID *uuid.UUID, ownershipPct decimal.Decimal) {
	m.ConsumptionMovementID = &consumptionMovementID
	m.WastageMovementID = wastageMovementID
	m.OwnershipPercentage = ownershipPct
	m.UpdatedAt = time.Now()
}

// ClearConsumption drops the movement stamps after a rejection has
// reversed the draw, so the line can never be reversed twice
func (m *ManufacturingMaterial) ClearConsumption() {
	m.ConsumptionMovementID = nil
	m.WastageMovementID = nil
	m.OwnershipPercentage = decimal.Zero
	m.UpdatedAt = time.Now()
}

// ManufacturingRecord is the aggregate root of the production workflow.
// It is the sole writer of raw gold consumption; every status change is
// mirrored by exactly one workflow history entry.
type ManufacturingRecord struct {
	shared.BranchAggregateRoot
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_mfg_record_product"`
	BatchNumber     string          `gorm:"type:varchar(50);not null;index:idx_mfg_record_batch"`
	TechnicianID    *uuid.UUID      `gorm:"type:uuid"`
	TechnicianName  string          `gorm:"type:varchar(100)"`
	Status          WorkflowStatus  `gorm:"type:varchar(30);not null;default:'DRAFT';index:idx_mfg_record_status"`
	QualityNotes    string          `gorm:"type:text"`
	ApprovalNotes   string          `gorm:"type:text"`
	RejectionReason string          `gorm:"type:text"`
	CostPerGram     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"` // Labor cost per consumed gram
	RawMaterialCost decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"` // Non-gold material cost
	TotalCost       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"` // Fixed at completion
	CompletedAt     *time.Time      `gorm:"type:timestamptz"`

	Materials []ManufacturingMaterial `gorm:"foreignKey:RecordID;references:ID"`
}

// TableName returns the table name for GORM
func (ManufacturingRecord) TableName() string {
	return "manufacturing_records"
}

// NewManufacturingRecord creates a record in Draft
func NewManufacturingRecord(branchID, productID uuid.UUID, batchNumber string, costPerGram, rawMaterialCost decimal.Decimal) (*ManufacturingRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Batch number is required")
	}
	if costPerGram.IsNegative() || rawMaterialCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Costs cannot be negative")
	}

	return &ManufacturingRecord{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		ProductID:           productID,
		BatchNumber:         batchNumber,
		Status:              StatusDraft,
		CostPerGram:         costPerGram.Round(2),
		RawMaterialCost:     rawMaterialCost.Round(2),
		TotalCost:           decimal.Zero,
		Materials:           make([]ManufacturingMaterial, 0),
	}, nil
}

// AssignTechnician sets the technician for the record
func (r *ManufacturingRecord) AssignTechnician(technicianID uuid.UUID, name string) error {
	if r.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Technician can only be assigned in draft")
	}
	r.TechnicianID = &technicianID
	r.TechnicianName = name
	r.UpdatedAt = time.Now()
	return nil
}

// DeclareMaterial adds a material line while the record is in Draft
func (r *ManufacturingRecord) DeclareMaterial(lotID uuid.UUID, karat valueobject.KaratGrade, consumed, wasted valueobject.Weight, unitCost decimal.Decimal) error {
	if r.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Materials can only be declared in draft")
	}
	if lotID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Lot ID cannot be empty")
	}
	if !karat.IsValid() {
		return shared.NewDomainError("INVALID_KARAT", "Unknown karat grade")
	}
	if consumed.IsNegative() || wasted.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Material weights cannot be negative")
	}
	if !consumed.Add(wasted).IsPositive() {
		return shared.NewDomainError("INVALID_WEIGHT", "Material must draw a positive weight")
	}
	for _, m := range r.Materials {
		if m.LotID == lotID {
			return shared.NewDomainError("INVALID_INPUT", "Lot is already declared on this record")
		}
	}

	material := NewManufacturingMaterial(r.ID, lotID, karat, consumed, wasted, unitCost)
	r.Materials = append(r.Materials, *material)
	r.UpdatedAt = time.Now()
	return nil
}

// ClearMaterials drops all declared materials. Used on rework so the
// technician re-declares from scratch.
func (r *ManufacturingRecord) ClearMaterials() error {
	if r.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Materials can only be cleared in draft")
	}
	r.Materials = make([]ManufacturingMaterial, 0)
	r.UpdatedAt = time.Now()
	return nil
}

// TotalConsumedWeight sums consumed weight across material lines
func (r *ManufacturingRecord) TotalConsumedWeight() valueobject.Weight {
	total := decimal.Zero
	for _, m := range r.Materials {
		total = total.Add(m.ConsumedWeight)
	}
	return valueobject.NewWeight(total)
}

// TotalWastedWeight sums wasted weight across material lines
func (r *ManufacturingRecord) TotalWastedWeight() valueobject.Weight {
	total := decimal.Zero
	for _, m := range r.Materials {
		total = total.Add(m.WastedWeight)
	}
	return valueobject.NewWeight(total)
}

// GoldCost sums each line's draw priced at its lot cost
func (r *ManufacturingRecord) GoldCost() decimal.Decimal {
	total := decimal.Zero
	for _, m := range r.Materials {
		total = total.Add(m.ConsumedWeight.Add(m.WastedWeight).Mul(m.UnitCost))
	}
	return total.Round(2)
}

// TransitionTo moves the record to the target status. An illegal
// transition mutates nothing and returns INVALID_WORKFLOW_TRANSITION.
func (r *ManufacturingRecord) TransitionTo(target WorkflowStatus) (*WorkflowHistoryEntry, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown workflow status")
	}
	if !r.Status.CanTransitionTo(target) {
		return nil, shared.NewDomainError("INVALID_WORKFLOW_TRANSITION",
			"Cannot transition from "+r.Status.String()+" to "+target.String())
	}
	if target == StatusPendingQualityCheck && len(r.Materials) == 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot start production without declared materials")
	}

	from := r.Status
	r.Status = target
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	entry := NewWorkflowHistoryEntry(r.ID, from, target)
	r.AddDomainEvent(NewWorkflowTransitionedEvent(r, from, target))
	return entry, nil
}

// Complete fixes the total cost and stamps the completion time.
// Only callable through the Approved to Completed transition.
func (r *ManufacturingRecord) Complete() error {
	if r.Status != StatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Record must be in completed status")
	}
	consumed := r.TotalConsumedWeight()
	r.TotalCost = consumed.Grams().Mul(r.CostPerGram).Add(r.RawMaterialCost).Round(2)
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	return nil
}

// SetQualityNotes records the quality check outcome notes
func (r *ManufacturingRecord) SetQualityNotes(notes string) {
	r.QualityNotes = notes
	r.UpdatedAt = time.Now()
}

// SetApprovalNotes records the final approval notes
func (r *ManufacturingRecord) SetApprovalNotes(notes string) {
	r.ApprovalNotes = notes
	r.UpdatedAt = time.Now()
}

// SetRejectionReason records why the record was rejected
func (r *ManufacturingRecord) SetRejectionReason(reason string) {
	r.RejectionReason = reason
	r.UpdatedAt = time.Now()
}

// IsTerminal returns true if the record can no longer change status
func (r *ManufacturingRecord) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// HasConsumed returns true if production has drawn raw gold that has
// not been reversed
func (r *ManufacturingRecord) HasConsumed() bool {
	for _, m := range r.Materials {
		if m.ConsumptionMovementID != nil {
			return true
		}
	}
	return false
}

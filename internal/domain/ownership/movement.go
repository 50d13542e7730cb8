package ownership

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the kind of ownership movement
type MovementType string

const (
	// MovementPaymentReceived grows the owned portion via a payment
	MovementPaymentReceived MovementType = "PAYMENT_RECEIVED"
	// MovementAdditionalReceipt grows the total position
	MovementAdditionalReceipt MovementType = "ADDITIONAL_RECEIPT"
	// MovementConsumption shrinks the position as stock is consumed
	MovementConsumption MovementType = "CONSUMPTION"
	// MovementTransfer moves ownership between records
	MovementTransfer MovementType = "TRANSFER"
	// MovementOpening seeds the record when it is first created
	MovementOpening MovementType = "OPENING"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementPaymentReceived, MovementAdditionalReceipt, MovementConsumption, MovementTransfer, MovementOpening:
		return true
	}
	return false
}

// OwnershipMovement is an immutable record of a change to an
// ownership record. Each movement carries a snapshot of the owned
// position after the mutation it records.
type OwnershipMovement struct {
	shared.BaseEntity
	RecordID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_ownership_mv_record_time,priority:1"`
	BranchID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_ownership_mv_branch"`
	Type               MovementType    `gorm:"type:varchar(30);not null"`
	QuantityDelta      decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	WeightDelta        decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	AmountDelta        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	OwnedQuantityAfter decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	OwnedWeightAfter   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	PercentageAfter    decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	ReferenceType      string          `gorm:"type:varchar(30)"`
	ReferenceID        string          `gorm:"type:varchar(50)"`
	ActorID            *uuid.UUID      `gorm:"type:uuid"`
	OccurredAt         time.Time       `gorm:"type:timestamptz;not null;index:idx_ownership_mv_record_time,priority:2"`
}

// TableName returns the table name for GORM
func (OwnershipMovement) TableName() string {
	return "ownership_movements"
}

// NewOwnershipMovement creates a movement snapshotting the record's
// current owned position
func NewOwnershipMovement(record *OwnershipRecord, movementType MovementType, quantityDelta, weightDelta, amountDelta decimal.Decimal) *OwnershipMovement {
	return &OwnershipMovement{
		BaseEntity:         shared.NewBaseEntity(),
		RecordID:           record.ID,
		BranchID:           record.BranchID,
		Type:               movementType,
		QuantityDelta:      quantityDelta,
		WeightDelta:        weightDelta,
		AmountDelta:        amountDelta,
		OwnedQuantityAfter: record.OwnedQuantity,
		OwnedWeightAfter:   record.OwnedWeight,
		PercentageAfter:    record.Percentage(),
		OccurredAt:         time.Now(),
	}
}

// WithReference attaches the source document to the movement
func (m *OwnershipMovement) WithReference(refType, refID string) *OwnershipMovement {
	m.ReferenceType = refType
	m.ReferenceID = refID
	return m
}

// WithActor records who triggered the movement
func (m *OwnershipMovement) WithActor(actorID uuid.UUID) *OwnershipMovement {
	m.ActorID = &actorID
	return m
}

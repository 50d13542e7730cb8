package rawgold

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind represents the kind of raw gold movement
type MovementKind string

const (
	// MovementKindReceipt records weight entering the lot
	MovementKindReceipt MovementKind = "RECEIPT"
	// MovementKindConsumption records weight drawn into production
	MovementKindConsumption MovementKind = "CONSUMPTION"
	// MovementKindWastage records weight lost during production
	MovementKindWastage MovementKind = "WASTAGE"
	// MovementKindReversal undoes a prior consumption or wastage
	MovementKindReversal MovementKind = "REVERSAL"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid returns true if the movement kind is valid
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindReceipt, MovementKindConsumption, MovementKindWastage, MovementKindReversal:
		return true
	}
	return false
}

// RawGoldMovement is an immutable record of a change to a lot's
// available weight. Once created, movements are never modified;
// corrections are made with reversal movements.
type RawGoldMovement struct {
	shared.BaseEntity
	BranchID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_raw_gold_mv_branch"`
	LotID              uuid.UUID       `gorm:"type:uuid;not null;index:idx_raw_gold_mv_lot_time,priority:1"`
	Kind               MovementKind    `gorm:"type:varchar(20);not null;index:idx_raw_gold_mv_kind"`
	WeightDelta        decimal.Decimal `gorm:"type:decimal(12,3);not null"` // Signed change to available weight
	BalanceBefore      decimal.Decimal `gorm:"type:decimal(12,3);not null"` // Available weight before the movement
	BalanceAfter       decimal.Decimal `gorm:"type:decimal(12,3);not null"` // Available weight after the movement
	ReferenceType      string          `gorm:"type:varchar(30);index:idx_raw_gold_mv_ref,priority:1"`
	ReferenceID        string          `gorm:"type:varchar(50);index:idx_raw_gold_mv_ref,priority:2"`
	ReversedMovementID *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_raw_gold_mv_reversed"` // Set on reversals; unique so a movement reverses at most once
	ActorID            *uuid.UUID      `gorm:"type:uuid"`
	OccurredAt         time.Time       `gorm:"type:timestamptz;not null;index:idx_raw_gold_mv_lot_time,priority:2"`
}

// TableName returns the table name for GORM
func (RawGoldMovement) TableName() string {
	return "raw_gold_movements"
}

// NewRawGoldMovement creates a movement carrying the lot's balance
// around the mutation it records
func NewRawGoldMovement(lot *RawGoldLot, kind MovementKind, weightDelta, balanceBefore decimal.Decimal) *RawGoldMovement {
	return &RawGoldMovement{
		BaseEntity:    shared.NewBaseEntity(),
		BranchID:      lot.BranchID,
		LotID:         lot.ID,
		Kind:          kind,
		WeightDelta:   weightDelta,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore.Add(weightDelta),
		OccurredAt:    time.Now(),
	}
}

// WithReference attaches the source document to the movement
func (m *RawGoldMovement) WithReference(refType, refID string) *RawGoldMovement {
	m.ReferenceType = refType
	m.ReferenceID = refID
	return m
}

// WithReversedMovement marks the movement as a reversal of another
func (m *RawGoldMovement) WithReversedMovement(movementID uuid.UUID) *RawGoldMovement {
	m.ReversedMovementID = &movementID
	return m
}

// WithActor records who triggered the movement
func (m *RawGoldMovement) WithActor(actorID uuid.UUID) *RawGoldMovement {
	m.ActorID = &actorID
	return m
}

// IsReversal returns true if the movement undoes another movement
func (m *RawGoldMovement) IsReversal() bool {
	return m.Kind == MovementKindReversal
}

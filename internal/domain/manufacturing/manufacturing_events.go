package manufacturing

import (
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeManufacturingRecord = "ManufacturingRecord"

// Event type constants
const (
	EventTypeWorkflowTransitioned = "ManufacturingWorkflowTransitioned"
	EventTypeRecordCompleted      = "ManufacturingRecordCompleted"
)

// WorkflowTransitionedEvent is raised on every successful status change
type WorkflowTransitionedEvent struct {
	shared.BaseDomainEvent
	RecordID    uuid.UUID `json:"record_id"`
	BatchNumber string    `json:"batch_number"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
}

// NewWorkflowTransitionedEvent creates a new WorkflowTransitionedEvent
func NewWorkflowTransitionedEvent(record *ManufacturingRecord, from, to WorkflowStatus) *WorkflowTransitionedEvent {
	return &WorkflowTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkflowTransitioned, AggregateTypeManufacturingRecord, record.ID, record.BranchID),
		RecordID:        record.ID,
		BatchNumber:     record.BatchNumber,
		FromStatus:      from.String(),
		ToStatus:        to.String(),
	}
}

// EventType returns the event type name
func (e *WorkflowTransitionedEvent) EventType() string {
	return EventTypeWorkflowTransitioned
}

// RecordCompletedEvent is raised when a record completes with its fixed cost
type RecordCompletedEvent struct {
	shared.BaseDomainEvent
	RecordID       uuid.UUID       `json:"record_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	BatchNumber    string          `json:"batch_number"`
	ConsumedWeight decimal.Decimal `json:"consumed_weight"`
	TotalCost      decimal.Decimal `json:"total_cost"`
}

// NewRecordCompletedEvent creates a new RecordCompletedEvent
func NewRecordCompletedEvent(record *ManufacturingRecord) *RecordCompletedEvent {
	return &RecordCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecordCompleted, AggregateTypeManufacturingRecord, record.ID, record.BranchID),
		RecordID:        record.ID,
		ProductID:       record.ProductID,
		BatchNumber:     record.BatchNumber,
		ConsumedWeight:  record.TotalConsumedWeight().Grams(),
		TotalCost:       record.TotalCost,
	}
}

// EventType returns the event type name
func (e *RecordCompletedEvent) EventType() string {
	return EventTypeRecordCompleted
}

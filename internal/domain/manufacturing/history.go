package manufacturing

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkflowHistoryEntry is an immutable record of one workflow
// transition. Exactly one entry exists per successful transition.
type WorkflowHistoryEntry struct {
	shared.BaseEntity
	RecordID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_mfg_history_record_time,priority:1"`
	FromStatus WorkflowStatus `gorm:"type:varchar(30);not null"`
	ToStatus   WorkflowStatus `gorm:"type:varchar(30);not null"`
	Action     string         `gorm:"type:varchar(50);not null"`
	ActorID    *uuid.UUID     `gorm:"type:uuid"`
	ActorName  string         `gorm:"type:varchar(100)"`
	Notes      string         `gorm:"type:text"`
	OccurredAt time.Time      `gorm:"type:timestamptz;not null;index:idx_mfg_history_record_time,priority:2"`
}

// TableName returns the table name for GORM
func (WorkflowHistoryEntry) TableName() string {
	return "manufacturing_workflow_history"
}

// NewWorkflowHistoryEntry creates a history entry for a transition
func NewWorkflowHistoryEntry(recordID uuid.UUID, from, to WorkflowStatus) *WorkflowHistoryEntry {
	return &WorkflowHistoryEntry{
		BaseEntity: shared.NewBaseEntity(),
		RecordID:   recordID,
		FromStatus: from,
		ToStatus:   to,
		Action:     actionFor(from, to),
		OccurredAt: time.Now(),
	}
}

// WithActor records who performed the transition
func (e *WorkflowHistoryEntry) WithActor(actorID uuid.UUID, actorName string) *WorkflowHistoryEntry {
	e.ActorID = &actorID
	e.ActorName = actorName
	return e
}

// WithNotes attaches free-form notes to the entry
func (e *WorkflowHistoryEntry) WithNotes(notes string) *WorkflowHistoryEntry {
	e.Notes = notes
	return e
}

// actionFor names the transition for display and audit filtering
func actionFor(from, to WorkflowStatus) string {
	switch {
	case from == StatusDraft && to == StatusPendingQualityCheck:
		return "start_production"
	case from == StatusPendingQualityCheck && to == StatusQualityApproved:
		return "approve_quality"
	case from == StatusPendingQualityCheck && to == StatusQualityRejected:
		return "reject_quality"
	case from == StatusQualityRejected && to == StatusDraft:
		return "rework"
	case from == StatusQualityApproved && to == StatusPendingFinalApproval:
		return "submit_for_approval"
	case from == StatusPendingFinalApproval && to == StatusApproved:
		return "approve"
	case from == StatusPendingFinalApproval && to == StatusRejected:
		return "reject"
	case from == StatusApproved && to == StatusCompleted:
		return "complete"
	}
	return "transition"
}

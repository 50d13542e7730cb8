package manufacturing

// WorkflowStatus represents the status of a manufacturing record
type WorkflowStatus string

const (
	StatusDraft                WorkflowStatus = "DRAFT"
	StatusPendingQualityCheck  WorkflowStatus = "PENDING_QUALITY_CHECK"
	StatusQualityApproved      WorkflowStatus = "QUALITY_APPROVED"
	StatusQualityRejected      WorkflowStatus = "QUALITY_REJECTED"
	StatusPendingFinalApproval WorkflowStatus = "PENDING_FINAL_APPROVAL"
	StatusApproved             WorkflowStatus = "APPROVED"
	StatusRejected             WorkflowStatus = "REJECTED"
	StatusCompleted            WorkflowStatus = "COMPLETED"
)

// IsValid checks if the status is a valid WorkflowStatus
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingQualityCheck, StatusQualityApproved, StatusQualityRejected,
		StatusPendingFinalApproval, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of WorkflowStatus
func (s WorkflowStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no transition leaves the status
func (s WorkflowStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// CanTransitionTo checks if the status can transition to the target status.
// QualityRejected back to Draft is the only backward edge (rework).
func (s WorkflowStatus) CanTransitionTo(target WorkflowStatus) bool {
	switch s {
	case StatusDraft:
		return target == StatusPendingQualityCheck
	case StatusPendingQualityCheck:
		return target == StatusQualityApproved || target == StatusQualityRejected
	case StatusQualityApproved:
		return target == StatusPendingFinalApproval
	case StatusQualityRejected:
		return target == StatusDraft
	case StatusPendingFinalApproval:
		return target == StatusApproved || target == StatusRejected
	case StatusApproved:
		return target == StatusCompleted
	case StatusRejected, StatusCompleted:
		return false
	}
	return false
}

// AllWorkflowStatuses returns every workflow status
func AllWorkflowStatuses() []WorkflowStatus {
	return []WorkflowStatus{
		StatusDraft, StatusPendingQualityCheck, StatusQualityApproved, StatusQualityRejected,
		StatusPendingFinalApproval, StatusApproved, StatusRejected, StatusCompleted,
	}
}

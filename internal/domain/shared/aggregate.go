package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots.
// Version is a monotonically increasing integer used for optimistic
// concurrency: repositories check-and-increment it on every write.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// BranchAggregateRoot extends BaseAggregateRoot with branch scoping.
// Every ledger account in the system belongs to exactly one branch.
type BranchAggregateRoot struct {
	BaseAggregateRoot
	BranchID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewBranchAggregateRoot creates a new branch-scoped aggregate root
func NewBranchAggregateRoot(branchID uuid.UUID) BranchAggregateRoot {
	return BranchAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		BranchID:          branchID,
	}
}

// SetCreatedBy sets the creator user ID
func (b *BranchAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	b.CreatedBy = &userID
}

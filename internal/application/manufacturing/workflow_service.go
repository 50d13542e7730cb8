package manufacturing

import (
	"context"
	"fmt"

	ownershipapp "github.com/aurum/backend/internal/application/ownership"
	rawgoldapp "github.com/aurum/backend/internal/application/rawgold"
	"github.com/aurum/backend/internal/domain/manufacturing"
	ownershipdomain "github.com/aurum/backend/internal/domain/ownership"
	"github.com/aurum/backend/internal/domain/rawgold"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/aurum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkflowService drives manufacturing records through the production
// workflow. It is the only caller of the raw gold ledger's consume
// path: material is drawn when production starts and returned when a
// record is rejected, always in the same transaction as the status
// change and its history entry.
type WorkflowService struct {
	scope          TransactionScope
	recordRepo     manufacturing.RecordRepository
	historyRepo    manufacturing.HistoryRepository
	lotRepo        rawgold.LotRepository
	ledger         *rawgoldapp.LedgerService
	ownership      *ownershipapp.Service
	eventPublisher shared.EventPublisher
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	scope TransactionScope,
	recordRepo manufacturing.RecordRepository,
	historyRepo manufacturing.HistoryRepository,
	lotRepo rawgold.LotRepository,
	ledger *rawgoldapp.LedgerService,
	ownershipService *ownershipapp.Service,
	eventPublisher shared.EventPublisher,
) *WorkflowService {
	return &WorkflowService{
		scope:          scope,
		recordRepo:     recordRepo,
		historyRepo:    historyRepo,
		lotRepo:        lotRepo,
		ledger:         ledger,
		ownership:      ownershipService,
		eventPublisher: eventPublisher,
	}
}

// CreateDraftRequest represents a request to open a manufacturing record
type CreateDraftRequest struct {
	BranchID        uuid.UUID
	ProductID       uuid.UUID
	BatchNumber     string
	CostPerGram     decimal.Decimal
	RawMaterialCost decimal.Decimal
	TechnicianID    *uuid.UUID
	TechnicianName  string
}

// CreateDraft opens a manufacturing record in Draft. Batch numbers are
// unique per branch.
func (s *WorkflowService) CreateDraft(ctx context.Context, req CreateDraftRequest) (*manufacturing.ManufacturingRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "manufacturing", "create_draft")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrBranchID, req.BranchID.String())

	existing, err := s.recordRepo.FindByBatchNumber(ctx, req.BranchID, req.BatchNumber)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check batch number: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Batch number is already in use")
	}

	record, err := manufacturing.NewManufacturingRecord(req.BranchID, req.ProductID, req.BatchNumber, req.CostPerGram, req.RawMaterialCost)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.TechnicianID != nil {
		if err := record.AssignTechnician(*req.TechnicianID, req.TechnicianName); err != nil {
			return nil, err
		}
	}
	if err := s.recordRepo.Save(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save record: %w", err)
	}
	return record, nil
}

// DeclareMaterialRequest declares raw gold to be drawn from a lot
type DeclareMaterialRequest struct {
	RecordID uuid.UUID
	LotID    uuid.UUID
	Consumed valueobject.Weight
	Wasted   valueobject.Weight
}

// DeclareMaterial adds a material line to a draft record. The karat
// and unit cost are taken from the lot; availability is checked when
// production starts.
func (s *WorkflowService) DeclareMaterial(ctx context.Context, req DeclareMaterialRequest) (*manufacturing.ManufacturingRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "manufacturing", "declare_material")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRecordID, req.RecordID.String(),
		telemetry.SpanAttrLotID, req.LotID.String(),
	)

	record, err := s.recordRepo.FindByID(ctx, req.RecordID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if record == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Manufacturing record not found")
	}

	lot, err := s.lotRepo.FindByID(ctx, req.LotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load lot: %w", err)
	}
	if lot == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Raw gold lot not found")
	}
	if lot.BranchID != record.BranchID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Lot belongs to a different branch")
	}

	if err := record.DeclareMaterial(lot.ID, lot.Karat, req.Consumed, req.Wasted, lot.UnitCostPerGram); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.recordRepo.Save(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save record: %w", err)
	}
	return record, nil
}

// TransitionRequest represents a workflow transition command
type TransitionRequest struct {
	RecordID  uuid.UUID
	Target    manufacturing.WorkflowStatus
	ActorID   *uuid.UUID
	ActorName string
	Notes     string
}

// Transition moves a record to the target status, running the side
// effects the edge demands: starting production draws the declared
// material from the lots, a rejection returns it, and completion fixes
// the cost and opens the product's ownership record. The status change,
// its history entry, and every ledger write commit atomically; an
// illegal transition mutates nothing.
func (s *WorkflowService) Transition(ctx context.Context, req TransitionRequest) (*manufacturing.ManufacturingRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "manufacturing", "transition")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRecordID, req.RecordID.String(),
		telemetry.SpanAttrStatus, req.Target.String(),
	)

	var record *manufacturing.ManufacturingRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		loaded, err := repos.RecordRepo().FindByID(ctx, req.RecordID)
		if err != nil {
			return fmt.Errorf("failed to load record: %w", err)
		}
		if loaded == nil {
			return shared.NewDomainError("NOT_FOUND", "Manufacturing record not found")
		}
		record = loaded

		entry, err := record.TransitionTo(req.Target)
		if err != nil {
			return err
		}

		if err := s.applyTransitionEffects(ctx, repos, record, req); err != nil {
			return err
		}

		if err := repos.RecordRepo().SaveWithLock(ctx, record); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}
		if req.ActorID != nil {
			entry.WithActor(*req.ActorID, req.ActorName)
		}
		if req.Notes != "" {
			entry.WithNotes(req.Notes)
		}
		if err := repos.HistoryRepo().Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, record)
	return record, nil
}

// applyTransitionEffects runs the ledger side effects of a transition
// the record has already accepted
func (s *WorkflowService) applyTransitionEffects(ctx context.Context, repos TransactionalRepositories, record *manufacturing.ManufacturingRecord, req TransitionRequest) error {
	switch req.Target {
	case manufacturing.StatusPendingQualityCheck:
		return s.consumeMaterials(ctx, repos, record, req.ActorID)

	case manufacturing.StatusQualityRejected:
		record.SetRejectionReason(req.Notes)
		return s.reverseMaterials(ctx, repos, record, req.ActorID)

	case manufacturing.StatusRejected:
		record.SetRejectionReason(req.Notes)
		return s.reverseMaterials(ctx, repos, record, req.ActorID)

	case manufacturing.StatusQualityApproved:
		record.SetQualityNotes(req.Notes)

	case manufacturing.StatusApproved:
		record.SetApprovalNotes(req.Notes)

	case manufacturing.StatusDraft:
		// rework: materials are re-declared from scratch
		return record.ClearMaterials()

	case manufacturing.StatusCompleted:
		return s.completeRecord(ctx, repos, record, req.ActorID)
	}
	return nil
}

// consumeMaterials draws every declared material line from its lot and
// stamps the line with the movements and the lot's ownership fraction
func (s *WorkflowService) consumeMaterials(ctx context.Context, repos TransactionalRepositories, record *manufacturing.ManufacturingRecord, actorID *uuid.UUID) error {
	for i := range record.Materials {
		material := &record.Materials[i]

		result, err := s.ledger.ConsumeWithin(ctx, repos, rawgoldapp.ConsumeRequest{
			LotID:         material.LotID,
			Consumed:      valueobject.NewWeight(material.ConsumedWeight),
			Wasted:        valueobject.NewWeight(material.WastedWeight),
			ReferenceType: rawgoldapp.ReferenceTypeManufacturingRecord,
			ReferenceID:   record.ID.String(),
			ActorID:       actorID,
		})
		if err != nil {
			return err
		}

		pct := decimal.NewFromInt(1)
		ownershipRecord, err := repos.OwnershipRecordRepo().FindByStockRef(ctx, ownershipdomain.StockRefRawLot, material.LotID)
		if err != nil {
			return fmt.Errorf("failed to load lot ownership: %w", err)
		}
		if ownershipRecord != nil {
			pct = ownershipRecord.Percentage()
		}

		var wastageID *uuid.UUID
		if result.WastageMovement != nil {
			wastageID = &result.WastageMovement.ID
		}
		material.RecordConsumption(result.ConsumptionMovement.ID, wastageID, pct)
	}
	return nil
}

// reverseMaterials returns every drawn material line to its lot
func (s *WorkflowService) reverseMaterials(ctx context.Context, repos TransactionalRepositories, record *manufacturing.ManufacturingRecord, actorID *uuid.UUID) error {
	for i := range record.Materials {
		material := &record.Materials[i]
		if material.ConsumptionMovementID == nil {
			continue
		}
		if _, err := s.ledger.ReverseMovementWithin(ctx, repos, *material.ConsumptionMovementID, actorID); err != nil {
			return err
		}
		if material.WastageMovementID != nil {
			if _, err := s.ledger.ReverseMovementWithin(ctx, repos, *material.WastageMovementID, actorID); err != nil {
				return err
			}
		}
		material.ClearConsumption()
	}
	return nil
}

// completeRecord fixes the record's cost and opens the finished
// product's ownership record from the consumed lots' ownership mix
func (s *WorkflowService) completeRecord(ctx context.Context, repos TransactionalRepositories, record *manufacturing.ManufacturingRecord, actorID *uuid.UUID) error {
	if err := record.Complete(); err != nil {
		return err
	}

	draws := make([]ownershipapp.SourceDraw, 0, len(record.Materials))
	for _, material := range record.Materials {
		draws = append(draws, ownershipapp.SourceDraw{
			LotID:      material.LotID,
			Weight:     valueobject.NewWeight(material.ConsumedWeight),
			UnitCost:   material.UnitCost,
			Percentage: material.OwnershipPercentage,
		})
	}
	if _, err := s.ownership.DeriveFromConsumptionWithin(ctx, repos, ownershipapp.DeriveFromConsumptionRequest{
		BranchID:      record.BranchID,
		ProductID:     record.ProductID,
		Draws:         draws,
		ReferenceType: ownershipapp.ReferenceTypeManufacturingRecord,
		ReferenceID:   record.ID.String(),
		ActorID:       actorID,
	}); err != nil {
		return err
	}

	record.AddDomainEvent(manufacturing.NewRecordCompletedEvent(record))
	return nil
}

// GetRecord loads a manufacturing record by ID
func (s *WorkflowService) GetRecord(ctx context.Context, recordID uuid.UUID) (*manufacturing.ManufacturingRecord, error) {
	record, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if record == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Manufacturing record not found")
	}
	return record, nil
}

// GetHistory lists a record's workflow transitions in order
func (s *WorkflowService) GetHistory(ctx context.Context, recordID uuid.UUID) ([]manufacturing.WorkflowHistoryEntry, error) {
	return s.historyRepo.FindByRecord(ctx, recordID)
}

// ListRecords lists a branch's records with pagination
func (s *WorkflowService) ListRecords(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (*shared.Paginated[manufacturing.ManufacturingRecord], error) {
	records, err := s.recordRepo.FindAllForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	total, err := s.recordRepo.CountForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	page := shared.NewPaginated(records, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListByStatus lists a branch's records in a given status
func (s *WorkflowService) ListByStatus(ctx context.Context, branchID uuid.UUID, status manufacturing.WorkflowStatus, filter shared.Filter) ([]manufacturing.ManufacturingRecord, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown workflow status")
	}
	return s.recordRepo.FindByStatus(ctx, branchID, status, filter)
}

// publishEvents publishes and clears an aggregate's pending events.
// Publishing is best-effort; a failed publish never fails the command.
func (s *WorkflowService) publishEvents(ctx context.Context, record *manufacturing.ManufacturingRecord) {
	if s.eventPublisher == nil || record == nil {
		return
	}
	events := record.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	record.ClearDomainEvents()
}

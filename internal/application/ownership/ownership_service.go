package ownership

import (
	"context"
	"fmt"

	"github.com/aurum/backend/internal/domain/ownership"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/aurum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reference type constants for movement source documents
const (
	ReferenceTypeSupplierPayment     = "SUPPLIER_PAYMENT"
	ReferenceTypeManufacturingRecord = "MANUFACTURING_RECORD"
	ReferenceTypePurchaseOrder       = "PURCHASE_ORDER"
)

// Service owns the fractional ownership ledger. Every record mutation
// is paired with a movement carrying a post-mutation snapshot, inside
// one transaction.
type Service struct {
	scope          TransactionScope
	recordRepo     ownership.RecordRepository
	movementRepo   ownership.MovementRepository
	eventPublisher shared.EventPublisher
}

// NewService creates a new ownership Service
func NewService(
	scope TransactionScope,
	recordRepo ownership.RecordRepository,
	movementRepo ownership.MovementRepository,
	eventPublisher shared.EventPublisher,
) *Service {
	return &Service{
		scope:          scope,
		recordRepo:     recordRepo,
		movementRepo:   movementRepo,
		eventPublisher: eventPublisher,
	}
}

// OpenRecordRequest represents a request to open an ownership record
type OpenRecordRequest struct {
	BranchID       uuid.UUID
	StockRefKind   ownership.StockRefKind
	StockRefID     uuid.UUID
	FundingSource  ownership.FundingSource
	SupplierID     *uuid.UUID
	TotalQuantity  decimal.Decimal
	TotalWeight    valueobject.Weight
	TotalCost      valueobject.Money
	InitialPayment valueobject.Money
	ReferenceType  string
	ReferenceID    string
	ActorID        *uuid.UUID
}

// OpenRecord opens an ownership record for a stock position. The owned
// portion is seeded from the initial payment; a zero total cost means
// the position is fully owned from the start.
func (s *Service) OpenRecord(ctx context.Context, req OpenRecordRequest) (*ownership.OwnershipRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ownership", "open_record")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrRefType, req.StockRefKind.String(),
		telemetry.SpanAttrRefID, req.StockRefID.String(),
	)

	var record *ownership.OwnershipRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = s.OpenRecordWithin(ctx, repos, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, record)
	return record, nil
}

// OpenRecordWithin performs OpenRecord against the given transactional
// repositories, for callers composing a larger unit of work.
func (s *Service) OpenRecordWithin(ctx context.Context, repos TransactionalRepositories, req OpenRecordRequest) (*ownership.OwnershipRecord, error) {
	existing, err := repos.OwnershipRecordRepo().FindByStockRef(ctx, req.StockRefKind, req.StockRefID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing record: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Stock position already has an ownership record")
	}

	record, err := ownership.NewOwnershipRecord(req.BranchID, req.StockRefKind, req.StockRefID, req.FundingSource,
		req.SupplierID, req.TotalQuantity, req.TotalWeight, req.TotalCost, req.InitialPayment)
	if err != nil {
		return nil, err
	}
	if err := repos.OwnershipRecordRepo().Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save ownership record: %w", err)
	}

	opening := ownership.NewOwnershipMovement(record, ownership.MovementOpening,
		record.TotalQuantity, record.TotalWeight, record.AmountPaid).
		WithReference(req.ReferenceType, req.ReferenceID)
	if req.ActorID != nil {
		opening.WithActor(*req.ActorID)
	}
	if err := repos.OwnershipMovementRepo().Create(ctx, opening); err != nil {
		return nil, fmt.Errorf("failed to record opening movement: %w", err)
	}

	return record, nil
}

// ApplyPaymentRequest represents a payment against a record's
// outstanding amount
type ApplyPaymentRequest struct {
	RecordID      uuid.UUID
	Amount        valueobject.Money
	ReferenceType string
	ReferenceID   string
	ActorID       *uuid.UUID
}

// ApplyPayment applies a payment to a record, growing the owned
// portion pro-rata. A payment above the outstanding amount is rejected
// with PAYMENT_EXCEEDS_OUTSTANDING and nothing is written.
func (s *Service) ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*ownership.OwnershipRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ownership", "apply_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRecordID, req.RecordID.String(),
		telemetry.SpanAttrAmount, req.Amount.StringFixed(2),
	)

	var record *ownership.OwnershipRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = s.ApplyPaymentWithin(ctx, repos, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, record)
	return record, nil
}

// ApplyPaymentWithin performs ApplyPayment against the given
// transactional repositories. The treasury uses this to settle
// supplier-funded records inside the payment transaction.
func (s *Service) ApplyPaymentWithin(ctx context.Context, repos TransactionalRepositories, req ApplyPaymentRequest) (*ownership.OwnershipRecord, error) {
	record, err := repos.OwnershipRecordRepo().FindByID(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ownership record: %w", err)
	}
	if record == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Ownership record not found")
	}

	if err := record.ApplyPayment(req.Amount); err != nil {
		return nil, err
	}
	if err := repos.OwnershipRecordRepo().SaveWithLock(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save ownership record: %w", err)
	}

	movement := ownership.NewOwnershipMovement(record, ownership.MovementPaymentReceived,
		decimal.Zero, decimal.Zero, req.Amount.Amount()).
		WithReference(req.ReferenceType, req.ReferenceID)
	if req.ActorID != nil {
		movement.WithActor(*req.ActorID)
	}
	if err := repos.OwnershipMovementRepo().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to record payment movement: %w", err)
	}

	return record, nil
}

// ReceiveAdditionalRequest grows an existing record's position
type ReceiveAdditionalRequest struct {
	RecordID      uuid.UUID
	Quantity      decimal.Decimal
	Weight        valueobject.Weight
	Cost          valueobject.Money
	Paid          valueobject.Money
	ReferenceType string
	ReferenceID   string
	ActorID       *uuid.UUID
}

// ReceiveAdditionalWithin grows a record's position with more stock
// and its cost inside an existing unit of work
func (s *Service) ReceiveAdditionalWithin(ctx context.Context, repos TransactionalRepositories, req ReceiveAdditionalRequest) (*ownership.OwnershipRecord, error) {
	record, err := repos.OwnershipRecordRepo().FindByID(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ownership record: %w", err)
	}
	if record == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Ownership record not found")
	}

	if err := record.ReceiveAdditional(req.Quantity, req.Weight, req.Cost, req.Paid); err != nil {
		return nil, err
	}
	if err := repos.OwnershipRecordRepo().SaveWithLock(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save ownership record: %w", err)
	}

	movement := ownership.NewOwnershipMovement(record, ownership.MovementAdditionalReceipt,
		req.Quantity, req.Weight.Grams(), req.Cost.Amount()).
		WithReference(req.ReferenceType, req.ReferenceID)
	if req.ActorID != nil {
		movement.WithActor(*req.ActorID)
	}
	if err := repos.OwnershipMovementRepo().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to record receipt movement: %w", err)
	}

	return record, nil
}

// SourceDraw is one raw material lot's contribution to a derived
// position. Percentage is the lot's ownership fraction captured at
// consumption time.
type SourceDraw struct {
	LotID      uuid.UUID
	Weight     valueobject.Weight
	UnitCost   decimal.Decimal
	Percentage decimal.Decimal
}

// DeriveFromConsumptionRequest opens a finished-product record from
// the ownership mix of the raw material it consumed
type DeriveFromConsumptionRequest struct {
	BranchID      uuid.UUID
	ProductID     uuid.UUID
	Draws         []SourceDraw
	ReferenceType string
	ReferenceID   string
	ActorID       *uuid.UUID
}

// DeriveFromConsumption opens a product ownership record whose owned
// weight is the exact weighted sum of the source lots' owned fractions,
// and moves the consumed cost basis out of each source lot's record.
func (s *Service) DeriveFromConsumption(ctx context.Context, req DeriveFromConsumptionRequest) (*ownership.OwnershipRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ownership", "derive_from_consumption")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrRefID, req.ProductID.String(),
	)

	var record *ownership.OwnershipRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = s.DeriveFromConsumptionWithin(ctx, repos, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, record)
	return record, nil
}

// DeriveFromConsumptionWithin performs DeriveFromConsumption inside an
// existing unit of work. The manufacturing workflow calls this when a
// record completes.
func (s *Service) DeriveFromConsumptionWithin(ctx context.Context, repos TransactionalRepositories, req DeriveFromConsumptionRequest) (*ownership.OwnershipRecord, error) {
	if len(req.Draws) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "A derived record needs at least one source draw")
	}

	totalWeight := decimal.Zero
	ownedWeight := decimal.Zero
	totalCost := decimal.Zero
	paidCost := decimal.Zero
	var supplierID *uuid.UUID

	for _, draw := range req.Draws {
		if !draw.Weight.IsPositive() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Source draw weights must be positive")
		}
		if draw.Percentage.IsNegative() || draw.Percentage.GreaterThan(decimal.NewFromInt(1)) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Source percentages must be within [0, 1]")
		}

		drawCost := draw.Weight.Grams().Mul(draw.UnitCost).Round(2)
		drawPaid := drawCost.Mul(draw.Percentage).Round(2)
		totalWeight = totalWeight.Add(draw.Weight.Grams())
		ownedWeight = ownedWeight.Add(draw.Weight.Grams().Mul(draw.Percentage))
		totalCost = totalCost.Add(drawCost)
		paidCost = paidCost.Add(drawPaid)

		source, err := repos.OwnershipRecordRepo().FindByStockRef(ctx, ownership.StockRefRawLot, draw.LotID)
		if err != nil {
			return nil, fmt.Errorf("failed to load source record: %w", err)
		}
		if source == nil {
			continue // lot predates ownership tracking, treat as fully owned stock
		}
		if supplierID == nil && source.SupplierID != nil && !source.IsFullyOwned() {
			supplierID = source.SupplierID
		}

		if err := source.ConsumeOut(decimal.Zero, draw.Weight,
			valueobject.NewMoneyEGP(drawCost), valueobject.NewMoneyEGP(drawPaid)); err != nil {
			return nil, err
		}
		if err := repos.OwnershipRecordRepo().SaveWithLock(ctx, source); err != nil {
			return nil, fmt.Errorf("failed to save source record: %w", err)
		}
		consumption := ownership.NewOwnershipMovement(source, ownership.MovementConsumption,
			decimal.Zero, draw.Weight.Grams().Neg(), drawCost.Neg()).
			WithReference(req.ReferenceType, req.ReferenceID)
		if req.ActorID != nil {
			consumption.WithActor(*req.ActorID)
		}
		if err := repos.OwnershipMovementRepo().Create(ctx, consumption); err != nil {
			return nil, fmt.Errorf("failed to record consumption movement: %w", err)
		}
	}

	funding := ownership.FundingSelf
	if supplierID != nil {
		funding = ownership.FundingSupplier
	}

	record, err := ownership.NewDerivedOwnershipRecord(req.BranchID, ownership.StockRefProduct, req.ProductID,
		funding, supplierID, decimal.NewFromInt(1),
		valueobject.NewWeight(totalWeight), valueobject.NewWeight(ownedWeight),
		valueobject.NewMoneyEGP(totalCost), valueobject.NewMoneyEGP(paidCost))
	if err != nil {
		return nil, err
	}
	if err := repos.OwnershipRecordRepo().Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save derived record: %w", err)
	}

	opening := ownership.NewOwnershipMovement(record, ownership.MovementOpening,
		record.TotalQuantity, record.TotalWeight, record.AmountPaid).
		WithReference(req.ReferenceType, req.ReferenceID)
	if req.ActorID != nil {
		opening.WithActor(*req.ActorID)
	}
	if err := repos.OwnershipMovementRepo().Create(ctx, opening); err != nil {
		return nil, fmt.Errorf("failed to record opening movement: %w", err)
	}

	return record, nil
}

// GetRecord loads an ownership record by ID
func (s *Service) GetRecord(ctx context.Context, recordID uuid.UUID) (*ownership.OwnershipRecord, error) {
	record, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ownership record: %w", err)
	}
	if record == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Ownership record not found")
	}
	return record, nil
}

// GetByStockRef loads the record covering a stock position
func (s *Service) GetByStockRef(ctx context.Context, refKind ownership.StockRefKind, refID uuid.UUID) (*ownership.OwnershipRecord, error) {
	record, err := s.recordRepo.FindByStockRef(ctx, refKind, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ownership record: %w", err)
	}
	if record == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Ownership record not found")
	}
	return record, nil
}

// PercentageForLot returns a raw lot's current owned fraction. Lots
// with no ownership record count as fully owned.
func (s *Service) PercentageForLot(ctx context.Context, lotID uuid.UUID) (decimal.Decimal, error) {
	record, err := s.recordRepo.FindByStockRef(ctx, ownership.StockRefRawLot, lotID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load ownership record: %w", err)
	}
	if record == nil {
		return decimal.NewFromInt(1), nil
	}
	return record.Percentage(), nil
}

// GetMovements lists a record's movements in chronological order
func (s *Service) GetMovements(ctx context.Context, recordID uuid.UUID) ([]ownership.OwnershipMovement, error) {
	return s.movementRepo.FindByRecord(ctx, recordID)
}

// ListRecords lists a branch's ownership records with pagination
func (s *Service) ListRecords(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (*shared.Paginated[ownership.OwnershipRecord], error) {
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

// publishEvents publishes and clears an aggregate's pending events.
// Publishing is best-effort; a failed publish never fails the command.
func (s *Service) publishEvents(ctx context.Context, record *ownership.OwnershipRecord) {
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

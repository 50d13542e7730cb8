package rawgold

import (
	"context"
	"fmt"

	"github.com/aurum/backend/internal/domain/manufacturing"
	"github.com/aurum/backend/internal/domain/rawgold"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/aurum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reference type constants for movement source documents
const (
	ReferenceTypeManufacturingRecord = "MANUFACTURING_RECORD"
	ReferenceTypePurchaseOrderItem   = "PURCHASE_ORDER_ITEM"
)

// LedgerService owns all mutations of the raw gold weight ledger.
// Every lot change is paired with a movement row inside one database
// transaction, so replaying the movement log always reproduces the
// lot's available balance.
type LedgerService struct {
	scope        TransactionScope
	lotRepo      rawgold.LotRepository
	movementRepo rawgold.MovementRepository
	recordRepo   manufacturing.RecordRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	scope TransactionScope,
	lotRepo rawgold.LotRepository,
	movementRepo rawgold.MovementRepository,
	recordRepo manufacturing.RecordRepository,
) *LedgerService {
	return &LedgerService{
		scope:        scope,
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		recordRepo:   recordRepo,
	}
}

// ReceiveRequest represents a request to receive raw gold into a lot
type ReceiveRequest struct {
	BranchID            uuid.UUID
	LotID               *uuid.UUID // nil opens a new lot
	PurchaseOrderItemID uuid.UUID
	Karat               valueobject.KaratGrade
	Weight              valueobject.Weight
	UnitCostPerGram     decimal.Decimal
	ReferenceType       string
	ReferenceID         string
	ActorID             *uuid.UUID
}

// ReceiveResult carries the lot and the receipt movement
type ReceiveResult struct {
	Lot      *rawgold.RawGoldLot
	Movement *rawgold.RawGoldMovement
}

// Receive adds weight to a lot, creating the lot first when none is
// named. The lot update and the receipt movement commit atomically.
func (s *LedgerService) Receive(ctx context.Context, req ReceiveRequest) (*ReceiveResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "raw_gold", "receive")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrWeight, req.Weight.StringFixed(),
	)

	if !req.Weight.IsPositive() {
		err := shared.NewDomainError("INVALID_WEIGHT", "Received weight must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *ReceiveResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		result, err = s.ReceiveWithin(ctx, repos, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// ReceiveWithin performs Receive against the given transactional
// repositories, for callers composing a larger unit of work.
func (s *LedgerService) ReceiveWithin(ctx context.Context, repos TransactionalRepositories, req ReceiveRequest) (*ReceiveResult, error) {
	var lot *rawgold.RawGoldLot
	if req.LotID != nil {
		found, err := repos.LotRepo().FindByID(ctx, *req.LotID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lot: %w", err)
		}
		if found == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Raw gold lot not found")
		}
		lot = found
	} else {
		created, err := rawgold.NewRawGoldLot(req.BranchID, req.PurchaseOrderItemID, req.Karat, req.Weight, req.UnitCostPerGram)
		if err != nil {
			return nil, err
		}
		lot = created
	}

	balanceBefore := lot.WeightAvailable
	if err := lot.Receive(req.Weight); err != nil {
		return nil, err
	}
	if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to save lot: %w", err)
	}

	movement := rawgold.NewRawGoldMovement(lot, rawgold.MovementKindReceipt, req.Weight.Grams(), balanceBefore).
		WithReference(refOrDefault(req.ReferenceType, ReferenceTypePurchaseOrderItem), refIDOrDefault(req.ReferenceID, lot.PurchaseOrderItemID.String()))
	if req.ActorID != nil {
		movement.WithActor(*req.ActorID)
	}
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to record receipt movement: %w", err)
	}

	return &ReceiveResult{Lot: lot, Movement: movement}, nil
}

// ConsumeRequest represents a request to draw weight from a lot
type ConsumeRequest struct {
	LotID         uuid.UUID
	Consumed      valueobject.Weight
	Wasted        valueobject.Weight
	ReferenceType string
	ReferenceID   string
	ActorID       *uuid.UUID
}

// ConsumeResult carries the lot and the movements written for the draw
type ConsumeResult struct {
	Lot                 *rawgold.RawGoldLot
	ConsumptionMovement *rawgold.RawGoldMovement
	WastageMovement     *rawgold.RawGoldMovement // nil when nothing was wasted
}

// Consume draws consumed plus wasted weight from a lot's availability.
// A draw exceeding the available balance (beyond the milligram
// tolerance) is rejected with INSUFFICIENT_RAW_GOLD and nothing is
// written.
func (s *LedgerService) Consume(ctx context.Context, req ConsumeRequest) (*ConsumeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "raw_gold", "consume")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrLotID, req.LotID.String(),
		telemetry.SpanAttrWeight, req.Consumed.Add(req.Wasted).StringFixed(),
		telemetry.SpanAttrRefType, req.ReferenceType,
		telemetry.SpanAttrRefID, req.ReferenceID,
	)

	var result *ConsumeResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		result, err = s.ConsumeWithin(ctx, repos, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// ConsumeWithin performs Consume against the given transactional
// repositories. The manufacturing workflow uses this to draw material
// inside its own unit of work.
func (s *LedgerService) ConsumeWithin(ctx context.Context, repos TransactionalRepositories, req ConsumeRequest) (*ConsumeResult, error) {
	lot, err := repos.LotRepo().FindByID(ctx, req.LotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lot: %w", err)
	}
	if lot == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Raw gold lot not found")
	}

	balanceBefore := lot.WeightAvailable
	if err := lot.Consume(req.Consumed, req.Wasted); err != nil {
		return nil, err
	}
	if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to save lot: %w", err)
	}

	result := &ConsumeResult{Lot: lot}

	consumption := rawgold.NewRawGoldMovement(lot, rawgold.MovementKindConsumption, req.Consumed.Grams().Neg(), balanceBefore).
		WithReference(req.ReferenceType, req.ReferenceID)
	if req.ActorID != nil {
		consumption.WithActor(*req.ActorID)
	}
	if err := repos.MovementRepo().Create(ctx, consumption); err != nil {
		return nil, fmt.Errorf("failed to record consumption movement: %w", err)
	}
	result.ConsumptionMovement = consumption

	if req.Wasted.IsPositive() {
		wastage := rawgold.NewRawGoldMovement(lot, rawgold.MovementKindWastage, req.Wasted.Grams().Neg(), consumption.BalanceAfter).
			WithReference(req.ReferenceType, req.ReferenceID)
		if req.ActorID != nil {
			wastage.WithActor(*req.ActorID)
		}
		if err := repos.MovementRepo().Create(ctx, wastage); err != nil {
			return nil, fmt.Errorf("failed to record wastage movement: %w", err)
		}
		result.WastageMovement = wastage
	}

	return result, nil
}

// ReverseConsumption undoes a consumption or wastage movement,
// returning its weight to the lot's availability. A movement may be
// reversed at most once, and only while the manufacturing record that
// drew it is still non-terminal.
func (s *LedgerService) ReverseConsumption(ctx context.Context, movementID uuid.UUID, actorID *uuid.UUID) (*rawgold.RawGoldMovement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "raw_gold", "reverse_consumption")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrMovementID, movementID.String())

	movement, err := s.movementRepo.FindByID(ctx, movementID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load movement: %w", err)
	}
	if movement == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Movement not found")
	}

	if movement.ReferenceType == ReferenceTypeManufacturingRecord {
		recordID, parseErr := uuid.Parse(movement.ReferenceID)
		if parseErr == nil {
			record, err := s.recordRepo.FindByID(ctx, recordID)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, fmt.Errorf("failed to load manufacturing record: %w", err)
			}
			if record != nil && record.IsTerminal() {
				err := shared.NewDomainError("INVALID_STATE", "Owning manufacturing record is already terminal")
				telemetry.RecordError(span, err)
				return nil, err
			}
		}
	}

	var reversal *rawgold.RawGoldMovement
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		reversal, err = s.ReverseMovementWithin(ctx, repos, movementID, actorID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return reversal, nil
}

// ReverseMovementWithin reverses a movement inside an existing unit of
// work. Callers are responsible for the owning-record guard; the
// at-most-once rule is always enforced here.
func (s *LedgerService) ReverseMovementWithin(ctx context.Context, repos TransactionalRepositories, movementID uuid.UUID, actorID *uuid.UUID) (*rawgold.RawGoldMovement, error) {
	movement, err := repos.MovementRepo().FindByID(ctx, movementID)
	if err != nil {
		return nil, fmt.Errorf("failed to load movement: %w", err)
	}
	if movement == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Movement not found")
	}
	if movement.Kind != rawgold.MovementKindConsumption && movement.Kind != rawgold.MovementKindWastage {
		return nil, shared.NewDomainError("INVALID_STATE", "Only consumption and wastage movements can be reversed")
	}

	existing, err := repos.MovementRepo().FindReversalOf(ctx, movementID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for prior reversal: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Movement has already been reversed")
	}

	lot, err := repos.LotRepo().FindByID(ctx, movement.LotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lot: %w", err)
	}
	if lot == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Raw gold lot not found")
	}

	restored := valueobject.NewWeight(movement.WeightDelta.Neg())
	balanceBefore := lot.WeightAvailable
	var restoreErr error
	if movement.Kind == rawgold.MovementKindConsumption {
		restoreErr = lot.Restore(restored, valueobject.ZeroWeight())
	} else {
		restoreErr = lot.Restore(valueobject.ZeroWeight(), restored)
	}
	if restoreErr != nil {
		return nil, restoreErr
	}
	if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to save lot: %w", err)
	}

	reversal := rawgold.NewRawGoldMovement(lot, rawgold.MovementKindReversal, restored.Grams(), balanceBefore).
		WithReference(movement.ReferenceType, movement.ReferenceID).
		WithReversedMovement(movement.ID)
	if actorID != nil {
		reversal.WithActor(*actorID)
	}
	if err := repos.MovementRepo().Create(ctx, reversal); err != nil {
		return nil, fmt.Errorf("failed to record reversal movement: %w", err)
	}

	return reversal, nil
}

// RemainingWeight returns received minus consumed minus wasted for a lot
func (s *LedgerService) RemainingWeight(ctx context.Context, lotID uuid.UUID) (valueobject.Weight, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return valueobject.ZeroWeight(), fmt.Errorf("failed to load lot: %w", err)
	}
	if lot == nil {
		return valueobject.ZeroWeight(), shared.NewDomainError("NOT_FOUND", "Raw gold lot not found")
	}
	return lot.RemainingWeight(), nil
}

// LotVerification is the outcome of replaying a lot's movement log
type LotVerification struct {
	LotID             uuid.UUID       `json:"lot_id"`
	StoredAvailable   decimal.Decimal `json:"stored_available"`
	ReplayedAvailable decimal.Decimal `json:"replayed_available"`
	Conserved         bool            `json:"conserved"`
	Consistent        bool            `json:"consistent"`
}

// VerifyLot replays the lot's movements from zero and compares the
// result with the stored available weight, and checks the lot's
// conservation balance.
func (s *LedgerService) VerifyLot(ctx context.Context, lotID uuid.UUID) (*LotVerification, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "raw_gold", "verify_lot")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrLotID, lotID.String())

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load lot: %w", err)
	}
	if lot == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Raw gold lot not found")
	}

	replayed, err := s.movementRepo.SumDeltasForLot(ctx, lotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to replay movements: %w", err)
	}

	consistent := valueobject.NewWeight(replayed).EqualsWithin(lot.Available())
	return &LotVerification{
		LotID:             lot.ID,
		StoredAvailable:   lot.WeightAvailable,
		ReplayedAvailable: replayed,
		Conserved:         lot.IsBalanced(),
		Consistent:        consistent,
	}, nil
}

// GetLot loads a lot within a branch
func (s *LedgerService) GetLot(ctx context.Context, branchID, lotID uuid.UUID) (*rawgold.RawGoldLot, error) {
	lot, err := s.lotRepo.FindByIDForBranch(ctx, branchID, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lot: %w", err)
	}
	if lot == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Raw gold lot not found")
	}
	return lot, nil
}

// ListLots lists a branch's lots with pagination
func (s *LedgerService) ListLots(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (*shared.Paginated[rawgold.RawGoldLot], error) {
	lots, err := s.lotRepo.FindAllForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	total, err := s.lotRepo.CountForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count lots: %w", err)
	}
	page := shared.NewPaginated(lots, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetMovements lists a lot's movements in chronological order
func (s *LedgerService) GetMovements(ctx context.Context, lotID uuid.UUID) ([]rawgold.RawGoldMovement, error) {
	return s.movementRepo.FindByLot(ctx, lotID)
}

func refOrDefault(ref, fallback string) string {
	if ref != "" {
		return ref
	}
	return fallback
}

func refIDOrDefault(refID, fallback string) string {
	if refID != "" {
		return refID
	}
	return fallback
}

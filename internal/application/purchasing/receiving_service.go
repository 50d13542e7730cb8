package purchasing

import (
	"context"
	"fmt"

	ownershipapp "github.com/aurum/backend/internal/application/ownership"
	rawgoldapp "github.com/aurum/backend/internal/application/rawgold"
	treasuryapp "github.com/aurum/backend/internal/application/treasury"
	"github.com/aurum/backend/internal/domain/ownership"
	"github.com/aurum/backend/internal/domain/rawgold"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/aurum/backend/internal/domain/treasury"
	"github.com/aurum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivingService records the arrival of purchased raw gold. One
// delivery writes the raw gold lot and its receipt movement, the
// ownership record for the unpaid portion, and the supplier's invoice
// in a single database transaction.
type ReceivingService struct {
	scope     TransactionScope
	ledger    *rawgoldapp.LedgerService
	ownership *ownershipapp.Service
	treasury  *treasuryapp.Service
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(
	scope TransactionScope,
	ledger *rawgoldapp.LedgerService,
	ownershipService *ownershipapp.Service,
	treasuryService *treasuryapp.Service,
) *ReceivingService {
	return &ReceivingService{
		scope:     scope,
		ledger:    ledger,
		ownership: ownershipService,
		treasury:  treasuryService,
	}
}

// ReceiveDeliveryRequest represents one received purchase-order line
type ReceiveDeliveryRequest struct {
	BranchID            uuid.UUID
	PurchaseOrderItemID uuid.UUID
	SupplierID          *uuid.UUID // nil means the delivery was paid in full up front
	Karat               valueobject.KaratGrade
	Weight              valueobject.Weight
	UnitCostPerGram     decimal.Decimal
	AmountPaid          valueobject.Money
	ActorID             *uuid.UUID
}

// ReceiveDeliveryResult carries everything one delivery wrote
type ReceiveDeliveryResult struct {
	Lot                 *rawgold.RawGoldLot
	ReceiptMovement     *rawgold.RawGoldMovement
	OwnershipRecord     *ownership.OwnershipRecord
	SupplierTransaction *treasury.SupplierTransaction // nil when nothing is owed
}

// ReceiveDelivery books a delivery against its purchase-order line.
// Repeat deliveries against the same line accumulate on the existing
// lot and grow its ownership record.
func (s *ReceivingService) ReceiveDelivery(ctx context.Context, req ReceiveDeliveryRequest) (*ReceiveDeliveryResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchasing", "receive_delivery")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrKarat, req.Karat.String(),
		telemetry.SpanAttrWeight, req.Weight.StringFixed(),
	)

	if !req.Weight.IsPositive() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Received weight must be positive")
	}
	if req.UnitCostPerGram.IsNegative() || req.AmountPaid.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Costs cannot be negative")
	}

	cost := req.Weight.Grams().Mul(req.UnitCostPerGram).Round(2)
	if req.AmountPaid.Amount().GreaterThan(cost) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Paid amount exceeds the delivery cost")
	}
	outstanding := cost.Sub(req.AmountPaid.Amount())
	if req.SupplierID == nil && outstanding.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "An unpaid delivery requires a supplier")
	}

	var result *ReceiveDeliveryResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.LotRepo().FindByPurchaseOrderItem(ctx, req.PurchaseOrderItemID)
		if err != nil {
			return fmt.Errorf("failed to look up lot: %w", err)
		}

		receiveReq := rawgoldapp.ReceiveRequest{
			BranchID:            req.BranchID,
			PurchaseOrderItemID: req.PurchaseOrderItemID,
			Karat:               req.Karat,
			Weight:              req.Weight,
			UnitCostPerGram:     req.UnitCostPerGram,
			ReferenceType:       rawgoldapp.ReferenceTypePurchaseOrderItem,
			ReferenceID:         req.PurchaseOrderItemID.String(),
			ActorID:             req.ActorID,
		}
		if existing != nil {
			receiveReq.LotID = &existing.ID
		}
		received, err := s.ledger.ReceiveWithin(ctx, repos, receiveReq)
		if err != nil {
			return err
		}

		record, err := s.bookOwnership(ctx, repos, req, received.Lot, cost)
		if err != nil {
			return err
		}

		result = &ReceiveDeliveryResult{
			Lot:             received.Lot,
			ReceiptMovement: received.Movement,
			OwnershipRecord: record,
		}

		if req.SupplierID != nil && outstanding.IsPositive() {
			supplierTx, err := s.treasury.RecordInvoiceWithin(ctx, repos, *req.SupplierID,
				valueobject.NewMoneyEGP(outstanding),
				rawgoldapp.ReferenceTypePurchaseOrderItem, req.PurchaseOrderItemID.String(), req.ActorID)
			if err != nil {
				return err
			}
			result.SupplierTransaction = supplierTx
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// bookOwnership opens the lot's ownership record on first delivery and
// grows it on repeat deliveries
func (s *ReceivingService) bookOwnership(ctx context.Context, repos TransactionalRepositories, req ReceiveDeliveryRequest, lot *rawgold.RawGoldLot, cost decimal.Decimal) (*ownership.OwnershipRecord, error) {
	existing, err := repos.OwnershipRecordRepo().FindByStockRef(ctx, ownership.StockRefRawLot, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ownership record: %w", err)
	}
	if existing != nil {
		return s.ownership.ReceiveAdditionalWithin(ctx, repos, ownershipapp.ReceiveAdditionalRequest{
			RecordID:      existing.ID,
			Quantity:      decimal.Zero,
			Weight:        req.Weight,
			Cost:          valueobject.NewMoneyEGP(cost),
			Paid:          req.AmountPaid,
			ReferenceType: ownershipapp.ReferenceTypePurchaseOrder,
			ReferenceID:   req.PurchaseOrderItemID.String(),
			ActorID:       req.ActorID,
		})
	}

	funding := ownership.FundingSelf
	if req.SupplierID != nil {
		funding = ownership.FundingSupplier
	}
	return s.ownership.OpenRecordWithin(ctx, repos, ownershipapp.OpenRecordRequest{
		BranchID:       req.BranchID,
		StockRefKind:   ownership.StockRefRawLot,
		StockRefID:     lot.ID,
		FundingSource:  funding,
		SupplierID:     req.SupplierID,
		TotalQuantity:  decimal.NewFromInt(1),
		TotalWeight:    req.Weight,
		TotalCost:      valueobject.NewMoneyEGP(cost),
		InitialPayment: req.AmountPaid,
		ReferenceType:  ownershipapp.ReferenceTypePurchaseOrder,
		ReferenceID:    req.PurchaseOrderItemID.String(),
		ActorID:        req.ActorID,
	})
}

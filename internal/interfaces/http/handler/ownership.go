package handler

import (
	"time"

	ownershipapp "github.com/aurum/backend/internal/application/ownership"
	"github.com/aurum/backend/internal/domain/ownership"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OwnershipHandler handles ownership ledger API endpoints
type OwnershipHandler struct {
	BaseHandler
	ownership *ownershipapp.Service
}

// NewOwnershipHandler creates a new OwnershipHandler
func NewOwnershipHandler(ownershipService *ownershipapp.Service) *OwnershipHandler {
	return &OwnershipHandler{
		ownership: ownershipService,
	}
}

// ApplyPaymentRequest represents a payment against an ownership record
// @Description Request body for paying down a record's outstanding amount
type ApplyPaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0" example:"5000.00"`
	ReferenceType string  `json:"reference_type" binding:"max=30"`
	ReferenceID   string  `json:"reference_id" binding:"max=50"`
}

// OwnershipRecordResponse represents an ownership record
// @Description Ownership record with its derived percentage
type OwnershipRecordResponse struct {
	ID                uuid.UUID  `json:"id"`
	BranchID          uuid.UUID  `json:"branch_id"`
	StockRefKind      string     `json:"stock_ref_kind"`
	StockRefID        uuid.UUID  `json:"stock_ref_id"`
	FundingSource     string     `json:"funding_source"`
	SupplierID        *uuid.UUID `json:"supplier_id,omitempty"`
	TotalQuantity     string     `json:"total_quantity"`
	TotalWeight       string     `json:"total_weight"`
	OwnedQuantity     string     `json:"owned_quantity"`
	OwnedWeight       string     `json:"owned_weight"`
	TotalCost         string     `json:"total_cost"`
	AmountPaid        string     `json:"amount_paid"`
	OutstandingAmount string     `json:"outstanding_amount"`
	Percentage        string     `json:"percentage"`
	Version           int        `json:"version"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// OwnershipMovementResponse represents one ownership movement
// @Description One append-only entry in a record's movement log
type OwnershipMovementResponse struct {
	ID                 uuid.UUID  `json:"id"`
	RecordID           uuid.UUID  `json:"record_id"`
	Type               string     `json:"type"`
	QuantityDelta      string     `json:"quantity_delta"`
	WeightDelta        string     `json:"weight_delta"`
	AmountDelta        string     `json:"amount_delta"`
	OwnedQuantityAfter string     `json:"owned_quantity_after"`
	OwnedWeightAfter   string     `json:"owned_weight_after"`
	PercentageAfter    string     `json:"percentage_after"`
	ReferenceType      string     `json:"reference_type,omitempty"`
	ReferenceID        string     `json:"reference_id,omitempty"`
	ActorID            *uuid.UUID `json:"actor_id,omitempty"`
	OccurredAt         time.Time  `json:"occurred_at"`
}

func toOwnershipRecordResponse(record *ownership.OwnershipRecord) OwnershipRecordResponse {
	return OwnershipRecordResponse{
		ID:                record.ID,
		BranchID:          record.BranchID,
		StockRefKind:      record.StockRefKind.String(),
		StockRefID:        record.StockRefID,
		FundingSource:     record.FundingSource.String(),
		SupplierID:        record.SupplierID,
		TotalQuantity:     record.TotalQuantity.StringFixed(3),
		TotalWeight:       record.TotalWeight.StringFixed(3),
		OwnedQuantity:     record.OwnedQuantity.StringFixed(3),
		OwnedWeight:       record.OwnedWeight.StringFixed(3),
		TotalCost:         record.TotalCost.StringFixed(2),
		AmountPaid:        record.AmountPaid.StringFixed(2),
		OutstandingAmount: record.OutstandingAmount.StringFixed(2),
		Percentage:        record.Percentage().StringFixed(4),
		Version:           record.Version,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func toOwnershipMovementResponse(m *ownership.OwnershipMovement) OwnershipMovementResponse {
	return OwnershipMovementResponse{
		ID:                 m.ID,
		RecordID:           m.RecordID,
		Type:               string(m.Type),
		QuantityDelta:      m.QuantityDelta.StringFixed(3),
		WeightDelta:        m.WeightDelta.StringFixed(3),
		AmountDelta:        m.AmountDelta.StringFixed(2),
		OwnedQuantityAfter: m.OwnedQuantityAfter.StringFixed(3),
		OwnedWeightAfter:   m.OwnedWeightAfter.StringFixed(3),
		PercentageAfter:    m.PercentageAfter.StringFixed(4),
		ReferenceType:      m.ReferenceType,
		ReferenceID:        m.ReferenceID,
		ActorID:            m.ActorID,
		OccurredAt:         m.OccurredAt,
	}
}

// Get godoc
// @Summary      Get an ownership record
// @Tags         ownership
// @Produce      json
// @Param        id path string true "Record ID"
// @Success      200 {object} dto.Response{data=OwnershipRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ownership/records/{id} [get]
func (h *OwnershipHandler) Get(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	record, err := h.ownership.GetRecord(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOwnershipRecordResponse(record))
}

// GetByStockRef godoc
// @Summary      Get the record covering a stock position
// @Tags         ownership
// @Produce      json
// @Param        kind path string true "Stock reference kind" Enums(PRODUCT, RAW_LOT)
// @Param        ref_id path string true "Stock reference ID"
// @Success      200 {object} dto.Response{data=OwnershipRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ownership/stock/{kind}/{ref_id} [get]
func (h *OwnershipHandler) GetByStockRef(c *gin.Context) {
	kind := ownership.StockRefKind(c.Param("kind"))
	if !kind.IsValid() {
		h.BadRequest(c, "Unknown stock reference kind")
		return
	}
	refID, err := uuid.Parse(c.Param("ref_id"))
	if err != nil {
		h.BadRequest(c, "Invalid stock reference ID")
		return
	}

	record, err := h.ownership.GetByStockRef(c.Request.Context(), kind, refID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOwnershipRecordResponse(record))
}

// List godoc
// @Summary      List ownership records
// @Description  Lists the branch's records with pagination
// @Tags         ownership
// @Produce      json
// @Param        funding_source query string false "Funding source"
// @Param        outstanding_only query bool false "Only records still owing"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]OwnershipRecordResponse}
// @Security     BearerAuth
// @Router       /ownership/records [get]
func (h *OwnershipHandler) List(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := query.toFilter()
	if source := c.Query("funding_source"); source != "" {
		filter.Filters["funding_source"] = source
	}
	if kind := c.Query("stock_ref_kind"); kind != "" {
		filter.Filters["stock_ref_kind"] = kind
	}
	if c.Query("outstanding_only") == "true" {
		filter.Filters["outstanding_only"] = true
	}

	page, err := h.ownership.ListRecords(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]OwnershipRecordResponse, 0, len(page.Items))
	for i := range page.Items {
		resp = append(resp, toOwnershipRecordResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, resp, page.Total, page.Page, page.PageSize)
}

// Movements godoc
// @Summary      List a record's movements
// @Description  Lists a record's movement log in chronological order
// @Tags         ownership
// @Produce      json
// @Param        id path string true "Record ID"
// @Success      200 {object} dto.Response{data=[]OwnershipMovementResponse}
// @Security     BearerAuth
// @Router       /ownership/records/{id}/movements [get]
func (h *OwnershipHandler) Movements(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	movements, err := h.ownership.GetMovements(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]OwnershipMovementResponse, 0, len(movements))
	for i := range movements {
		resp = append(resp, toOwnershipMovementResponse(&movements[i]))
	}
	h.Success(c, resp)
}

// ApplyPayment godoc
// @Summary      Pay down an ownership record
// @Description  Applies a payment to a record, growing the owned portion pro-rata
// @Tags         ownership
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID"
// @Param        request body ApplyPaymentRequest true "Payment request"
// @Success      200 {object} dto.Response{data=OwnershipRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ownership/records/{id}/payments [post]
func (h *OwnershipHandler) ApplyPayment(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	record, err := h.ownership.ApplyPayment(c.Request.Context(), ownershipapp.ApplyPaymentRequest{
		RecordID:      recordID,
		Amount:        valueobject.NewMoneyEGP(toDecimal(req.Amount)),
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		ActorID:       getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOwnershipRecordResponse(record))
}

// LotPercentage godoc
// @Summary      Get a lot's ownership percentage
// @Description  Returns the owned fraction of a raw gold lot's position
// @Tags         ownership
// @Produce      json
// @Param        id path string true "Lot ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ownership/lots/{id}/percentage [get]
func (h *OwnershipHandler) LotPercentage(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return
	}

	percentage, err := h.ownership.PercentageForLot(c.Request.Context(), lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"lot_id": lotID, "percentage": percentage.StringFixed(4)})
}

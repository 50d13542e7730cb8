package handler

import (
	"time"

	rawgoldapp "github.com/aurum/backend/internal/application/rawgold"
	"github.com/aurum/backend/internal/domain/rawgold"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RawGoldHandler handles raw gold ledger API endpoints
type RawGoldHandler struct {
	BaseHandler
	ledger *rawgoldapp.LedgerService
}

// NewRawGoldHandler creates a new RawGoldHandler
func NewRawGoldHandler(ledger *rawgoldapp.LedgerService) *RawGoldHandler {
	return &RawGoldHandler{
		ledger: ledger,
	}
}

// ReceiveRawGoldRequest represents a request to receive raw gold
// @Description Request body for receiving raw gold into a lot
type ReceiveRawGoldRequest struct {
	LotID               *string `json:"lot_id" binding:"omitempty,uuid" example:"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`
	PurchaseOrderItemID string  `json:"purchase_order_item_id" binding:"required,uuid" example:"6ba7b811-9dad-11d1-80b4-00c04fd430c8"`
	Karat               string  `json:"karat" binding:"required,oneof=K18 K21 K22 K24" example:"K21"`
	Weight              float64 `json:"weight" binding:"required,gt=0" example:"250.500"`
	UnitCostPerGram     float64 `json:"unit_cost_per_gram" binding:"required,gt=0" example:"3100.00"`
	ReferenceType       string  `json:"reference_type" binding:"max=30" example:"PURCHASE_ORDER_ITEM"`
	ReferenceID         string  `json:"reference_id" binding:"max=50"`
}

// ConsumeRawGoldRequest represents a request to draw weight from a lot
// @Description Request body for consuming raw gold from a lot
type ConsumeRawGoldRequest struct {
	Consumed      float64 `json:"consumed" binding:"required,gt=0" example:"120.000"`
	Wasted        float64 `json:"wasted" binding:"gte=0" example:"1.250"`
	ReferenceType string  `json:"reference_type" binding:"max=30" example:"MANUFACTURING_RECORD"`
	ReferenceID   string  `json:"reference_id" binding:"max=50"`
}

// RawGoldLotResponse represents a raw gold lot in API responses
// @Description Raw gold lot with its conservation balances
type RawGoldLotResponse struct {
	ID                  uuid.UUID `json:"id"`
	BranchID            uuid.UUID `json:"branch_id"`
	PurchaseOrderItemID uuid.UUID `json:"purchase_order_item_id"`
	Karat               string    `json:"karat"`
	WeightOrdered       string    `json:"weight_ordered"`
	WeightReceived      string    `json:"weight_received"`
	WeightConsumed      string    `json:"weight_consumed"`
	WeightWasted        string    `json:"weight_wasted"`
	WeightAvailable     string    `json:"weight_available"`
	UnitCostPerGram     string    `json:"unit_cost_per_gram"`
	Status              string    `json:"status"`
	Version             int       `json:"version"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// RawGoldMovementResponse represents a raw gold movement in API responses
// @Description One append-only entry in a lot's movement log
type RawGoldMovementResponse struct {
	ID                 uuid.UUID  `json:"id"`
	LotID              uuid.UUID  `json:"lot_id"`
	Kind               string     `json:"kind"`
	WeightDelta        string     `json:"weight_delta"`
	BalanceBefore      string     `json:"balance_before"`
	BalanceAfter       string     `json:"balance_after"`
	ReferenceType      string     `json:"reference_type,omitempty"`
	ReferenceID        string     `json:"reference_id,omitempty"`
	ReversedMovementID *uuid.UUID `json:"reversed_movement_id,omitempty"`
	ActorID            *uuid.UUID `json:"actor_id,omitempty"`
	OccurredAt         time.Time  `json:"occurred_at"`
}

// ReceiveRawGoldResponse carries the lot and the receipt movement
// @Description Result of receiving raw gold
type ReceiveRawGoldResponse struct {
	Lot      RawGoldLotResponse      `json:"lot"`
	Movement RawGoldMovementResponse `json:"movement"`
}

// ConsumeRawGoldResponse carries the lot and the movements the draw wrote
// @Description Result of consuming raw gold
type ConsumeRawGoldResponse struct {
	Lot                 RawGoldLotResponse       `json:"lot"`
	ConsumptionMovement RawGoldMovementResponse  `json:"consumption_movement"`
	WastageMovement     *RawGoldMovementResponse `json:"wastage_movement,omitempty"`
}

func toRawGoldLotResponse(lot *rawgold.RawGoldLot) RawGoldLotResponse {
	return RawGoldLotResponse{
		ID:                  lot.ID,
		BranchID:            lot.BranchID,
		PurchaseOrderItemID: lot.PurchaseOrderItemID,
		Karat:               lot.Karat.String(),
		WeightOrdered:       lot.WeightOrdered.StringFixed(3),
		WeightReceived:      lot.WeightReceived.StringFixed(3),
		WeightConsumed:      lot.WeightConsumed.StringFixed(3),
		WeightWasted:        lot.WeightWasted.StringFixed(3),
		WeightAvailable:     lot.WeightAvailable.StringFixed(3),
		UnitCostPerGram:     lot.UnitCostPerGram.StringFixed(2),
		Status:              lot.Status.String(),
		Version:             lot.Version,
		CreatedAt:           lot.CreatedAt,
		UpdatedAt:           lot.UpdatedAt,
	}
}

func toRawGoldMovementResponse(m *rawgold.RawGoldMovement) RawGoldMovementResponse {
	return RawGoldMovementResponse{
		ID:                 m.ID,
		LotID:              m.LotID,
		Kind:               m.Kind.String(),
		WeightDelta:        m.WeightDelta.StringFixed(3),
		BalanceBefore:      m.BalanceBefore.StringFixed(3),
		BalanceAfter:       m.BalanceAfter.StringFixed(3),
		ReferenceType:      m.ReferenceType,
		ReferenceID:        m.ReferenceID,
		ReversedMovementID: m.ReversedMovementID,
		ActorID:            m.ActorID,
		OccurredAt:         m.OccurredAt,
	}
}

// Receive godoc
// @Summary      Receive raw gold
// @Description  Adds weight to a lot, creating the lot when none is named
// @Tags         raw-gold
// @Accept       json
// @Produce      json
// @Param        request body ReceiveRawGoldRequest true "Receipt request"
// @Success      201 {object} dto.Response{data=ReceiveRawGoldResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-gold/receipts [post]
func (h *RawGoldHandler) Receive(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}

	var req ReceiveRawGoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	poItemID, err := uuid.Parse(req.PurchaseOrderItemID)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order item ID")
		return
	}

	appReq := rawgoldapp.ReceiveRequest{
		BranchID:            branchID,
		PurchaseOrderItemID: poItemID,
		Karat:               valueobject.KaratGrade(req.Karat),
		Weight:              valueobject.NewWeightFromFloat(req.Weight),
		UnitCostPerGram:     toDecimal(req.UnitCostPerGram),
		ReferenceType:       req.ReferenceType,
		ReferenceID:         req.ReferenceID,
		ActorID:             getActorID(c),
	}
	if req.LotID != nil {
		lotID, err := uuid.Parse(*req.LotID)
		if err != nil {
			h.BadRequest(c, "Invalid lot ID")
			return
		}
		appReq.LotID = &lotID
	}

	result, err := h.ledger.Receive(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ReceiveRawGoldResponse{
		Lot:      toRawGoldLotResponse(result.Lot),
		Movement: toRawGoldMovementResponse(result.Movement),
	})
}

// Consume godoc
// @Summary      Consume raw gold
// @Description  Draws consumed plus wasted weight from a lot's availability
// @Tags         raw-gold
// @Accept       json
// @Produce      json
// @Param        id path string true "Lot ID"
// @Param        request body ConsumeRawGoldRequest true "Consumption request"
// @Success      200 {object} dto.Response{data=ConsumeRawGoldResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-gold/lots/{id}/consume [post]
func (h *RawGoldHandler) Consume(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return
	}

	var req ConsumeRawGoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledger.Consume(c.Request.Context(), rawgoldapp.ConsumeRequest{
		LotID:         lotID,
		Consumed:      valueobject.NewWeightFromFloat(req.Consumed),
		Wasted:        valueobject.NewWeightFromFloat(req.Wasted),
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		ActorID:       getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := ConsumeRawGoldResponse{
		Lot:                 toRawGoldLotResponse(result.Lot),
		ConsumptionMovement: toRawGoldMovementResponse(result.ConsumptionMovement),
	}
	if result.WastageMovement != nil {
		wastage := toRawGoldMovementResponse(result.WastageMovement)
		resp.WastageMovement = &wastage
	}
	h.Success(c, resp)
}

// Reverse godoc
// @Summary      Reverse a consumption movement
// @Description  Returns a consumed draw to its lot's availability
// @Tags         raw-gold
// @Produce      json
// @Param        id path string true "Movement ID"
// @Success      200 {object} dto.Response{data=RawGoldMovementResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-gold/movements/{id}/reverse [post]
func (h *RawGoldHandler) Reverse(c *gin.Context) {
	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid movement ID")
		return
	}

	reversal, err := h.ledger.ReverseConsumption(c.Request.Context(), movementID, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRawGoldMovementResponse(reversal))
}

// List godoc
// @Summary      List raw gold lots
// @Description  Lists the branch's lots with pagination
// @Tags         raw-gold
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]RawGoldLotResponse}
// @Security     BearerAuth
// @Router       /raw-gold/lots [get]
func (h *RawGoldHandler) List(c *gin.Context) {
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
	if karat := c.Query("karat"); karat != "" {
		filter.Filters["karat"] = karat
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	page, err := h.ledger.ListLots(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	lots := make([]RawGoldLotResponse, 0, len(page.Items))
	for i := range page.Items {
		lots = append(lots, toRawGoldLotResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, lots, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Get a raw gold lot
// @Tags         raw-gold
// @Produce      json
// @Param        id path string true "Lot ID"
// @Success      200 {object} dto.Response{data=RawGoldLotResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-gold/lots/{id} [get]
func (h *RawGoldHandler) Get(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return
	}

	lot, err := h.ledger.GetLot(c.Request.Context(), branchID, lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRawGoldLotResponse(lot))
}

// Movements godoc
// @Summary      List a lot's movements
// @Description  Lists a lot's movement log in chronological order
// @Tags         raw-gold
// @Produce      json
// @Param        id path string true "Lot ID"
// @Success      200 {object} dto.Response{data=[]RawGoldMovementResponse}
// @Security     BearerAuth
// @Router       /raw-gold/lots/{id}/movements [get]
func (h *RawGoldHandler) Movements(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return
	}

	movements, err := h.ledger.GetMovements(c.Request.Context(), lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]RawGoldMovementResponse, 0, len(movements))
	for i := range movements {
		resp = append(resp, toRawGoldMovementResponse(&movements[i]))
	}
	h.Success(c, resp)
}

// Verify godoc
// @Summary      Verify a lot's conservation balance
// @Description  Replays the movement log and compares it with the stored balance
// @Tags         raw-gold
// @Produce      json
// @Param        id path string true "Lot ID"
// @Success      200 {object} dto.Response{data=rawgoldapp.LotVerification}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-gold/lots/{id}/verification [get]
func (h *RawGoldHandler) Verify(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return
	}

	verification, err := h.ledger.VerifyLot(c.Request.Context(), lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, verification)
}

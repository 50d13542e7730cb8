package handler

import (
	purchasingapp "github.com/aurum/backend/internal/application/purchasing"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReceivingHandler handles purchase delivery API endpoints
type ReceivingHandler struct {
	BaseHandler
	receiving *purchasingapp.ReceivingService
}

// NewReceivingHandler creates a new ReceivingHandler
func NewReceivingHandler(receiving *purchasingapp.ReceivingService) *ReceivingHandler {
	return &ReceivingHandler{
		receiving: receiving,
	}
}

// ReceiveDeliveryRequest represents one received purchase-order line
// @Description Request body for booking a raw gold delivery
type ReceiveDeliveryRequest struct {
	PurchaseOrderItemID string  `json:"purchase_order_item_id" binding:"required,uuid"`
	SupplierID          *string `json:"supplier_id" binding:"omitempty,uuid"`
	Karat               string  `json:"karat" binding:"required,oneof=K18 K21 K22 K24" example:"K21"`
	Weight              float64 `json:"weight" binding:"required,gt=0" example:"500.000"`
	UnitCostPerGram     float64 `json:"unit_cost_per_gram" binding:"required,gt=0" example:"3100.00"`
	AmountPaid          float64 `json:"amount_paid" binding:"gte=0" example:"750000.00"`
}

// ReceiveDeliveryResponse carries everything one delivery wrote
// @Description Result of booking a delivery
type ReceiveDeliveryResponse struct {
	Lot                 RawGoldLotResponse           `json:"lot"`
	ReceiptMovement     RawGoldMovementResponse      `json:"receipt_movement"`
	OwnershipRecord     OwnershipRecordResponse      `json:"ownership_record"`
	SupplierTransaction *SupplierTransactionResponse `json:"supplier_transaction,omitempty"`
}

// Receive godoc
// @Summary      Book a raw gold delivery
// @Description  Books a delivery against its purchase-order line, updating the raw gold, ownership, and supplier ledgers atomically
// @Tags         purchasing
// @Accept       json
// @Produce      json
// @Param        request body ReceiveDeliveryRequest true "Delivery request"
// @Success      201 {object} dto.Response{data=ReceiveDeliveryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchasing/deliveries [post]
func (h *ReceivingHandler) Receive(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}

	var req ReceiveDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	poItemID, err := uuid.Parse(req.PurchaseOrderItemID)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order item ID")
		return
	}

	appReq := purchasingapp.ReceiveDeliveryRequest{
		BranchID:            branchID,
		PurchaseOrderItemID: poItemID,
		Karat:               valueobject.KaratGrade(req.Karat),
		Weight:              valueobject.NewWeightFromFloat(req.Weight),
		UnitCostPerGram:     toDecimal(req.UnitCostPerGram),
		AmountPaid:          valueobject.NewMoneyEGP(toDecimal(req.AmountPaid)),
		ActorID:             getActorID(c),
	}
	if req.SupplierID != nil {
		supplierID, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			h.BadRequest(c, "Invalid supplier ID")
			return
		}
		appReq.SupplierID = &supplierID
	}

	result, err := h.receiving.ReceiveDelivery(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := ReceiveDeliveryResponse{
		Lot:             toRawGoldLotResponse(result.Lot),
		ReceiptMovement: toRawGoldMovementResponse(result.ReceiptMovement),
		OwnershipRecord: toOwnershipRecordResponse(result.OwnershipRecord),
	}
	if result.SupplierTransaction != nil {
		supplierTx := toSupplierTransactionResponse(result.SupplierTransaction)
		resp.SupplierTransaction = &supplierTx
	}
	h.Created(c, resp)
}

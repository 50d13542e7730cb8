package handler

import (
	"time"

	manufacturingapp "github.com/aurum/backend/internal/application/manufacturing"
	"github.com/aurum/backend/internal/domain/manufacturing"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/aurum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ManufacturingHandler handles manufacturing workflow API endpoints
type ManufacturingHandler struct {
	BaseHandler
	workflow *manufacturingapp.WorkflowService
}

// NewManufacturingHandler creates a new ManufacturingHandler
func NewManufacturingHandler(workflow *manufacturingapp.WorkflowService) *ManufacturingHandler {
	return &ManufacturingHandler{
		workflow: workflow,
	}
}

// CreateManufacturingRecordRequest represents a request to open a
// manufacturing record
// @Description Request body for creating a manufacturing record
type CreateManufacturingRecordRequest struct {
	ProductID       string  `json:"product_id" binding:"required,uuid" example:"6ba7b812-9dad-11d1-80b4-00c04fd430c8"`
	BatchNumber     string  `json:"batch_number" binding:"required,min=1,max=50" example:"BATCH-2026-0042"`
	CostPerGram     float64 `json:"cost_per_gram" binding:"gte=0" example:"120.00"`
	RawMaterialCost float64 `json:"raw_material_cost" binding:"gte=0" example:"450.00"`
	TechnicianID    *string `json:"technician_id" binding:"omitempty,uuid"`
	TechnicianName  string  `json:"technician_name" binding:"max=100" example:"Hassan"`
}

// DeclareMaterialRequest represents a material line for a draft record
// @Description Request body for declaring raw gold material
type DeclareMaterialRequest struct {
	LotID    string  `json:"lot_id" binding:"required,uuid"`
	Consumed float64 `json:"consumed" binding:"required,gt=0" example:"85.000"`
	Wasted   float64 `json:"wasted" binding:"gte=0" example:"0.750"`
}

// TransitionRequest represents a workflow transition command
// @Description Request body for moving a record to a target status
type TransitionRequest struct {
	Target string `json:"target" binding:"required" example:"PENDING_QUALITY_CHECK"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// ManufacturingMaterialResponse represents a declared material line
// @Description One raw gold material line of a manufacturing record
type ManufacturingMaterialResponse struct {
	ID                  uuid.UUID `json:"id"`
	LotID               uuid.UUID `json:"lot_id"`
	Karat               string    `json:"karat"`
	ConsumedWeight      string    `json:"consumed_weight"`
	WastedWeight        string    `json:"wasted_weight"`
	UnitCost            string    `json:"unit_cost"`
	OwnershipPercentage string    `json:"ownership_percentage"`
}

// ManufacturingRecordResponse represents a manufacturing record
// @Description Manufacturing record with its material lines
type ManufacturingRecordResponse struct {
	ID              uuid.UUID                       `json:"id"`
	BranchID        uuid.UUID                       `json:"branch_id"`
	ProductID       uuid.UUID                       `json:"product_id"`
	BatchNumber     string                          `json:"batch_number"`
	TechnicianID    *uuid.UUID                      `json:"technician_id,omitempty"`
	TechnicianName  string                          `json:"technician_name,omitempty"`
	Status          string                          `json:"status"`
	QualityNotes    string                          `json:"quality_notes,omitempty"`
	ApprovalNotes   string                          `json:"approval_notes,omitempty"`
	RejectionReason string                          `json:"rejection_reason,omitempty"`
	CostPerGram     string                          `json:"cost_per_gram"`
	RawMaterialCost string                          `json:"raw_material_cost"`
	TotalCost       string                          `json:"total_cost"`
	CompletedAt     *time.Time                      `json:"completed_at,omitempty"`
	Materials       []ManufacturingMaterialResponse `json:"materials"`
	Version         int                             `json:"version"`
	CreatedAt       time.Time                       `json:"created_at"`
	UpdatedAt       time.Time                       `json:"updated_at"`
}

// WorkflowHistoryResponse represents one workflow transition
// @Description One recorded workflow transition
type WorkflowHistoryResponse struct {
	ID         uuid.UUID  `json:"id"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Action     string     `json:"action"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	ActorName  string     `json:"actor_name,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func toManufacturingRecordResponse(record *manufacturing.ManufacturingRecord) ManufacturingRecordResponse {
	materials := make([]ManufacturingMaterialResponse, 0, len(record.Materials))
	for _, m := range record.Materials {
		materials = append(materials, ManufacturingMaterialResponse{
			ID:                  m.ID,
			LotID:               m.LotID,
			Karat:               m.Karat.String(),
			ConsumedWeight:      m.ConsumedWeight.StringFixed(3),
			WastedWeight:        m.WastedWeight.StringFixed(3),
			UnitCost:            m.UnitCost.StringFixed(2),
			OwnershipPercentage: m.OwnershipPercentage.StringFixed(4),
		})
	}
	return ManufacturingRecordResponse{
		ID:              record.ID,
		BranchID:        record.BranchID,
		ProductID:       record.ProductID,
		BatchNumber:     record.BatchNumber,
		TechnicianID:    record.TechnicianID,
		TechnicianName:  record.TechnicianName,
		Status:          record.Status.String(),
		QualityNotes:    record.QualityNotes,
		ApprovalNotes:   record.ApprovalNotes,
		RejectionReason: record.RejectionReason,
		CostPerGram:     record.CostPerGram.StringFixed(2),
		RawMaterialCost: record.RawMaterialCost.StringFixed(2),
		TotalCost:       record.TotalCost.StringFixed(2),
		CompletedAt:     record.CompletedAt,
		Materials:       materials,
		Version:         record.Version,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

// Create godoc
// @Summary      Create a manufacturing record
// @Description  Opens a manufacturing record in Draft
// @Tags         manufacturing
// @Accept       json
// @Produce      json
// @Param        request body CreateManufacturingRecordRequest true "Creation request"
// @Success      201 {object} dto.Response{data=ManufacturingRecordResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturing/records [post]
func (h *ManufacturingHandler) Create(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}

	var req CreateManufacturingRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	appReq := manufacturingapp.CreateDraftRequest{
		BranchID:        branchID,
		ProductID:       productID,
		BatchNumber:     req.BatchNumber,
		CostPerGram:     toDecimal(req.CostPerGram),
		RawMaterialCost: toDecimal(req.RawMaterialCost),
		TechnicianName:  req.TechnicianName,
	}
	if req.TechnicianID != nil {
		technicianID, err := uuid.Parse(*req.TechnicianID)
		if err != nil {
			h.BadRequest(c, "Invalid technician ID")
			return
		}
		appReq.TechnicianID = &technicianID
	}

	record, err := h.workflow.CreateDraft(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toManufacturingRecordResponse(record))
}

// DeclareMaterial godoc
// @Summary      Declare raw gold material
// @Description  Adds a material line to a draft record
// @Tags         manufacturing
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID"
// @Param        request body DeclareMaterialRequest true "Material request"
// @Success      200 {object} dto.Response{data=ManufacturingRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturing/records/{id}/materials [post]
func (h *ManufacturingHandler) DeclareMaterial(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	var req DeclareMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return
	}

	record, err := h.workflow.DeclareMaterial(c.Request.Context(), manufacturingapp.DeclareMaterialRequest{
		RecordID: recordID,
		LotID:    lotID,
		Consumed: valueobject.NewWeightFromFloat(req.Consumed),
		Wasted:   valueobject.NewWeightFromFloat(req.Wasted),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toManufacturingRecordResponse(record))
}

// Transition godoc
// @Summary      Transition a manufacturing record
// @Description  Moves a record to the target status, running the side effects the edge demands
// @Tags         manufacturing
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID"
// @Param        request body TransitionRequest true "Transition request"
// @Success      200 {object} dto.Response{data=ManufacturingRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturing/records/{id}/transition [post]
func (h *ManufacturingHandler) Transition(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	record, err := h.workflow.Transition(c.Request.Context(), manufacturingapp.TransitionRequest{
		RecordID:  recordID,
		Target:    manufacturing.WorkflowStatus(req.Target),
		ActorID:   getActorID(c),
		ActorName: middleware.GetJWTUsername(c),
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toManufacturingRecordResponse(record))
}

// Get godoc
// @Summary      Get a manufacturing record
// @Tags         manufacturing
// @Produce      json
// @Param        id path string true "Record ID"
// @Success      200 {object} dto.Response{data=ManufacturingRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /manufacturing/records/{id} [get]
func (h *ManufacturingHandler) Get(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	record, err := h.workflow.GetRecord(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toManufacturingRecordResponse(record))
}

// List godoc
// @Summary      List manufacturing records
// @Description  Lists the branch's records, optionally narrowed to one status
// @Tags         manufacturing
// @Produce      json
// @Param        status query string false "Workflow status"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]ManufacturingRecordResponse}
// @Security     BearerAuth
// @Router       /manufacturing/records [get]
func (h *ManufacturingHandler) List(c *gin.Context) {
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

	if status := c.Query("status"); status != "" {
		records, err := h.workflow.ListByStatus(c.Request.Context(), branchID, manufacturing.WorkflowStatus(status), filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		resp := make([]ManufacturingRecordResponse, 0, len(records))
		for i := range records {
			resp = append(resp, toManufacturingRecordResponse(&records[i]))
		}
		h.Success(c, resp)
		return
	}

	page, err := h.workflow.ListRecords(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := make([]ManufacturingRecordResponse, 0, len(page.Items))
	for i := range page.Items {
		resp = append(resp, toManufacturingRecordResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, resp, page.Total, page.Page, page.PageSize)
}

// History godoc
// @Summary      Get a record's workflow history
// @Description  Lists a record's transitions in order
// @Tags         manufacturing
// @Produce      json
// @Param        id path string true "Record ID"
// @Success      200 {object} dto.Response{data=[]WorkflowHistoryResponse}
// @Security     BearerAuth
// @Router       /manufacturing/records/{id}/history [get]
func (h *ManufacturingHandler) History(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	entries, err := h.workflow.GetHistory(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]WorkflowHistoryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, WorkflowHistoryResponse{
			ID:         e.ID,
			FromStatus: e.FromStatus.String(),
			ToStatus:   e.ToStatus.String(),
			Action:     e.Action,
			ActorID:    e.ActorID,
			ActorName:  e.ActorName,
			Notes:      e.Notes,
			OccurredAt: e.OccurredAt,
		})
	}
	h.Success(c, resp)
}

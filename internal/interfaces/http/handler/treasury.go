package handler

import (
	"time"

	treasuryapp "github.com/aurum/backend/internal/application/treasury"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/aurum/backend/internal/domain/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TreasuryHandler handles treasury ledger API endpoints
type TreasuryHandler struct {
	BaseHandler
	treasury *treasuryapp.Service
}

// NewTreasuryHandler creates a new TreasuryHandler
func NewTreasuryHandler(treasuryService *treasuryapp.Service) *TreasuryHandler {
	return &TreasuryHandler{
		treasury: treasuryService,
	}
}

// AdjustTreasuryRequest represents a manual balance adjustment
// @Description Request body for a manual treasury adjustment
type AdjustTreasuryRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0" example:"1500.00"`
	Direction string  `json:"direction" binding:"required,oneof=CREDIT DEBIT" example:"CREDIT"`
	Reason    string  `json:"reason" binding:"required,min=1,max=500" example:"Opening balance correction"`
}

// FeedTreasuryRequest represents cash moved from a drawer into the treasury
// @Description Request body for feeding cash from a drawer
type FeedTreasuryRequest struct {
	Amount     float64    `json:"amount" binding:"required,gt=0" example:"12000.00"`
	OccurredAt *time.Time `json:"occurred_at"`
	Notes      string     `json:"notes" binding:"max=500"`
}

// PaySupplierRequest represents a cash payment to a supplier
// @Description Request body for paying a supplier from the treasury
type PaySupplierRequest struct {
	SupplierID string  `json:"supplier_id" binding:"required,uuid"`
	Amount     float64 `json:"amount" binding:"required,gt=0" example:"8000.00"`
	Notes      string  `json:"notes" binding:"max=500"`
}

// CreateSupplierRequest represents a request to register a supplier
// @Description Request body for creating a supplier
type CreateSupplierRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200" example:"Cairo Gold Trading"`
	Phone string `json:"phone" binding:"max=30" example:"01001234567"`
}

// TreasuryAccountResponse represents a branch treasury account
// @Description Branch treasury account balance
type TreasuryAccountResponse struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
	Balance  string    `json:"balance"`
	Currency string    `json:"currency"`
	Version  int       `json:"version"`
}

// TreasuryTransactionResponse represents one treasury transaction
// @Description One append-only entry in the treasury transaction log
type TreasuryTransactionResponse struct {
	ID            uuid.UUID  `json:"id"`
	AccountID     uuid.UUID  `json:"account_id"`
	Amount        string     `json:"amount"`
	Direction     string     `json:"direction"`
	Type          string     `json:"type"`
	BalanceBefore string     `json:"balance_before"`
	BalanceAfter  string     `json:"balance_after"`
	ReferenceType string     `json:"reference_type,omitempty"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	ActorID       *uuid.UUID `json:"actor_id,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// SupplierResponse represents a supplier and its running balance
// @Description Supplier with its outstanding balance
type SupplierResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	CurrentBalance string    `json:"current_balance"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SupplierTransactionResponse represents one supplier balance change
// @Description One append-only entry in a supplier's transaction log
type SupplierTransactionResponse struct {
	ID            uuid.UUID  `json:"id"`
	SupplierID    uuid.UUID  `json:"supplier_id"`
	Type          string     `json:"type"`
	Amount        string     `json:"amount"`
	BalanceBefore string     `json:"balance_before"`
	BalanceAfter  string     `json:"balance_after"`
	ReferenceType string     `json:"reference_type,omitempty"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	ActorID       *uuid.UUID `json:"actor_id,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// PaySupplierResponse carries both sides of a supplier payment
// @Description Result of paying a supplier
type PaySupplierResponse struct {
	TreasuryTransaction TreasuryTransactionResponse `json:"treasury_transaction"`
	SupplierTransaction SupplierTransactionResponse `json:"supplier_transaction"`
}

func toTreasuryAccountResponse(account *treasury.TreasuryAccount) TreasuryAccountResponse {
	return TreasuryAccountResponse{
		ID:       account.ID,
		BranchID: account.BranchID,
		Balance:  account.Balance.StringFixed(2),
		Currency: string(account.Currency),
		Version:  account.Version,
	}
}

func toTreasuryTransactionResponse(tx *treasury.TreasuryTransaction) TreasuryTransactionResponse {
	return TreasuryTransactionResponse{
		ID:            tx.ID,
		AccountID:     tx.AccountID,
		Amount:        tx.Amount.StringFixed(2),
		Direction:     tx.Direction.String(),
		Type:          string(tx.Type),
		BalanceBefore: tx.BalanceBefore.StringFixed(2),
		BalanceAfter:  tx.BalanceAfter.StringFixed(2),
		ReferenceType: tx.ReferenceType,
		ReferenceID:   tx.ReferenceID,
		ActorID:       tx.ActorID,
		Notes:         tx.Notes,
		OccurredAt:    tx.OccurredAt,
	}
}

func toSupplierResponse(supplier *treasury.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:             supplier.ID,
		Name:           supplier.Name,
		Phone:          supplier.Phone,
		CurrentBalance: supplier.CurrentBalance.StringFixed(2),
		Version:        supplier.Version,
		CreatedAt:      supplier.CreatedAt,
		UpdatedAt:      supplier.UpdatedAt,
	}
}

func toSupplierTransactionResponse(tx *treasury.SupplierTransaction) SupplierTransactionResponse {
	return SupplierTransactionResponse{
		ID:            tx.ID,
		SupplierID:    tx.SupplierID,
		Type:          string(tx.Type),
		Amount:        tx.Amount.StringFixed(2),
		BalanceBefore: tx.BalanceBefore.StringFixed(2),
		BalanceAfter:  tx.BalanceAfter.StringFixed(2),
		ReferenceType: tx.ReferenceType,
		ReferenceID:   tx.ReferenceID,
		ActorID:       tx.ActorID,
		Notes:         tx.Notes,
		OccurredAt:    tx.OccurredAt,
	}
}

// GetAccount godoc
// @Summary      Get the branch treasury account
// @Description  Returns the branch's account, creating it on first access
// @Tags         treasury
// @Produce      json
// @Success      200 {object} dto.Response{data=TreasuryAccountResponse}
// @Security     BearerAuth
// @Router       /treasury/account [get]
func (h *TreasuryHandler) GetAccount(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}

	account, err := h.treasury.GetOrCreateAccount(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTreasuryAccountResponse(account))
}

// Adjust godoc
// @Summary      Adjust the treasury balance
// @Description  Applies a manual credit or debit to the branch account
// @Tags         treasury
// @Accept       json
// @Produce      json
// @Param        request body AdjustTreasuryRequest true "Adjustment request"
// @Success      201 {object} dto.Response{data=TreasuryTransactionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /treasury/adjustments [post]
func (h *TreasuryHandler) Adjust(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}

	var req AdjustTreasuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tx, err := h.treasury.Adjust(c.Request.Context(), treasuryapp.AdjustRequest{
		BranchID:  branchID,
		Amount:    valueobject.NewMoneyEGP(toDecimal(req.Amount)),
		Direction: treasury.Direction(req.Direction),
		Reason:    req.Reason,
		ActorID:   getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTreasuryTransactionResponse(tx))
}

// Feed godoc
// @Summary      Feed cash from a drawer
// @Description  Credits the branch account with cash collected from a drawer
// @Tags         treasury
// @Accept       json
// @Produce      json
// @Param        request body FeedTreasuryRequest true "Feed request"
// @Success      201 {object} dto.Response{data=TreasuryTransactionResponse}
// @Security     BearerAuth
// @Router       /treasury/feeds [post]
func (h *TreasuryHandler) Feed(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}

	var req FeedTreasuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	tx, err := h.treasury.FeedFromCashDrawer(c.Request.Context(), treasuryapp.FeedRequest{
		BranchID:   branchID,
		Amount:     valueobject.NewMoneyEGP(toDecimal(req.Amount)),
		OccurredAt: occurredAt,
		ActorID:    getActorID(c),
		Notes:      req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTreasuryTransactionResponse(tx))
}

// PaySupplier godoc
// @Summary      Pay a supplier
// @Description  Pays down a supplier's outstanding balance from the branch treasury
// @Tags         treasury
// @Accept       json
// @Produce      json
// @Param        request body PaySupplierRequest true "Payment request"
// @Success      201 {object} dto.Response{data=PaySupplierResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /treasury/supplier-payments [post]
func (h *TreasuryHandler) PaySupplier(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}

	var req PaySupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	result, err := h.treasury.PaySupplier(c.Request.Context(), treasuryapp.PaySupplierRequest{
		BranchID:   branchID,
		SupplierID: supplierID,
		Amount:     valueobject.NewMoneyEGP(toDecimal(req.Amount)),
		ActorID:    getActorID(c),
		Notes:      req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, PaySupplierResponse{
		TreasuryTransaction: toTreasuryTransactionResponse(result.TreasuryTransaction),
		SupplierTransaction: toSupplierTransactionResponse(result.SupplierTransaction),
	})
}

// Transactions godoc
// @Summary      List treasury transactions
// @Description  Lists the branch account's transactions, most recent first
// @Tags         treasury
// @Produce      json
// @Param        from query string false "Lower time bound (RFC 3339)"
// @Param        to query string false "Upper time bound (RFC 3339, exclusive)"
// @Param        type query string false "Transaction type"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]TreasuryTransactionResponse}
// @Security     BearerAuth
// @Router       /treasury/transactions [get]
func (h *TreasuryHandler) Transactions(c *gin.Context) {
	branchID, err := getBranchID(c)
	if err != nil {
		h.Unauthorized(c, "Branch not resolved from token")
		return
	}

	account, err := h.treasury.GetOrCreateAccount(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := treasury.TransactionFilter{Filter: query.toFilter()}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			h.BadRequest(c, "Invalid from time")
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			h.BadRequest(c, "Invalid to time")
			return
		}
		filter.To = &t
	}
	if txType := c.Query("type"); txType != "" {
		parsed := treasury.TransactionType(txType)
		filter.Type = &parsed
	}

	page, err := h.treasury.GetTransactions(c.Request.Context(), account.ID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]TreasuryTransactionResponse, 0, len(page.Items))
	for i := range page.Items {
		resp = append(resp, toTreasuryTransactionResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, resp, page.Total, page.Page, page.PageSize)
}

// CreateSupplier godoc
// @Summary      Create a supplier
// @Description  Registers a supplier with a zero outstanding balance
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body CreateSupplierRequest true "Supplier creation request"
// @Success      201 {object} dto.Response{data=SupplierResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /treasury/suppliers [post]
func (h *TreasuryHandler) CreateSupplier(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplier, err := h.treasury.CreateSupplier(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSupplierResponse(supplier))
}

// GetSupplier godoc
// @Summary      Get a supplier
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Success      200 {object} dto.Response{data=SupplierResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /treasury/suppliers/{id} [get]
func (h *TreasuryHandler) GetSupplier(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	supplier, err := h.treasury.GetSupplier(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplierResponse(supplier))
}

// ListSuppliers godoc
// @Summary      List suppliers
// @Description  Lists suppliers, searchable by name or phone
// @Tags         suppliers
// @Produce      json
// @Param        search query string false "Name or phone search"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]SupplierResponse}
// @Security     BearerAuth
// @Router       /treasury/suppliers [get]
func (h *TreasuryHandler) ListSuppliers(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	suppliers, err := h.treasury.ListSuppliers(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		resp = append(resp, toSupplierResponse(&suppliers[i]))
	}
	h.Success(c, resp)
}

// SupplierTransactions godoc
// @Summary      List a supplier's transactions
// @Description  Lists a supplier's balance changes, most recent first
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Success      200 {object} dto.Response{data=[]SupplierTransactionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /treasury/suppliers/{id}/transactions [get]
func (h *TreasuryHandler) SupplierTransactions(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transactions, err := h.treasury.GetSupplierTransactions(c.Request.Context(), supplierID, query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]SupplierTransactionResponse, 0, len(transactions))
	for i := range transactions {
		resp = append(resp, toSupplierTransactionResponse(&transactions[i]))
	}
	h.Success(c, resp)
}

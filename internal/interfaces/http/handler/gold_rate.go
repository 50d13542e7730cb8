package handler

import (
	"time"

	pricingapp "github.com/aurum/backend/internal/application/pricing"
	"github.com/aurum/backend/internal/domain/pricing"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GoldRateHandler handles gold rate API endpoints
type GoldRateHandler struct {
	BaseHandler
	rates *pricingapp.RateService
}

// NewGoldRateHandler creates a new GoldRateHandler
func NewGoldRateHandler(rates *pricingapp.RateService) *GoldRateHandler {
	return &GoldRateHandler{
		rates: rates,
	}
}

// SetGoldRateRequest represents a request to open a new rate window
// @Description Request body for setting a gold rate
type SetGoldRateRequest struct {
	Karat         string     `json:"karat" binding:"required,oneof=K18 K21 K22 K24" example:"K21"`
	RatePerGram   float64    `json:"rate_per_gram" binding:"required,gt=0" example:"3250.00"`
	EffectiveFrom *time.Time `json:"effective_from"`
}

// GoldRateResponse represents one rate window
// @Description One half-open gold rate window
type GoldRateResponse struct {
	ID            uuid.UUID  `json:"id"`
	Karat         string     `json:"karat"`
	RatePerGram   string     `json:"rate_per_gram"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
	SetBy         *uuid.UUID `json:"set_by,omitempty"`
}

// PriceQuoteResponse represents a priced weight at the current rate
// @Description Price quote for a weight at the current rate
type PriceQuoteResponse struct {
	Karat  string `json:"karat"`
	Weight string `json:"weight"`
	Price  string `json:"price"`
}

func toGoldRateResponse(rate *pricing.GoldRate) GoldRateResponse {
	return GoldRateResponse{
		ID:            rate.ID,
		Karat:         rate.Karat.String(),
		RatePerGram:   rate.RatePerGram.StringFixed(2),
		EffectiveFrom: rate.EffectiveFrom,
		EffectiveTo:   rate.EffectiveTo,
		SetBy:         rate.SetBy,
	}
}

// Set godoc
// @Summary      Set a gold rate
// @Description  Opens a new rate window and closes the previously open one at the same instant
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body SetGoldRateRequest true "Rate request"
// @Success      201 {object} dto.Response{data=GoldRateResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pricing/rates [post]
func (h *GoldRateHandler) Set(c *gin.Context) {
	var req SetGoldRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := pricingapp.SetRateRequest{
		Karat:       valueobject.KaratGrade(req.Karat),
		RatePerGram: toDecimal(req.RatePerGram),
		ActorID:     getActorID(c),
	}
	if req.EffectiveFrom != nil {
		appReq.EffectiveFrom = *req.EffectiveFrom
	}

	rate, err := h.rates.SetRate(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toGoldRateResponse(rate))
}

// Current godoc
// @Summary      Get the current rate
// @Tags         pricing
// @Produce      json
// @Param        karat path string true "Karat grade" Enums(K18, K21, K22, K24)
// @Success      200 {object} dto.Response{data=GoldRateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pricing/rates/{karat}/current [get]
func (h *GoldRateHandler) Current(c *gin.Context) {
	rate, err := h.rates.CurrentRate(c.Request.Context(), valueobject.KaratGrade(c.Param("karat")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toGoldRateResponse(rate))
}

// At godoc
// @Summary      Get the rate at an instant
// @Description  Returns the rate window that covered the given instant
// @Tags         pricing
// @Produce      json
// @Param        karat path string true "Karat grade" Enums(K18, K21, K22, K24)
// @Param        at query string true "Instant (RFC 3339)"
// @Success      200 {object} dto.Response{data=GoldRateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pricing/rates/{karat}/at [get]
func (h *GoldRateHandler) At(c *gin.Context) {
	at, err := time.Parse(time.RFC3339, c.Query("at"))
	if err != nil {
		h.BadRequest(c, "Invalid at time")
		return
	}

	rate, err := h.rates.RateAt(c.Request.Context(), valueobject.KaratGrade(c.Param("karat")), at)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toGoldRateResponse(rate))
}

// History godoc
// @Summary      List rate history
// @Description  Lists a karat grade's rate windows, newest first
// @Tags         pricing
// @Produce      json
// @Param        karat path string true "Karat grade" Enums(K18, K21, K22, K24)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]GoldRateResponse}
// @Security     BearerAuth
// @Router       /pricing/rates/{karat}/history [get]
func (h *GoldRateHandler) History(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rates, err := h.rates.RateHistory(c.Request.Context(), valueobject.KaratGrade(c.Param("karat")), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]GoldRateResponse, 0, len(rates))
	for i := range rates {
		resp = append(resp, toGoldRateResponse(&rates[i]))
	}
	h.Success(c, resp)
}

// Price godoc
// @Summary      Price a weight
// @Description  Values the given weight at the current rate for the karat grade
// @Tags         pricing
// @Produce      json
// @Param        karat path string true "Karat grade" Enums(K18, K21, K22, K24)
// @Param        weight query number true "Weight in grams"
// @Success      200 {object} dto.Response{data=PriceQuoteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pricing/rates/{karat}/price [get]
func (h *GoldRateHandler) Price(c *gin.Context) {
	weight, err := valueobject.NewWeightFromString(c.Query("weight"))
	if err != nil {
		h.BadRequest(c, "Invalid weight")
		return
	}
	if !weight.IsPositive() {
		h.BadRequest(c, "Weight must be positive")
		return
	}

	karat := valueobject.KaratGrade(c.Param("karat"))
	price, err := h.rates.PriceFor(c.Request.Context(), karat, weight)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PriceQuoteResponse{
		Karat:  karat.String(),
		Weight: weight.StringFixed(),
		Price:  price.StringFixed(2),
	})
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/internal/service"
	"github.com/brikomag/pricewatch/internal/utils"
)

// MatchHandler handles matching and reconciliation-view HTTP endpoints.
type MatchHandler struct {
	matchService *service.MatchService
	viewService  *service.ViewService
}

// NewMatchHandler constructs a MatchHandler.
func NewMatchHandler(matchService *service.MatchService, viewService *service.ViewService) *MatchHandler {
	return &MatchHandler{matchService: matchService, viewService: viewService}
}

// AutoMatchAll handles POST /match/auto/:competitor_code.
func (h *MatchHandler) AutoMatchAll(c *gin.Context) {
	code := c.Param("competitor_code")

	result, err := h.matchService.AutoMatchAll(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, utils.ErrCompetitorNotFound) {
			utils.Error(c, 404, "COMPETITOR_NOT_FOUND", "Competitor not found")
			return
		}
		log.Error().Err(err).Str("competitor", code).Msg("Auto match run failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Auto match failed")
		return
	}

	utils.Success(c, 200, "Auto match completed", result)
}

// GetView handles GET /match/view/:competitor_code. The response holds one
// row per catalog item, matched or not.
func (h *MatchHandler) GetView(c *gin.Context) {
	code := c.Param("competitor_code")

	rows, err := h.viewService.BuildView(code)
	if err != nil {
		if errors.Is(err, utils.ErrCompetitorNotFound) {
			utils.Error(c, 404, "COMPETITOR_NOT_FOUND", "Competitor not found")
			return
		}
		log.Error().Err(err).Str("competitor", code).Msg("View build failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to build view")
		return
	}

	utils.Success(c, 200, "View retrieved", gin.H{
		"rows":  rows,
		"total": len(rows),
	})
}

// ManualMatchRequest is the payload for a manual match by competitor barcode.
type ManualMatchRequest struct {
	ItemID            int    `json:"itemId" binding:"required"`
	CompetitorBarcode string `json:"competitorBarcode" binding:"required,max=64"`
}

// ManualMatch handles POST /match/manual_by_barcode/:competitor_code.
func (h *MatchHandler) ManualMatch(c *gin.Context) {
	code := c.Param("competitor_code")

	var req ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "itemId and competitorBarcode are required")
		return
	}

	cp, err := h.matchService.ManualMatch(c.Request.Context(), code, req.ItemID, req.CompetitorBarcode)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrCompetitorNotFound):
			utils.Error(c, 404, "COMPETITOR_NOT_FOUND", "Competitor not found")
		case errors.Is(err, utils.ErrItemNotFound):
			utils.Error(c, 404, "ITEM_NOT_FOUND", "Item not found")
		case errors.Is(err, utils.ErrProductNotFound):
			utils.Error(c, 404, "COMPETITOR_PRODUCT_NOT_FOUND", "Competitor product not found by barcode")
		default:
			log.Error().Err(err).Int("item_id", req.ItemID).Msg("Manual match failed")
			utils.Error(c, 502, "LOOKUP_FAILED", "Competitor lookup failed")
		}
		return
	}

	utils.Success(c, 200, "Match approved", gin.H{
		"itemId":      req.ItemID,
		"compSku":     cp.SKU,
		"compBarcode": cp.Barcode,
		"compUrl":     cp.URL,
	})
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/internal/models"
	"github.com/brikomag/pricewatch/internal/repository"
	"github.com/brikomag/pricewatch/internal/utils"
)

// ItemHandler handles catalog item HTTP endpoints.
type ItemHandler struct {
	itemRepo *repository.ItemRepository
}

// NewItemHandler constructs an ItemHandler.
func NewItemHandler(itemRepo *repository.ItemRepository) *ItemHandler {
	return &ItemHandler{itemRepo: itemRepo}
}

// ItemUpsertRequest is one item of the batch upsert payload.
type ItemUpsertRequest struct {
	SKU     string  `json:"sku" binding:"required,max=64"`
	Name    string  `json:"name" binding:"required"`
	Barcode *string `json:"barcode" binding:"omitempty,max=64"`
	Price   float64 `json:"price" binding:"gte=0"`
}

// UpsertItems handles POST /items/upsert with a batch of items keyed by sku.
func (h *ItemHandler) UpsertItems(c *gin.Context) {
	var req []ItemUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if len(req) == 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "At least one item is required")
		return
	}

	for _, in := range req {
		item := &models.Item{
			SKU:     in.SKU,
			Name:    in.Name,
			Barcode: in.Barcode,
			Price:   in.Price,
		}
		if err := h.itemRepo.Upsert(item); err != nil {
			log.Error().Err(err).Str("sku", in.SKU).Msg("Item upsert failed")
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to upsert items")
			return
		}
	}

	utils.Success(c, 200, "Items upserted", gin.H{"count": len(req)})
}

// ListItems handles GET /items.
func (h *ItemHandler) ListItems(c *gin.Context) {
	items, err := h.itemRepo.GetRecent(1000)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve items")
		return
	}
	utils.Success(c, 200, "Items retrieved", gin.H{
		"items": items,
		"total": len(items),
	})
}

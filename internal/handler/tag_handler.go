package handler

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/internal/repository"
	"github.com/brikomag/pricewatch/internal/utils"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// TagHandler handles tag HTTP endpoints.
type TagHandler struct {
	tagRepo  *repository.TagRepository
	itemRepo *repository.ItemRepository
}

// NewTagHandler constructs a TagHandler.
func NewTagHandler(tagRepo *repository.TagRepository, itemRepo *repository.ItemRepository) *TagHandler {
	return &TagHandler{tagRepo: tagRepo, itemRepo: itemRepo}
}

// CreateTagRequest is the payload for tag creation.
type CreateTagRequest struct {
	Name  string  `json:"name" binding:"required,max=128"`
	Email *string `json:"email" binding:"omitempty,email,max=256"`
}

// CreateTag handles POST /tags.
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	tag, err := h.tagRepo.Create(req.Name, req.Email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			utils.Error(c, 409, "TAG_EXISTS", "Tag name already exists")
			return
		}
		log.Error().Err(err).Str("name", req.Name).Msg("Tag create failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create tag")
		return
	}

	utils.Success(c, 201, "Tag created", tag)
}

// ListTags handles GET /tags.
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagRepo.GetAll()
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve tags")
		return
	}
	utils.Success(c, 200, "Tags retrieved", gin.H{
		"tags":  tags,
		"total": len(tags),
	})
}

// AddItemsRequest is the payload for attaching items to a tag.
type AddItemsRequest struct {
	ItemIDs []int `json:"itemIds" binding:"required,min=1"`
}

// AddItems handles POST /tags/:id/items. Linking an already-linked item is
// a no-op.
func (h *TagHandler) AddItems(c *gin.Context) {
	tagID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid tag ID")
		return
	}

	var req AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "itemIds is required")
		return
	}

	if _, err := h.tagRepo.GetByID(tagID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, 404, "TAG_NOT_FOUND", "Tag not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve tag")
		return
	}

	added := 0
	for _, itemID := range req.ItemIDs {
		if _, err := h.itemRepo.GetByID(itemID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				utils.Error(c, 404, "ITEM_NOT_FOUND", "Item not found")
				return
			}
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve item")
			return
		}
		created, err := h.tagRepo.AddItem(tagID, itemID)
		if err != nil {
			log.Error().Err(err).Int("tag_id", tagID).Int("item_id", itemID).Msg("Tag link failed")
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to link items")
			return
		}
		if created {
			added++
		}
	}

	utils.Success(c, 200, "Items linked", gin.H{"added": added})
}

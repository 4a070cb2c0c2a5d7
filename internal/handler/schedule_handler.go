package handler

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/internal/repository"
	"github.com/brikomag/pricewatch/internal/service"
	"github.com/brikomag/pricewatch/internal/utils"
)

// ScheduleHandler handles schedule HTTP endpoints. Mutations refresh the
// dispatcher so the registry and the running cron entries never drift.
type ScheduleHandler struct {
	scheduleRepo *repository.ScheduleRepository
	tagRepo      *repository.TagRepository
	dispatcher   *service.Dispatcher
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(scheduleRepo *repository.ScheduleRepository, tagRepo *repository.TagRepository, dispatcher *service.Dispatcher) *ScheduleHandler {
	return &ScheduleHandler{scheduleRepo: scheduleRepo, tagRepo: tagRepo, dispatcher: dispatcher}
}

// CreateScheduleRequest is the payload for schedule creation.
type CreateScheduleRequest struct {
	TagID int    `json:"tagId" binding:"required"`
	Cron  string `json:"cron" binding:"required,max=64"`
}

// CreateSchedule handles POST /schedules. The cron expression is validated
// before anything reaches the store.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "tagId and cron are required")
		return
	}

	if _, err := cron.ParseStandard(req.Cron); err != nil {
		utils.Error(c, 400, "INVALID_CRON", "Invalid cron expression")
		return
	}

	if _, err := h.tagRepo.GetByID(req.TagID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, 404, "TAG_NOT_FOUND", "Tag not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve tag")
		return
	}

	schedule, err := h.scheduleRepo.Create(req.TagID, req.Cron)
	if err != nil {
		log.Error().Err(err).Int("tag_id", req.TagID).Msg("Schedule create failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create schedule")
		return
	}

	h.refreshDispatcher()
	utils.Success(c, 201, "Schedule created", schedule)
}

// ListSchedules handles GET /schedules.
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.scheduleRepo.GetAll()
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve schedules")
		return
	}
	utils.Success(c, 200, "Schedules retrieved", gin.H{
		"schedules": schedules,
		"total":     len(schedules),
	})
}

// SetActiveRequest is the payload for toggling a schedule.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive handles PATCH /schedules/:id/active. Deactivating a schedule
// removes its job on the refresh that follows.
func (h *ScheduleHandler) SetActive(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid schedule ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "active is required")
		return
	}

	if err := h.scheduleRepo.SetActive(id, *req.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, 404, "SCHEDULE_NOT_FOUND", "Schedule not found")
			return
		}
		log.Error().Err(err).Int("schedule_id", id).Msg("Schedule toggle failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update schedule")
		return
	}

	h.refreshDispatcher()
	utils.Success(c, 200, "Schedule updated", gin.H{"id": id, "active": *req.Active})
}

func (h *ScheduleHandler) refreshDispatcher() {
	if err := h.dispatcher.Refresh(); err != nil {
		log.Error().Err(err).Msg("Dispatcher refresh failed after schedule change")
	}
}

package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/internal/models"
	"github.com/brikomag/pricewatch/internal/service"
	"github.com/brikomag/pricewatch/internal/utils"
)

// ComparisonExporter writes comparison rows to a spreadsheet artifact.
type ComparisonExporter interface {
	WriteComparison(rows []models.CompareRow, path string) (string, error)
}

// CompareHandler handles comparison projection HTTP endpoints.
type CompareHandler struct {
	viewService *service.ViewService
	exporter    ComparisonExporter
	outputDir   string
}

// NewCompareHandler constructs a CompareHandler.
func NewCompareHandler(viewService *service.ViewService, exporter ComparisonExporter, outputDir string) *CompareHandler {
	return &CompareHandler{viewService: viewService, exporter: exporter, outputDir: outputDir}
}

// GetComparison handles GET /compare/:competitor_code. Only items with an
// approved match appear; prices come from the store, never a live scrape.
func (h *CompareHandler) GetComparison(c *gin.Context) {
	code := c.Param("competitor_code")

	rows, err := h.viewService.BuildComparison(code)
	if err != nil {
		if errors.Is(err, utils.ErrCompetitorNotFound) {
			utils.Error(c, 404, "COMPETITOR_NOT_FOUND", "Competitor not found")
			return
		}
		log.Error().Err(err).Str("competitor", code).Msg("Comparison build failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to build comparison")
		return
	}

	utils.Success(c, 200, "Comparison retrieved", gin.H{
		"rows":  rows,
		"total": len(rows),
	})
}

// ExportComparison handles GET /compare/:competitor_code/export and
// responds with the comparison as an xlsx download.
func (h *CompareHandler) ExportComparison(c *gin.Context) {
	code := c.Param("competitor_code")

	rows, err := h.viewService.BuildComparison(code)
	if err != nil {
		if errors.Is(err, utils.ErrCompetitorNotFound) {
			utils.Error(c, 404, "COMPETITOR_NOT_FOUND", "Competitor not found")
			return
		}
		log.Error().Err(err).Str("competitor", code).Msg("Comparison build failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to build comparison")
		return
	}

	filename := fmt.Sprintf("pricewatch_%s_%s.xlsx", code, time.Now().Format("20060102_150405"))
	path, err := h.exporter.WriteComparison(rows, filepath.Join(h.outputDir, filename))
	if err != nil {
		log.Error().Err(err).Str("competitor", code).Msg("Comparison export failed")
		utils.Error(c, 500, "EXPORT_FAILED", "Failed to export comparison")
		return
	}

	c.FileAttachment(path, filename)
}

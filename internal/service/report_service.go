package service

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/internal/models"
	"github.com/brikomag/pricewatch/internal/utils"
)

type tagStore interface {
	GetByID(id int) (*models.Tag, error)
}

// ReportExporter writes report rows to an artifact and returns its path.
type ReportExporter interface {
	WriteTagReport(rows []models.TagReportRow, path string) (string, error)
}

// Notifier delivers a report artifact by mail.
type Notifier interface {
	Send(to, subject, body, attachmentPath string) error
}

// ReportService assembles the scheduled per-tag report, exports it to a
// spreadsheet and mails it to the tag's recipient when one is configured.
type ReportService struct {
	viewSvc   *ViewService
	tagRepo   tagStore
	exporter  ReportExporter
	notifier  Notifier
	outputDir string
}

// NewReportService constructs a ReportService.
func NewReportService(viewSvc *ViewService, tagRepo tagStore, exporter ReportExporter, notifier Notifier, outputDir string) *ReportService {
	return &ReportService{
		viewSvc:   viewSvc,
		tagRepo:   tagRepo,
		exporter:  exporter,
		notifier:  notifier,
		outputDir: outputDir,
	}
}

// RunTagReport builds and exports the report for one tag and returns the
// artifact path. Export and mail failures propagate as the job failure;
// the next cron tick is the retry.
func (s *ReportService) RunTagReport(competitorID, tagID int) (string, error) {
	tag, err := s.tagRepo.GetByID(tagID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", utils.ErrTagNotFound
		}
		return "", err
	}

	rows, err := s.viewSvc.BuildTagReport(competitorID, tagID)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("pricewatch_tag_%d_%s.xlsx", tagID, time.Now().Format("20060102_150405"))
	path, err := s.exporter.WriteTagReport(rows, filepath.Join(s.outputDir, filename))
	if err != nil {
		return "", fmt.Errorf("report export failed: %w", err)
	}

	if tag.Email == nil || *tag.Email == "" {
		log.Info().
			Int("tag_id", tagID).
			Str("path", path).
			Msg("Tag has no recipient, report written without mail")
		return path, nil
	}

	subject := fmt.Sprintf("Price comparison: %s", tag.Name)
	if err := s.notifier.Send(*tag.Email, subject, "Attached is your price comparison.", path); err != nil {
		return "", err
	}

	log.Info().
		Int("tag_id", tagID).
		Str("to", *tag.Email).
		Str("path", path).
		Msg("Tag report sent")
	return path, nil
}

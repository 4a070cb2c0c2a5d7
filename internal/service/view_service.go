package service

import (
	"database/sql"
	"errors"

	"github.com/brikomag/pricewatch/internal/models"
	"github.com/brikomag/pricewatch/internal/utils"
)

type projectionStore interface {
	GetViewCandidates(competitorID int) ([]models.ViewRow, error)
	GetCompareRows(competitorID int) ([]models.CompareRow, error)
	GetTagReportCandidates(competitorID, tagID int) ([]models.TagReportRow, error)
}

// ViewService builds the two read projections over the match state: the
// full reconciliation view and the approved-only comparison.
type ViewService struct {
	itemRepo       itemStore
	competitorRepo competitorStore
	matchRepo      projectionStore
}

// NewViewService constructs a ViewService.
func NewViewService(itemRepo itemStore, competitorRepo competitorStore, matchRepo projectionStore) *ViewService {
	return &ViewService{
		itemRepo:       itemRepo,
		competitorRepo: competitorRepo,
		matchRepo:      matchRepo,
	}
}

// BuildView returns exactly one row per item for the given competitor.
// When an item has several candidate matches, an approved one wins over an
// unapproved one; ties keep the first row seen (item id, match id order).
// Items with no candidate at all get a default unmatched row.
func (s *ViewService) BuildView(competitorCode string) ([]models.ViewRow, error) {
	comp, err := s.competitorRepo.GetByCode(competitorCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrCompetitorNotFound
		}
		return nil, err
	}

	candidates, err := s.matchRepo.GetViewCandidates(comp.ID)
	if err != nil {
		return nil, err
	}

	collapsed := make(map[int]models.ViewRow, len(candidates))
	for _, cand := range candidates {
		row, ok := collapsed[cand.ItemID]
		if !ok {
			collapsed[cand.ItemID] = cand
			continue
		}
		if !row.Approved && cand.Approved {
			collapsed[cand.ItemID] = cand
		}
	}

	// Items whose matches all point at other competitors are filtered out
	// of the candidate set entirely; walk the full catalog so every item
	// gets a row.
	items, err := s.itemRepo.GetAll()
	if err != nil {
		return nil, err
	}

	rows := make([]models.ViewRow, 0, len(items))
	for _, it := range items {
		if row, ok := collapsed[it.ID]; ok {
			rows = append(rows, row)
			continue
		}
		rows = append(rows, models.ViewRow{
			ItemID:   it.ID,
			OurSKU:   it.SKU,
			Approved: false,
		})
	}
	return rows, nil
}

// BuildComparison returns rows only for items holding an approved match to
// a product of the competitor. CompPrice and Diff stay nil: comparison
// serves stored data only, never a live scrape.
func (s *ViewService) BuildComparison(competitorCode string) ([]models.CompareRow, error) {
	comp, err := s.competitorRepo.GetByCode(competitorCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrCompetitorNotFound
		}
		return nil, err
	}
	return s.matchRepo.GetCompareRows(comp.ID)
}

// BuildTagReport returns one row per item of the tag. Items without an
// approved match for the competitor are kept with nil competitor fields;
// among several candidates a row with competitor data wins over one
// without, first seen wins otherwise.
func (s *ViewService) BuildTagReport(competitorID, tagID int) ([]models.TagReportRow, error) {
	candidates, err := s.matchRepo.GetTagReportCandidates(competitorID, tagID)
	if err != nil {
		return nil, err
	}

	collapsed := make(map[int]models.TagReportRow, len(candidates))
	order := make([]int, 0, len(candidates))
	for _, cand := range candidates {
		row, ok := collapsed[cand.ItemID]
		if !ok {
			collapsed[cand.ItemID] = cand
			order = append(order, cand.ItemID)
			continue
		}
		if row.CompSKU == nil && cand.CompSKU != nil {
			collapsed[cand.ItemID] = cand
		}
	}

	rows := make([]models.TagReportRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, collapsed[id])
	}
	return rows, nil
}

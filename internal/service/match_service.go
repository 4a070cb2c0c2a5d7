package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/brikomag/pricewatch/internal/models"
	"github.com/brikomag/pricewatch/internal/utils"
	"github.com/brikomag/pricewatch/pkg/praktiker"
)

// LookupProvider finds a competitor product by barcode. A clean miss is
// (nil, nil); an error means the lookup itself failed.
type LookupProvider interface {
	SearchByBarcode(ctx context.Context, barcode string) (*praktiker.Product, error)
}

type itemStore interface {
	GetAll() ([]models.Item, error)
	GetByID(id int) (*models.Item, error)
}

type competitorStore interface {
	GetByCode(code string) (*models.Competitor, error)
}

type competitorProductStore interface {
	Upsert(cp *models.CompetitorProduct) error
}

type matchStore interface {
	InsertAuto(itemID, competitorProductID int) (bool, error)
	UpsertApproved(itemID, competitorProductID int) error
}

// MatchOutcome classifies the result of matching a single item.
type MatchOutcome string

const (
	OutcomeCreated  MatchOutcome = "created"
	OutcomeExisting MatchOutcome = "existing"
	OutcomeSkipped  MatchOutcome = "skipped"
	OutcomeNotFound MatchOutcome = "not_found"
	OutcomeFailed   MatchOutcome = "failed"
)

// AutoMatchResult aggregates per-item outcomes of a full auto-match run.
type AutoMatchResult struct {
	Created    int      `json:"created"`
	Existing   int      `json:"existing"`
	Skipped    int      `json:"skipped"`
	NotFound   int      `json:"notFound"`
	Failed     int      `json:"failed"`
	FailedSKUs []string `json:"failedSkus,omitempty"`
}

// MatchService implements the matching engine: barcode-based automatic
// matching and manual override by competitor barcode.
type MatchService struct {
	itemRepo       itemStore
	competitorRepo competitorStore
	productRepo    competitorProductStore
	matchRepo      matchStore
	lookup         LookupProvider

	lookupTimeout time.Duration
	concurrency   int
}

// NewMatchService constructs a MatchService.
func NewMatchService(
	itemRepo itemStore,
	competitorRepo competitorStore,
	productRepo competitorProductStore,
	matchRepo matchStore,
	lookup LookupProvider,
	lookupTimeout time.Duration,
	concurrency int,
) *MatchService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &MatchService{
		itemRepo:       itemRepo,
		competitorRepo: competitorRepo,
		productRepo:    productRepo,
		matchRepo:      matchRepo,
		lookup:         lookup,
		lookupTimeout:  lookupTimeout,
		concurrency:    concurrency,
	}
}

// AutoMatch tries to match one item against the competitor catalog by its
// barcode. Items without a barcode are skipped; a lookup miss is a normal
// not-found outcome, not an error. Matching an already-matched pair again
// is a no-op reported as OutcomeExisting.
func (s *MatchService) AutoMatch(ctx context.Context, competitorID int, item *models.Item) (MatchOutcome, error) {
	if item.Barcode == nil || *item.Barcode == "" {
		return OutcomeSkipped, nil
	}

	lctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	res, err := s.lookup.SearchByBarcode(lctx, *item.Barcode)
	if err != nil {
		return OutcomeFailed, err
	}
	if res == nil {
		return OutcomeNotFound, nil
	}

	cp := &models.CompetitorProduct{
		CompetitorID: competitorID,
		SKU:          res.SKU,
		Name:         res.Name,
		URL:          res.URL,
	}
	if res.Barcode != "" {
		cp.Barcode = &res.Barcode
	}
	if err := s.productRepo.Upsert(cp); err != nil {
		return OutcomeFailed, err
	}

	created, err := s.matchRepo.InsertAuto(item.ID, cp.ID)
	if err != nil {
		return OutcomeFailed, err
	}
	if !created {
		return OutcomeExisting, nil
	}
	return OutcomeCreated, nil
}

// AutoMatchAll applies AutoMatch to every item with bounded parallelism.
// Each item's outcome is independent: a lookup failure is counted and
// attributed to that item alone, never aborting the rest of the batch.
func (s *MatchService) AutoMatchAll(ctx context.Context, competitorCode string) (*AutoMatchResult, error) {
	comp, err := s.competitorRepo.GetByCode(competitorCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrCompetitorNotFound
		}
		return nil, err
	}

	items, err := s.itemRepo.GetAll()
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		result AutoMatchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range items {
		item := items[i]
		g.Go(func() error {
			outcome, err := s.AutoMatch(gctx, comp.ID, &item)
			if err != nil {
				log.Warn().
					Err(err).
					Str("sku", item.SKU).
					Msg("Auto match failed for item")
			}

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeCreated:
				result.Created++
			case OutcomeExisting:
				result.Existing++
			case OutcomeSkipped:
				result.Skipped++
			case OutcomeNotFound:
				result.NotFound++
			case OutcomeFailed:
				result.Failed++
				result.FailedSKUs = append(result.FailedSKUs, item.SKU)
			}
			return nil
		})
	}

	// Per-item errors are swallowed above; Wait only reflects ctx cancellation.
	_ = g.Wait()

	log.Info().
		Int("created", result.Created).
		Int("existing", result.Existing).
		Int("skipped", result.Skipped).
		Int("not_found", result.NotFound).
		Int("failed", result.Failed).
		Msg("Auto match run finished")

	return &result, nil
}

// ManualMatch links an item to a competitor product found by the supplied
// competitor barcode and approves the match directly. If the pair was
// matched before (e.g. by a barcode auto-match) the existing row is
// upgraded to approved in place.
func (s *MatchService) ManualMatch(ctx context.Context, competitorCode string, itemID int, competitorBarcode string) (*models.CompetitorProduct, error) {
	comp, err := s.competitorRepo.GetByCode(competitorCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrCompetitorNotFound
		}
		return nil, err
	}

	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrItemNotFound
		}
		return nil, err
	}

	lctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	res, err := s.lookup.SearchByBarcode(lctx, competitorBarcode)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, utils.ErrProductNotFound
	}

	cp := &models.CompetitorProduct{
		CompetitorID: comp.ID,
		SKU:          res.SKU,
		Name:         res.Name,
		URL:          res.URL,
	}
	barcode := res.Barcode
	if barcode == "" {
		barcode = competitorBarcode
	}
	cp.Barcode = &barcode

	if err := s.productRepo.Upsert(cp); err != nil {
		return nil, err
	}
	if err := s.matchRepo.UpsertApproved(item.ID, cp.ID); err != nil {
		return nil, err
	}
	return cp, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brikomag/pricewatch/internal/models"
	"github.com/brikomag/pricewatch/internal/utils"
	"github.com/brikomag/pricewatch/pkg/praktiker"
)

// --- fakes ---

type fakeLookup struct {
	products map[string]*praktiker.Product
	errs     map[string]error
	calls    int
}

func (f *fakeLookup) SearchByBarcode(_ context.Context, barcode string) (*praktiker.Product, error) {
	f.calls++
	if err, ok := f.errs[barcode]; ok {
		return nil, err
	}
	return f.products[barcode], nil
}

type fakeItemStore struct {
	items []models.Item
}

func (f *fakeItemStore) GetAll() ([]models.Item, error) {
	return f.items, nil
}

func (f *fakeItemStore) GetByID(id int) (*models.Item, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeCompetitorStore struct {
	competitor *models.Competitor
}

func (f *fakeCompetitorStore) GetByCode(code string) (*models.Competitor, error) {
	if f.competitor != nil && f.competitor.Code == code {
		return f.competitor, nil
	}
	return nil, sql.ErrNoRows
}

type fakeProductStore struct {
	byKey  map[string]*models.CompetitorProduct
	nextID int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{byKey: make(map[string]*models.CompetitorProduct), nextID: 1}
}

func (f *fakeProductStore) Upsert(cp *models.CompetitorProduct) error {
	key := fmt.Sprintf("%d/%s", cp.CompetitorID, cp.SKU)
	if existing, ok := f.byKey[key]; ok {
		existing.Name = cp.Name
		existing.URL = cp.URL
		cp.ID = existing.ID
		return nil
	}
	cp.ID = f.nextID
	f.nextID++
	stored := *cp
	f.byKey[key] = &stored
	return nil
}

type fakeMatchStore struct {
	matches map[[2]int]*models.Match
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{matches: make(map[[2]int]*models.Match)}
}

func (f *fakeMatchStore) InsertAuto(itemID, productID int) (bool, error) {
	key := [2]int{itemID, productID}
	if _, ok := f.matches[key]; ok {
		return false, nil
	}
	f.matches[key] = &models.Match{ItemID: itemID, CompetitorProductID: productID, AutoByBarcode: true}
	return true, nil
}

func (f *fakeMatchStore) UpsertApproved(itemID, productID int) error {
	key := [2]int{itemID, productID}
	if m, ok := f.matches[key]; ok {
		m.Approved = true
		return nil
	}
	f.matches[key] = &models.Match{ItemID: itemID, CompetitorProductID: productID, Approved: true}
	return nil
}

func strp(s string) *string { return &s }

func newTestMatchService(items []models.Item, lookup *fakeLookup) (*MatchService, *fakeProductStore, *fakeMatchStore) {
	products := newFakeProductStore()
	matches := newFakeMatchStore()
	svc := NewMatchService(
		&fakeItemStore{items: items},
		&fakeCompetitorStore{competitor: &models.Competitor{ID: 7, Code: "praktiker"}},
		products,
		matches,
		lookup,
		time.Second,
		2,
	)
	return svc, products, matches
}

// --- tests ---

func TestAutoMatchSkipsItemWithoutBarcode(t *testing.T) {
	lookup := &fakeLookup{}
	svc, _, matches := newTestMatchService(nil, lookup)

	outcome, err := svc.AutoMatch(context.Background(), 7, &models.Item{ID: 1, SKU: "A1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Zero(t, lookup.calls)
	assert.Empty(t, matches.matches)
}

func TestAutoMatchMissIsNotAnError(t *testing.T) {
	lookup := &fakeLookup{products: map[string]*praktiker.Product{}}
	svc, _, _ := newTestMatchService(nil, lookup)

	outcome, err := svc.AutoMatch(context.Background(), 7, &models.Item{ID: 1, SKU: "A1", Barcode: strp("111")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
}

func TestAutoMatchIsIdempotent(t *testing.T) {
	lookup := &fakeLookup{products: map[string]*praktiker.Product{
		"111": {SKU: "PX1", Name: "Widget", URL: "https://c/px1", Barcode: "111"},
	}}
	svc, products, matches := newTestMatchService(nil, lookup)
	item := &models.Item{ID: 1, SKU: "A1", Barcode: strp("111")}

	outcome, err := svc.AutoMatch(context.Background(), 7, item)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	outcome, err = svc.AutoMatch(context.Background(), 7, item)
	require.NoError(t, err)
	assert.Equal(t, OutcomeExisting, outcome)

	assert.Len(t, products.byKey, 1, "one competitor product per (competitor, sku)")
	assert.Len(t, matches.matches, 1, "one match per (item, product)")
	m := matches.matches[[2]int{1, 1}]
	require.NotNil(t, m)
	assert.False(t, m.Approved)
	assert.True(t, m.AutoByBarcode)
}

func TestAutoMatchAllSkipsItemsWithoutBarcode(t *testing.T) {
	items := []models.Item{
		{ID: 1, SKU: "A1"},
		{ID: 2, SKU: "A2"},
	}
	svc, _, _ := newTestMatchService(items, &fakeLookup{})

	result, err := svc.AutoMatchAll(context.Background(), "praktiker")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 0, result.Created)
}

func TestAutoMatchAllIsolatesFailures(t *testing.T) {
	items := []models.Item{
		{ID: 1, SKU: "X", Barcode: strp("111")},
		{ID: 2, SKU: "Y", Barcode: strp("222")},
	}
	lookup := &fakeLookup{
		products: map[string]*praktiker.Product{
			"222": {SKU: "PY", Name: "Gadget", URL: "https://c/py", Barcode: "222"},
		},
		errs: map[string]error{
			"111": errors.New("connection reset"),
		},
	}
	svc, _, _ := newTestMatchService(items, lookup)

	result, err := svc.AutoMatchAll(context.Background(), "praktiker")
	require.NoError(t, err, "a per-item lookup failure must not abort the batch")
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"X"}, result.FailedSKUs)
	assert.Equal(t, 1, result.Created)
}

func TestAutoMatchAllUnknownCompetitor(t *testing.T) {
	svc, _, _ := newTestMatchService(nil, &fakeLookup{})

	_, err := svc.AutoMatchAll(context.Background(), "bricobg")
	assert.ErrorIs(t, err, utils.ErrCompetitorNotFound)
}

func TestManualMatchUpgradesExistingAutoMatch(t *testing.T) {
	lookup := &fakeLookup{products: map[string]*praktiker.Product{
		"111": {SKU: "PX1", Name: "Widget", URL: "https://c/px1", Barcode: "111"},
	}}
	items := []models.Item{{ID: 1, SKU: "A1", Barcode: strp("111")}}
	svc, products, matches := newTestMatchService(items, lookup)

	outcome, err := svc.AutoMatch(context.Background(), 7, &items[0])
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	cp, err := svc.ManualMatch(context.Background(), "praktiker", 1, "111")
	require.NoError(t, err)
	assert.Equal(t, "PX1", cp.SKU)

	require.Len(t, matches.matches, 1, "manual match must upgrade, not duplicate")
	assert.True(t, matches.matches[[2]int{1, cp.ID}].Approved)
	assert.Len(t, products.byKey, 1)
}

func TestManualMatchNotFoundCases(t *testing.T) {
	lookup := &fakeLookup{products: map[string]*praktiker.Product{}}
	items := []models.Item{{ID: 1, SKU: "A1"}}
	svc, _, _ := newTestMatchService(items, lookup)

	_, err := svc.ManualMatch(context.Background(), "bricobg", 1, "111")
	assert.ErrorIs(t, err, utils.ErrCompetitorNotFound)

	_, err = svc.ManualMatch(context.Background(), "praktiker", 99, "111")
	assert.ErrorIs(t, err, utils.ErrItemNotFound)

	_, err = svc.ManualMatch(context.Background(), "praktiker", 1, "111")
	assert.ErrorIs(t, err, utils.ErrProductNotFound)
}

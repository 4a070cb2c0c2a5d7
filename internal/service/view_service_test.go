package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brikomag/pricewatch/internal/models"
	"github.com/brikomag/pricewatch/internal/utils"
)

type fakeProjectionStore struct {
	viewRows    []models.ViewRow
	compareRows []models.CompareRow
	reportRows  []models.TagReportRow
}

func (f *fakeProjectionStore) GetViewCandidates(int) ([]models.ViewRow, error) {
	return f.viewRows, nil
}

func (f *fakeProjectionStore) GetCompareRows(int) ([]models.CompareRow, error) {
	return f.compareRows, nil
}

func (f *fakeProjectionStore) GetTagReportCandidates(int, int) ([]models.TagReportRow, error) {
	return f.reportRows, nil
}

func newTestViewService(items []models.Item, proj *fakeProjectionStore) *ViewService {
	return NewViewService(
		&fakeItemStore{items: items},
		&fakeCompetitorStore{competitor: &models.Competitor{ID: 7, Code: "praktiker"}},
		proj,
	)
}

func TestBuildViewPrefersApprovedCandidate(t *testing.T) {
	items := []models.Item{{ID: 1, SKU: "A1"}}
	proj := &fakeProjectionStore{viewRows: []models.ViewRow{
		{ItemID: 1, OurSKU: "A1", CompBarcode: strp("111"), Approved: false},
		{ItemID: 1, OurSKU: "A1", CompBarcode: strp("222"), Approved: true},
	}}

	rows, err := newTestViewService(items, proj).BuildView("praktiker")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Approved)
	require.NotNil(t, rows[0].CompBarcode)
	assert.Equal(t, "222", *rows[0].CompBarcode)
}

func TestBuildViewKeepsFirstWhenNoneApproved(t *testing.T) {
	items := []models.Item{{ID: 1, SKU: "A1"}}
	proj := &fakeProjectionStore{viewRows: []models.ViewRow{
		{ItemID: 1, OurSKU: "A1", CompBarcode: strp("111")},
		{ItemID: 1, OurSKU: "A1", CompBarcode: strp("222")},
	}}

	rows, err := newTestViewService(items, proj).BuildView("praktiker")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].CompBarcode)
	assert.Equal(t, "111", *rows[0].CompBarcode)
}

func TestBuildViewEmitsRowForEveryItem(t *testing.T) {
	items := []models.Item{
		{ID: 1, SKU: "A1"},
		{ID: 2, SKU: "A2"},
		{ID: 3, SKU: "A3"},
	}
	// Item 2 has no candidate at all, e.g. its only match belongs to
	// another competitor.
	proj := &fakeProjectionStore{viewRows: []models.ViewRow{
		{ItemID: 1, OurSKU: "A1", CompBarcode: strp("111"), Approved: true},
		{ItemID: 3, OurSKU: "A3"},
	}}

	rows, err := newTestViewService(items, proj).BuildView("praktiker")
	require.NoError(t, err)
	require.Len(t, rows, len(items))

	assert.Equal(t, 2, rows[1].ItemID)
	assert.Equal(t, "A2", rows[1].OurSKU)
	assert.Nil(t, rows[1].CompBarcode)
	assert.False(t, rows[1].Approved)
}

func TestBuildViewUnknownCompetitor(t *testing.T) {
	_, err := newTestViewService(nil, &fakeProjectionStore{}).BuildView("bricobg")
	assert.ErrorIs(t, err, utils.ErrCompetitorNotFound)
}

func TestBuildComparisonPassesStoredRows(t *testing.T) {
	proj := &fakeProjectionStore{compareRows: []models.CompareRow{
		{OurSKU: "A1", CompSKU: strp("PX1"), OurName: "Widget", OurPrice: 9.99},
	}}

	rows, err := newTestViewService(nil, proj).BuildComparison("praktiker")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].CompPrice, "comparison never carries a live price")
	assert.Nil(t, rows[0].Diff)
}

func TestBuildComparisonUnknownCompetitor(t *testing.T) {
	_, err := newTestViewService(nil, &fakeProjectionStore{}).BuildComparison("bricobg")
	assert.ErrorIs(t, err, utils.ErrCompetitorNotFound)
}

func TestBuildTagReportKeepsUnmatchedItems(t *testing.T) {
	proj := &fakeProjectionStore{reportRows: []models.TagReportRow{
		{ItemID: 1, OurSKU: "A1", OurName: "Widget", OurPrice: 9.99, CompSKU: strp("PX1"), CompName: strp("Widget BG")},
		{ItemID: 2, OurSKU: "A2", OurName: "Gadget", OurPrice: 4.50},
	}}

	rows, err := newTestViewService(nil, proj).BuildTagReport(7, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[1].CompSKU)
	assert.Nil(t, rows[1].CompName)
}

func TestBuildTagReportPrefersCandidateWithCompetitorData(t *testing.T) {
	proj := &fakeProjectionStore{reportRows: []models.TagReportRow{
		{ItemID: 1, OurSKU: "A1", OurName: "Widget", OurPrice: 9.99},
		{ItemID: 1, OurSKU: "A1", OurName: "Widget", OurPrice: 9.99, CompSKU: strp("PX1"), CompName: strp("Widget BG")},
		{ItemID: 2, OurSKU: "A2", OurName: "Gadget", OurPrice: 4.50},
	}}

	rows, err := newTestViewService(nil, proj).BuildTagReport(7, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2, "one row per tagged item")
	require.NotNil(t, rows[0].CompSKU)
	assert.Equal(t, "PX1", *rows[0].CompSKU)
	assert.Equal(t, 2, rows[1].ItemID, "first seen order is preserved")
}

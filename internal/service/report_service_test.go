package service

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brikomag/pricewatch/internal/models"
	"github.com/brikomag/pricewatch/internal/utils"
)

type fakeTagStore struct {
	tag *models.Tag
}

func (f *fakeTagStore) GetByID(id int) (*models.Tag, error) {
	if f.tag != nil && f.tag.ID == id {
		return f.tag, nil
	}
	return nil, sql.ErrNoRows
}

type fakeExporter struct {
	rows []models.TagReportRow
	err  error
}

func (f *fakeExporter) WriteTagReport(rows []models.TagReportRow, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = rows
	return path, nil
}

type fakeNotifier struct {
	to         string
	attachment string
	sends      int
}

func (f *fakeNotifier) Send(to, _, _ string, attachmentPath string) error {
	f.to = to
	f.attachment = attachmentPath
	f.sends++
	return nil
}

func newTestReportService(tag *models.Tag, exporter *fakeExporter, notifier *fakeNotifier) *ReportService {
	viewSvc := newTestViewService(nil, &fakeProjectionStore{reportRows: []models.TagReportRow{
		{ItemID: 1, OurSKU: "A1", OurName: "Widget", OurPrice: 9.99},
	}})
	return NewReportService(viewSvc, &fakeTagStore{tag: tag}, exporter, notifier, "/tmp/reports")
}

func TestRunTagReportMailsWhenRecipientSet(t *testing.T) {
	exporter := &fakeExporter{}
	notifier := &fakeNotifier{}
	svc := newTestReportService(&models.Tag{ID: 3, Name: "seasonal", Email: strp("buyer@brikomag.bg")}, exporter, notifier)

	path, err := svc.RunTagReport(7, 3)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/tmp/reports/pricewatch_tag_3_"))
	assert.True(t, strings.HasSuffix(path, ".xlsx"))

	assert.Len(t, exporter.rows, 1)
	assert.Equal(t, 1, notifier.sends)
	assert.Equal(t, "buyer@brikomag.bg", notifier.to)
	assert.Equal(t, path, notifier.attachment)
}

func TestRunTagReportSkipsMailWithoutRecipient(t *testing.T) {
	exporter := &fakeExporter{}
	notifier := &fakeNotifier{}
	svc := newTestReportService(&models.Tag{ID: 3, Name: "seasonal"}, exporter, notifier)

	path, err := svc.RunTagReport(7, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.Zero(t, notifier.sends)
}

func TestRunTagReportUnknownTag(t *testing.T) {
	svc := newTestReportService(nil, &fakeExporter{}, &fakeNotifier{})

	_, err := svc.RunTagReport(7, 42)
	assert.ErrorIs(t, err, utils.ErrTagNotFound)
}

func TestRunTagReportExportFailurePropagates(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestReportService(
		&models.Tag{ID: 3, Name: "seasonal", Email: strp("buyer@brikomag.bg")},
		&fakeExporter{err: errors.New("disk full")},
		notifier,
	)

	_, err := svc.RunTagReport(7, 3)
	assert.Error(t, err)
	assert.Zero(t, notifier.sends, "no mail is sent when the export fails")
}

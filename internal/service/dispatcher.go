package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/internal/models"
)

type scheduleSource interface {
	GetActiveWithTags() ([]models.ScheduleWithTag, error)
}

type reportRunner interface {
	RunTagReport(competitorID, tagID int) (string, error)
}

// Dispatcher materializes the schedule registry into running cron entries.
// Job identity is the deterministic key email_tag_<tagID>_<scheduleID>, so
// refreshes with unchanged schedules reproduce the same entry set and a
// changed cron expression replaces the entry instead of duplicating it.
//
// Overlap control is keyed on the job key and held by the Dispatcher, not
// by the cron entry: a refresh replaces entries, and per-entry wrappers
// would lose their state across that replacement.
type Dispatcher struct {
	cron         *cron.Cron
	scheduleRepo scheduleSource
	reports      reportRunner
	competitorID int

	mu      sync.Mutex
	entries map[string]cron.EntryID
	running map[string]bool
}

// NewDispatcher constructs a Dispatcher. Jobs are chained with Recover so
// a panicking job cannot take the scheduler down.
func NewDispatcher(scheduleRepo scheduleSource, reports reportRunner, competitorID int) *Dispatcher {
	logger := cronLogger{}
	return &Dispatcher{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
		)),
		scheduleRepo: scheduleRepo,
		reports:      reports,
		competitorID: competitorID,
		entries:      make(map[string]cron.EntryID),
		running:      make(map[string]bool),
	}
}

// JobKey derives the deterministic job identity for a schedule row.
func JobKey(tagID, scheduleID int) string {
	return fmt.Sprintf("email_tag_%d_%d", tagID, scheduleID)
}

// Start begins firing cron entries. Call Refresh first to load them.
func (d *Dispatcher) Start() {
	d.cron.Start()
	log.Info().Msg("Dispatcher started")
}

// Stop cancels all entries and waits for running jobs to finish.
func (d *Dispatcher) Stop() {
	<-d.cron.Stop().Done()
	log.Info().Msg("Dispatcher stopped")
}

// Refresh drops every registered entry and re-registers one entry per
// active schedule. It is serialized against itself; job firing is not
// blocked because entry registration is atomic per call. A schedule with
// an invalid cron expression is logged and skipped, never aborting the
// rest of the refresh.
func (d *Dispatcher) Refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rows, err := d.scheduleRepo.GetActiveWithTags()
	if err != nil {
		return fmt.Errorf("failed to read schedules: %w", err)
	}

	for key, id := range d.entries {
		d.cron.Remove(id)
		delete(d.entries, key)
	}

	for _, row := range rows {
		tagID := row.TagID
		tagName := row.TagName
		key := JobKey(row.TagID, row.ID)

		entryID, err := d.cron.AddFunc(row.Cron, func() {
			d.runJob(key, tagID, tagName)
		})
		if err != nil {
			log.Error().
				Err(err).
				Int("schedule_id", row.ID).
				Str("cron", row.Cron).
				Msg("Skipping schedule with invalid cron expression")
			continue
		}
		d.entries[key] = entryID
	}

	log.Info().Int("jobs", len(d.entries)).Msg("Dispatcher refreshed")
	return nil
}

// JobKeys returns the currently registered job keys, sorted.
func (d *Dispatcher) JobKeys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// runJob fires one report job. Firings of the same job key never overlap:
// a tick arriving while the previous firing for that key is still running
// is skipped, even when a refresh replaced the cron entry in between.
func (d *Dispatcher) runJob(key string, tagID int, tagName string) {
	d.mu.Lock()
	if d.running[key] {
		d.mu.Unlock()
		log.Warn().Str("job", key).Msg("Previous firing still running, skipping tick")
		return
	}
	d.running[key] = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.running, key)
		d.mu.Unlock()
	}()

	log.Info().Int("tag_id", tagID).Str("tag", tagName).Msg("Report job firing")

	path, err := d.reports.RunTagReport(d.competitorID, tagID)
	if err != nil {
		log.Error().
			Err(err).
			Int("tag_id", tagID).
			Str("tag", tagName).
			Msg("Report job failed")
		return
	}

	log.Info().
		Int("tag_id", tagID).
		Str("path", path).
		Msg("Report job finished")
}

// cronLogger adapts the cron logger interface onto zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logKV(log.Info(), keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logKV(log.Error().Err(err), keysAndValues).Msg("cron: " + msg)
}

func logKV(ev *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		ev = ev.Interface(key, keysAndValues[i+1])
	}
	return ev
}

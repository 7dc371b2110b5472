// Package pipeline orchestrates a tour sync: list show dates from the
// setlist authority, fetch and reconcile each show, persist, and keep the
// tour control record current.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gigscope/gigscope/pkg/cache"
	"github.com/gigscope/gigscope/pkg/gaps"
	"github.com/gigscope/gigscope/pkg/match"
	"github.com/gigscope/gigscope/pkg/model"
	"github.com/gigscope/gigscope/pkg/sources"
	"github.com/gigscope/gigscope/pkg/stats"
	"github.com/gigscope/gigscope/pkg/storage"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Config holds everything SyncTour needs for one run.
type Config struct {
	Setlists    sources.SetlistSource
	Audio       sources.AudioSource
	DB          *storage.DB
	Tour        string
	Concurrency int    // defaults to 4 if <= 0
	Log         Logger // optional; nil = no logging

	// OnShowDone is called per-show after upsert (from worker goroutines).
	// Enables the CLI to stream-print changes as they happen. Nil = no callback.
	OnShowDone func(date string, change *storage.Change)
}

// Result holds the outcome of syncing one tour.
type Result struct {
	SyncedDates []string
	Changes     []storage.Change
	Errors      []error // non-fatal, per-show
	IsFirstRun  bool
	Control     model.TourControl
}

// wipeGuardThreshold: if the source suddenly lists zero shows while the DB
// holds more than this many, abort instead of treating the tour as empty.
const wipeGuardThreshold = 5

// SyncTour fetches every show of the tour, reconciles across both sources,
// and upserts the records plus the tour control row. A failure fetching one
// show degrades that show, never the run; only listing the tour itself can
// fail the whole sync.
func SyncTour(ctx context.Context, cfg Config) (*Result, error) {
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	result := &Result{}

	existing, err := cfg.DB.CountShows(ctx, cfg.Tour)
	if err != nil {
		return nil, fmt.Errorf("counting persisted shows: %w", err)
	}
	result.IsFirstRun = existing == 0

	dates, err := cfg.Setlists.ListTourDates(ctx, cfg.Tour)
	if err != nil {
		return nil, fmt.Errorf("listing tour dates: %w", err)
	}

	if len(dates) == 0 && existing > wipeGuardThreshold {
		log.Errorf("Source lists 0 shows for %q but database has %d. Aborting sync to prevent data loss.", cfg.Tour, existing)
		return result, nil
	}

	if result.IsFirstRun && len(dates) > 0 {
		log.Infof("First sync for %q, populating database...", cfg.Tour)
	}

	type outcome struct {
		date   string
		change *storage.Change
		err    error
	}

	dateCh := make(chan string)
	outCh := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for date := range dateCh {
				change, err := syncShow(ctx, cfg, log, date)
				outCh <- outcome{date: date, change: change, err: err}
			}
		}()
	}

	go func() {
		for _, d := range dates {
			dateCh <- d
		}
		close(dateCh)
		wg.Wait()
		close(outCh)
	}()

	for o := range outCh {
		if o.err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("show %s: %w", o.date, o.err))
			continue
		}
		result.SyncedDates = append(result.SyncedDates, o.date)
		if o.change != nil {
			result.Changes = append(result.Changes, *o.change)
		}
		if cfg.OnShowDone != nil {
			cfg.OnShowDone(o.date, o.change)
		}
	}

	control, err := buildControl(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.DB.SaveTourControl(ctx, control); err != nil {
		return nil, fmt.Errorf("saving tour control: %w", err)
	}
	result.Control = control

	return result, nil
}

// syncShow fetches one show from both sources and persists the reconciled
// record. Missing durations or gaps degrade the record; a missing setlist for
// a show we have never persisted is a per-show error.
func syncShow(ctx context.Context, cfg Config, log Logger, date string) (*storage.Change, error) {
	show, setlist, err := cfg.Setlists.FetchSetlist(ctx, date)
	if err != nil {
		if prior, loadErr := cfg.DB.LoadShow(ctx, date); loadErr != nil {
			// A persisted record that fails to load is storage corruption,
			// not absence of new data.
			return nil, loadErr
		} else if prior != nil {
			log.Debugf("Keeping persisted record for %s; setlist fetch failed: %v", date, err)
			return nil, nil
		}
		return nil, err
	}
	show.Tour = cfg.Tour

	songs := make([]string, 0, len(setlist))
	for _, e := range setlist {
		songs = append(songs, e.Song)
	}

	gapRecords, err := cfg.Setlists.FetchGaps(ctx, songs, date)
	if err != nil {
		log.Warnf("No gap data for %s: %v", date, err)
		gapRecords = nil
	}

	durations, err := cfg.Audio.FetchDurations(ctx, date)
	if err != nil {
		log.Warnf("No durations for %s: %v", date, err)
		durations = nil
	}

	enriched := match.Reconcile(show, setlist, durations, gapRecords)
	return cfg.DB.SaveShow(ctx, enriched)
}

// buildControl derives the tour control record from what is now persisted.
func buildControl(ctx context.Context, cfg Config) (model.TourControl, error) {
	shows, err := cfg.DB.ListShows(ctx, cfg.Tour)
	if err != nil {
		return model.TourControl{}, fmt.Errorf("listing persisted shows: %w", err)
	}

	control := model.TourControl{Tour: cfg.Tour, TotalShows: len(shows)}
	for _, s := range shows {
		if s.HasSetlist && s.Show.Date > control.LatestShowDate {
			control.LatestShowDate = s.Show.Date
		}
		if s.HasDurations {
			control.ShowsWithDurations++
		}
	}
	return control, nil
}

// RegenerateStatistics folds the persisted shows into a fresh snapshot when
// the control record says it is needed (or force is set), persists it, and
// returns it. Returns the existing snapshot when regeneration was skipped.
func RegenerateStatistics(ctx context.Context, db *storage.DB, setlists sources.SetlistSource, c *cache.Cache, tour string, topN int, force bool) (*model.TourStatistics, bool, error) {
	control, err := db.LoadTourControl(ctx, tour)
	if err != nil {
		return nil, false, err
	}
	if control == nil {
		return nil, false, errors.New("tour has never been synced")
	}

	existing, err := db.LoadStatistics(ctx, tour)
	if err != nil {
		return nil, false, err
	}

	if !force {
		if regen, _ := stats.ShouldRegenerate(existing, *control); !regen {
			return existing, false, nil
		}
	}

	shows, err := db.ListShows(ctx, tour)
	if err != nil {
		return nil, false, err
	}

	opts := stats.Options{TopN: topN}
	if setlists != nil {
		opts.Resolver = gaps.NewResolver(setlists, c)
	}

	snapshot := stats.FoldStatistics(ctx, tour, shows, opts)
	if err := db.SaveStatistics(ctx, snapshot); err != nil {
		return nil, false, err
	}
	return &snapshot, true, nil
}

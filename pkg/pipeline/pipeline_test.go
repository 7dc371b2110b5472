package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/gigscope/gigscope/pkg/model"
	"github.com/gigscope/gigscope/pkg/sources"
	"github.com/gigscope/gigscope/pkg/storage"
)

type fakeSetlists struct {
	dates    []string
	setlists map[string][]model.SetlistEntry
	venues   map[string]string
	failFor  map[string]error
	listErr  error
}

func (f *fakeSetlists) Name() string { return "fake-setlists" }

func (f *fakeSetlists) ListTourDates(ctx context.Context, tour string) ([]string, error) {
	return f.dates, f.listErr
}

func (f *fakeSetlists) FetchSetlist(ctx context.Context, date string) (model.Show, []model.SetlistEntry, error) {
	if err, ok := f.failFor[date]; ok {
		return model.Show{}, nil, err
	}
	entries, ok := f.setlists[date]
	if !ok {
		return model.Show{}, nil, sources.ErrNotFound
	}
	venue := f.venues[date]
	if venue == "" {
		venue = "Test Hall"
	}
	return model.Show{Date: date, Venue: venue, City: "Testville"}, entries, nil
}

func (f *fakeSetlists) FetchGaps(ctx context.Context, songs []string, date string) ([]model.GapRecord, error) {
	var out []model.GapRecord
	for i, s := range songs {
		out = append(out, model.GapRecord{Song: s, Gap: i * 10})
	}
	return out, nil
}

func (f *fakeSetlists) FetchPerformanceHistory(ctx context.Context, song string) ([]model.Performance, error) {
	return nil, sources.ErrNotFound
}

type fakeAudio struct {
	durations map[string][]model.DurationEntry
	failFor   map[string]error
}

func (f *fakeAudio) Name() string { return "fake-audio" }

func (f *fakeAudio) FetchDurations(ctx context.Context, date string) ([]model.DurationEntry, error) {
	if err, ok := f.failFor[date]; ok {
		return nil, err
	}
	return f.durations[date], nil
}

func setlistOf(names ...string) []model.SetlistEntry {
	var out []model.SetlistEntry
	for i, n := range names {
		out = append(out, model.SetlistEntry{Set: "1", Position: i + 1, Song: n})
	}
	return out
}

func durationsOf(names ...string) []model.DurationEntry {
	var out []model.DurationEntry
	for i, n := range names {
		out = append(out, model.DurationEntry{Set: "1", Position: i + 1, Song: n, Seconds: 300 + i})
	}
	return out
}

func testDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSyncTourFirstRun(t *testing.T) {
	db := testDB(t)
	setlists := &fakeSetlists{
		dates: []string{"2025-07-25", "2025-07-26"},
		setlists: map[string][]model.SetlistEntry{
			"2025-07-25": setlistOf("Fee", "Llama"),
			"2025-07-26": setlistOf("Tweezer"),
		},
	}
	audio := &fakeAudio{durations: map[string][]model.DurationEntry{
		"2025-07-25": durationsOf("Fee", "Llama"),
	}}

	result, err := SyncTour(context.Background(), Config{
		Setlists: setlists, Audio: audio, DB: db, Tour: "Summer 2025",
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !result.IsFirstRun {
		t.Fatal("expected first run")
	}
	if len(result.SyncedDates) != 2 || len(result.Changes) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	if result.Control.LatestShowDate != "2025-07-26" || result.Control.TotalShows != 2 {
		t.Fatalf("control wrong: %+v", result.Control)
	}
	if result.Control.ShowsWithDurations != 1 {
		t.Fatalf("shows with durations = %d, want 1", result.Control.ShowsWithDurations)
	}

	show, err := db.LoadShow(context.Background(), "2025-07-25")
	if err != nil || show == nil {
		t.Fatalf("load: %v %v", show, err)
	}
	if !show.HasDurations || show.Songs[0].Duration == nil {
		t.Fatalf("durations not reconciled: %+v", show)
	}
	if show.Songs[0].Gap == nil {
		t.Fatalf("gaps not attached: %+v", show.Songs[0])
	}
}

func TestSyncTourDegradesFailedShow(t *testing.T) {
	db := testDB(t)
	setlists := &fakeSetlists{
		dates: []string{"2025-07-25", "2025-07-26"},
		setlists: map[string][]model.SetlistEntry{
			"2025-07-25": setlistOf("Fee"),
		},
		failFor: map[string]error{"2025-07-26": sources.ErrSourceUnavailable},
	}
	audio := &fakeAudio{}

	result, err := SyncTour(context.Background(), Config{
		Setlists: setlists, Audio: audio, DB: db, Tour: "Summer 2025",
	})
	if err != nil {
		t.Fatalf("a per-show failure must not fail the run: %v", err)
	}
	if len(result.SyncedDates) != 1 || len(result.Errors) != 1 {
		t.Fatalf("unexpected result: synced=%v errors=%v", result.SyncedDates, result.Errors)
	}
}

func TestSyncTourAudioFailureDegradesToNoDurations(t *testing.T) {
	db := testDB(t)
	setlists := &fakeSetlists{
		dates:    []string{"2025-07-25"},
		setlists: map[string][]model.SetlistEntry{"2025-07-25": setlistOf("Fee")},
	}
	audio := &fakeAudio{failFor: map[string]error{"2025-07-25": sources.ErrSourceUnavailable}}

	result, err := SyncTour(context.Background(), Config{
		Setlists: setlists, Audio: audio, DB: db, Tour: "Summer 2025",
	})
	if err != nil || len(result.Errors) != 0 {
		t.Fatalf("audio failure must degrade, not error: %v %v", err, result.Errors)
	}

	show, _ := db.LoadShow(context.Background(), "2025-07-25")
	if show == nil || show.HasDurations {
		t.Fatalf("expected record without durations: %+v", show)
	}
}

func TestSyncTourWipeGuard(t *testing.T) {
	db := testDB(t)
	setlists := &fakeSetlists{
		dates:    []string{"a", "b", "c", "d", "e", "f"},
		setlists: map[string][]model.SetlistEntry{},
	}
	for i := 0; i < 6; i++ {
		date := fmt.Sprintf("2025-07-2%d", i)
		setlists.setlists[date] = setlistOf("Fee")
		setlists.dates[i] = date
	}
	audio := &fakeAudio{}

	if _, err := SyncTour(context.Background(), Config{Setlists: setlists, Audio: audio, DB: db, Tour: "Summer 2025"}); err != nil {
		t.Fatalf("seed sync: %v", err)
	}

	// The source suddenly returns nothing.
	setlists.dates = nil
	result, err := SyncTour(context.Background(), Config{Setlists: setlists, Audio: audio, DB: db, Tour: "Summer 2025"})
	if err != nil {
		t.Fatalf("wipe guard should abort quietly: %v", err)
	}
	if len(result.SyncedDates) != 0 {
		t.Fatalf("guarded run should sync nothing: %+v", result)
	}

	n, _ := db.CountShows(context.Background(), "Summer 2025")
	if n != 6 {
		t.Fatalf("persisted shows must survive the guard, got %d", n)
	}
}

func TestRegenerateStatisticsSkipsWhenCurrent(t *testing.T) {
	db := testDB(t)
	setlists := &fakeSetlists{
		dates:    []string{"2025-07-25"},
		setlists: map[string][]model.SetlistEntry{"2025-07-25": setlistOf("Fee", "Llama")},
	}
	audio := &fakeAudio{durations: map[string][]model.DurationEntry{
		"2025-07-25": durationsOf("Fee", "Llama"),
	}}

	ctx := context.Background()
	if _, err := SyncTour(ctx, Config{Setlists: setlists, Audio: audio, DB: db, Tour: "Summer 2025"}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	first, regenerated, err := RegenerateStatistics(ctx, db, nil, nil, "Summer 2025", 3, false)
	if err != nil || !regenerated {
		t.Fatalf("first regeneration should run: %v regenerated=%v", err, regenerated)
	}
	if first.LatestShowProcessed != "2025-07-25" {
		t.Fatalf("provenance wrong: %+v", first)
	}

	second, regenerated, err := RegenerateStatistics(ctx, db, nil, nil, "Summer 2025", 3, false)
	if err != nil {
		t.Fatalf("second regeneration: %v", err)
	}
	if regenerated {
		t.Fatal("nothing changed; regeneration should be skipped")
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Fatalf("skip should return the persisted snapshot: %v vs %v", second.GeneratedAt, first.GeneratedAt)
	}

	// Force always folds.
	_, regenerated, err = RegenerateStatistics(ctx, db, nil, nil, "Summer 2025", 3, true)
	if err != nil || !regenerated {
		t.Fatalf("forced regeneration should run: %v regenerated=%v", err, regenerated)
	}
}

func TestRegenerateStatisticsWithoutSync(t *testing.T) {
	db := testDB(t)
	if _, _, err := RegenerateStatistics(context.Background(), db, nil, nil, "Summer 2025", 3, false); err == nil {
		t.Fatal("expected error for a never-synced tour")
	}
}

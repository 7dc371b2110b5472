// Package storage is the single source of truth: one tour-control record,
// one enriched record per show, one statistics snapshot per tour, plus a
// change log so nearby runs can see what a sync actually did.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gigscope/gigscope/pkg/model"
)

// ErrCorruptRecord marks a persisted record that no longer parses. Unlike a
// missing record this is a contract violation and callers treat it as fatal.
var ErrCorruptRecord = errors.New("corrupt persisted record")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS tour_control (
  tour                 TEXT PRIMARY KEY,
  latest_show_date     TEXT NOT NULL,
  total_shows          INTEGER NOT NULL,
  shows_with_durations INTEGER NOT NULL,
  updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS shows (
  show_date     TEXT PRIMARY KEY,
  tour          TEXT NOT NULL,
  venue         TEXT NOT NULL,
  city          TEXT,
  state         TEXT,
  show_number   INTEGER NOT NULL DEFAULT 0,
  total_shows   INTEGER NOT NULL DEFAULT 0,
  songs         TEXT NOT NULL,
  has_setlist   INTEGER NOT NULL CHECK (has_setlist IN (0,1)),
  has_durations INTEGER NOT NULL CHECK (has_durations IN (0,1)),
  has_gaps      INTEGER NOT NULL CHECK (has_gaps IN (0,1)),
  created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_shows_tour ON shows(tour, show_date);
CREATE TABLE IF NOT EXISTS statistics (
  tour                  TEXT PRIMARY KEY,
  payload               TEXT NOT NULL,
  latest_show_processed TEXT NOT NULL,
  shows_with_durations  INTEGER NOT NULL,
  generated_at          DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS show_changes (
  id          INTEGER PRIMARY KEY,
  occurred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  show_date   TEXT NOT NULL,
  tour        TEXT NOT NULL,
  change_type TEXT NOT NULL CHECK (change_type IN ('added','updated','completed'))
);
CREATE INDEX IF NOT EXISTS idx_changes_time ON show_changes(occurred_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Change is one entry of the show change log.
type Change struct {
	OccurredAt time.Time `json:"occurred_at"`
	ShowDate   string    `json:"show_date"`
	Tour       string    `json:"tour"`
	ChangeType string    `json:"change_type"` // added, updated, completed
}

// SaveShow upserts one enriched show keyed by its ISO date and logs what
// happened. It returns nil when the stored record was already identical.
// "completed" is recorded when a completeness flag flips on (durations or
// gaps arriving for an already-known show); other content differences log
// "updated".
func (d *DB) SaveShow(ctx context.Context, show model.EnrichedShow) (change *Change, err error) {
	songsJSON, err := json.Marshal(show.Songs)
	if err != nil {
		return nil, fmt.Errorf("encoding songs for %s: %w", show.Show.Date, err)
	}

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		prevSongs                       string
		prevDurations, prevGaps, prevSl int
	)
	row := tx.QueryRowContext(ctx, "SELECT songs, has_setlist, has_durations, has_gaps FROM shows WHERE show_date = ?", show.Show.Date)
	scanErr := row.Scan(&prevSongs, &prevSl, &prevDurations, &prevGaps)

	changeType := ""
	switch {
	case scanErr == sql.ErrNoRows:
		changeType = "added"
	case scanErr != nil:
		return nil, scanErr
	case (!intToBool(prevDurations) && show.HasDurations) || (!intToBool(prevGaps) && show.HasGaps):
		changeType = "completed"
	case prevSongs != string(songsJSON):
		changeType = "updated"
	}

	if changeType == "" {
		// Identical record; only bump the freshness timestamp.
		if _, err = tx.ExecContext(ctx, "UPDATE shows SET updated_at = CURRENT_TIMESTAMP WHERE show_date = ?", show.Show.Date); err != nil {
			return nil, err
		}
		if err = tx.Commit(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if changeType == "added" {
		_, err = tx.ExecContext(ctx, `INSERT INTO shows(show_date, tour, venue, city, state, show_number, total_shows, songs, has_setlist, has_durations, has_gaps)
			VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
			show.Show.Date, show.Show.Tour, show.Show.Venue, show.Show.City, show.Show.State,
			show.Show.ShowNumber, show.Show.TotalShows, string(songsJSON),
			boolToInt(show.HasSetlist), boolToInt(show.HasDurations), boolToInt(show.HasGaps))
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE shows SET tour = ?, venue = ?, city = ?, state = ?, show_number = ?, total_shows = ?, songs = ?,
			has_setlist = ?, has_durations = ?, has_gaps = ?, updated_at = CURRENT_TIMESTAMP WHERE show_date = ?`,
			show.Show.Tour, show.Show.Venue, show.Show.City, show.Show.State,
			show.Show.ShowNumber, show.Show.TotalShows, string(songsJSON),
			boolToInt(show.HasSetlist), boolToInt(show.HasDurations), boolToInt(show.HasGaps), show.Show.Date)
	}
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO show_changes(show_date, tour, change_type) VALUES(?,?,?)`,
		show.Show.Date, show.Show.Tour, changeType); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &Change{OccurredAt: time.Now().UTC(), ShowDate: show.Show.Date, Tour: show.Show.Tour, ChangeType: changeType}, nil
}

// LoadShow returns the enriched record for a date, or nil when absent. A
// record that exists but no longer parses returns ErrCorruptRecord.
func (d *DB) LoadShow(ctx context.Context, date string) (*model.EnrichedShow, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT show_date, tour, venue, city, state, show_number, total_shows, songs, has_setlist, has_durations, has_gaps
		FROM shows WHERE show_date = ?`, date)
	show, err := scanShow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return show, err
}

// ListShows returns every enriched record for a tour in chronological order.
func (d *DB) ListShows(ctx context.Context, tour string) ([]model.EnrichedShow, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT show_date, tour, venue, city, state, show_number, total_shows, songs, has_setlist, has_durations, has_gaps
		FROM shows WHERE tour = ? ORDER BY show_date`, tour)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EnrichedShow
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *show)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShow(r rowScanner) (*model.EnrichedShow, error) {
	var (
		es                    model.EnrichedShow
		city, state           sql.NullString
		songsJSON             string
		hasSl, hasDur, hasGap int
	)
	if err := r.Scan(&es.Show.Date, &es.Show.Tour, &es.Show.Venue, &city, &state,
		&es.Show.ShowNumber, &es.Show.TotalShows, &songsJSON, &hasSl, &hasDur, &hasGap); err != nil {
		return nil, err
	}
	es.Show.City = city.String
	es.Show.State = state.String
	es.HasSetlist = intToBool(hasSl)
	es.HasDurations = intToBool(hasDur)
	es.HasGaps = intToBool(hasGap)

	if err := json.Unmarshal([]byte(songsJSON), &es.Songs); err != nil {
		return nil, fmt.Errorf("%w: show %s: %v", ErrCorruptRecord, es.Show.Date, err)
	}
	return &es, nil
}

// CountShows reports how many records exist for a tour.
func (d *DB) CountShows(ctx context.Context, tour string) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM shows WHERE tour = ?", tour).Scan(&n)
	return n, err
}

// SaveTourControl upserts the authoritative tour record.
func (d *DB) SaveTourControl(ctx context.Context, tc model.TourControl) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO tour_control(tour, latest_show_date, total_shows, shows_with_durations, updated_at)
		VALUES(?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(tour) DO UPDATE SET latest_show_date = excluded.latest_show_date,
			total_shows = excluded.total_shows, shows_with_durations = excluded.shows_with_durations, updated_at = CURRENT_TIMESTAMP`,
		tc.Tour, tc.LatestShowDate, tc.TotalShows, tc.ShowsWithDurations)
	return err
}

// LoadTourControl returns the control record for a tour, or nil when absent.
func (d *DB) LoadTourControl(ctx context.Context, tour string) (*model.TourControl, error) {
	var tc model.TourControl
	var updatedAt string
	err := d.sql.QueryRowContext(ctx, "SELECT tour, latest_show_date, total_shows, shows_with_durations, updated_at FROM tour_control WHERE tour = ?", tour).
		Scan(&tc.Tour, &tc.LatestShowDate, &tc.TotalShows, &tc.ShowsWithDurations, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tc.UpdatedAt = parseSQLiteTime(updatedAt)
	return &tc, nil
}

// SaveStatistics persists a statistics snapshot with its provenance columns
// denormalized so the skip check never parses the payload.
func (d *DB) SaveStatistics(ctx context.Context, ts model.TourStatistics) error {
	payload, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("encoding statistics for %s: %w", ts.Tour, err)
	}
	_, err = d.sql.ExecContext(ctx, `INSERT INTO statistics(tour, payload, latest_show_processed, shows_with_durations, generated_at)
		VALUES(?,?,?,?,?)
		ON CONFLICT(tour) DO UPDATE SET payload = excluded.payload, latest_show_processed = excluded.latest_show_processed,
			shows_with_durations = excluded.shows_with_durations, generated_at = excluded.generated_at`,
		ts.Tour, string(payload), ts.LatestShowProcessed, ts.ShowsWithDurations, ts.GeneratedAt.UTC().Format(time.RFC3339))
	return err
}

// LoadStatistics returns the snapshot for a tour, or nil when absent.
func (d *DB) LoadStatistics(ctx context.Context, tour string) (*model.TourStatistics, error) {
	var payload string
	err := d.sql.QueryRowContext(ctx, "SELECT payload FROM statistics WHERE tour = ?", tour).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ts model.TourStatistics
	if err := json.Unmarshal([]byte(payload), &ts); err != nil {
		return nil, fmt.Errorf("%w: statistics for %s: %v", ErrCorruptRecord, tour, err)
	}
	return &ts, nil
}

// RecentChanges returns the most recent N change-log entries.
func (d *DB) RecentChanges(ctx context.Context, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx, "SELECT occurred_at, show_date, tour, change_type FROM show_changes ORDER BY occurred_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var c Change
		var occurredAt string
		if err := rows.Scan(&occurredAt, &c.ShowDate, &c.Tour, &c.ChangeType); err != nil {
			return nil, err
		}
		c.OccurredAt = parseSQLiteTime(occurredAt)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// parseSQLiteTime handles both CURRENT_TIMESTAMP's format and RFC3339.
func parseSQLiteTime(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool { return i == 1 }

// Package sources defines the capabilities the pipeline consumes from the
// two upstream authorities: the setlist/gap source and the audio source.
package sources

import (
	"context"
	"errors"

	"github.com/gigscope/gigscope/pkg/model"
)

// Sentinel errors for the upstream failure taxonomy. Clients wrap these so
// callers can classify with errors.Is.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
)

// SetlistSource is the setlist, venue, gap and tour-position authority.
type SetlistSource interface {
	Name() string
	// ListTourDates returns the ISO dates of every show in the tour, in
	// chronological order.
	ListTourDates(ctx context.Context, tour string) ([]string, error)
	// FetchSetlist returns the show record and its ordered setlist.
	FetchSetlist(ctx context.Context, date string) (model.Show, []model.SetlistEntry, error)
	// FetchGaps returns shows-since-last-played records for the given songs
	// at the given show date.
	FetchGaps(ctx context.Context, songs []string, date string) ([]model.GapRecord, error)
	// FetchPerformanceHistory returns a song's full chronological history.
	FetchPerformanceHistory(ctx context.Context, song string) ([]model.Performance, error)
}

// AudioSource is the duration authority. FetchDurations returns an empty
// slice, not an error, when audio for the show is simply unpublished.
type AudioSource interface {
	Name() string
	FetchDurations(ctx context.Context, date string) ([]model.DurationEntry, error)
}

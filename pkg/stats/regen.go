package stats

import "github.com/gigscope/gigscope/pkg/model"

// ShouldRegenerate decides whether a statistics snapshot needs recomputing by
// comparing it against the current tour control record. Scheduling callers
// use this to skip the whole aggregation (and its upstream lookups) when
// nothing relevant changed.
func ShouldRegenerate(existing *model.TourStatistics, control model.TourControl) (bool, string) {
	if existing == nil {
		return true, "no statistics snapshot exists"
	}
	if existing.Tour != control.Tour {
		return true, "statistics are for a different tour"
	}
	if existing.LatestShowProcessed != control.LatestShowDate {
		return true, "a new show has been played"
	}
	if existing.ShowsWithDurations != control.ShowsWithDurations {
		return true, "durations were published for more shows"
	}
	return false, "statistics are up to date"
}

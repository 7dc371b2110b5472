// Package stats turns the full corpus of enriched shows into the tour's
// ranked Top-N lists and decides when regeneration is actually needed.
package stats

import (
	"context"
	"sort"
	"time"

	"github.com/gigscope/gigscope/pkg/gaps"
	"github.com/gigscope/gigscope/pkg/match"
	"github.com/gigscope/gigscope/pkg/model"
)

// DefaultTopN is the ranking depth when the caller doesn't say otherwise.
const DefaultTopN = 3

// Options tunes a statistics fold.
type Options struct {
	TopN int
	// Resolver, when set, enriches the rarest candidates with the exact
	// prior performance. Optional; without it the raw gap numbers stand.
	Resolver *gaps.Resolver
}

// FoldStatistics recomputes the complete statistics snapshot from scratch.
// Given the same set of shows it yields the same ranked lists, order and
// membership, aside from the GeneratedAt timestamp.
func FoldStatistics(ctx context.Context, tour string, shows []model.EnrichedShow, opts Options) model.TourStatistics {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	// The gap tracker requires strict chronological order; ISO dates sort
	// lexicographically so a plain string sort is enough.
	ordered := make([]model.EnrichedShow, len(shows))
	copy(ordered, shows)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Show.Date < ordered[j].Show.Date
	})

	out := model.TourStatistics{
		Tour:        tour,
		GeneratedAt: time.Now().UTC(),
	}

	tracker := gaps.NewTracker()
	playCounts := make(map[string]int)
	displayNames := make(map[string]string)
	var longest []model.LongestSong

	for _, show := range ordered {
		if show.HasSetlist && show.Show.Date > out.LatestShowProcessed {
			out.LatestShowProcessed = show.Show.Date
		}
		if show.HasDurations {
			out.ShowsWithDurations++
		}

		tracker.Observe(show)

		for _, song := range show.Songs {
			key := match.Normalize(song.Entry.Song)
			if _, seen := displayNames[key]; !seen {
				displayNames[key] = song.Entry.Song
			}
			playCounts[key]++

			if song.Duration != nil {
				longest = append(longest, model.LongestSong{
					Song:     song.Entry.Song,
					Seconds:  song.Duration.Seconds,
					Display:  model.FormatDuration(song.Duration.Seconds),
					ShowDate: show.Show.Date,
					Venue:    show.Show.Venue,
					City:     show.Show.City,
					State:    show.Show.State,
				})
			}
		}
	}

	// Longest: descending duration, ties to the earliest show date. The
	// input is already chronological, so a stable sort preserves that.
	sort.SliceStable(longest, func(i, j int) bool {
		return longest[i].Seconds > longest[j].Seconds
	})
	if len(longest) > topN {
		longest = longest[:topN]
	}
	out.Longest = longest

	rarest := tracker.Rarest(topN)
	if opts.Resolver != nil {
		rarest = opts.Resolver.Enrich(ctx, rarest)
	}
	out.Rarest = make([]model.RarestSong, 0, len(rarest))
	for _, r := range rarest {
		out.Rarest = append(out.Rarest, model.RarestSong{
			Song:      r.Song,
			Gap:       r.Gap,
			Debut:     r.Debut,
			ShowDate:  r.ShowDate,
			Venue:     r.Venue,
			City:      r.City,
			State:     r.State,
			LastDate:  r.LastDate,
			LastVenue: r.LastVenue,
		})
	}
	out.Debuts = tracker.Debuts()

	// Most played: descending count, ties alphabetical by display name.
	most := make([]model.MostPlayedSong, 0, len(playCounts))
	for key, count := range playCounts {
		most = append(most, model.MostPlayedSong{Song: displayNames[key], Plays: count})
	}
	sort.Slice(most, func(i, j int) bool {
		if most[i].Plays != most[j].Plays {
			return most[i].Plays > most[j].Plays
		}
		return most[i].Song < most[j].Song
	})
	if len(most) > topN {
		most = most[:topN]
	}
	out.MostPlayed = most

	return out
}

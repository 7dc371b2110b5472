// Package spans derives venue-run calendar spans: maximal runs of
// consecutive days at the same venue, annotated with month-grid coordinates
// so overlay rendering never re-derives calendar layout.
package spans

import (
	"sort"
	"time"

	"github.com/gigscope/gigscope/pkg/model"
)

// Day is one calendar day-cell, optionally carrying show info.
type Day struct {
	Date    string
	HasShow bool
	Venue   string
	City    string
	State   string
}

// Detect groups the show days among the given calendar days into venue-run
// spans. A one-day gap or a venue change terminates a run; a single-night
// show is still a span of length one. Detection is purely date contiguity
// plus venue identity; callers filter spans to the window they render.
//
// Days with unparseable dates are ignored rather than failing the batch.
func Detect(days []Day) []model.VenueRunSpan {
	type showDay struct {
		day  Day
		date time.Time
	}

	shows := make([]showDay, 0, len(days))
	for _, d := range days {
		if !d.HasShow {
			continue
		}
		t, err := model.ParseDate(d.Date)
		if err != nil {
			continue
		}
		shows = append(shows, showDay{day: d, date: t})
	}
	sort.Slice(shows, func(i, j int) bool { return shows[i].date.Before(shows[j].date) })

	var out []model.VenueRunSpan
	var run []showDay

	flush := func() {
		if len(run) == 0 {
			return
		}
		span := model.VenueRunSpan{
			Venue: run[0].day.Venue,
			City:  run[0].day.City,
			State: run[0].day.State,
		}
		for _, sd := range run {
			span.Days = append(span.Days, model.SpanDay{
				Date: sd.day.Date,
				Grid: gridPosition(sd.date),
			})
		}
		out = append(out, span)
		run = run[:0]
	}

	for _, sd := range shows {
		if len(run) > 0 {
			prev := run[len(run)-1]
			sameVenue := prev.day.Venue == sd.day.Venue
			adjacent := prev.date.AddDate(0, 0, 1).Equal(sd.date)
			if !sameVenue || !adjacent {
				flush()
			}
		}
		run = append(run, sd)
	}
	flush()

	return out
}

// gridPosition computes the (week row, weekday column) of a date within its
// month's layout. Row zero is the week containing the 1st; columns run
// Sunday through Saturday.
func gridPosition(t time.Time) model.GridPos {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	offset := int(firstOfMonth.Weekday())
	index := t.Day() - 1 + offset
	return model.GridPos{Row: index / 7, Col: index % 7}
}

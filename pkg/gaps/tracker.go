// Package gaps tracks the rarest tour occurrence of every song and resolves
// the exact prior performance for top candidates.
package gaps

import (
	"sort"

	"github.com/gigscope/gigscope/pkg/match"
	"github.com/gigscope/gigscope/pkg/model"
)

// Rarity is a song's rarest occurrence within the tour so far. ShowDate and
// Venue describe the tour occurrence; LastDate and LastVenue describe the
// performance before it, once known.
type Rarity struct {
	Song      string `json:"song"`
	SongID    string `json:"song_id,omitempty"`
	Gap       int    `json:"gap"`
	Debut     bool   `json:"debut,omitempty"`
	ShowDate  string `json:"show_date"`
	Venue     string `json:"venue"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
	LastVenue string `json:"last_venue,omitempty"`
}

// Tracker folds enriched shows, keeping the single highest-gap occurrence per
// song. Shows must be observed in chronological order; a later occurrence
// with a smaller gap never overwrites an existing larger one, and a song is
// never removed once seen.
type Tracker struct {
	records map[string]Rarity
}

func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]Rarity)}
}

// Observe folds one show's gap records into the tracker.
func (t *Tracker) Observe(show model.EnrichedShow) {
	for _, song := range show.Songs {
		if song.Gap == nil {
			continue
		}
		g := *song.Gap

		key := match.SongKey(g.SongID, g.Song)

		candidate := Rarity{
			Song:      g.Song,
			SongID:    g.SongID,
			Gap:       g.Gap,
			Debut:     g.Debut,
			ShowDate:  show.Show.Date,
			Venue:     show.Show.Venue,
			City:      show.Show.City,
			State:     show.Show.State,
			LastDate:  g.LastDate,
			LastVenue: g.LastVenue,
		}

		existing, seen := t.records[key]
		if !seen || rarer(candidate, existing) {
			t.records[key] = candidate
		}
	}
}

// rarer reports whether a beats b for the rarest slot. A debut ranks below
// any finite gap; between finite gaps only a strictly greater one wins.
func rarer(a, b Rarity) bool {
	if a.Debut {
		return false
	}
	if b.Debut {
		return true
	}
	return a.Gap > b.Gap
}

// Rarest returns up to n tracked records sorted by descending gap. Debuts are
// excluded unless no finite-gap songs exist at all. Ties break by earlier
// show date, then song name, so output is stable across runs.
func (t *Tracker) Rarest(n int) []Rarity {
	finite := make([]Rarity, 0, len(t.records))
	debuts := make([]Rarity, 0)
	for _, r := range t.records {
		if r.Debut {
			debuts = append(debuts, r)
		} else {
			finite = append(finite, r)
		}
	}

	pool := finite
	if len(pool) == 0 {
		pool = debuts
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Gap != pool[j].Gap {
			return pool[i].Gap > pool[j].Gap
		}
		if pool[i].ShowDate != pool[j].ShowDate {
			return pool[i].ShowDate < pool[j].ShowDate
		}
		return pool[i].Song < pool[j].Song
	})

	if n > 0 && len(pool) > n {
		pool = pool[:n]
	}
	out := make([]Rarity, len(pool))
	copy(out, pool)
	return out
}

// Debuts returns the names of songs whose tour occurrence was a first-ever
// performance, sorted alphabetically.
func (t *Tracker) Debuts() []string {
	var names []string
	for _, r := range t.records {
		if r.Debut {
			names = append(names, r.Song)
		}
	}
	sort.Strings(names)
	return names
}

// Len reports how many distinct songs have been tracked.
func (t *Tracker) Len() int {
	return len(t.records)
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// ISODateLayout is the calendar-day format both sources key shows by.
const ISODateLayout = "2006-01-02"

// Show is one concert date. Venue, city and state always originate from the
// setlist source; the audio source only ever contributes durations.
type Show struct {
	Date       string `json:"date"` // ISO yyyy-mm-dd, unique within a tour
	Venue      string `json:"venue"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	Tour       string `json:"tour,omitempty"`
	ShowNumber int    `json:"show_number,omitempty"` // ordinal within the tour
	TotalShows int    `json:"total_shows,omitempty"`
}

// SetlistEntry is one performed song. Order within a set is authoritative:
// position-based matching against the audio source depends on it.
type SetlistEntry struct {
	Set        string `json:"set"` // normalized set label: "1", "2", "e", ...
	Position   int    `json:"position"`
	Song       string `json:"song"`
	SongID     string `json:"song_id,omitempty"` // stable id when the source has one
	Transition string `json:"transition,omitempty"`
	Footnote   string `json:"footnote,omitempty"`
}

// DurationEntry is one track duration from the audio source. Its set and
// position are independently assigned and advisory only.
type DurationEntry struct {
	Set      string `json:"set"`
	Position int    `json:"position"`
	Song     string `json:"song"`
	Seconds  int    `json:"seconds"`
}

// GapRecord is the shows-since-last-played figure for one (song, show) pair.
// A debut has no meaningful gap value; Debut distinguishes it from gap 0.
type GapRecord struct {
	Song        string `json:"song"`
	SongID      string `json:"song_id,omitempty"`
	Gap         int    `json:"gap"`
	Debut       bool   `json:"debut,omitempty"`
	LastDate    string `json:"last_date,omitempty"` // performance before this one
	LastVenue   string `json:"last_venue,omitempty"`
	TimesPlayed int    `json:"times_played,omitempty"`
}

// Performance is one row of a song's full performance history.
// ShowIndex is the show's ordinal in the act's complete history when the
// source publishes it; 0 means unknown.
type Performance struct {
	Date      string `json:"date"`
	Venue     string `json:"venue"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	ShowIndex int    `json:"show_index,omitempty"`
}

// EnrichedSong pairs a setlist entry with its best-effort duration and gap.
// A nil Duration means "duration unavailable", never a guessed match.
type EnrichedSong struct {
	Entry    SetlistEntry   `json:"entry"`
	Duration *DurationEntry `json:"duration,omitempty"`
	Gap      *GapRecord     `json:"gap,omitempty"`
}

// EnrichedShow is the reconciled union of one show across both sources.
type EnrichedShow struct {
	Show         Show           `json:"show"`
	Songs        []EnrichedSong `json:"songs"`
	HasSetlist   bool           `json:"has_setlist"`
	HasDurations bool           `json:"has_durations"`
	HasGaps      bool           `json:"has_gaps"`
}

// TourControl is the single authoritative record describing where a tour
// stands. Statistics regeneration decisions compare against it.
type TourControl struct {
	Tour               string    `json:"tour"`
	LatestShowDate     string    `json:"latest_show_date"`
	TotalShows         int       `json:"total_shows"`
	ShowsWithDurations int       `json:"shows_with_durations"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// LongestSong is one entry of the longest-songs ranking.
type LongestSong struct {
	Song     string `json:"song"`
	Seconds  int    `json:"seconds"`
	Display  string `json:"display"` // "23:41"
	ShowDate string `json:"show_date"`
	Venue    string `json:"venue"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
}

// RarestSong is one entry of the rarest-songs ranking. LastDate/LastVenue
// describe the performance immediately before the tour occurrence, when the
// historical resolver managed to find it.
type RarestSong struct {
	Song      string `json:"song"`
	Gap       int    `json:"gap"`
	Debut     bool   `json:"debut,omitempty"`
	ShowDate  string `json:"show_date"`
	Venue     string `json:"venue"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
	LastVenue string `json:"last_venue,omitempty"`
}

// MostPlayedSong is one entry of the most-played ranking.
type MostPlayedSong struct {
	Song  string `json:"song"`
	Plays int    `json:"plays"`
}

// TourStatistics is a complete statistics snapshot for one tour. It is
// recomputed from scratch from the full set of enriched shows; between runs
// it is immutable.
type TourStatistics struct {
	Tour                string           `json:"tour"`
	Longest             []LongestSong    `json:"longest"`
	Rarest              []RarestSong     `json:"rarest"`
	MostPlayed          []MostPlayedSong `json:"most_played"`
	Debuts              []string         `json:"debuts,omitempty"`
	LatestShowProcessed string           `json:"latest_show_processed"`
	ShowsWithDurations  int              `json:"shows_with_durations"`
	GeneratedAt         time.Time        `json:"generated_at"`
}

// GridPos is a (week row, weekday column) cell within a month's layout.
type GridPos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SpanDay is one date of a venue run with its calendar grid position.
type SpanDay struct {
	Date string  `json:"date"`
	Grid GridPos `json:"grid"`
}

// VenueRunSpan is a maximal run of consecutive calendar days at one venue.
// Single-night shows are spans of length one.
type VenueRunSpan struct {
	Venue string    `json:"venue"`
	City  string    `json:"city"`
	State string    `json:"state,omitempty"`
	Days  []SpanDay `json:"days"`
}

// ParseDate parses an ISO calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad show date %q: %w", s, err)
	}
	return t, nil
}

// FormatDuration renders seconds as m:ss (125 -> "2:05"). Negative values
// clamp to zero so a bad upstream number can never render as garbage.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// NormalizeSetLabel maps the set labels both sources use onto a shared
// vocabulary so set-grouped matching can line them up.
func NormalizeSetLabel(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.TrimPrefix(l, "set ")
	l = strings.TrimPrefix(l, "set")
	l = strings.TrimSpace(l)
	switch l {
	case "encore", "e":
		return "e"
	case "encore 2", "encore2", "e2":
		return "e2"
	case "soundcheck", "s":
		return "s"
	}
	if l == "" {
		return "1"
	}
	return l
}

package match

import (
	"errors"
	"strings"

	"github.com/gigscope/gigscope/pkg/model"
)

// similarityThreshold is the minimum fuzzy score for a positional match to be
// accepted when the normalized names are not equal or substrings.
const similarityThreshold = 0.8

// ErrDataInconsistency marks a cross-source contract break (for example a
// venue/date mismatch between records that should describe the same show).
var ErrDataInconsistency = errors.New("cross-source data inconsistency")

// Reconcile aligns a show's setlist with its independently-ordered duration
// list and attaches per-song gap records. Setlist order is the source of
// truth; duration positions are validated, never blindly trusted. It never
// fails on mismatched list lengths: an entry that cannot be matched safely is
// left with a nil duration.
//
// The returned record's venue, city and date all come from the show argument
// (the setlist source); duration entries only ever contribute seconds.
func Reconcile(show model.Show, setlist []model.SetlistEntry, durations []model.DurationEntry, gaps []model.GapRecord) model.EnrichedShow {
	enriched := model.EnrichedShow{
		Show:         show,
		Songs:        make([]model.EnrichedSong, 0, len(setlist)),
		HasSetlist:   len(setlist) > 0,
		HasDurations: len(durations) > 0,
		HasGaps:      len(gaps) > 0,
	}

	durationsBySet := make(map[string][]model.DurationEntry)
	for _, d := range durations {
		set := model.NormalizeSetLabel(d.Set)
		durationsBySet[set] = append(durationsBySet[set], d)
	}

	gapsByKey := make(map[string]model.GapRecord, len(gaps))
	for _, g := range gaps {
		gapsByKey[SongKey(g.SongID, g.Song)] = g
	}

	// How many times each normalized name appears in the setlist. Name-only
	// fallback must not guess between duplicate-named songs.
	nameCounts := make(map[string]int, len(setlist))
	for _, e := range setlist {
		nameCounts[Normalize(e.Song)]++
	}

	// Zero-based position of each entry among entries sharing its set label.
	setPositions := make(map[string]int)

	for _, entry := range setlist {
		set := model.NormalizeSetLabel(entry.Set)
		pos := setPositions[set]
		setPositions[set] = pos + 1

		song := model.EnrichedSong{Entry: entry}

		if d, ok := matchDuration(entry, set, pos, durationsBySet, durations, nameCounts); ok {
			song.Duration = &d
		}
		if g, ok := gapsByKey[SongKey(entry.SongID, entry.Song)]; ok {
			song.Gap = &g
		}

		enriched.Songs = append(enriched.Songs, song)
	}

	return enriched
}

// matchDuration implements positional matching with fuzzy-name validation and
// an exact-name fallback across the whole show.
func matchDuration(entry model.SetlistEntry, set string, pos int, bySet map[string][]model.DurationEntry, all []model.DurationEntry, nameCounts map[string]int) (model.DurationEntry, bool) {
	want := Normalize(entry.Song)

	if group := bySet[set]; pos < len(group) {
		candidate := group[pos]
		if namesAgree(want, Normalize(candidate.Song)) {
			return candidate, true
		}
	}

	// The sources disagreed on ordering or set boundaries for this entry.
	// Fall back to an exact normalized-name search across every duration in
	// the show, but never guess between duplicate-named songs on either side.
	if nameCounts[want] > 1 {
		return model.DurationEntry{}, false
	}
	var found *model.DurationEntry
	for i := range all {
		if Normalize(all[i].Song) == want {
			if found != nil {
				return model.DurationEntry{}, false
			}
			found = &all[i]
		}
	}
	if found == nil {
		return model.DurationEntry{}, false
	}
	return *found, true
}

// namesAgree validates a tentative positional match: exact equality, either
// name a substring of the other, or similarity above the threshold.
func namesAgree(a, b string) bool {
	if a == b {
		return true
	}
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return true
	}
	return Similarity(a, b) > similarityThreshold
}

// SongKey identifies a song for cross-record joins: the stable source id
// when it exists, otherwise the normalized name. The namespaces keep an id
// from ever colliding with another song's name.
func SongKey(id, song string) string {
	if id != "" {
		return "id:" + id
	}
	return "name:" + Normalize(song)
}

package songfish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const setlistBody = `{
  "error": false,
  "data": [
    {"showdate": "2025-07-25", "venue": "Madison Square Garden", "city": "New York", "state": "NY",
     "tourname": "Summer 2025", "tour_position": 18, "tour_show_count": 23,
     "set": "1", "position": 1, "song": "Fee", "songid": 121, "trans_mark": ">", "gap": 12, "times_played": 401},
    {"showdate": "2025-07-25", "venue": "Madison Square Garden", "city": "New York", "state": "NY",
     "tourname": "Summer 2025", "tour_position": 18, "tour_show_count": 23,
     "set": "1", "position": 2, "song": "Llama", "songid": 208, "trans_mark": "", "gap": 5},
    {"showdate": "2025-07-25", "venue": "Madison Square Garden", "city": "New York", "state": "NY",
     "tourname": "Summer 2025", "tour_position": 18, "tour_show_count": 23,
     "set": "Encore", "position": 1, "song": "Destiny Unbound", "songid": 97, "trans_mark": "",
     "gap": 82, "last_played": "2021-08-08", "last_venue": "Deer Creek", "footnote": "First since 2021."}
  ]
}`

func TestParseSetlist(t *testing.T) {
	show, entries := parseSetlist(setlistBody)

	if show.Date != "2025-07-25" || show.Venue != "Madison Square Garden" {
		t.Fatalf("show parsed wrong: %+v", show)
	}
	if show.ShowNumber != 18 || show.TotalShows != 23 || show.Tour != "Summer 2025" {
		t.Fatalf("tour position parsed wrong: %+v", show)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Song != "Fee" || entries[0].Set != "1" || entries[0].Position != 1 {
		t.Fatalf("entry 0 wrong: %+v", entries[0])
	}
	if entries[0].Transition != ">" {
		t.Fatalf("transition wrong: %+v", entries[0])
	}
	if entries[2].Set != "e" || entries[2].Position != 1 {
		t.Fatalf("encore entry wrong: %+v", entries[2])
	}
	if entries[2].Footnote != "First since 2021." {
		t.Fatalf("footnote wrong: %+v", entries[2])
	}
	if entries[0].SongID != "121" {
		t.Fatalf("songid wrong: %+v", entries[0])
	}
}

func TestParseGapsAllSongs(t *testing.T) {
	records := parseGaps(setlistBody, nil)
	if len(records) != 3 {
		t.Fatalf("expected 3 gap records, got %d", len(records))
	}
	if records[2].Gap != 82 || records[2].LastDate != "2021-08-08" || records[2].LastVenue != "Deer Creek" {
		t.Fatalf("gap record wrong: %+v", records[2])
	}
	if records[0].TimesPlayed != 401 {
		t.Fatalf("times played wrong: %+v", records[0])
	}
}

func TestParseGapsFiltered(t *testing.T) {
	records := parseGaps(setlistBody, []string{"destiny unbound"})
	if len(records) != 1 || records[0].Song != "Destiny Unbound" {
		t.Fatalf("filtering by normalized name failed: %+v", records)
	}
}

func TestParseTourDates(t *testing.T) {
	body := `{"error": false, "data": [
      {"showdate": "2025-07-25"},
      {"showdate": "2025-07-25"},
      {"showdate": "2025-07-26"},
      {"showdate": "2025-07-27"}
    ]}`
	dates := parseTourDates(body)
	want := []string{"2025-07-25", "2025-07-26", "2025-07-27"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %v", len(want), dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates[%d] = %q, want %q", i, dates[i], want[i])
		}
	}
}

const historyPage = `<html><body>
<table class="song-history">
  <tbody>
    <tr data-shownumber="210">
      <td class="showdate">1991-03-13</td><td class="venue">Mabel's</td>
      <td class="city">Champaign</td><td class="state">IL</td>
    </tr>
    <tr data-shownumber="1740">
      <td class="showdate">2021-08-08</td><td class="venue">Deer Creek</td>
      <td class="city">Noblesville</td><td class="state">IN</td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestParseHistoryDoc(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(historyPage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	history := parseHistoryDoc(doc)
	if len(history) != 2 {
		t.Fatalf("expected 2 performances, got %d", len(history))
	}
	if history[0].Date != "1991-03-13" || history[0].Venue != "Mabel's" || history[0].ShowIndex != 210 {
		t.Fatalf("performance 0 wrong: %+v", history[0])
	}
	if history[1].State != "IN" {
		t.Fatalf("performance 1 wrong: %+v", history[1])
	}
}

// A cancelled context must stop the lookup before it reaches the upstream;
// the resolver's per-call timeout depends on this.
func TestFetchPerformanceHistoryCancelledContext(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(historyPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, "test-key", nil)
	history, err := c.FetchPerformanceHistory(ctx, "Fee")
	if err == nil {
		t.Fatalf("expected an error, got history of %d rows", len(history))
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("cancelled lookup reached the server %d times", n)
	}
}

func TestSongSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Mike's Song", "mikes-song"},
		{"Back on the Train", "back-on-the-train"},
		{"A-Frame", "aframe"},
	}
	for _, c := range cases {
		if got := songSlug(c.in); got != c.want {
			t.Fatalf("songSlug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

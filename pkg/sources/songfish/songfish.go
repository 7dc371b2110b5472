// Package songfish implements the setlist-source client against a
// Songfish-style JSON API, with the per-song history pages scraped from HTML
// because the API does not expose full histories.
package songfish

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/gigscope/gigscope/pkg/match"
	"github.com/gigscope/gigscope/pkg/model"
	"github.com/gigscope/gigscope/pkg/sources"
	"github.com/gigscope/gigscope/pkg/whttp"
)

const DefaultBaseURL = "https://api.songfish.net"

// Client talks to the setlist authority.
type Client struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

// New builds a client. An empty baseURL falls back to the default; client may
// be nil for the shared retrying default.
func New(baseURL, apiKey string, client *retryablehttp.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

func (c *Client) Name() string { return "songfish" }

func (c *Client) get(ctx context.Context, path string) (string, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "GET",
		URL:    c.baseURL + path + sep + "apikey=" + url.QueryEscape(c.apiKey),
	}, c.http)
	if err != nil {
		return "", fmt.Errorf("%w: %v", sources.ErrSourceUnavailable, err)
	}

	switch {
	case res.StatusCode == 404:
		return "", sources.ErrNotFound
	case res.StatusCode == 429:
		return "", sources.ErrRateLimited
	case res.StatusCode != 200:
		if res.HTTPTitle != "" {
			return "", fmt.Errorf("%w: status %d (%s)", sources.ErrSourceUnavailable, res.StatusCode, res.HTTPTitle)
		}
		return "", fmt.Errorf("%w: status %d", sources.ErrSourceUnavailable, res.StatusCode)
	}

	if gjson.Get(res.BodyString, "error").Bool() {
		msg := gjson.Get(res.BodyString, "error_message").Str
		if strings.Contains(strings.ToLower(msg), "not found") {
			return "", sources.ErrNotFound
		}
		return "", fmt.Errorf("%w: %s", sources.ErrSourceUnavailable, msg)
	}

	return res.BodyString, nil
}

// ListTourDates returns the ISO dates of every show in the named tour.
func (c *Client) ListTourDates(ctx context.Context, tour string) ([]string, error) {
	body, err := c.get(ctx, "/v5/shows/tourname/"+url.PathEscape(tour)+".json")
	if err != nil {
		return nil, err
	}
	return parseTourDates(body), nil
}

func parseTourDates(body string) []string {
	var dates []string
	seen := make(map[string]bool)
	for _, row := range gjson.Get(body, "data").Array() {
		date := row.Get("showdate").Str
		if date == "" || seen[date] {
			continue
		}
		seen[date] = true
		dates = append(dates, date)
	}
	return dates
}

// FetchSetlist returns the show record and ordered setlist for a date. The
// venue, city and state on the returned Show all come from this one source.
func (c *Client) FetchSetlist(ctx context.Context, date string) (model.Show, []model.SetlistEntry, error) {
	body, err := c.get(ctx, "/v5/setlists/showdate/"+url.PathEscape(date)+".json")
	if err != nil {
		return model.Show{}, nil, err
	}

	show, entries := parseSetlist(body)
	if len(entries) == 0 {
		return model.Show{}, nil, fmt.Errorf("%w: no setlist rows for %s", sources.ErrNotFound, date)
	}
	return show, entries, nil
}

func parseSetlist(body string) (model.Show, []model.SetlistEntry) {
	var show model.Show
	var entries []model.SetlistEntry

	setPositions := make(map[string]int)

	for _, row := range gjson.Get(body, "data").Array() {
		if show.Date == "" {
			show = model.Show{
				Date:       row.Get("showdate").Str,
				Venue:      row.Get("venue").Str,
				City:       row.Get("city").Str,
				State:      row.Get("state").Str,
				Tour:       row.Get("tourname").Str,
				ShowNumber: int(row.Get("tour_position").Int()),
				TotalShows: int(row.Get("tour_show_count").Int()),
			}
		}

		set := model.NormalizeSetLabel(row.Get("set").Str)
		setPositions[set]++

		entries = append(entries, model.SetlistEntry{
			Set:        set,
			Position:   setPositions[set],
			Song:       row.Get("song").Str,
			SongID:     row.Get("songid").String(),
			Transition: strings.TrimSpace(row.Get("trans_mark").Str),
			Footnote:   row.Get("footnote").Str,
		})
	}

	return show, entries
}

// FetchGaps returns gap records at the given date, filtered to the requested
// songs. An empty songs slice means all songs in the show. The API publishes
// gaps on the same setlist rows, so this re-reads the setlist payload.
func (c *Client) FetchGaps(ctx context.Context, songs []string, date string) ([]model.GapRecord, error) {
	body, err := c.get(ctx, "/v5/setlists/showdate/"+url.PathEscape(date)+".json")
	if err != nil {
		return nil, err
	}
	return parseGaps(body, songs), nil
}

func parseGaps(body string, songs []string) []model.GapRecord {
	wanted := make(map[string]bool, len(songs))
	for _, s := range songs {
		wanted[match.Normalize(s)] = true
	}

	var records []model.GapRecord
	for _, row := range gjson.Get(body, "data").Array() {
		song := row.Get("song").Str
		if len(wanted) > 0 && !wanted[match.Normalize(song)] {
			continue
		}
		records = append(records, model.GapRecord{
			Song:        song,
			SongID:      row.Get("songid").String(),
			Gap:         int(row.Get("gap").Int()),
			Debut:       row.Get("isdebut").Bool(),
			LastDate:    row.Get("last_played").Str,
			LastVenue:   row.Get("last_venue").Str,
			TimesPlayed: int(row.Get("times_played").Int()),
		})
	}
	return records
}

// FetchPerformanceHistory scrapes the song's history page. The API caps its
// setlist queries per song, so the HTML table is the complete record.
func (c *Client) FetchPerformanceHistory(ctx context.Context, song string) ([]model.Performance, error) {
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "GET",
		URL:    c.baseURL + "/song/" + songSlug(song),
	}, c.http)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrSourceUnavailable, err)
	}
	if res.StatusCode == 404 {
		return nil, fmt.Errorf("%w: song %q", sources.ErrNotFound, song)
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("%w: status %d", sources.ErrSourceUnavailable, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.BodyString))
	if err != nil {
		return nil, fmt.Errorf("%w: bad history page for %q: %v", sources.ErrSourceUnavailable, song, err)
	}

	history := parseHistoryDoc(doc)
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: empty history for %q", sources.ErrNotFound, song)
	}
	return history, nil
}

func parseHistoryDoc(doc *goquery.Document) []model.Performance {
	var history []model.Performance
	doc.Find("table.song-history tbody tr").Each(func(i int, row *goquery.Selection) {
		p := model.Performance{
			Date:  strings.TrimSpace(row.Find("td.showdate").Text()),
			Venue: strings.TrimSpace(row.Find("td.venue").Text()),
			City:  strings.TrimSpace(row.Find("td.city").Text()),
			State: strings.TrimSpace(row.Find("td.state").Text()),
		}
		if v, ok := row.Attr("data-shownumber"); ok {
			fmt.Sscanf(v, "%d", &p.ShowIndex)
		}
		if p.Date != "" {
			history = append(history, p)
		}
	})
	return history
}

// songSlug mirrors how the site builds song page URLs.
func songSlug(song string) string {
	return strings.ReplaceAll(match.Normalize(song), " ", "-")
}

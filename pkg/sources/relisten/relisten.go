// Package relisten implements the audio-source client against a
// Relisten-style archive API. It is the duration authority and nothing else:
// venue or city strings in its payloads are never propagated to show records.
package relisten

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/gigscope/gigscope/pkg/model"
	"github.com/gigscope/gigscope/pkg/sources"
	"github.com/gigscope/gigscope/pkg/whttp"
)

const DefaultBaseURL = "https://api.relisten.net"

// Client talks to the audio archive for one artist.
type Client struct {
	baseURL    string
	artistSlug string
	http       *retryablehttp.Client
}

func New(baseURL, artistSlug string, client *retryablehttp.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		artistSlug: artistSlug,
		http:       client,
	}
}

func (c *Client) Name() string { return "relisten" }

// FetchDurations returns the published track durations for a show date.
// A date with no published audio returns an empty slice and no error; that
// is an expected state for recent shows, not a failure.
func (c *Client) FetchDurations(ctx context.Context, date string) ([]model.DurationEntry, error) {
	u := fmt.Sprintf("%s/api/v2/artists/%s/shows/%s", c.baseURL, url.PathEscape(c.artistSlug), url.PathEscape(date))
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{Method: "GET", URL: u}, c.http)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrSourceUnavailable, err)
	}

	switch {
	case res.StatusCode == 404:
		// Audio not yet published for this date.
		return nil, nil
	case res.StatusCode == 429:
		return nil, sources.ErrRateLimited
	case res.StatusCode != 200:
		return nil, fmt.Errorf("%w: status %d", sources.ErrSourceUnavailable, res.StatusCode)
	}

	return parseDurations(res.BodyString), nil
}

func parseDurations(body string) []model.DurationEntry {
	var entries []model.DurationEntry
	setPositions := make(map[string]int)

	for _, setRow := range gjson.Get(body, "sets").Array() {
		set := model.NormalizeSetLabel(setRow.Get("name").Str)
		for _, track := range setRow.Get("tracks").Array() {
			setPositions[set]++

			// The archive reports milliseconds; everything downstream
			// speaks whole seconds.
			seconds := int(track.Get("duration_ms").Int() / 1000)
			if seconds == 0 {
				seconds = int(track.Get("duration").Float())
			}

			entries = append(entries, model.DurationEntry{
				Set:      set,
				Position: setPositions[set],
				Song:     track.Get("title").Str,
				Seconds:  seconds,
			})
		}
	}
	return entries
}

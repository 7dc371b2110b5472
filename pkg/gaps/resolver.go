package gaps

import (
	"context"
	"time"

	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/cache"
	"github.com/gigscope/gigscope/pkg/model"
)

// HistorySource is the capability the resolver needs from the setlist
// authority: a song's full chronological performance history.
type HistorySource interface {
	FetchPerformanceHistory(ctx context.Context, song string) ([]model.Performance, error)
}

const (
	defaultLookupDelay   = 1 * time.Second
	defaultLookupTimeout = 15 * time.Second
	historyCacheTTL      = 30 * time.Minute
)

// Logger is the small surface the resolver logs skipped lookups through.
// logrus satisfies it; so does any other leveled logger.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// Resolver enriches top rarity candidates with the exact prior performance.
// Lookups run sequentially with an inter-call delay; one failed lookup skips
// that song and never poisons the rest of the batch.
type Resolver struct {
	src     HistorySource
	cache   *cache.Cache
	log     Logger
	delay   time.Duration
	timeout time.Duration
}

// NewResolver builds a resolver. The cache is optional.
func NewResolver(src HistorySource, c *cache.Cache) *Resolver {
	return &Resolver{
		src:     src,
		cache:   c,
		log:     utils.Log,
		delay:   defaultLookupDelay,
		timeout: defaultLookupTimeout,
	}
}

// WithDelay overrides the inter-lookup delay. Mostly for tests.
func (r *Resolver) WithDelay(d time.Duration) *Resolver {
	r.delay = d
	return r
}

// WithLogger replaces the default logger.
func (r *Resolver) WithLogger(l Logger) *Resolver {
	if l != nil {
		r.log = l
	}
	return r
}

// Enrich fills LastDate/LastVenue for each candidate by locating, in the
// song's full history, the performance immediately before its tour
// occurrence. When the history rows carry absolute show indexes the gap is
// recomputed as the count of intervening shows, floored at zero. A song with
// no prior occurrence is marked as a debut.
func (r *Resolver) Enrich(ctx context.Context, candidates []Rarity) []Rarity {
	out := make([]Rarity, len(candidates))
	copy(out, candidates)

	for i := range out {
		if i > 0 && r.delay > 0 {
			select {
			case <-ctx.Done():
				r.log.Warnf("Historical gap resolution cancelled: %v", ctx.Err())
				return out
			case <-time.After(r.delay):
			}
		}

		history, err := r.history(ctx, out[i].Song)
		if err != nil {
			r.log.Warnf("Skipping gap enrichment for %q: %v", out[i].Song, err)
			continue
		}

		prior, curr, found := priorPerformance(history, out[i].ShowDate)
		if !found {
			continue
		}
		if prior == nil {
			out[i].Debut = true
			out[i].Gap = 0
			out[i].LastDate = ""
			out[i].LastVenue = ""
			continue
		}

		out[i].LastDate = prior.Date
		out[i].LastVenue = prior.Venue
		if curr.ShowIndex > 0 && prior.ShowIndex > 0 {
			gap := curr.ShowIndex - prior.ShowIndex - 1
			if gap < 0 {
				gap = 0
			}
			out[i].Gap = gap
		}
	}
	return out
}

func (r *Resolver) history(ctx context.Context, song string) ([]model.Performance, error) {
	key := "history:" + song
	if v, ok := r.cache.Get(key); ok {
		if h, ok := v.([]model.Performance); ok {
			return h, nil
		}
	}

	lctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	history, err := r.src.FetchPerformanceHistory(lctx, song)
	if err != nil {
		return nil, err
	}
	r.cache.SetTTL(key, history, historyCacheTTL)
	return history, nil
}

// priorPerformance finds the occurrence matching showDate and the latest
// occurrence strictly before it. found is false when showDate is not in the
// history at all; a nil prior with found true means a debut.
func priorPerformance(history []model.Performance, showDate string) (prior, curr *model.Performance, found bool) {
	for i := range history {
		if history[i].Date == showDate {
			curr = &history[i]
			break
		}
	}
	if curr == nil {
		return nil, nil, false
	}

	for i := range history {
		p := &history[i]
		if p.Date >= curr.Date {
			continue
		}
		if prior == nil || p.Date > prior.Date {
			prior = p
		}
	}
	return prior, curr, true
}

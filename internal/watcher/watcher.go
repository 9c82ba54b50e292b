// Package watcher owns the async lifecycle of one site's stored
// diagnostics: initial fetch, optional polling, manual refresh, rescore
// with a delayed follow-up fetch, and derived indicator views.
package watcher

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lighthouse-hq/lighthouse/internal/api"
	"github.com/lighthouse-hq/lighthouse/internal/report"
	"github.com/lighthouse-hq/lighthouse/internal/result"
)

// Client is the slice of the diagnostics API the watcher needs.
type Client interface {
	GetSiteScore(ctx context.Context, siteID string) result.Result[*report.Report, *api.APIError]
	GetPageScores(ctx context.Context, siteID string) result.Result[[]report.PageScore, *api.APIError]
	TriggerRescore(ctx context.Context, siteID string, force bool) result.Result[*api.RescoreResponse, *api.APIError]
}

// Clock abstracts time so rescore scheduling is testable.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// rescoreFetchBuffer gives the backend slack beyond its declared ETA before
// the follow-up fetch.
const rescoreFetchBuffer = 5 * time.Second

// Options configure one SiteWatcher.
type Options struct {
	// PollInterval re-runs the fetch on a cadence when positive.
	PollInterval time.Duration
	// FetchPageScores also loads per-page summaries on every fetch cycle.
	FetchPageScores bool
	// Filters narrow the derived FilteredIndicators view.
	FilterCategory report.ViewCategory
	FilterStatus   report.Status
	// Notify surfaces transient user-facing messages. Optional.
	Notify func(message string)
	Clock  Clock
	Logger *log.Logger
}

// Snapshot is a consistent point-in-time view of the watcher's state.
type Snapshot struct {
	Report               *report.Report
	PageScores           []report.PageScore
	IsLoading            bool
	IsRescoring          bool
	Error                string
	AllIndicators        []report.IndicatorView
	FilteredIndicators   []report.IndicatorView
	IndicatorsByCategory map[report.ViewCategory][]report.IndicatorView
}

// SiteWatcher tracks a single site's diagnostics. An empty site ID yields a
// permanently idle watcher that never touches the network.
type SiteWatcher struct {
	client Client
	siteID string
	opts   Options

	mu          sync.Mutex
	report      *report.Report
	views       report.Views
	pageScores  []report.PageScore
	isLoading   bool
	isRescoring bool
	errMsg      string
	fetchSeq    uint64
	rescorePend bool
}

func New(client Client, siteID string, opts Options) *SiteWatcher {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &SiteWatcher{client: client, siteID: siteID, opts: opts}
}

// Start runs the initial fetch and, when configured, the polling loop.
// Both stop when ctx is canceled.
func (w *SiteWatcher) Start(ctx context.Context) {
	if w.siteID == "" {
		return
	}
	go w.Refresh(ctx)
	if w.opts.PollInterval > 0 {
		go w.poll(ctx)
	}
}

func (w *SiteWatcher) poll(ctx context.Context) {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Refresh(ctx)
		}
	}
}

// Refresh performs one full fetch cycle. Overlapping refreshes are
// tolerated; a sequence number keeps a slow older response from
// overwriting a newer one.
func (w *SiteWatcher) Refresh(ctx context.Context) {
	if w.siteID == "" {
		return
	}

	w.mu.Lock()
	w.fetchSeq++
	seq := w.fetchSeq
	w.isLoading = true
	w.mu.Unlock()

	var (
		scoreRes result.Result[*report.Report, *api.APIError]
		pagesRes result.Result[[]report.PageScore, *api.APIError]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scoreRes = w.client.GetSiteScore(gctx, w.siteID)
		return nil
	})
	if w.opts.FetchPageScores {
		g.Go(func() error {
			pagesRes = w.client.GetPageScores(gctx, w.siteID)
			return nil
		})
	}
	_ = g.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.fetchSeq {
		return
	}
	w.isLoading = false

	result.Match(scoreRes,
		func(rep *report.Report) struct{} {
			w.report = rep
			w.views = report.DeriveViews(rep)
			w.errMsg = ""
			return struct{}{}
		},
		func(apiErr *api.APIError) struct{} {
			w.errMsg = apiErr.Message
			w.notify("Failed to load diagnostics: " + apiErr.Message)
			return struct{}{}
		},
	)

	if w.opts.FetchPageScores {
		// Page scores are additive; their failure never touches the main
		// error field.
		result.Match(pagesRes,
			func(pages []report.PageScore) struct{} {
				w.pageScores = pages
				return struct{}{}
			},
			func(apiErr *api.APIError) struct{} {
				w.opts.Logger.Printf("watcher: page scores for %s: %v", w.siteID, apiErr)
				return struct{}{}
			},
		)
	}
}

// TriggerRescore asks the backend to re-run the scan. On success with a
// declared ETA, exactly one follow-up fetch is scheduled at ETA plus a
// fixed buffer. The last-known report stays untouched on failure.
func (w *SiteWatcher) TriggerRescore(ctx context.Context, force bool) {
	if w.siteID == "" {
		return
	}

	w.mu.Lock()
	w.isRescoring = true
	w.mu.Unlock()

	res := w.client.TriggerRescore(ctx, w.siteID, force)

	w.mu.Lock()
	w.isRescoring = false
	w.mu.Unlock()

	result.Match(res,
		func(resp *api.RescoreResponse) struct{} {
			w.notify(resp.Message)
			if resp.EstimatedCompletionTime > 0 {
				w.scheduleRefetch(ctx, time.Duration(resp.EstimatedCompletionTime)*time.Second+rescoreFetchBuffer)
			}
			return struct{}{}
		},
		func(apiErr *api.APIError) struct{} {
			w.notify("Rescore failed: " + apiErr.Message)
			return struct{}{}
		},
	)
}

func (w *SiteWatcher) scheduleRefetch(ctx context.Context, delay time.Duration) {
	w.mu.Lock()
	if w.rescorePend {
		w.mu.Unlock()
		return
	}
	w.rescorePend = true
	w.mu.Unlock()

	go func() {
		defer func() {
			w.mu.Lock()
			w.rescorePend = false
			w.mu.Unlock()
		}()
		select {
		case <-ctx.Done():
		case <-w.opts.Clock.After(delay):
			w.Refresh(ctx)
		}
	}()
}

// Snapshot returns the current state plus derived views. Views are computed
// when the report lands, so they can never be stale relative to it.
func (w *SiteWatcher) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	filter := report.Filter{Category: w.opts.FilterCategory, Status: w.opts.FilterStatus}
	return Snapshot{
		Report:               w.report,
		PageScores:           w.pageScores,
		IsLoading:            w.isLoading,
		IsRescoring:          w.isRescoring,
		Error:                w.errMsg,
		AllIndicators:        w.views.All,
		FilteredIndicators:   report.ApplyFilter(w.views.All, filter),
		IndicatorsByCategory: w.views.ByCategory,
	}
}

// CategoryStats counts verdicts per presentation group on demand.
func (w *SiteWatcher) CategoryStats() map[report.ViewCategory]report.CategoryStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return report.Stats(w.views.ByCategory)
}

func (w *SiteWatcher) notify(message string) {
	if w.opts.Notify != nil && message != "" {
		w.opts.Notify(message)
	}
}

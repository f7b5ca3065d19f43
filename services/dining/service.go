// Package dining is the acquisition controller for the weekly dining
// menu: it drives the browsing session through the extraction routine,
// parses the result into the typed model, and keeps the single
// in-memory dataset plus its on-disk cache.
package dining

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"dineon-backend/lib/menu"
	"dineon-backend/lib/telemetry"
	"dineon-backend/services/dining/browser"
	"dineon-backend/services/dining/scraper"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/dining")

type Config struct {
	SourceURL string `json:"source_url"`
	CachePath string `json:"cache_path"`
	// how long to wait for the page to finish loading before giving up
	LoadTimeoutSeconds int `json:"load_timeout_seconds"`

	// settle overrides, used by tests; zero means the page defaults
	DateSettle  time.Duration `json:"-"`
	VenueSettle time.Duration `json:"-"`
}

const (
	DefaultSourceURL = "https://hospitality.usc.edu/dining-hall-menus/"

	defaultLoadTimeout = 2 * time.Minute
	loadPollInterval   = 100 * time.Millisecond
)

// Service owns the in-memory weekly dataset. the dataset is replaced
// wholesale after a successful fetch, so readers always observe either
// the entirely-old or entirely-new value.
type Service struct {
	cfg     Config
	session browser.Session
	probe   *resty.Client
	cache   Cache

	// advisory loading flag doubles as the single-flight guard
	loading atomic.Bool

	mu       sync.RWMutex
	week     menu.Week
	haveWeek bool

	subMu sync.Mutex
	subs  []chan struct{}
}

// NewService builds the service and seeds its in-memory dataset from
// the cache when a valid snapshot exists.
func NewService(ctx context.Context, cfg Config, session browser.Session) *Service {
	if cfg.SourceURL == "" {
		cfg.SourceURL = DefaultSourceURL
	}
	if cfg.LoadTimeoutSeconds <= 0 {
		cfg.LoadTimeoutSeconds = int(defaultLoadTimeout.Seconds())
	}

	probe := resty.New()
	probe.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	probe.SetTimeout(time.Second * 30)
	probe.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(probe.GetClient().Transport)
	telemetry.InstrumentResty(probe, "services/dining/http")

	s := &Service{
		cfg:     cfg,
		session: session,
		probe:   probe,
		cache:   NewCache(cfg.CachePath),
	}

	week, ok := s.cache.Load(ctx)
	if ok {
		s.week = week
		s.haveWeek = true
	}

	return s
}

// Week returns the current dataset. ok is false until a fetch or a
// cache load has produced one.
func (s *Service) Week() (menu.Week, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.week, s.haveWeek
}

// Loading reports whether a fetch is in flight.
func (s *Service) Loading() bool {
	return s.loading.Load()
}

// Subscribe returns a channel that receives a signal every time the
// dataset is replaced. notifications are dropped, not queued, when the
// subscriber is not keeping up.
func (s *Service) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Service) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// FetchMenu acquires a fresh weekly dataset. when forceRefresh is false
// and the current dataset still covers today, the call is a no-op.
// only one fetch runs at a time; calls arriving while one is in flight
// coalesce into an immediate no-op. a failed fetch leaves the previous
// dataset untouched and is never retried automatically.
func (s *Service) FetchMenu(ctx context.Context, forceRefresh bool) error {
	ctx, span := tracer.Start(ctx, "FetchMenu")
	defer span.End()

	if !s.loading.CompareAndSwap(false, true) {
		slog.WarnContext(ctx, "fetch already in flight, coalescing")
		return nil
	}
	defer s.loading.Store(false)

	if !forceRefresh {
		week, ok := s.Week()
		if ok && s.cache.IsValid(week) {
			slog.DebugContext(ctx, "menu still fresh, skipping fetch")
			return nil
		}
	}

	err := s.acquire(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		slog.ErrorContext(ctx, "menu fetch failed", "err", err)
		return err
	}
	return nil
}

func (s *Service) acquire(ctx context.Context) error {
	slog.InfoContext(ctx, "fetching menu", "url", s.cfg.SourceURL)

	// fail fast on an unreachable origin before paying for a browser
	// round trip
	res, err := s.probe.R().SetContext(ctx).Get(s.cfg.SourceURL)
	if err != nil {
		return &NavigationError{URL: s.cfg.SourceURL, Err: err}
	}
	if res.IsError() {
		return &NavigationError{
			URL: s.cfg.SourceURL,
			Err: fmt.Errorf("origin answered %s", res.Status()),
		}
	}

	err = s.session.Navigate(ctx, s.cfg.SourceURL)
	if err != nil {
		return &NavigationError{URL: s.cfg.SourceURL, Err: err}
	}
	err = s.waitForLoad(ctx)
	if err != nil {
		return &NavigationError{URL: s.cfg.SourceURL, Err: err}
	}

	raw, err := scraper.New(s.session, scraper.Options{
		DateSettle:  s.cfg.DateSettle,
		VenueSettle: s.cfg.VenueSettle,
	}).ScrapeWeek(ctx)
	if err != nil {
		return &ScriptExecutionError{Err: err}
	}

	week, err := menu.Parse(raw)
	if err != nil {
		return err
	}

	// replacement is strictly after a successful parse, persistence
	// strictly after replacement
	s.mu.Lock()
	s.week = week
	s.haveWeek = true
	s.mu.Unlock()
	s.notify()

	s.cache.Save(ctx, week)

	slog.InfoContext(ctx, "menu fetched", "dates", week.AvailableDates())
	return nil
}

// waitForLoad polls the session's load flag at a fixed interval until
// the page settles or the timeout elapses.
func (s *Service) waitForLoad(ctx context.Context) error {
	deadline := time.Now().Add(time.Duration(s.cfg.LoadTimeoutSeconds) * time.Second)
	ticker := time.NewTicker(loadPollInterval)
	defer ticker.Stop()

	for {
		loading, err := s.session.Loading(ctx)
		if err != nil {
			return err
		}
		if !loading {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("page did not finish loading within %ds", s.cfg.LoadTimeoutSeconds)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ClearCache drops the on-disk snapshot. the in-memory dataset is kept,
// consistent with the cache being a startup acceleration only.
func (s *Service) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx)
}

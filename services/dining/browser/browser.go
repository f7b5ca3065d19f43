// Package browser is the embedded browsing session boundary. the menu
// page only has content after client-side rendering, so acquisition has
// to go through a real browser engine rather than plain HTTP.
package browser

import (
	"context"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Session is a single browsing session the dining service drives.
// implementations are not safe for concurrent use, matching the single
// in-flight fetch model.
type Session interface {
	// Navigate points the session at a url and returns once navigation
	// has been committed, not once the page has finished loading.
	Navigate(ctx context.Context, url string) error
	// Loading reports whether the page is still loading.
	Loading(ctx context.Context) (bool, error)
	// Evaluate runs a script in the page context and decodes its result
	// into out. promises are awaited.
	Evaluate(ctx context.Context, expr string, out any) error
	// HTML returns the serialized rendered document.
	HTML(ctx context.Context) (string, error)
	Close() error
}

// ChromeSession drives a headless chrome instance over the devtools
// protocol.
type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

var _ Session = (*ChromeSession)(nil)

// NewChromeSession launches a headless chrome and returns a session
// bound to a fresh tab. Close releases the browser.
func NewChromeSession(ctx context.Context) (*ChromeSession, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(
		ctx,
		chromedp.DefaultExecAllocatorOptions[:]...,
	)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// start the browser eagerly so launch failures surface here
	// instead of on the first action
	err := chromedp.Run(browserCtx)
	if err != nil {
		cancel()
		allocCancel()
		return nil, err
	}

	return &ChromeSession{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}, nil
}

// run executes actions on the session's chromedp context, carrying over
// the caller's deadline when one is set.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *ChromeSession) Loading(ctx context.Context) (bool, error) {
	var state string
	err := s.run(ctx, chromedp.Evaluate(`document.readyState`, &state))
	if err != nil {
		return false, err
	}
	return state != "complete", nil
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func (s *ChromeSession) Evaluate(ctx context.Context, expr string, out any) error {
	return s.run(ctx, chromedp.Evaluate(expr, out, awaitPromise))
}

func (s *ChromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.OuterHTML("html", &html))
	if err != nil {
		return "", err
	}
	return html, nil
}

func (s *ChromeSession) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}

// Package browser owns the headless rendering capability. A single browser
// process is shared for the whole application lifetime: it is started lazily
// on first use, every render opens and closes its own ephemeral tab against
// it, and the process is torn down exactly once at shutdown.
//
// The browser is an explicitly injected resource (constructed in cmd/server
// and passed to the page loader), not package-level state.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by Render after Release has been called.
var ErrClosed = errors.New("browser: already released")

// Browser wraps a shared headless Chrome instance. The zero value is not
// usable; construct with New.
type Browser struct {
	execPath      string
	renderTimeout time.Duration

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
	closed      bool
}

// New returns an unstarted Browser. execPath optionally pins the Chrome
// executable; when empty, chromedp's default lookup applies. renderTimeout
// bounds each individual page render.
func New(execPath string, renderTimeout time.Duration) *Browser {
	return &Browser{execPath: execPath, renderTimeout: renderTimeout}
}

// Acquire starts the shared browser process if it is not running yet.
// It is safe to call concurrently; only the first call launches anything.
func (b *Browser) Acquire(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acquireLocked(ctx)
}

func (b *Browser) acquireLocked(ctx context.Context) error {
	if b.closed {
		return ErrClosed
	}
	if b.browserCtx != nil {
		return nil
	}

	log.Info().Str("exec_path", b.execPath).Msg("launching headless browser")

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.browserStop = chromedp.NewContext(b.allocCtx)

	// Run a no-op so the process starts now and startup failures surface
	// here instead of inside the first render.
	if err := chromedp.Run(b.browserCtx); err != nil {
		b.teardownLocked()
		return fmt.Errorf("start browser: %w", err)
	}
	return nil
}

// Render navigates an ephemeral tab to url, waits for the document body and
// returns the fully rendered outer HTML. The shared browser is started on
// first use.
func (b *Browser) Render(ctx context.Context, url string) (string, error) {
	b.mu.Lock()
	if err := b.acquireLocked(ctx); err != nil {
		b.mu.Unlock()
		return "", err
	}
	parent := b.browserCtx
	b.mu.Unlock()

	tabCtx, closeTab := chromedp.NewContext(parent)
	defer closeTab()
	runCtx, cancel := context.WithTimeout(tabCtx, b.renderTimeout)
	defer cancel()

	start := time.Now()
	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}

	log.Debug().
		Str("url", url).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(html)).
		Msg("page rendered")
	return html, nil
}

// Release closes the shared browser process. It is idempotent and must be
// called once at process shutdown.
func (b *Browser) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.browserCtx != nil {
		log.Info().Msg("closing headless browser")
	}
	b.teardownLocked()
}

func (b *Browser) teardownLocked() {
	if b.browserStop != nil {
		b.browserStop()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.browserCtx = nil
	b.browserStop = nil
	b.allocCtx = nil
	b.allocCancel = nil
}

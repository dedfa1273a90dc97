// Package browser renders JavaScript-heavy pages with headless Chrome.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
)

// Config controls the headless browser
type Config struct {
	UserAgent   string
	Headless    bool
	PageTimeout time.Duration
}

// Renderer implements PageRenderer with a fresh chromedp browser per call
type Renderer struct {
	config Config
	logger arbor.ILogger
}

// NewRenderer creates a chromedp-backed renderer
func NewRenderer(config Config, logger arbor.ILogger) interfaces.PageRenderer {
	if config.PageTimeout <= 0 {
		config.PageTimeout = 60 * time.Second
	}
	return &Renderer{config: config, logger: logger}
}

func (r *Renderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{},
		chromedp.DefaultExecAllocatorOptions[:]...,
	)
	opts = append(opts,
		chromedp.Flag("headless", r.config.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	if r.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.config.UserAgent))
	}
	return opts
}

// Render navigates to url, waits for the body plus wait, and returns the
// document's outer HTML
func (r *Renderer) Render(ctx context.Context, url string, wait time.Duration) (string, error) {
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx,
		chromedp.WithLogf(func(s string, i ...interface{}) {
			r.logger.Debug().Msg(fmt.Sprintf(s, i...))
		}),
	)
	defer browserCancel()

	timeoutCtx, cancel := context.WithTimeout(browserCtx, r.config.PageTimeout+wait)
	defer cancel()

	r.logger.Debug().Str("url", url).Dur("wait", wait).Msg("Rendering page")

	var html string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(wait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}

	return html, nil
}

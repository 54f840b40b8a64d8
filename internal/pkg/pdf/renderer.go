// Package pdf renders HTML documents to PDF with a headless Chrome instance.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

// PaperSize is a page size in inches
type PaperSize struct {
	WidthIn  float64
	HeightIn float64
}

// Page sizes used by the generated documents
var (
	PaperA4     = PaperSize{WidthIn: 8.27, HeightIn: 11.69}
	PaperIDCard = PaperSize{WidthIn: 3.370, HeightIn: 2.125}
)

// Renderer turns a full HTML document into PDF bytes
type Renderer interface {
	Render(ctx context.Context, html string, size PaperSize) ([]byte, error)
}

// ErrRendererClosed is returned after Close
var ErrRendererClosed = errors.New("pdf renderer is closed")

// Options configures the Chrome process
type Options struct {
	ExecPath string
	Timeout  time.Duration
}

// ChromeRenderer keeps one browser alive and opens a tab per render
type ChromeRenderer struct {
	opts Options

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closed        bool
	launch        launcher
}

// NewChromeRenderer creates a renderer. Chrome is started on first use.
func NewChromeRenderer(opts Options) *ChromeRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &ChromeRenderer{opts: opts, launch: launchChrome}
}

// launcher starts a browser and returns its context plus the cancel funcs for
// the browser and its allocator
type launcher func(opts Options) (context.Context, context.CancelFunc, context.CancelFunc, error)

func launchChrome(opts Options) (context.Context, context.CancelFunc, context.CancelFunc, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, nil, nil, fmt.Errorf("failed to start chrome: %w", err)
	}
	return browserCtx, browserCancel, allocCancel, nil
}

// browser returns the live browser context, relaunching Chrome when the
// previous process exited
func (r *ChromeRenderer) browser() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRendererClosed
	}
	if r.browserCtx != nil {
		if r.browserCtx.Err() == nil {
			return r.browserCtx, nil
		}
		logger.Warn().Err(r.browserCtx.Err()).Msg("Headless chrome is gone, relaunching")
		r.shutdown()
	}

	browserCtx, browserCancel, allocCancel, err := r.launch(r.opts)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("execPath", r.opts.ExecPath).Msg("Headless chrome started")
	r.allocCancel = allocCancel
	r.browserCtx, r.browserCancel = browserCtx, browserCancel
	return browserCtx, nil
}

// shutdown cancels the current browser; callers hold mu
func (r *ChromeRenderer) shutdown() {
	if r.browserCancel != nil {
		r.browserCancel()
		r.allocCancel()
	}
	r.browserCtx, r.browserCancel, r.allocCancel = nil, nil, nil
}

const waitForImages = `Promise.all(Array.from(document.images).map(function (img) {
	if (img.complete) { return true; }
	return new Promise(function (resolve) { img.onload = img.onerror = function () { resolve(true); }; });
})).then(function () { return true; })`

// Render loads html into a fresh tab, waits for images and prints it
func (r *ChromeRenderer) Render(ctx context.Context, html string, size PaperSize) ([]byte, error) {
	browserCtx, err := r.browser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.opts.Timeout)
	defer cancelTimeout()

	var pdf []byte
	var loaded bool
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(waitForImages, &loaded, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(size.WidthIn).
				WithPaperHeight(size.HeightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf, nil
}

// Close shuts the browser down
func (r *ChromeRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.shutdown()
}

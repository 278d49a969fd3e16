package paginate

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/dalemusser/chapterhub/internal/app/system/metrics"
)

// ChromeConfig configures the browser pool.
type ChromeConfig struct {
	ExecPath string        // empty uses the chromedp default lookup
	PoolSize int           // concurrent browser instances (default 2)
	Timeout  time.Duration // hard limit per Paginate call (default 30s)
	Metrics  *metrics.Pipeline
}

// instance is one launched browser process.
type instance struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (i *instance) close() { i.cancel() }

// Chrome is a Paginator backed by a pool of headless Chrome processes.
// Instances launch lazily, are reused, and are discarded after any failure.
type Chrome struct {
	cfg ChromeConfig
	log *zap.Logger
	sem *semaphore.Weighted

	mu     sync.Mutex
	idle   []*instance
	closed bool
}

// NewChrome creates the pool. No browser is started until first use.
func NewChrome(cfg ChromeConfig, log *zap.Logger) *Chrome {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Chrome{cfg: cfg, log: log, sem: semaphore.NewWeighted(int64(cfg.PoolSize))}
}

func (c *Chrome) launch() (*instance, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if c.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.cfg.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	// Run with no actions starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	return &instance{ctx: browserCtx, cancel: func() { cancelBrowser(); cancelAlloc() }}, nil
}

func (c *Chrome) acquire(ctx context.Context) (*instance, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.sem.Release(1)
		return nil, ErrClosed
	}
	if n := len(c.idle); n > 0 {
		inst := c.idle[n-1]
		c.idle = c.idle[:n-1]
		c.mu.Unlock()
		c.cfg.Metrics.BrowserLeased(1)
		return inst, nil
	}
	c.mu.Unlock()

	inst, err := c.launch()
	if err != nil {
		c.sem.Release(1)
		return nil, err
	}
	c.cfg.Metrics.BrowserLeased(1)
	return inst, nil
}

// release returns inst to the pool, or discards it when broken.
func (c *Chrome) release(inst *instance, broken bool) {
	defer c.sem.Release(1)
	defer c.cfg.Metrics.BrowserLeased(-1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if broken || c.closed || inst.ctx.Err() != nil {
		inst.close()
		return
	}
	c.idle = append(c.idle, inst)
}

// Paginate renders html in a fresh tab and prints it to PDF.
func (c *Chrome) Paginate(ctx context.Context, htmlDoc string, g Geometry) ([]byte, error) {
	inst, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	broken := true
	defer func() { c.release(inst, broken) }()

	tabCtx, cancelTab := chromedp.NewContext(inst.ctx)
	defer cancelTab()
	runCtx, cancelRun := context.WithTimeout(tabCtx, c.cfg.Timeout)
	defer cancelRun()
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()

	var pdf []byte
	var fontsReady bool
	err = chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, htmlDoc).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) }),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := printParams(g).Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			c.log.Warn("pagination timed out", zap.Duration("timeout", c.cfg.Timeout))
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("paginate: %w", err)
	}
	broken = false
	return Normalize(pdf), nil
}

func printParams(g Geometry) *page.PrintToPDFParams {
	p := page.PrintToPDF().
		WithPaperWidth(g.PaperWidth).
		WithPaperHeight(g.PaperHeight).
		WithLandscape(g.Landscape).
		WithMarginTop(g.MarginTop).
		WithMarginRight(g.MarginRight).
		WithMarginBottom(g.MarginBottom).
		WithMarginLeft(g.MarginLeft).
		WithPrintBackground(g.PrintBackground)
	if g.PageNumbers {
		p = p.WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(footerTemplate(g))
	}
	return p
}

func footerTemplate(g Geometry) string {
	size := g.FooterFontSize
	if size == "" {
		size = "9pt"
	}
	color := g.FooterColor
	if color == "" {
		color = "#555555"
	}
	return fmt.Sprintf(
		`<div style="width:100%%;text-align:center;font-size:%s;color:%s;font-family:%s;">`+
			`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
		html.EscapeString(size), html.EscapeString(color), html.EscapeString(g.FooterFont))
}

// Close shuts down idle browsers. Leased instances close on release.
func (c *Chrome) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, inst := range c.idle {
		inst.close()
	}
	c.idle = nil
	c.log.Info("browser pool closed")
}

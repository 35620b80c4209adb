package browser

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	DefaultElementTimeout = 10 * time.Second

	clickableSelector = "a, button, [role=button], input[type=submit]"
)

type RodConfig struct {
	// DebuggerURL attaches to a running Chrome instead of launching one.
	DebuggerURL    string
	Headless       bool
	ElementTimeout time.Duration
}

// RodDriver owns one browser and one tab, started lazily on the first step.
type RodDriver struct {
	cfg RodConfig

	mu      sync.Mutex
	browser *rod.Browser
	page    *rod.Page
}

func NewRodDriver(cfg RodConfig) *RodDriver {
	if cfg.ElementTimeout <= 0 {
		cfg.ElementTimeout = DefaultElementTimeout
	}
	return &RodDriver{cfg: cfg}
}

func (d *RodDriver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.page != nil {
		return nil
	}

	controlURL := d.cfg.DebuggerURL
	if controlURL == "" {
		launched, err := launcher.New().Headless(d.cfg.Headless).Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = launched
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("open tab: %w", err)
	}

	d.browser = browser
	d.page = page
	return nil
}

func (d *RodDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.browser == nil {
		return nil
	}
	err := d.browser.Close()
	d.browser, d.page = nil, nil
	return err
}

func (d *RodDriver) tab(ctx context.Context) (*rod.Page, error) {
	if err := d.Start(ctx); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page.Context(ctx), nil
}

func (d *RodDriver) Navigate(ctx context.Context, target string) error {
	page, err := d.tab(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(target); err != nil {
		return fmt.Errorf("navigate to %s: %w", target, err)
	}
	return page.WaitLoad()
}

func (d *RodDriver) Click(ctx context.Context, selector string) error {
	page, err := d.tab(ctx)
	if err != nil {
		return err
	}
	el, err := page.Timeout(d.cfg.ElementTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (d *RodDriver) ClickText(ctx context.Context, text string) error {
	page, err := d.tab(ctx)
	if err != nil {
		return err
	}
	el, err := page.Timeout(d.cfg.ElementTimeout).ElementR(clickableSelector, labelPattern(text))
	if err != nil {
		return fmt.Errorf("no clickable element labelled %q: %w", text, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (d *RodDriver) Fill(ctx context.Context, selector, value string) error {
	page, err := d.tab(ctx)
	if err != nil {
		return err
	}
	el, err := page.Timeout(d.cfg.ElementTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("field %q not found: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("clear field %q: %w", selector, err)
	}
	return el.Input(value)
}

func (d *RodDriver) Scroll(ctx context.Context, dy int) error {
	page, err := d.tab(ctx)
	if err != nil {
		return err
	}
	return page.Mouse.Scroll(0, float64(dy), 1)
}

func (d *RodDriver) CurrentURL(ctx context.Context) (string, error) {
	page, err := d.tab(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// labelPattern builds the case-insensitive JavaScript regex literal rod's
// ElementR evaluates in the page.
func labelPattern(text string) string {
	return "/" + regexp.QuoteMeta(text) + "/i"
}

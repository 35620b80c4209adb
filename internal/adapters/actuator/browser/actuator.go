// Package browser carries out plan steps in a real Chrome tab.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultSearchPath        = "/search?q=%s"
	DefaultAddToCartSelector = `[data-add-to-cart="%s"]`
)

// Driver is the page automation surface the actuator needs.
type Driver interface {
	Navigate(ctx context.Context, target string) error
	Click(ctx context.Context, selector string) error
	ClickText(ctx context.Context, text string) error
	Fill(ctx context.Context, selector, value string) error
	Scroll(ctx context.Context, dy int) error
	CurrentURL(ctx context.Context) (string, error)
}

type Options struct {
	// BaseURL resolves relative navigation paths.
	BaseURL string
	// SearchPath is a format string taking the escaped query.
	SearchPath string
	// AddToCartSelector is a format string taking the product id.
	AddToCartSelector string
	Logger            *zap.Logger
}

type Actuator struct {
	driver            Driver
	baseURL           *url.URL
	searchPath        string
	addToCartSelector string
	logger            *zap.Logger
}

func New(driver Driver, opts Options) (*Actuator, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if opts.SearchPath == "" {
		opts.SearchPath = DefaultSearchPath
	}
	if opts.AddToCartSelector == "" {
		opts.AddToCartSelector = DefaultAddToCartSelector
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Actuator{
		driver:            driver,
		baseURL:           base,
		searchPath:        opts.SearchPath,
		addToCartSelector: opts.AddToCartSelector,
		logger:            opts.Logger,
	}, nil
}

type report struct {
	Success bool   `json:"success"`
	Tool    string `json:"tool"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Actuate returns an error when the page could not be driven, which makes the
// step eligible for retry. Steps the browser cannot express are reported as
// failed without an error.
func (a *Actuator) Actuate(ctx context.Context, call ports.ToolCall) ([]byte, error) {
	step := call.Step
	a.logger.Debug("browser step", zap.String("tool", step.Tool), zap.Any("params", step.ParamValues()))

	var err error
	switch p := step.Params.(type) {
	case domain.NavigateParams:
		err = a.driver.Navigate(ctx, a.resolve(p.Path))
	case domain.ClickParams:
		if p.Selector != "" {
			err = a.driver.Click(ctx, p.Selector)
		} else {
			err = a.driver.ClickText(ctx, p.Text)
		}
	case domain.FillParams:
		err = a.driver.Fill(ctx, p.Selector, p.Value)
	case domain.SearchParams:
		err = a.driver.Navigate(ctx, a.resolve(fmt.Sprintf(a.searchPath, url.QueryEscape(p.Query))))
	case domain.AddToCartParams:
		added, clickErr := a.addToCart(ctx, p)
		if clickErr != nil && added > 0 {
			// Retrying would add the landed units again.
			return json.Marshal(report{
				Tool:  step.Tool,
				Error: fmt.Sprintf("added %d of %d units: %v", added, p.Quantity, clickErr),
			})
		}
		err = clickErr
	case domain.ScrollParams:
		dy := p.Amount
		if p.Direction == "up" {
			dy = -dy
		}
		err = a.driver.Scroll(ctx, dy)
	case domain.WaitParams:
		err = wait(ctx, p.Duration)
	default:
		return json.Marshal(report{Tool: step.Tool, Error: fmt.Sprintf("tool %q is not supported by the browser", step.Tool)})
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", step.Tool, err)
	}

	current, err := a.driver.CurrentURL(ctx)
	if err != nil {
		a.logger.Debug("read current url", zap.Error(err))
	}

	return json.Marshal(report{Success: true, Tool: step.Tool, URL: current})
}

// addToCart clicks the product's add button once per unit and returns how many
// clicks landed.
func (a *Actuator) addToCart(ctx context.Context, p domain.AddToCartParams) (int, error) {
	selector := fmt.Sprintf(a.addToCartSelector, p.ProductID)
	for i := 0; i < p.Quantity; i++ {
		if err := a.driver.Click(ctx, selector); err != nil {
			return i, err
		}
	}
	return p.Quantity, nil
}

func (a *Actuator) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil || a.baseURL.String() == "" {
		return path
	}
	return a.baseURL.ResolveReference(ref).String()
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

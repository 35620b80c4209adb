package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	ToolNavigate  = "navigate"
	ToolClick     = "click"
	ToolFill      = "fill"
	ToolSearch    = "search"
	ToolAddToCart = "add_to_cart"
	ToolScroll    = "scroll"
	ToolWait      = "wait"
)

// StepParams is the closed set of typed parameter variants, keyed by tool name.
// OpaqueParams carries tools this build does not know about.
type StepParams interface {
	Tool() string
	Values() map[string]any
	isStepParams()
}

type NavigateParams struct {
	Path string
}

type ClickParams struct {
	Selector string
	Text     string
}

type FillParams struct {
	Selector string
	Value    string
}

type SearchParams struct {
	Query string
}

type AddToCartParams struct {
	ProductID string
	Quantity  int
}

type ScrollParams struct {
	Direction string
	Amount    int
}

type WaitParams struct {
	Duration time.Duration
}

type OpaqueParams struct {
	Name string
	Raw  map[string]any
}

func (NavigateParams) Tool() string  { return ToolNavigate }
func (ClickParams) Tool() string     { return ToolClick }
func (FillParams) Tool() string      { return ToolFill }
func (SearchParams) Tool() string    { return ToolSearch }
func (AddToCartParams) Tool() string { return ToolAddToCart }
func (ScrollParams) Tool() string    { return ToolScroll }
func (WaitParams) Tool() string      { return ToolWait }
func (p OpaqueParams) Tool() string  { return p.Name }

func (NavigateParams) isStepParams()  {}
func (ClickParams) isStepParams()     {}
func (FillParams) isStepParams()      {}
func (SearchParams) isStepParams()    {}
func (AddToCartParams) isStepParams() {}
func (ScrollParams) isStepParams()    {}
func (WaitParams) isStepParams()      {}
func (OpaqueParams) isStepParams()    {}

func (p NavigateParams) Values() map[string]any {
	return map[string]any{"path": p.Path}
}

func (p ClickParams) Values() map[string]any {
	values := map[string]any{}
	if p.Selector != "" {
		values["selector"] = p.Selector
	}
	if p.Text != "" {
		values["text"] = p.Text
	}
	return values
}

func (p FillParams) Values() map[string]any {
	return map[string]any{"selector": p.Selector, "value": p.Value}
}

func (p SearchParams) Values() map[string]any {
	return map[string]any{"query": p.Query}
}

func (p AddToCartParams) Values() map[string]any {
	return map[string]any{"productId": p.ProductID, "quantity": p.Quantity}
}

func (p ScrollParams) Values() map[string]any {
	return map[string]any{"direction": p.Direction, "amount": p.Amount}
}

func (p WaitParams) Values() map[string]any {
	return map[string]any{"ms": p.Duration.Milliseconds()}
}

func (p OpaqueParams) Values() map[string]any {
	out := make(map[string]any, len(p.Raw))
	for k, v := range p.Raw {
		out[k] = v
	}
	return out
}

// DecodeStepParams maps a free-form parameter bag onto its typed variant. A known
// tool whose bag does not satisfy the variant falls back to OpaqueParams so no
// information is lost.
func DecodeStepParams(tool string, raw map[string]any) StepParams {
	tool = strings.TrimSpace(tool)

	var (
		params StepParams
		ok     bool
	)
	switch tool {
	case ToolNavigate:
		path := firstString(raw, "path", "url", "route")
		params, ok = NavigateParams{Path: path}, path != ""
	case ToolClick:
		selector := firstString(raw, "selector", "target")
		text := firstString(raw, "text", "label")
		params, ok = ClickParams{Selector: selector, Text: text}, selector != "" || text != ""
	case ToolFill:
		selector := firstString(raw, "selector", "field", "target")
		_, hasValue := raw["value"]
		params, ok = FillParams{Selector: selector, Value: firstString(raw, "value")}, selector != "" && hasValue
	case ToolSearch:
		query := firstString(raw, "query", "q", "term")
		params, ok = SearchParams{Query: query}, query != ""
	case ToolAddToCart:
		productID := firstString(raw, "productId", "product_id", "id")
		quantity, hasQuantity := firstInt(raw, "quantity", "qty")
		if !hasQuantity {
			quantity = 1
		}
		params, ok = AddToCartParams{ProductID: productID, Quantity: quantity}, productID != "" && quantity > 0
	case ToolScroll:
		direction := strings.ToLower(firstString(raw, "direction"))
		if direction == "" {
			direction = "down"
		}
		amount, hasAmount := firstInt(raw, "amount", "pixels")
		if !hasAmount {
			amount = 600
		}
		params, ok = ScrollParams{Direction: direction, Amount: amount}, direction == "up" || direction == "down"
	case ToolWait:
		if ms, found := firstInt(raw, "ms", "milliseconds"); found {
			params, ok = WaitParams{Duration: time.Duration(ms) * time.Millisecond}, ms >= 0
		} else if s, found := firstInt(raw, "seconds"); found {
			params, ok = WaitParams{Duration: time.Duration(s) * time.Second}, s >= 0
		}
	}

	if ok {
		return params
	}

	copied := make(map[string]any, len(raw))
	for k, v := range raw {
		copied[k] = v
	}
	return OpaqueParams{Name: tool, Raw: copied}
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

func firstInt(raw map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			if v == math.Trunc(v) {
				return int(v), true
			}
		case int:
			return v, true
		case int64:
			return int(v), true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

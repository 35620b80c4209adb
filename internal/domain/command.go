package domain

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ContextSnapshot is the opaque page/auth/role state sent alongside a command.
type ContextSnapshot map[string]any

func (c ContextSnapshot) String(key string) string {
	raw, ok := c[key]
	if !ok || raw == nil {
		return ""
	}

	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (c ContextSnapshot) Bool(key string) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

func (c ContextSnapshot) Clone() ContextSnapshot {
	if c == nil {
		return nil
	}

	out := make(ContextSnapshot, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

type VisualSnapshot struct {
	MIMEType string
	Data     []byte
}

// DecodeVisualSnapshot accepts raw base64 or a "data:<mime>;base64,<payload>" URL.
func DecodeVisualSnapshot(raw string) (*VisualSnapshot, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	mimeType := "image/png"
	payload := raw
	if rest, ok := strings.CutPrefix(raw, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found {
			return nil, fmt.Errorf("%w: malformed data url", ErrInvalidSnapshot)
		}
		header, isBase64 := strings.CutSuffix(header, ";base64")
		if !isBase64 {
			return nil, fmt.Errorf("%w: data url is not base64 encoded", ErrInvalidSnapshot)
		}
		if header != "" {
			mimeType = header
		}
		payload = data
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &VisualSnapshot{MIMEType: mimeType, Data: data}, nil
}

type CommandRequest struct {
	Transcript string
	Context    ContextSnapshot
	Snapshot   *VisualSnapshot
	// SessionID is an optional client-provided fingerprint for anonymous sessions.
	SessionID string
}

func (r CommandRequest) HasSnapshot() bool {
	return r.Snapshot != nil && len(r.Snapshot.Data) > 0
}

func (r CommandRequest) Validate() error {
	if strings.TrimSpace(r.Transcript) == "" {
		return ErrEmptyTranscript
	}

	return nil
}

// NormalizeTranscript lower-cases, strips punctuation and collapses whitespace.
func NormalizeTranscript(transcript string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, transcript)

	return strings.Join(strings.Fields(stripped), " ")
}

// CacheKey derives the response-cache key for a command. Commands carrying a
// visual snapshot depend on what is on screen and get the empty, uncacheable key.
func CacheKey(transcript string, hasSnapshot bool) string {
	if hasSnapshot {
		return ""
	}

	return NormalizeTranscript(transcript)
}

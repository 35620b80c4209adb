// Package llm holds what the model backends share: the user turn layout and the
// mapping of conversation roles.
package llm

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
)

// UserPrompt renders the current command and its page context as the final user turn.
func UserPrompt(req ports.CompletionRequest) string {
	var b strings.Builder
	b.WriteString("Command: ")
	b.WriteString(strings.TrimSpace(req.Transcript))

	if len(req.Context) > 0 {
		b.WriteString("\nPage context:\n")
		b.WriteString(contextJSON(req.Context))
	}
	if req.Snapshot != nil {
		b.WriteString("\nA screenshot of the current page is attached.")
	}

	return b.String()
}

// contextJSON is stable across calls so identical requests produce identical prompts.
func contextJSON(snapshot domain.ContextSnapshot) string {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		value, err := json.Marshal(snapshot[key])
		if err != nil {
			continue
		}
		lines = append(lines, "- "+key+": "+string(value))
	}

	return strings.Join(lines, "\n")
}

// Turns drops empty messages from history, keeping order.
func Turns(history []domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(history))
	for _, msg := range history {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		out = append(out, msg)
	}
	return out
}

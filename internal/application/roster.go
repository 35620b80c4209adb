package application

import (
	"sort"
	"strings"

	"github.com/bnema/shopvoice/internal/domain"
)

// DefaultCriticalKeywords mark commands that touch payment or checkout. Matching
// is by word prefix on the normalized transcript.
var DefaultCriticalKeywords = []string{
	"pago", "pagar", "checkout", "comprar", "compra", "tarjeta", "finalizar",
	"payment", "pay", "purchase", "card",
}

// AuthenticatedContextKeys are the context flags that mark a signed-in session.
var AuthenticatedContextKeys = []string{"isAuthenticated", "authenticated"}

type RosterSelector struct {
	Keywords []string
}

func NewRosterSelector(keywords []string) RosterSelector {
	if len(keywords) == 0 {
		keywords = DefaultCriticalKeywords
	}

	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if kw := domain.NormalizeTranscript(keyword); kw != "" {
			normalized = append(normalized, kw)
		}
	}
	return RosterSelector{Keywords: normalized}
}

// Critical reports whether the command should be planned by the full roster.
func (s RosterSelector) Critical(req domain.CommandRequest) bool {
	for _, key := range AuthenticatedContextKeys {
		if req.Context.Bool(key) {
			return true
		}
	}

	words := strings.Fields(domain.NormalizeTranscript(req.Transcript))
	for _, keyword := range s.Keywords {
		if strings.Contains(keyword, " ") {
			if containsPhrase(words, strings.Fields(keyword)) {
				return true
			}
			continue
		}
		for _, word := range words {
			if strings.HasPrefix(word, keyword) {
				return true
			}
		}
	}

	return false
}

// Select returns the roster name and the enabled models belonging to it, ordered
// by descending weight.
func (s RosterSelector) Select(models []domain.ModelConfig, req domain.CommandRequest) (domain.RosterName, []domain.ModelConfig) {
	name := domain.RosterFast
	if s.Critical(req) {
		name = domain.RosterFull
	}

	selected := make([]domain.ModelConfig, 0, len(models))
	for _, model := range models {
		if model.Enabled && model.InRoster(name) {
			selected = append(selected, model)
		}
	}
	sortByWeight(selected)

	return name, selected
}

func sortByWeight(models []domain.ModelConfig) {
	sort.SliceStable(models, func(i, j int) bool {
		if models[i].Weight != models[j].Weight {
			return models[i].Weight > models[j].Weight
		}
		return models[i].ID < models[j].ID
	})
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}

	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j := range phrase {
			if words[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

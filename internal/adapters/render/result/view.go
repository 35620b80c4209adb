package result

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bnema/shopvoice/internal/application"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	// Verbose adds reasoning and per-step output.
	Verbose bool
}

// Render draws an interpreted command for the terminal.
func Render(result domain.InterpretResult, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return renderResult(result, opts, s)
	})
}

// RenderModels draws the model roster.
func RenderModels(statuses []application.ModelStatus) (string, error) {
	return run(func(s styles) string {
		return renderModels(statuses, s)
	})
}

func renderResult(result domain.InterpretResult, opts RenderOptions, s styles) string {
	lines := []string{s.feedback.Render(result.UserFeedback)}

	if result.Degraded {
		reason := result.DegradedReason
		if reason == "" {
			reason = "plan could not be trusted"
		}
		lines = append(lines, s.warning.Render("degraded: "+reason))
		if result.ErrorCategory != "" {
			lines = append(lines, s.warning.Render(result.ErrorCategory.Guidance()))
		}
	}

	if opts.Verbose && strings.TrimSpace(result.Reasoning) != "" {
		lines = append(lines, s.detail.Render("reasoning: "+result.Reasoning))
	}

	if result.Execution.TotalSteps > 0 {
		steps := []string{progressLine(result.Execution, s)}
		for i, entry := range result.Execution.Trace {
			steps = append(steps, stepLine(i+1, entry, opts, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, steps...)))
	}

	lines = append(lines, s.section.Render(metaLine(result, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func progressLine(execution domain.ExecutionResult, s styles) string {
	percent := 100 * float64(execution.StepsCompleted) / float64(execution.TotalSteps)
	bar := renderProgressBar(percent, 20, s)
	count := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100)).
		Render(fmt.Sprintf("%d/%d steps", execution.StepsCompleted, execution.TotalSteps))

	return lipgloss.JoinHorizontal(lipgloss.Top, bar, " ", count)
}

func stepLine(n int, entry domain.StepTrace, opts RenderOptions, s styles) string {
	var marker string
	switch entry.Outcome {
	case domain.OutcomeSuccess:
		marker = s.stepOK.Render("ok")
	case domain.OutcomeUnknown:
		marker = s.stepMaybe.Render("??")
	default:
		marker = s.stepFail.Render("!!")
	}

	line := fmt.Sprintf("%s %d. %s%s", marker, n, entry.Tool, formatParams(entry.Params))
	if entry.Attempts > 1 {
		line += s.tag.Render(fmt.Sprintf(" (%d attempts)", entry.Attempts))
	}
	if entry.Error != "" {
		line += " " + s.stepFail.Render(entry.Error)
	}
	if opts.Verbose && len(entry.Output) > 0 {
		line += "\n      " + s.empty.Render(string(entry.Output))
	}

	return line
}

func metaLine(result domain.InterpretResult, s styles) string {
	meta := result.Ensemble
	parts := []string{
		fmt.Sprintf("roster: %s", rosterLabel(meta.Roster)),
		fmt.Sprintf("models: %d/%d", meta.Succeeded, len(meta.Backends)),
	}
	if meta.Slowest > 0 {
		parts = append(parts, "slowest: "+formatDuration(meta.Slowest))
	}
	if len(meta.Backends) > 1 && !meta.Consistent {
		parts = append(parts, "inconsistent")
	}
	if result.Cached {
		parts = append(parts, "cached")
	}

	return s.header.Render(strings.Join(parts, " | "))
}

func renderModels(statuses []application.ModelStatus, s styles) string {
	lines := []string{s.header.Render(fmt.Sprintf("models: %d", len(statuses)))}
	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No models configured."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, modelLine(status, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func modelLine(status application.ModelStatus, s styles) string {
	model := status.Model

	rosters := make([]string, 0, len(model.Rosters))
	for _, roster := range model.Rosters {
		rosters = append(rosters, string(roster))
	}

	credential := "n/a"
	switch {
	case model.Provider == domain.ProviderScripted:
	case status.HasCredential:
		credential = "set"
	case model.CredentialRef != "":
		credential = "missing"
	}

	line := fmt.Sprintf("%s %s", s.modelName.Render(string(model.ID)), s.tag.Render(fmt.Sprintf("(%s, %s)", model.Provider, model.Role)))
	detail := fmt.Sprintf("weight %.2f | rosters %s | credential %s", model.Weight, strings.Join(rosters, ","), credential)
	if model.ModelName() != string(model.ID) {
		detail += " | model " + model.ModelName()
	}
	if !model.Enabled {
		detail += " | " + s.warning.Render("disabled")
	} else if credential == "missing" {
		detail += " " + s.warning.Render("[no key]")
	}

	return lipgloss.JoinVertical(lipgloss.Left, line, "  "+s.detail.Render(detail))
}

func formatParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, params[key]))
	}
	return " " + strings.Join(pairs, " ")
}

func rosterLabel(name domain.RosterName) string {
	if name == "" {
		return "n/a"
	}
	return string(name)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func renderProgressBar(donePercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(donePercent) / 100))
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// interpolateColor walks the ANSI greyscale ramp from 240 at min to 255 at max.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}

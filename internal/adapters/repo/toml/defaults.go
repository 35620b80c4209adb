package toml

import "github.com/bnema/shopvoice/internal/domain"

// DefaultRoster is served until a roster file is written: one fast primary and
// two extra voices for critical commands.
func DefaultRoster() []domain.ModelConfig {
	return []domain.ModelConfig{
		{
			ID:            "gpt-4o-mini",
			Provider:      domain.ProviderOpenAI,
			Role:          domain.RolePrimary,
			Weight:        1,
			Enabled:       true,
			Rosters:       []domain.RosterName{domain.RosterFast, domain.RosterFull},
			CredentialRef: "openai",
		},
		{
			ID:            "gemini-2.0-flash",
			Provider:      domain.ProviderGemini,
			Role:          domain.RoleRefiner,
			Weight:        0.8,
			Enabled:       true,
			Rosters:       []domain.RosterName{domain.RosterFull},
			CredentialRef: "gemini",
		},
		{
			ID:            "gpt-4o",
			Provider:      domain.ProviderOpenAI,
			Role:          domain.RoleValidator,
			Weight:        0.6,
			Enabled:       true,
			Rosters:       []domain.RosterName{domain.RosterFull},
			CredentialRef: "openai",
		},
	}
}

func defaultSchema() fileSchema {
	roster := DefaultRoster()
	file := fileSchema{Version: currentSchemaVersion, Models: make([]modelSchema, 0, len(roster))}
	for _, model := range roster {
		file.Models = append(file.Models, toSchema(model))
	}
	return file
}

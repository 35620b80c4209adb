package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	Models  []modelSchema `toml:"models"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported models schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type modelSchema struct {
	ID       string  `toml:"id"`
	Provider string  `toml:"provider"`
	Model    string  `toml:"model,omitempty"`
	Role     string  `toml:"role"`
	Weight   float64 `toml:"weight"`
	// Enabled defaults to true when absent.
	Enabled       *bool    `toml:"enabled,omitempty"`
	Rosters       []string `toml:"rosters"`
	CredentialRef string   `toml:"credential_ref,omitempty"`
	BaseURL       string   `toml:"base_url,omitempty"`
	Timeout       string   `toml:"timeout,omitempty"`
}

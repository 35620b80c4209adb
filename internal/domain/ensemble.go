package domain

import (
	"fmt"
	"strings"
	"time"
)

type ModelID string
type Provider string
type ModelRole string
type RosterName string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderGemini   Provider = "gemini"
	ProviderScripted Provider = "scripted"

	RoleValidator ModelRole = "validator"
	RolePrimary   ModelRole = "primary"
	RoleRefiner   ModelRole = "refiner"

	RosterFast RosterName = "fast"
	RosterFull RosterName = "full"
)

type ModelConfig struct {
	ID       ModelID
	Provider Provider
	// Model is the provider-side model name; defaults to ID when empty.
	Model         string
	Role          ModelRole
	Weight        float64
	Enabled       bool
	Rosters       []RosterName
	CredentialRef string
	BaseURL       string
	Timeout       time.Duration
}

func (c ModelConfig) ModelName() string {
	if strings.TrimSpace(c.Model) != "" {
		return c.Model
	}
	return string(c.ID)
}

func (c ModelConfig) InRoster(name RosterName) bool {
	for _, roster := range c.Rosters {
		if roster == name {
			return true
		}
	}
	return false
}

func (c ModelConfig) Validate() error {
	if strings.TrimSpace(string(c.ID)) == "" {
		return fmt.Errorf("id is required")
	}
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderScripted:
	case "":
		return fmt.Errorf("provider is required")
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	switch c.Role {
	case RoleValidator, RolePrimary, RoleRefiner:
	default:
		return fmt.Errorf("unsupported role %q", c.Role)
	}
	if c.Weight < 0 || c.Weight > 1 {
		return fmt.Errorf("weight %.2f out of range [0,1]", c.Weight)
	}
	for _, roster := range c.Rosters {
		if roster != RosterFast && roster != RosterFull {
			return fmt.Errorf("unsupported roster %q", roster)
		}
	}

	return nil
}

// ModelInvocation is the outcome of calling one backend during one ensemble run.
type ModelInvocation struct {
	Model    ModelConfig
	Success  bool
	Duration time.Duration
	Plan     Plan
	// ParseDegraded is set when the backend answered but not with a usable plan.
	ParseDegraded bool
	Err           error
}

type EnsembleMeta struct {
	Roster       RosterName    `json:"roster"`
	Backends     []ModelID     `json:"backends"`
	Succeeded    int           `json:"succeeded"`
	Slowest      time.Duration `json:"slowest"`
	Mean         time.Duration `json:"mean"`
	SuccessRatio float64       `json:"successRatio"`
	Consistent   bool          `json:"consistent"`
	Consensus    bool          `json:"consensus"`
}

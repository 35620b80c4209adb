// Package config loads runtime settings from ~/.shopvoice/config.toml and
// SHOPVOICE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/shopvoice/internal/logging"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "SHOPVOICE"
	// PathKey overrides the config file location (SHOPVOICE_CONFIG).
	PathKey = "config"

	configDir  = ".shopvoice"
	configFile = "config.toml"

	ActuatorDryRun  = "dryrun"
	ActuatorBrowser = "browser"
	ActuatorBridge  = "bridge"
)

type Config struct {
	Cache       CacheConfig       `mapstructure:"cache"`
	Session     SessionConfig     `mapstructure:"session"`
	Ensemble    EnsembleConfig    `mapstructure:"ensemble"`
	Executor    ExecutorConfig    `mapstructure:"executor"`
	Actuator    ActuatorConfig    `mapstructure:"actuator"`
	Synthesis   SynthesisConfig   `mapstructure:"synthesis"`
	Models      ModelsConfig      `mapstructure:"models"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Log         LogConfig         `mapstructure:"log"`
}

type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type SessionConfig struct {
	MaxExchanges  int           `mapstructure:"max_exchanges"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type EnsembleConfig struct {
	InvocationTimeout   time.Duration `mapstructure:"invocation_timeout"`
	ConsensusThreshold  float64       `mapstructure:"consensus_threshold"`
	StepSpreadTolerance float64       `mapstructure:"step_spread_tolerance"`
	CriticalKeywords    []string      `mapstructure:"critical_keywords"`
	InstructionsFile    string        `mapstructure:"instructions_file"`
	// ScriptFile feeds models with the scripted provider; empty uses the built-in replies.
	ScriptFile string `mapstructure:"script_file"`
}

type ExecutorConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	BackoffBase   time.Duration `mapstructure:"backoff_base"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`
}

type ActuatorConfig struct {
	Kind        string        `mapstructure:"kind"`
	BaseURL     string        `mapstructure:"base_url"`
	DebuggerURL string        `mapstructure:"debugger_url"`
	Headless    bool          `mapstructure:"headless"`
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SynthesisConfig struct {
	// Model is a roster model id; empty disables synthesis.
	Model string `mapstructure:"model"`
}

type ModelsConfig struct {
	Path string `mapstructure:"path"`
}

type CredentialsConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load reads the config file when present and applies environment overrides.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	setDefaults(v, filepath.Join(homeDir, configDir))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := v.GetString(PathKey)
	if path == "" {
		path = filepath.Join(homeDir, configDir, configFile)
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Ensemble.CriticalKeywords = splitKeywords(cfg.Ensemble.CriticalKeywords)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.sweep_interval", time.Minute)
	v.SetDefault("session.max_exchanges", 10)
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.sweep_interval", 15*time.Minute)
	v.SetDefault("ensemble.invocation_timeout", 30*time.Second)
	v.SetDefault("ensemble.consensus_threshold", 0.5)
	v.SetDefault("ensemble.step_spread_tolerance", 2.0)
	v.SetDefault("ensemble.critical_keywords", []string{})
	v.SetDefault("ensemble.instructions_file", "")
	v.SetDefault("ensemble.script_file", "")
	v.SetDefault("executor.max_attempts", 3)
	v.SetDefault("executor.backoff_base", 500*time.Millisecond)
	v.SetDefault("executor.backoff_factor", 2.0)
	v.SetDefault("actuator.kind", ActuatorDryRun)
	v.SetDefault("actuator.base_url", "http://localhost:3000")
	v.SetDefault("actuator.debugger_url", "")
	v.SetDefault("actuator.headless", true)
	v.SetDefault("actuator.endpoint", "")
	v.SetDefault("actuator.timeout", 15*time.Second)
	v.SetDefault("synthesis.model", "")
	v.SetDefault("models.path", filepath.Join(dir, "models.toml"))
	v.SetDefault("credentials.dir", filepath.Join(dir, "credentials"))
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.json", false)
}

// splitKeywords lets SHOPVOICE_ENSEMBLE_CRITICAL_KEYWORDS carry a comma separated list.
func splitKeywords(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) Validate() error {
	var errs []error
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive"))
	}
	if c.Cache.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("cache.sweep_interval must be positive"))
	}
	if c.Session.MaxExchanges < 1 {
		errs = append(errs, fmt.Errorf("session.max_exchanges must be at least 1"))
	}
	if c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("session.idle_timeout and session.sweep_interval must be positive"))
	}
	if c.Ensemble.InvocationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ensemble.invocation_timeout must be positive"))
	}
	if c.Ensemble.ConsensusThreshold <= 0 || c.Ensemble.ConsensusThreshold > 1 {
		errs = append(errs, fmt.Errorf("ensemble.consensus_threshold %.2f out of range (0,1]", c.Ensemble.ConsensusThreshold))
	}
	if c.Ensemble.StepSpreadTolerance <= 0 {
		errs = append(errs, fmt.Errorf("ensemble.step_spread_tolerance must be positive"))
	}
	if c.Executor.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("executor.max_attempts must be at least 1"))
	}
	if c.Executor.BackoffBase < 0 || c.Executor.BackoffFactor < 1 {
		errs = append(errs, fmt.Errorf("executor backoff must be non-negative with a factor of at least 1"))
	}
	switch c.Actuator.Kind {
	case ActuatorDryRun, ActuatorBrowser:
	case ActuatorBridge:
		if strings.TrimSpace(c.Actuator.Endpoint) == "" {
			errs = append(errs, fmt.Errorf("actuator.endpoint is required for the bridge actuator"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported actuator.kind %q", c.Actuator.Kind))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Encode renders the effective config as TOML that Load reads back.
func Encode(cfg Config) ([]byte, error) {
	doc := map[string]any{
		"cache": map[string]any{
			"ttl":            cfg.Cache.TTL.String(),
			"sweep_interval": cfg.Cache.SweepInterval.String(),
		},
		"session": map[string]any{
			"max_exchanges":  cfg.Session.MaxExchanges,
			"idle_timeout":   cfg.Session.IdleTimeout.String(),
			"sweep_interval": cfg.Session.SweepInterval.String(),
		},
		"ensemble": map[string]any{
			"invocation_timeout":    cfg.Ensemble.InvocationTimeout.String(),
			"consensus_threshold":   cfg.Ensemble.ConsensusThreshold,
			"step_spread_tolerance": cfg.Ensemble.StepSpreadTolerance,
			"critical_keywords":     nonNil(cfg.Ensemble.CriticalKeywords),
			"instructions_file":     cfg.Ensemble.InstructionsFile,
			"script_file":           cfg.Ensemble.ScriptFile,
		},
		"executor": map[string]any{
			"max_attempts":   cfg.Executor.MaxAttempts,
			"backoff_base":   cfg.Executor.BackoffBase.String(),
			"backoff_factor": cfg.Executor.BackoffFactor,
		},
		"actuator": map[string]any{
			"kind":         cfg.Actuator.Kind,
			"base_url":     cfg.Actuator.BaseURL,
			"debugger_url": cfg.Actuator.DebuggerURL,
			"headless":     cfg.Actuator.Headless,
			"endpoint":     cfg.Actuator.Endpoint,
			"timeout":      cfg.Actuator.Timeout.String(),
		},
		"synthesis":   map[string]any{"model": cfg.Synthesis.Model},
		"models":      map[string]any{"path": cfg.Models.Path},
		"credentials": map[string]any{"dir": cfg.Credentials.Dir},
		"log": map[string]any{
			"level": cfg.Log.Level,
			"json":  cfg.Log.JSON,
		},
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

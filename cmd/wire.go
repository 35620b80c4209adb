package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/shopvoice/internal/adapters/actuator/bridge"
	"github.com/bnema/shopvoice/internal/adapters/actuator/browser"
	"github.com/bnema/shopvoice/internal/adapters/actuator/dryrun"
	chainstore "github.com/bnema/shopvoice/internal/adapters/credentials/chain"
	"github.com/bnema/shopvoice/internal/adapters/llm/gemini"
	"github.com/bnema/shopvoice/internal/adapters/llm/openai"
	"github.com/bnema/shopvoice/internal/adapters/llm/scripted"
	"github.com/bnema/shopvoice/internal/adapters/memory/cache"
	"github.com/bnema/shopvoice/internal/adapters/memory/conversation"
	resultadapter "github.com/bnema/shopvoice/internal/adapters/render/result"
	tomlrepo "github.com/bnema/shopvoice/internal/adapters/repo/toml"
	"github.com/bnema/shopvoice/internal/adapters/synth"
	"github.com/bnema/shopvoice/internal/application"
	"github.com/bnema/shopvoice/internal/config"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/logging"
	"github.com/bnema/shopvoice/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	cfg            config.Config
	logger         *zap.Logger
	rosters        ports.RosterRepository
	credentials    ports.CredentialStore
	models         *application.ModelService
	resultRenderer func(domain.InterpretResult, resultadapter.RenderOptions) (string, error)
	modelsRenderer func([]application.ModelStatus) (string, error)
}

func wireApp() (*app, error) {
	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	repo, err := tomlrepo.NewRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire model roster: %w", err)
	}

	credentials, err := chainstore.NewDefault(cfg.Credentials.Dir)
	if err != nil {
		return nil, fmt.Errorf("wire credential store chain: %w", err)
	}

	return &app{
		cfg:            cfg,
		logger:         logger,
		rosters:        repo,
		credentials:    credentials,
		models:         application.NewModelService(repo, credentials),
		resultRenderer: resultadapter.Render,
		modelsRenderer: resultadapter.RenderModels,
	}, nil
}

// engine is everything one or more interpretations share.
type engine struct {
	orchestrator  *application.Orchestrator
	cache         *cache.Cache
	conversations *conversation.Store
	closers       []func() error
}

func (e *engine) Start(ctx context.Context) {
	e.cache.Start(ctx)
	e.conversations.Start(ctx)
}

func (e *engine) Close() error {
	e.cache.Stop()
	e.conversations.Stop()

	var errs []error
	for _, closeFn := range e.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *app) newEngine(ctx context.Context) (*engine, error) {
	models, err := a.rosters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	backends := a.buildBackends(ctx, models)

	actuator, closeActuator, err := a.buildActuator()
	if err != nil {
		return nil, err
	}

	instructions, err := a.instructions()
	if err != nil {
		return nil, err
	}

	var synthesizer ports.Synthesizer
	if id := domain.ModelID(strings.TrimSpace(a.cfg.Synthesis.Model)); id != "" {
		if backend, ok := backends[id]; ok {
			synthesizer = synth.New(backend)
		} else {
			a.logger.Warn("synthesis model is not in the roster", zap.String("model", string(id)))
		}
	}

	responses := cache.New(cache.Options{
		TTL:           a.cfg.Cache.TTL,
		SweepInterval: a.cfg.Cache.SweepInterval,
		Logger:        a.logger.Named("cache"),
	})
	conversations := conversation.NewStore(conversation.Options{
		MaxExchanges:  a.cfg.Session.MaxExchanges,
		IdleTimeout:   a.cfg.Session.IdleTimeout,
		SweepInterval: a.cfg.Session.SweepInterval,
		Logger:        a.logger.Named("conversation"),
	})

	combiner := application.NewCombiner()
	combiner.ConsensusThreshold = a.cfg.Ensemble.ConsensusThreshold
	combiner.StepSpreadTolerance = a.cfg.Ensemble.StepSpreadTolerance

	coordinator := application.NewCoordinator(backends, application.CoordinatorOptions{
		InvocationTimeout: a.cfg.Ensemble.InvocationTimeout,
		Combiner:          combiner,
		Logger:            a.logger.Named("ensemble"),
	})
	executor := application.NewExecutor(actuator, application.ExecutorOptions{
		MaxAttempts:   a.cfg.Executor.MaxAttempts,
		BackoffBase:   a.cfg.Executor.BackoffBase,
		BackoffFactor: a.cfg.Executor.BackoffFactor,
		Logger:        a.logger.Named("executor"),
	})

	orchestrator := application.NewOrchestrator(a.rosters, coordinator, executor, responses, conversations, application.OrchestratorOptions{
		Instructions:     instructions,
		Selector:         application.NewRosterSelector(a.cfg.Ensemble.CriticalKeywords),
		Synthesizer:      synthesizer,
		SynthesisTimeout: a.cfg.Ensemble.InvocationTimeout,
		Logger:           a.logger,
	})

	return &engine{
		orchestrator:  orchestrator,
		cache:         responses,
		conversations: conversations,
		closers:       []func() error{closeActuator},
	}, nil
}

// buildBackends never fails: a model that cannot be set up answers every call
// with the setup error, which the ensemble records like any other failure.
func (a *app) buildBackends(ctx context.Context, models []domain.ModelConfig) map[domain.ModelID]ports.ModelBackend {
	backends := make(map[domain.ModelID]ports.ModelBackend, len(models))
	for _, model := range models {
		if !model.Enabled {
			continue
		}

		backend, err := a.buildBackend(ctx, model)
		if err != nil {
			a.logger.Warn("model unavailable", zap.String("model", string(model.ID)), zap.Error(err))
			backend = unavailableBackend{err: fmt.Errorf("model %s: %w", model.ID, err)}
		}
		backends[model.ID] = backend
	}
	return backends
}

func (a *app) buildBackend(ctx context.Context, model domain.ModelConfig) (ports.ModelBackend, error) {
	switch model.Provider {
	case domain.ProviderScripted:
		if path := strings.TrimSpace(a.cfg.Ensemble.ScriptFile); path != "" {
			return scripted.Load(path)
		}
		return scripted.Demo(), nil
	case domain.ProviderOpenAI:
		key, err := a.credentials.Get(ctx, credentialRef(model))
		if err != nil {
			return nil, err
		}
		return openai.New(openai.Config{APIKey: key, BaseURL: model.BaseURL, Model: model.ModelName()}), nil
	case domain.ProviderGemini:
		key, err := a.credentials.Get(ctx, credentialRef(model))
		if err != nil {
			return nil, err
		}
		return gemini.New(ctx, gemini.Config{APIKey: key, BaseURL: model.BaseURL, Model: model.ModelName()})
	default:
		return nil, fmt.Errorf("provider %q: %w", model.Provider, domain.ErrUnknownBackend)
	}
}

func credentialRef(model domain.ModelConfig) string {
	if ref := strings.TrimSpace(model.CredentialRef); ref != "" {
		return ref
	}
	return string(model.Provider)
}

func (a *app) buildActuator() (ports.Actuator, func() error, error) {
	noop := func() error { return nil }
	actuatorCfg := a.cfg.Actuator

	switch actuatorCfg.Kind {
	case config.ActuatorBridge:
		actuator, err := bridge.New(bridge.Config{Endpoint: actuatorCfg.Endpoint, Timeout: actuatorCfg.Timeout})
		if err != nil {
			return nil, nil, fmt.Errorf("wire bridge actuator: %w", err)
		}
		return actuator, noop, nil
	case config.ActuatorBrowser:
		driver := browser.NewRodDriver(browser.RodConfig{
			DebuggerURL:    actuatorCfg.DebuggerURL,
			Headless:       actuatorCfg.Headless,
			ElementTimeout: actuatorCfg.Timeout,
		})
		actuator, err := browser.New(driver, browser.Options{BaseURL: actuatorCfg.BaseURL, Logger: a.logger.Named("browser")})
		if err != nil {
			return nil, nil, fmt.Errorf("wire browser actuator: %w", err)
		}
		return actuator, driver.Close, nil
	default:
		return dryrun.New(a.logger.Named("dryrun")), noop, nil
	}
}

func (a *app) instructions() (string, error) {
	path := strings.TrimSpace(a.cfg.Ensemble.InstructionsFile)
	if path == "" {
		return application.DefaultInstructions, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read instructions file: %w", err)
	}
	return string(data), nil
}

type unavailableBackend struct {
	err error
}

func (b unavailableBackend) Complete(context.Context, ports.CompletionRequest) (string, error) {
	return "", b.err
}

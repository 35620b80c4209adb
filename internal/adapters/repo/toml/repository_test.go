package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, path string) *Repository {
	t.Helper()

	config := viper.New()
	config.Set(ModelsPathKey, path)

	repo, err := NewRepository(config)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "models.toml"))

	first := domain.ModelConfig{
		ID:            "gpt-4o-mini",
		Provider:      domain.ProviderOpenAI,
		Role:          domain.RolePrimary,
		Weight:        1,
		Enabled:       true,
		Rosters:       []domain.RosterName{domain.RosterFast, domain.RosterFull},
		CredentialRef: "openai",
		Timeout:       20 * time.Second,
	}
	second := domain.ModelConfig{
		ID:       "local",
		Provider: domain.ProviderOpenAI,
		Model:    "llama3.1",
		Role:     domain.RoleValidator,
		Weight:   0.4,
		Enabled:  false,
		Rosters:  []domain.RosterName{domain.RosterFull},
		BaseURL:  "http://localhost:11434/v1",
	}

	require.NoError(t, repo.Save(context.Background(), first))
	require.NoError(t, repo.Save(context.Background(), second))

	got, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	models, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Contains(t, models, first)
	assert.Contains(t, models, second)
}

func TestRepositoryMissingFileServesDefaultRoster(t *testing.T) {
	t.Parallel()

	modelsPath := filepath.Join(t.TempDir(), "missing", "models.toml")
	repo := newTestRepository(t, modelsPath)

	models, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultRoster(), models)

	_, err = repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrModelNotFound)

	_, err = os.Stat(modelsPath)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRepositoryFirstWriteKeepsDefaults(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "models.toml"))

	require.NoError(t, repo.Delete(context.Background(), "gpt-4o"))

	models, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, models, len(DefaultRoster())-1)
	for _, model := range models {
		assert.NotEqual(t, domain.ModelID("gpt-4o"), model.ID)
	}

	err = repo.Delete(context.Background(), "gpt-4o")
	require.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestRepositoryEnabledDefaultsToTrue(t *testing.T) {
	t.Parallel()

	modelsPath := filepath.Join(t.TempDir(), "models.toml")
	require.NoError(t, os.WriteFile(modelsPath, []byte(strings.Join([]string{
		"version = 1",
		"",
		"[[models]]",
		`id = "scripted"`,
		`provider = "scripted"`,
		`role = "primary"`,
		"weight = 1.0",
		`rosters = ["fast"]`,
		"",
	}, "\n")), 0o600))

	repo := newTestRepository(t, modelsPath)

	model, err := repo.GetByID(context.Background(), "scripted")
	require.NoError(t, err)
	assert.True(t, model.Enabled)
	assert.Equal(t, []domain.RosterName{domain.RosterFast}, model.Rosters)
}

func TestRepositorySaveRejectsInvalidModel(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "models.toml"))

	err := repo.Save(context.Background(), domain.ModelConfig{ID: "x", Provider: "anthropic", Role: domain.RolePrimary})
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	err = repo.Save(context.Background(), domain.ModelConfig{
		ID:       "gemini-2.0-flash",
		Provider: domain.ProviderGemini,
		Role:     domain.RolePrimary,
		Weight:   1,
		Enabled:  true,
		Rosters:  []domain.RosterName{domain.RosterFast},
	})
	require.NoError(t, err)

	modelsPath := filepath.Join(homeDir, ".shopvoice", "models.toml")
	assert.Equal(t, modelsPath, repo.Path())
	info, err := os.Stat(modelsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryListMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	modelsPath := filepath.Join(t.TempDir(), "models.toml")
	require.NoError(t, os.WriteFile(modelsPath, []byte("models = ["), 0o600))

	repo := newTestRepository(t, modelsPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode models file")
}

func TestRepositoryListInvalidTimeoutReturnsError(t *testing.T) {
	t.Parallel()

	modelsPath := filepath.Join(t.TempDir(), "models.toml")
	require.NoError(t, os.WriteFile(modelsPath, []byte(strings.Join([]string{
		"[[models]]",
		`id = "slow"`,
		`provider = "openai"`,
		`role = "primary"`,
		`timeout = "forever"`,
		"",
	}, "\n")), 0o600))

	repo := newTestRepository(t, modelsPath)

	_, err := repo.List(context.Background())
	assert.ErrorContains(t, err, "parse timeout")
}

func TestRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "models.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, domain.ModelConfig{ID: "x", Provider: domain.ProviderOpenAI, Role: domain.RolePrimary})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRepositoryConcurrentSavesAcrossInstancesPreserveBothModels(t *testing.T) {
	t.Parallel()

	modelsPath := filepath.Join(t.TempDir(), "models.toml")
	repoA := newTestRepository(t, modelsPath)
	repoB := newTestRepository(t, modelsPath)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	write := func(repo *Repository, prefix string) {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			errCh <- repo.Save(context.Background(), domain.ModelConfig{
				ID:       domain.ModelID(prefix + strconv.Itoa(i)),
				Provider: domain.ProviderScripted,
				Role:     domain.RoleRefiner,
				Weight:   0.5,
			})
		}
	}
	go write(repoA, "a-")
	go write(repoB, "b-")

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	models, err := repoA.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, models, perRepoWrites*2+len(DefaultRoster()))
}

func TestRepositorySerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	modelsPath := filepath.Join(t.TempDir(), "models.toml")
	repo := newTestRepository(t, modelsPath)

	require.NoError(t, repo.Save(context.Background(), domain.ModelConfig{ID: "x", Provider: domain.ProviderScripted, Role: domain.RolePrimary, Weight: 1}))

	data, err := os.ReadFile(modelsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "[[models]]")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	modelsPath := filepath.Join(t.TempDir(), "models.toml")
	require.NoError(t, os.WriteFile(modelsPath, []byte("version = 999\n\nmodels = []\n"), 0o600))

	repo := newTestRepository(t, modelsPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported models schema version")
}

package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	ModelsPathKey    = "models.path"
	modelsFileMode   = 0o600
	modelsDirMode    = 0o700
	modelsConfigDir  = ".shopvoice"
	modelsConfigFile = "models.toml"
	tempFilePattern  = ".models-*.toml.tmp"
)

// Repository stores the model roster in a TOML file. Until the file exists the
// built-in DefaultRoster is served, and the first write persists it.
type Repository struct {
	modelsPath string
	mu         *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.RosterRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cfg.SetDefault(ModelsPathKey, filepath.Join(homeDir, modelsConfigDir, modelsConfigFile))

	modelsPath := cfg.GetString(ModelsPathKey)
	if modelsPath == "" {
		return nil, errors.New("models path is empty")
	}
	modelsPath, err = normalizeModelsPath(modelsPath)
	if err != nil {
		return nil, err
	}

	return &Repository{modelsPath: modelsPath, mu: lockForPath(modelsPath)}, nil
}

// Path returns the absolute location of the roster file.
func (r *Repository) Path() string {
	return r.modelsPath
}

func (r *Repository) Save(ctx context.Context, model domain.ModelConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := model.Validate(); err != nil {
		return fmt.Errorf("invalid model: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(model)
	updated := false
	for i := range file.Models {
		if file.Models[i].ID == encoded.ID {
			file.Models[i] = encoded
			updated = true
			break
		}
	}

	if !updated {
		file.Models = append(file.Models, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) Delete(ctx context.Context, id domain.ModelID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	kept := file.Models[:0]
	found := false
	for _, entry := range file.Models {
		if entry.ID == string(id) {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return fmt.Errorf("model %s: %w", id, domain.ErrModelNotFound)
	}
	file.Models = kept

	return r.writeSchema(file)
}

func (r *Repository) GetByID(ctx context.Context, id domain.ModelID) (domain.ModelConfig, error) {
	if err := ctx.Err(); err != nil {
		return domain.ModelConfig{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.ModelConfig{}, err
	}

	for _, entry := range file.Models {
		if entry.ID == string(id) {
			return fromSchema(entry)
		}
	}

	return domain.ModelConfig{}, domain.ErrModelNotFound
}

func (r *Repository) List(ctx context.Context) ([]domain.ModelConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	models := make([]domain.ModelConfig, 0, len(file.Models))
	for _, entry := range file.Models {
		model, err := fromSchema(entry)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}

	return models, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.modelsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultSchema(), nil
		}
		return fileSchema{}, fmt.Errorf("read models file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode models file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeModelsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve models path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.modelsPath), modelsDirMode); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode models file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.modelsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp models file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp models file: %w", err)
	}

	if err := tempFile.Chmod(modelsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp models file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp models file: %w", err)
	}

	if err := os.Rename(tempName, r.modelsPath); err != nil {
		return fmt.Errorf("replace models file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.modelsPath, modelsFileMode); err != nil {
		return fmt.Errorf("chmod models file: %w", err)
	}

	return nil
}

func toSchema(model domain.ModelConfig) modelSchema {
	enabled := model.Enabled
	rosters := make([]string, 0, len(model.Rosters))
	for _, roster := range model.Rosters {
		rosters = append(rosters, string(roster))
	}

	out := modelSchema{
		ID:            string(model.ID),
		Provider:      string(model.Provider),
		Model:         model.Model,
		Role:          string(model.Role),
		Weight:        model.Weight,
		Enabled:       &enabled,
		Rosters:       rosters,
		CredentialRef: model.CredentialRef,
		BaseURL:       model.BaseURL,
	}
	if model.Timeout > 0 {
		out.Timeout = model.Timeout.String()
	}

	return out
}

func fromSchema(entry modelSchema) (domain.ModelConfig, error) {
	rosters := make([]domain.RosterName, 0, len(entry.Rosters))
	for _, roster := range entry.Rosters {
		rosters = append(rosters, domain.RosterName(roster))
	}

	model := domain.ModelConfig{
		ID:            domain.ModelID(entry.ID),
		Provider:      domain.Provider(entry.Provider),
		Model:         entry.Model,
		Role:          domain.ModelRole(entry.Role),
		Weight:        entry.Weight,
		Enabled:       entry.Enabled == nil || *entry.Enabled,
		Rosters:       rosters,
		CredentialRef: entry.CredentialRef,
		BaseURL:       entry.BaseURL,
	}

	if entry.Timeout != "" {
		timeout, err := time.ParseDuration(entry.Timeout)
		if err != nil {
			return domain.ModelConfig{}, fmt.Errorf("model %s: parse timeout: %w", entry.ID, err)
		}
		model.Timeout = timeout
	}

	return model, nil
}

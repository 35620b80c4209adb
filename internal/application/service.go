package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
)

// ModelService manages the model roster and the credentials its backends use.
type ModelService struct {
	repo  ports.RosterRepository
	store ports.CredentialStore
}

func NewModelService(repo ports.RosterRepository, store ports.CredentialStore) *ModelService {
	return &ModelService{repo: repo, store: store}
}

func (s *ModelService) SetModel(ctx context.Context, cmd SetModelCommand) (domain.ModelConfig, error) {
	model, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrModelNotFound) {
			return domain.ModelConfig{}, fmt.Errorf("get model by id: %w", err)
		}
		model = domain.ModelConfig{
			ID:      cmd.ID,
			Role:    domain.RolePrimary,
			Weight:  1,
			Enabled: true,
			Rosters: []domain.RosterName{domain.RosterFast, domain.RosterFull},
		}
	}

	cmd.apply(&model)
	if err := model.Validate(); err != nil {
		return domain.ModelConfig{}, fmt.Errorf("invalid model %s: %w", cmd.ID, err)
	}

	if err := s.repo.Save(ctx, model); err != nil {
		return domain.ModelConfig{}, fmt.Errorf("save model: %w", err)
	}

	return model, nil
}

func (s *ModelService) RemoveModel(ctx context.Context, id domain.ModelID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	return nil
}

// SetCredential stores secret under ref and points the model at it. The previous
// credential is deleted only after the model has been saved, and every partial
// failure is rolled back.
func (s *ModelService) SetCredential(ctx context.Context, cmd SetCredentialCommand) error {
	model, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("get model by id: %w", err)
	}
	original := model

	ref := strings.TrimSpace(cmd.Ref)
	if ref == "" {
		ref = defaultCredentialRef(cmd.ID)
	}

	if err := s.store.Put(ctx, ref, cmd.Secret); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	model.CredentialRef = ref
	if err := s.repo.Save(ctx, model); err != nil {
		if rollbackErr := s.store.Delete(ctx, ref); rollbackErr != nil {
			return fmt.Errorf("save model credential and rollback stored secret: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("save model credential: %w", err)
	}

	previous := original.CredentialRef
	if previous == "" || previous == ref || s.referencedElsewhere(ctx, previous, cmd.ID) {
		return nil
	}

	if err := s.store.Delete(ctx, previous); err != nil && !errors.Is(err, domain.ErrCredentialNotFound) {
		var rollbackErr error
		if restoreErr := s.repo.Save(ctx, original); restoreErr != nil {
			rollbackErr = errors.Join(rollbackErr, restoreErr)
		}
		if deleteErr := s.store.Delete(ctx, ref); deleteErr != nil {
			rollbackErr = errors.Join(rollbackErr, deleteErr)
		}
		if rollbackErr != nil {
			return fmt.Errorf("delete previous credential and rollback update: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("delete previous credential: %w", err)
	}

	return nil
}

// RemoveCredential detaches the credential from the model and deletes it unless
// another model still references it.
func (s *ModelService) RemoveCredential(ctx context.Context, id domain.ModelID) error {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get model by id: %w", err)
	}

	ref := model.CredentialRef
	if ref == "" {
		return nil
	}

	model.CredentialRef = ""
	if err := s.repo.Save(ctx, model); err != nil {
		return fmt.Errorf("save model credential: %w", err)
	}

	if s.referencedElsewhere(ctx, ref, id) {
		return nil
	}

	if err := s.store.Delete(ctx, ref); err != nil && !errors.Is(err, domain.ErrCredentialNotFound) {
		model.CredentialRef = ref
		if restoreErr := s.repo.Save(ctx, model); restoreErr != nil {
			return fmt.Errorf("delete credential and restore ref: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete credential: %w", err)
	}

	return nil
}

func (s *ModelService) ListModels(ctx context.Context) ([]ModelStatus, error) {
	models, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID < models[j].ID
	})

	out := make([]ModelStatus, 0, len(models))
	for _, model := range models {
		status := ModelStatus{Model: model}
		if model.CredentialRef != "" {
			if _, err := s.store.Get(ctx, model.CredentialRef); err == nil {
				status.HasCredential = true
			} else if !errors.Is(err, domain.ErrCredentialNotFound) {
				return nil, fmt.Errorf("check credential %s: %w", model.CredentialRef, err)
			}
		}
		out = append(out, status)
	}

	return out, nil
}

func (s *ModelService) referencedElsewhere(ctx context.Context, ref string, except domain.ModelID) bool {
	models, err := s.repo.List(ctx)
	if err != nil {
		// Keep the secret when in doubt.
		return true
	}
	for _, model := range models {
		if model.ID != except && model.CredentialRef == ref {
			return true
		}
	}
	return false
}

func defaultCredentialRef(id domain.ModelID) string {
	return strings.ToLower(string(id))
}

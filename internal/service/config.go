package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
	"github.com/iliyamo/raffle-ticket-sales/internal/repository"
)

// ConfigService reads and edits the raffle configuration.
type ConfigService struct {
	repo *repository.RaffleConfigRepo
}

func NewConfigService(repo *repository.RaffleConfigRepo) *ConfigService {
	return &ConfigService{repo: repo}
}

func (s *ConfigService) Get(ctx context.Context) (model.RaffleConfig, error) {
	c, err := s.repo.Get(ctx)
	if errors.Is(err, repository.ErrConfigNotFound) {
		return c, notFoundErr("configuration not found", err)
	}
	if err != nil {
		return c, internalErr("load configuration", err)
	}
	return c, nil
}

// Update applies a partial update and returns the stored configuration.
func (s *ConfigService) Update(ctx context.Context, p model.RaffleConfigPatch) (model.RaffleConfig, error) {
	if err := p.Validate(); err != nil {
		if errors.Is(err, model.ErrEmptyPatch) {
			return model.RaffleConfig{}, validationErr("no fields to update", err)
		}
		return model.RaffleConfig{}, validationErr("invalid configuration", err, fieldDetails(err)...)
	}
	err := s.repo.Update(ctx, p)
	if errors.Is(err, repository.ErrConfigNotFound) {
		return model.RaffleConfig{}, notFoundErr("configuration not found", err)
	}
	if err != nil {
		return model.RaffleConfig{}, internalErr("update configuration", err)
	}
	return s.Get(ctx)
}

// UpdateField sets a single field named by the client.
func (s *ConfigService) UpdateField(ctx context.Context, name string, raw json.RawMessage) (model.RaffleConfig, error) {
	f, err := model.ParseConfigField(name)
	if err != nil {
		return model.RaffleConfig{}, validationErr(err.Error(), err)
	}
	p, err := model.PatchForField(f, raw)
	if err != nil {
		return model.RaffleConfig{}, validationErr(err.Error(), err)
	}
	return s.Update(ctx, p)
}

package service

import (
	"context"

	"cebuano/internal/domain"
	"cebuano/internal/repository"
)

// SettingsService handles learner provisioning and preferences
type SettingsService struct {
	userRepo repository.UserRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(userRepo repository.UserRepository) *SettingsService {
	return &SettingsService{userRepo: userRepo}
}

// EnsureUser creates the learner record if it doesn't exist
func (s *SettingsService) EnsureUser(ctx context.Context, userID string) error {
	return s.userRepo.EnsureUserExists(ctx, userID)
}

// GetSettings returns normalized learner settings
func (s *SettingsService) GetSettings(ctx context.Context, userID string) (domain.Settings, error) {
	settings, err := s.userRepo.GetSettings(ctx, userID)
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.NormalizeSettings(settings), nil
}

// UpdateSettings normalizes and stores learner settings
func (s *SettingsService) UpdateSettings(ctx context.Context, userID string, settings domain.Settings) (domain.Settings, error) {
	settings = domain.NormalizeSettings(settings)
	if err := s.userRepo.UpdateSettings(ctx, userID, settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

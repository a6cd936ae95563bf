package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vibin_quest_backend/internal/model"
	"vibin_quest_backend/internal/repository"
)

type WaitlistService struct {
	repo WaitlistRepository
}

func NewWaitlistService(repo WaitlistRepository) *WaitlistService {
	return &WaitlistService{
		repo: repo,
	}
}

// NormalizeEmail lower-cases and trims an email the way the waitlist
// stores it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *WaitlistService) Signup(ctx context.Context, email string) (int, error) {
	position, err := s.repo.AddWaitlistEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return 0, fmt.Errorf("failed to add waitlist email: %w", err)
	}
	return position, nil
}

func (s *WaitlistService) List(ctx context.Context) ([]*model.WaitlistEntry, error) {
	entries, err := s.repo.ListWaitlistEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist emails: %w", err)
	}
	return entries, nil
}

func (s *WaitlistService) Delete(ctx context.Context, email string) error {
	err := s.repo.DeleteWaitlistEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("failed to delete waitlist email: %w", err)
	}
	return nil
}

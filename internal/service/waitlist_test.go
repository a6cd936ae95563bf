package service

import (
	"context"
	"testing"

	"vibin_quest_backend/internal/repository"
	"vibin_quest_backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "fan@example.com", NormalizeEmail("  Fan@Example.COM "))
	assert.Equal(t, "fan@example.com", NormalizeEmail("fan@example.com"))
}

func TestWaitlistService_Signup(t *testing.T) {
	mockRepo := &mocks.MockWaitlistRepository{}
	mockRepo.On("AddWaitlistEmail", mock.Anything, "fan@example.com").
		Return(7, nil)

	s := NewWaitlistService(mockRepo)

	position, err := s.Signup(context.Background(), " Fan@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, 7, position)

	// repeat signups are idempotent at the repository level
	position, err = s.Signup(context.Background(), "fan@example.com")
	require.NoError(t, err)
	assert.Equal(t, 7, position)

	mockRepo.AssertExpectations(t)
}

func TestWaitlistService_Delete(t *testing.T) {
	mockRepo := &mocks.MockWaitlistRepository{}
	mockRepo.On("DeleteWaitlistEmail", mock.Anything, "fan@example.com").
		Return(nil)
	mockRepo.On("DeleteWaitlistEmail", mock.Anything, "ghost@example.com").
		Return(repository.ErrNotFound)

	s := NewWaitlistService(mockRepo)

	require.NoError(t, s.Delete(context.Background(), "Fan@example.com"))
	assert.ErrorIs(t, s.Delete(context.Background(), "ghost@example.com"), ErrEmailNotFound)

	mockRepo.AssertExpectations(t)
}

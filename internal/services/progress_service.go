package services

import (
	"context"
	"fmt"

	"github.com/orbitlearn/backend/internal/models"
)

// ProgressRepository defines methods for user progress data access
type ProgressRepository interface {
	// Upsert records lesson completion for a user; re-completing is a no-op.
	// The bool result reports whether a new row was inserted.
	Upsert(ctx context.Context, userID, lessonID int) (bool, error)
	// GetByUserID retrieves all progress records for a user joined with lesson info
	GetByUserID(ctx context.Context, userID int) ([]models.ProgressListItem, error)
	// CountByUserID counts completed lessons for a user
	CountByUserID(ctx context.Context, userID int) (int, error)
}

// ProgressSummary is the user progress list response
type ProgressSummary struct {
	Completed int                       `json:"completed"`
	Items     []models.ProgressListItem `json:"items"`
}

type progressService struct {
	progressRepo ProgressRepository
	lessonRepo   LessonRepository
}

// NewProgressService creates a new progress service
func NewProgressService(progressRepo ProgressRepository, lessonRepo LessonRepository) *progressService {
	return &progressService{
		progressRepo: progressRepo,
		lessonRepo:   lessonRepo,
	}
}

// ListProgress retrieves the user's progress records with a completion count
func (s *progressService) ListProgress(ctx context.Context, userID int) (*ProgressSummary, error) {
	items, err := s.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	return &ProgressSummary{
		Completed: len(items),
		Items:     items,
	}, nil
}

// RecordProgress marks a lesson as completed for a user. Recording an
// already-completed lesson succeeds without changing anything.
func (s *progressService) RecordProgress(ctx context.Context, userID int, req *models.RecordProgressRequest) error {
	if req.LessonSlug == "" {
		return fmt.Errorf("lessonSlug is required")
	}

	lesson, err := s.lessonRepo.GetBySlug(ctx, req.LessonSlug)
	if err != nil {
		return fmt.Errorf("failed to get lesson: %w", err)
	}

	if _, err := s.progressRepo.Upsert(ctx, userID, lesson.ID); err != nil {
		return fmt.Errorf("failed to record progress: %w", err)
	}

	return nil
}

package services

import (
	"context"
	"fmt"

	"github.com/orbitlearn/backend/internal/models"
)

// LessonRepository defines methods for lesson data access
type LessonRepository interface {
	// GetBySlug retrieves a lesson by slug
	GetBySlug(ctx context.Context, slug string) (*models.Lesson, error)
	// GetBySlugWithCompletion retrieves a lesson by slug with completion status for a user
	GetBySlugWithCompletion(ctx context.Context, slug string, userID int) (*models.LessonListItem, error)
	// GetAllWithCompletion retrieves all lessons with completion status for a user, sorted by position
	GetAllWithCompletion(ctx context.Context, userID int) ([]models.LessonListItem, error)
}

type lessonService struct {
	lessonRepo LessonRepository
}

// NewLessonService creates a new lesson service
func NewLessonService(lessonRepo LessonRepository) *lessonService {
	return &lessonService{
		lessonRepo: lessonRepo,
	}
}

// GetLessons retrieves the ordered lesson list with completion flags for a user
func (s *lessonService) GetLessons(ctx context.Context, userID int) ([]models.LessonListItem, error) {
	lessons, err := s.lessonRepo.GetAllWithCompletion(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}

	return lessons, nil
}

// GetLesson retrieves a single lesson with completion flag for a user
func (s *lessonService) GetLesson(ctx context.Context, slug string, userID int) (*models.LessonListItem, error) {
	lesson, err := s.lessonRepo.GetBySlugWithCompletion(ctx, slug, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	return lesson, nil
}

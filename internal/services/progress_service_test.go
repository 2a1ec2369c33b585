package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orbitlearn/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProgressRepository is a mock implementation of ProgressRepository
type mockProgressRepository struct {
	items    []models.ProgressListItem
	inserted bool
	err      error
	upserts  [][2]int
}

func (m *mockProgressRepository) Upsert(ctx context.Context, userID, lessonID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.upserts = append(m.upserts, [2]int{userID, lessonID})
	return m.inserted, nil
}

func (m *mockProgressRepository) GetByUserID(ctx context.Context, userID int) ([]models.ProgressListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockProgressRepository) CountByUserID(ctx context.Context, userID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.items), nil
}

// mockLessonRepository is a mock implementation of LessonRepository
type mockLessonRepository struct {
	lesson  *models.Lesson
	item    *models.LessonListItem
	items   []models.LessonListItem
	err     error
	lookups []string
}

func (m *mockLessonRepository) GetBySlug(ctx context.Context, slug string) (*models.Lesson, error) {
	m.lookups = append(m.lookups, slug)
	if m.err != nil {
		return nil, m.err
	}
	return m.lesson, nil
}

func (m *mockLessonRepository) GetBySlugWithCompletion(ctx context.Context, slug string, userID int) (*models.LessonListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

func (m *mockLessonRepository) GetAllWithCompletion(ctx context.Context, userID int) ([]models.LessonListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func TestProgressService_ListProgress(t *testing.T) {
	completedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		progressRepo  *mockProgressRepository
		expectedError bool
		expectedCount int
	}{
		{
			name: "success with completed lessons",
			progressRepo: &mockProgressRepository{items: []models.ProgressListItem{
				{LessonSlug: "getting-started", LessonTitle: "Getting Started", CompletedAt: completedAt},
				{LessonSlug: "core-concepts", LessonTitle: "Core Concepts", CompletedAt: completedAt},
			}},
			expectedError: false,
			expectedCount: 2,
		},
		{
			name:          "success with no progress",
			progressRepo:  &mockProgressRepository{items: []models.ProgressListItem{}},
			expectedError: false,
			expectedCount: 0,
		},
		{
			name:          "repository error",
			progressRepo:  &mockProgressRepository{err: errors.New("database error")},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProgressService(tt.progressRepo, &mockLessonRepository{})

			summary, err := svc.ListProgress(context.Background(), 1)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, summary)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedCount, summary.Completed)
				assert.Len(t, summary.Items, tt.expectedCount)
			}
		})
	}
}

func TestProgressService_RecordProgress(t *testing.T) {
	tests := []struct {
		name          string
		lessonSlug    string
		progressRepo  *mockProgressRepository
		lessonRepo    *mockLessonRepository
		expectedError bool
		errorContains string
	}{
		{
			name:          "success first completion",
			lessonSlug:    "getting-started",
			progressRepo:  &mockProgressRepository{inserted: true},
			lessonRepo:    &mockLessonRepository{lesson: &models.Lesson{ID: 3, Slug: "getting-started"}},
			expectedError: false,
		},
		{
			name:          "success repeated completion",
			lessonSlug:    "getting-started",
			progressRepo:  &mockProgressRepository{inserted: false},
			lessonRepo:    &mockLessonRepository{lesson: &models.Lesson{ID: 3, Slug: "getting-started"}},
			expectedError: false,
		},
		{
			name:          "missing lesson slug",
			lessonSlug:    "",
			progressRepo:  &mockProgressRepository{},
			lessonRepo:    &mockLessonRepository{},
			expectedError: true,
			errorContains: "lessonSlug is required",
		},
		{
			name:          "lesson not found",
			lessonSlug:    "no-such-lesson",
			progressRepo:  &mockProgressRepository{},
			lessonRepo:    &mockLessonRepository{err: errors.New("lesson not found")},
			expectedError: true,
			errorContains: "failed to get lesson",
		},
		{
			name:          "upsert error",
			lessonSlug:    "getting-started",
			progressRepo:  &mockProgressRepository{err: errors.New("database error")},
			lessonRepo:    &mockLessonRepository{lesson: &models.Lesson{ID: 3, Slug: "getting-started"}},
			expectedError: true,
			errorContains: "failed to record progress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProgressService(tt.progressRepo, tt.lessonRepo)

			err := svc.RecordProgress(context.Background(), 1, &models.RecordProgressRequest{
				LessonSlug: tt.lessonSlug,
			})

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Empty(t, tt.progressRepo.upserts)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, [][2]int{{1, 3}}, tt.progressRepo.upserts)
			}
		})
	}
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/orbitlearn/backend/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// GetBySlug retrieves a lesson by its slug
func (r *lessonRepository) GetBySlug(ctx context.Context, slug string) (*models.Lesson, error) {
	query := `
		SELECT id, slug, title, short_summary, position
		FROM lessons
		WHERE slug = $1
		LIMIT 1
	`

	var lesson models.Lesson
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&lesson.ID,
		&lesson.Slug,
		&lesson.Title,
		&lesson.ShortSummary,
		&lesson.Order,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lesson not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by slug: %w", err)
	}

	return &lesson, nil
}

// GetBySlugWithCompletion retrieves a lesson by slug with completion status for a user
func (r *lessonRepository) GetBySlugWithCompletion(ctx context.Context, slug string, userID int) (*models.LessonListItem, error) {
	query := `
		SELECT
			l.slug,
			l.title,
			l.short_summary,
			l.position,
			CASE WHEN p.id IS NOT NULL THEN true ELSE false END as completed
		FROM lessons l
		LEFT JOIN user_progress p ON p.lesson_id = l.id AND p.user_id = $1
		WHERE l.slug = $2
		LIMIT 1
	`

	var lesson models.LessonListItem
	err := r.db.QueryRowContext(ctx, query, userID, slug).Scan(
		&lesson.Slug,
		&lesson.Title,
		&lesson.ShortSummary,
		&lesson.Order,
		&lesson.Completed,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lesson not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by slug: %w", err)
	}

	return &lesson, nil
}

// GetAllWithCompletion retrieves all lessons with completion status for a user, sorted by position
func (r *lessonRepository) GetAllWithCompletion(ctx context.Context, userID int) ([]models.LessonListItem, error) {
	query := `
		SELECT
			l.slug,
			l.title,
			l.short_summary,
			l.position,
			CASE WHEN p.id IS NOT NULL THEN true ELSE false END as completed
		FROM lessons l
		LEFT JOIN user_progress p ON p.lesson_id = l.id AND p.user_id = $1
		ORDER BY l.position
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.LessonListItem
	for rows.Next() {
		var lesson models.LessonListItem
		err := rows.Scan(
			&lesson.Slug,
			&lesson.Title,
			&lesson.ShortSummary,
			&lesson.Order,
			&lesson.Completed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

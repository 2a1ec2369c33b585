package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/orbitlearn/backend/internal/models"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// Upsert records lesson completion for a user. Re-completing a lesson is a no-op;
// the bool result reports whether a new row was inserted.
func (r *progressRepository) Upsert(ctx context.Context, userID, lessonID int) (bool, error) {
	query := `
		INSERT INTO user_progress (user_id, lesson_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, lesson_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, userID, lessonID)
	if err != nil {
		return false, fmt.Errorf("failed to record progress: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Exists checks if a progress record exists for user and lesson
func (r *progressRepository) Exists(ctx context.Context, userID, lessonID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_progress WHERE user_id = $1 AND lesson_id = $2)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, lessonID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check progress existence: %w", err)
	}

	return exists, nil
}

// GetByUserID retrieves all progress records for a user joined with lesson info
func (r *progressRepository) GetByUserID(ctx context.Context, userID int) ([]models.ProgressListItem, error) {
	query := `
		SELECT l.slug, l.title, p.completed_at
		FROM user_progress p
		JOIN lessons l ON l.id = p.lesson_id
		WHERE p.user_id = $1
		ORDER BY p.completed_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var items []models.ProgressListItem
	for rows.Next() {
		var item models.ProgressListItem
		err := rows.Scan(&item.LessonSlug, &item.LessonTitle, &item.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// CountByUserID counts completed lessons for a user
func (r *progressRepository) CountByUserID(ctx context.Context, userID int) (int, error) {
	query := `SELECT COUNT(*) FROM user_progress WHERE user_id = $1`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count progress: %w", err)
	}

	return count, nil
}

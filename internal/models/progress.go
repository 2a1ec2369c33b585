package models

import "time"

// Progress represents a user's completion record for a lesson
type Progress struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	LessonID    int       `json:"lessonId"`
	CompletedAt time.Time `json:"completedAt"`
}

// ProgressListItem represents a progress record joined with lesson info
type ProgressListItem struct {
	LessonSlug  string    `json:"lessonSlug"`
	LessonTitle string    `json:"lessonTitle"`
	CompletedAt time.Time `json:"completedAt"`
}

// RecordProgressRequest represents a request to record lesson completion
type RecordProgressRequest struct {
	LessonSlug string `json:"lessonSlug"`
}

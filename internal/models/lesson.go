package models

// Lesson represents a lesson in the catalog
type Lesson struct {
	ID           int    `json:"id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	ShortSummary string `json:"shortSummary"`
	Order        int    `json:"order"`
}

// LessonListItem represents a lesson in user list responses
type LessonListItem struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	ShortSummary string `json:"shortSummary,omitempty"`
	Order        int    `json:"order,omitempty"`
	Completed    bool   `json:"completed"`
}

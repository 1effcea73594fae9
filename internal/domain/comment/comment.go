package comment

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("comment not found")

// One comment per (teacher, student, class); saving again overwrites.
type Comment struct {
	ID                string    `json:"id"`
	StudentID         string    `json:"student_id"`
	TeacherID         string    `json:"teacher_id"`
	ClassID           string    `json:"class_id"`
	CommentText       string    `json:"comment_text"`
	PerformanceRating *int      `json:"performance_rating,omitempty"`
	EngagementRating  *int      `json:"engagement_rating,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type SaveCommentRequest struct {
	StudentID         string `json:"student_id" binding:"required"`
	ClassID           string `json:"class_id" binding:"required"`
	CommentText       string `json:"comment_text" binding:"required,max=4000"`
	PerformanceRating *int   `json:"performance_rating" binding:"omitempty,min=1,max=5"`
	EngagementRating  *int   `json:"engagement_rating" binding:"omitempty,min=1,max=5"`
}

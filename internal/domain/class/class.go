package class

import "errors"

var ErrNotFound = errors.New("class not found")

// Class owns its roster's year level: every enrolled student must match
// YearLevel at all times.
type Class struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	SubjectID string `json:"subject_id"`
	TeacherID string `json:"teacher_id"`
	YearLevel string `json:"year_level"`
	ClassName string `json:"class_name"`
}

// Subject may be given by id or by catalog name; exactly one is needed.
type CreateClassRequest struct {
	SubjectID   string   `json:"subject_id"`
	SubjectName string   `json:"subject_name"`
	TeacherID   string   `json:"teacher_id" binding:"required"`
	YearLevel   string   `json:"year_level" binding:"required,oneof=9 10 11 12"`
	ClassName   string   `json:"class_name" binding:"required,min=1,max=120"`
	StudentIDs  []string `json:"student_ids"`
}

type UpdateClassRequest struct {
	SubjectID   *string   `json:"subject_id"`
	SubjectName *string   `json:"subject_name"`
	TeacherID   *string   `json:"teacher_id"`
	YearLevel   *string   `json:"year_level" binding:"omitempty,oneof=9 10 11 12"`
	ClassName   *string   `json:"class_name" binding:"omitempty,min=1,max=120"`
	StudentIDs  *[]string `json:"student_ids"`
}

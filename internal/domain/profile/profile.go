package profile

import "errors"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Year levels the school runs. Kept as strings end to end; the data store
// stores them that way and nothing arithmetic ever happens to them.
const (
	Year9  = "9"
	Year10 = "10"
	Year11 = "11"
	Year12 = "12"
)

var ErrNotFound = errors.New("profile not found")

// Profile is the tenant-scoped identity row. SchoolID is the partition key:
// every cross-entity lookup must re-filter by it.
type Profile struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	Role      Role   `json:"role"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	YearLevel string `json:"year_level,omitempty"`
}

type AddStudentRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FullName  string `json:"full_name" binding:"required,min=1,max=120"`
	YearLevel string `json:"year_level" binding:"required,oneof=9 10 11 12"`
}

type AddTeacherRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,min=1,max=120"`
}

type UpdateTeacherRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=1,max=120"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

// UpdateStudentRequest distinguishes "field absent" from "field empty" with
// pointers; ClassIDs replaces the student's whole enrollment set.
type UpdateStudentRequest struct {
	FullName  *string   `json:"full_name" binding:"omitempty,min=1,max=120"`
	YearLevel *string   `json:"year_level" binding:"omitempty,oneof=9 10 11 12"`
	ClassIDs  *[]string `json:"class_ids"`
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/assessment"
	"github.com/launchpadhq/schoolhub/internal/domain/class"
	"github.com/launchpadhq/schoolhub/internal/domain/comment"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
)

type TeacherClasses interface {
	Get(ctx context.Context, schoolID, id string) (class.Class, error)
	ListByTeacher(ctx context.Context, schoolID, teacherID string) ([]class.Class, error)
}

type TeacherEnrollments interface {
	ListStudentIDs(ctx context.Context, classID string) ([]string, error)
}

type TeacherStudents interface {
	GetInSchool(ctx context.Context, schoolID, id string, role profile.Role) (profile.Profile, error)
	ListStudentsByIDs(ctx context.Context, schoolID string, ids []string) ([]profile.Profile, error)
}

type TeacherComments interface {
	Find(ctx context.Context, teacherID, studentID, classID string) (comment.Comment, error)
	ListByStudent(ctx context.Context, studentID string) ([]comment.Comment, error)
	Insert(ctx context.Context, row datastore.Record) (comment.Comment, error)
	Update(ctx context.Context, id string, fields datastore.Record) error
	Delete(ctx context.Context, id string) error
}

type TeacherAssessments interface {
	GetByUser(ctx context.Context, userID string) (assessment.Result, error)
}

type TeacherHandler struct {
	classes     TeacherClasses
	enrollments TeacherEnrollments
	students    TeacherStudents
	comments    TeacherComments
	assessments TeacherAssessments
}

func NewTeacherHandler(
	classes TeacherClasses,
	enrollments TeacherEnrollments,
	students TeacherStudents,
	comments TeacherComments,
	assessments TeacherAssessments,
) *TeacherHandler {
	return &TeacherHandler{
		classes:     classes,
		enrollments: enrollments,
		students:    students,
		comments:    comments,
		assessments: assessments,
	}
}

// ListStudents returns every student enrolled in at least one of the
// teacher's classes, with the classes they share.
func (h *TeacherHandler) ListStudents(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	_, classesByStudent, err := h.studentMembership(rctx, p)
	if err != nil {
		RespondInternal(ctx, "Could not load class rosters")
		return
	}

	ids := make([]string, 0, len(classesByStudent))
	for id := range classesByStudent {
		ids = append(ids, id)
	}

	students, err := h.students.ListStudentsByIDs(rctx, p.SchoolID, ids)
	if err != nil {
		RespondInternal(ctx, "Could not load students")
		return
	}

	items := make([]gin.H, 0, len(students))
	for _, s := range students {
		names := make([]string, 0, len(classesByStudent[s.ID]))
		for _, c := range classesByStudent[s.ID] {
			names = append(names, c.ClassName)
		}

		items = append(items, gin.H{
			"id":         s.ID,
			"full_name":  s.FullName,
			"email":      s.Email,
			"year_level": s.YearLevel,
			"classes":    names,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// GetStudent returns one student's detail. A student that exists in the
// school but shares no class with the caller is forbidden, not hidden: the
// caller may know the student exists, they just may not read their record.
func (h *TeacherHandler) GetStudent(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	studentID := ctx.Param("id")
	rctx := ctx.Request.Context()

	student, err := h.students.GetInSchool(rctx, p.SchoolID, studentID, profile.RoleStudent)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Student not found")
			return
		}
		RespondInternal(ctx, "Could not load student")
		return
	}

	_, classesByStudent, err := h.studentMembership(rctx, p)
	if err != nil {
		RespondInternal(ctx, "Could not load class rosters")
		return
	}

	shared := classesByStudent[student.ID]
	if len(shared) == 0 {
		RespondForbidden(ctx, "Student is not in any of your classes")
		return
	}

	sharedItems := make([]gin.H, 0, len(shared))
	for _, c := range shared {
		sharedItems = append(sharedItems, gin.H{
			"id":         c.ID,
			"class_name": c.ClassName,
			"year_level": c.YearLevel,
		})
	}

	var result any
	res, err := h.assessments.GetByUser(rctx, student.ID)
	switch {
	case err == nil:
		result = res
	case errors.Is(err, assessment.ErrNotFound):
		result = nil
	default:
		RespondInternal(ctx, "Could not load assessment")
		return
	}

	comments, err := h.comments.ListByStudent(rctx, student.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load comments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"student":    student,
		"classes":    sharedItems,
		"assessment": result,
		"comments":   comments,
	})
}

// SaveComment inserts or overwrites the caller's comment for a (student,
// class) pair. The class must be the caller's own and the student must be on
// its roster.
func (h *TeacherHandler) SaveComment(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req comment.SaveCommentRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	cls, err := h.classes.Get(rctx, p.SchoolID, req.ClassID)
	if err != nil {
		if errors.Is(err, class.ErrNotFound) {
			RespondNotFound(ctx, "Class not found")
			return
		}
		RespondInternal(ctx, "Could not load class")
		return
	}
	if cls.TeacherID != p.ID {
		RespondForbidden(ctx, "You do not teach this class")
		return
	}

	roster, err := h.enrollments.ListStudentIDs(rctx, cls.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load class roster")
		return
	}
	if !contains(roster, req.StudentID) {
		RespondForbidden(ctx, "Student is not enrolled in this class")
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)

	existing, err := h.comments.Find(rctx, p.ID, req.StudentID, req.ClassID)
	switch {
	case err == nil:
		fields := datastore.Record{
			"comment_text": req.CommentText,
			"updated_at":   now,
		}
		if req.PerformanceRating != nil {
			fields["performance_rating"] = *req.PerformanceRating
		}
		if req.EngagementRating != nil {
			fields["engagement_rating"] = *req.EngagementRating
		}

		if err := h.comments.Update(rctx, existing.ID, fields); err != nil {
			RespondInternal(ctx, "Could not update comment")
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"status": "updated"})
	case errors.Is(err, comment.ErrNotFound):
		row := datastore.Record{
			"teacher_id":   p.ID,
			"student_id":   req.StudentID,
			"class_id":     req.ClassID,
			"comment_text": req.CommentText,
			"created_at":   now,
			"updated_at":   now,
		}
		if req.PerformanceRating != nil {
			row["performance_rating"] = *req.PerformanceRating
		}
		if req.EngagementRating != nil {
			row["engagement_rating"] = *req.EngagementRating
		}

		saved, err := h.comments.Insert(rctx, row)
		if err != nil {
			RespondInternal(ctx, "Could not save comment")
			return
		}

		ctx.JSON(http.StatusCreated, gin.H{"comment": saved})
	default:
		RespondInternal(ctx, "Could not look up comment")
	}
}

func (h *TeacherHandler) GetComment(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	c, err := h.comments.Find(ctx.Request.Context(), p.ID, ctx.Param("id"), ctx.Param("classId"))
	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not load comment")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"comment": c})
}

func (h *TeacherHandler) DeleteComment(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	c, err := h.comments.Find(rctx, p.ID, ctx.Param("id"), ctx.Param("classId"))
	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not load comment")
		return
	}

	if err := h.comments.Delete(rctx, c.ID); err != nil {
		RespondInternal(ctx, "Could not delete comment")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// studentMembership maps every student in the caller's classes to the classes
// they share with the caller.
func (h *TeacherHandler) studentMembership(ctx context.Context, p profile.Profile) ([]class.Class, map[string][]class.Class, error) {
	classes, err := h.classes.ListByTeacher(ctx, p.SchoolID, p.ID)
	if err != nil {
		return nil, nil, err
	}

	byStudent := make(map[string][]class.Class)
	for _, c := range classes {
		ids, err := h.enrollments.ListStudentIDs(ctx, c.ID)
		if err != nil {
			return nil, nil, err
		}

		for _, id := range ids {
			byStudent[id] = append(byStudent[id], c)
		}
	}

	return classes, byStudent, nil
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}

	return false
}

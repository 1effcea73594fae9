package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/class"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/domain/subject"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
	"github.com/launchpadhq/schoolhub/internal/roster"
)

type ClassStore interface {
	Get(ctx context.Context, schoolID, id string) (class.Class, error)
	ListBySchool(ctx context.Context, schoolID string) ([]class.Class, error)
	Insert(ctx context.Context, row datastore.Record) (class.Class, error)
	Update(ctx context.Context, id string, fields datastore.Record) error
	Delete(ctx context.Context, id string) error
}

type ClassSubjects interface {
	Get(ctx context.Context, schoolID, id string) (subject.Subject, error)
	FindByName(ctx context.Context, schoolID, name string) (subject.Subject, error)
	ListByIDs(ctx context.Context, ids []string) ([]subject.Subject, error)
}

type ClassTeachers interface {
	GetInSchool(ctx context.Context, schoolID, id string, role profile.Role) (profile.Profile, error)
	ListByIDs(ctx context.Context, ids []string) ([]profile.Profile, error)
}

// RosterReconciler is the single writer of enrollment links.
type RosterReconciler interface {
	ValidateRoster(ctx context.Context, schoolID, classYearLevel string, requestedStudentIDs []string) error
	Replace(ctx context.Context, schoolID, classID, classYearLevel string, requestedStudentIDs []string) error
	ValidateExisting(ctx context.Context, schoolID, classID, classYearLevel string) error
}

type ClassEnrollments interface {
	ListStudentIDs(ctx context.Context, classID string) ([]string, error)
	RemoveByClass(ctx context.Context, classID string) error
}

type AdminClassesHandler struct {
	classes     ClassStore
	subjects    ClassSubjects
	teachers    ClassTeachers
	enrollments ClassEnrollments
	roster      RosterReconciler
}

func NewAdminClassesHandler(
	classes ClassStore,
	subjects ClassSubjects,
	teachers ClassTeachers,
	enrollments ClassEnrollments,
	reconciler RosterReconciler,
) *AdminClassesHandler {
	return &AdminClassesHandler{
		classes:     classes,
		subjects:    subjects,
		teachers:    teachers,
		enrollments: enrollments,
		roster:      reconciler,
	}
}

// List returns every class with subject name, teacher name and roster size.
func (h *AdminClassesHandler) List(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	classes, err := h.classes.ListBySchool(rctx, p.SchoolID)
	if err != nil {
		RespondInternal(ctx, "Could not list classes")
		return
	}

	subjectIDs := make([]string, 0, len(classes))
	teacherIDs := make([]string, 0, len(classes))
	seenSubjects := make(map[string]struct{})
	seenTeachers := make(map[string]struct{})
	for _, c := range classes {
		if _, ok := seenSubjects[c.SubjectID]; !ok {
			seenSubjects[c.SubjectID] = struct{}{}
			subjectIDs = append(subjectIDs, c.SubjectID)
		}
		if _, ok := seenTeachers[c.TeacherID]; !ok {
			seenTeachers[c.TeacherID] = struct{}{}
			teacherIDs = append(teacherIDs, c.TeacherID)
		}
	}

	subjects, err := h.subjects.ListByIDs(rctx, subjectIDs)
	if err != nil {
		RespondInternal(ctx, "Could not load subjects")
		return
	}
	subjectNames := make(map[string]string, len(subjects))
	for _, s := range subjects {
		subjectNames[s.ID] = s.Name
	}

	teachers, err := h.teachers.ListByIDs(rctx, teacherIDs)
	if err != nil {
		RespondInternal(ctx, "Could not load teachers")
		return
	}
	teacherNames := make(map[string]string, len(teachers))
	for _, t := range teachers {
		teacherNames[t.ID] = t.FullName
	}

	items := make([]gin.H, 0, len(classes))
	for _, c := range classes {
		studentIDs, err := h.enrollments.ListStudentIDs(rctx, c.ID)
		if err != nil {
			RespondInternal(ctx, "Could not load rosters")
			return
		}

		items = append(items, gin.H{
			"id":            c.ID,
			"class_name":    c.ClassName,
			"year_level":    c.YearLevel,
			"subject":       subjectNames[c.SubjectID],
			"teacher":       teacherNames[c.TeacherID],
			"student_count": len(studentIDs),
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Create checks subject and teacher against the caller's school and validates
// the requested roster before inserting anything: a bad roster must not leave
// a class row behind.
func (h *AdminClassesHandler) Create(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req class.CreateClassRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	subjectID, err := h.resolveSubject(rctx, p.SchoolID, req.SubjectID, req.SubjectName)
	if err != nil {
		if errors.Is(err, subject.ErrNotFound) {
			RespondBadRequest(ctx, "Unknown subject", nil)
			return
		}
		if errors.Is(err, errNoSubject) {
			RespondBadRequest(ctx, "Either subject_id or subject_name is required", nil)
			return
		}
		RespondInternal(ctx, "Could not resolve subject")
		return
	}

	if _, err := h.teachers.GetInSchool(rctx, p.SchoolID, req.TeacherID, profile.RoleTeacher); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondBadRequest(ctx, "Unknown teacher", nil)
			return
		}
		RespondInternal(ctx, "Could not resolve teacher")
		return
	}

	if err := h.roster.ValidateRoster(rctx, p.SchoolID, req.YearLevel, req.StudentIDs); err != nil {
		if respondRosterError(ctx, err) {
			return
		}
		RespondInternal(ctx, "Could not validate roster")
		return
	}

	created, err := h.classes.Insert(rctx, datastore.Record{
		"school_id":  p.SchoolID,
		"subject_id": subjectID,
		"teacher_id": req.TeacherID,
		"year_level": req.YearLevel,
		"class_name": req.ClassName,
	})
	if err != nil {
		RespondInternal(ctx, "Could not create class")
		return
	}

	if err := h.roster.Replace(rctx, p.SchoolID, created.ID, created.YearLevel, req.StudentIDs); err != nil {
		if respondRosterError(ctx, err) {
			return
		}
		RespondInternal(ctx, "Could not enroll students")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"class": created})
}

// Update patches class fields. A year-level change without a new roster
// revalidates the current members; a new roster goes through the reconciler
// against the effective year level.
func (h *AdminClassesHandler) Update(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req class.UpdateClassRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	existing, err := h.classes.Get(rctx, p.SchoolID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, class.ErrNotFound) {
			RespondNotFound(ctx, "Class not found")
			return
		}
		RespondInternal(ctx, "Could not load class")
		return
	}

	fields := datastore.Record{}

	if req.SubjectID != nil || req.SubjectName != nil {
		var id, name string
		if req.SubjectID != nil {
			id = *req.SubjectID
		}
		if req.SubjectName != nil {
			name = *req.SubjectName
		}

		subjectID, err := h.resolveSubject(rctx, p.SchoolID, id, name)
		if err != nil {
			if errors.Is(err, subject.ErrNotFound) || errors.Is(err, errNoSubject) {
				RespondBadRequest(ctx, "Unknown subject", nil)
				return
			}
			RespondInternal(ctx, "Could not resolve subject")
			return
		}

		fields["subject_id"] = subjectID
	}

	if req.TeacherID != nil {
		if _, err := h.teachers.GetInSchool(rctx, p.SchoolID, *req.TeacherID, profile.RoleTeacher); err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				RespondBadRequest(ctx, "Unknown teacher", nil)
				return
			}
			RespondInternal(ctx, "Could not resolve teacher")
			return
		}

		fields["teacher_id"] = *req.TeacherID
	}

	yearLevel := existing.YearLevel
	if req.YearLevel != nil {
		yearLevel = *req.YearLevel
		fields["year_level"] = yearLevel
	}

	if req.ClassName != nil {
		fields["class_name"] = *req.ClassName
	}

	// A year change with no new roster must not strand current members.
	if req.YearLevel != nil && yearLevel != existing.YearLevel && req.StudentIDs == nil {
		if err := h.roster.ValidateExisting(rctx, p.SchoolID, existing.ID, yearLevel); err != nil {
			if respondRosterError(ctx, err) {
				return
			}
			RespondInternal(ctx, "Could not validate roster")
			return
		}
	}

	if len(fields) > 0 {
		if err := h.classes.Update(rctx, existing.ID, fields); err != nil {
			RespondInternal(ctx, "Could not update class")
			return
		}
	}

	if req.StudentIDs != nil {
		if err := h.roster.Replace(rctx, p.SchoolID, existing.ID, yearLevel, *req.StudentIDs); err != nil {
			if respondRosterError(ctx, err) {
				return
			}
			RespondInternal(ctx, "Could not update roster")
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete clears the roster first so no orphaned links survive the class row.
func (h *AdminClassesHandler) Delete(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	existing, err := h.classes.Get(rctx, p.SchoolID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, class.ErrNotFound) {
			RespondNotFound(ctx, "Class not found")
			return
		}
		RespondInternal(ctx, "Could not load class")
		return
	}

	if err := h.enrollments.RemoveByClass(rctx, existing.ID); err != nil {
		RespondInternal(ctx, "Could not clear roster")
		return
	}

	if err := h.classes.Delete(rctx, existing.ID); err != nil {
		RespondInternal(ctx, "Could not delete class")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

var errNoSubject = errors.New("no subject given")

func (h *AdminClassesHandler) resolveSubject(ctx context.Context, schoolID, subjectID, subjectName string) (string, error) {
	switch {
	case subjectID != "":
		s, err := h.subjects.Get(ctx, schoolID, subjectID)
		if err != nil {
			return "", err
		}
		return s.ID, nil
	case subjectName != "":
		s, err := h.subjects.FindByName(ctx, schoolID, subjectName)
		if err != nil {
			return "", err
		}
		return s.ID, nil
	default:
		return "", errNoSubject
	}
}

// respondRosterError maps the reconciler's typed rejections to 400s; details
// carry the offending ids or names. Returns false for anything else.
func respondRosterError(ctx *gin.Context, err error) bool {
	var unknown *roster.UnknownStudentsError
	if errors.As(err, &unknown) {
		RespondBadRequest(ctx, "Unknown student(s) in roster", gin.H{"student_ids": unknown.Missing})
		return true
	}

	var mismatch *roster.YearLevelError
	if errors.As(err, &mismatch) {
		RespondBadRequest(ctx, "Roster breaks the class year level", gin.H{
			"year_level": mismatch.Want,
			"students":   mismatch.Students,
		})
		return true
	}

	return false
}

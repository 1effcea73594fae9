package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/assessment"
	"github.com/launchpadhq/schoolhub/internal/domain/class"
	"github.com/launchpadhq/schoolhub/internal/domain/comment"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
	"github.com/launchpadhq/schoolhub/internal/roster"
)

type AdminProfiles interface {
	GetInSchool(ctx context.Context, schoolID, id string, role profile.Role) (profile.Profile, error)
	ListByRole(ctx context.Context, schoolID string, role profile.Role) ([]profile.Profile, error)
	Insert(ctx context.Context, p profile.Profile) error
	Update(ctx context.Context, id string, fields datastore.Record) error
	Delete(ctx context.Context, id string) error
}

type AdminEnrollments interface {
	ListClassIDs(ctx context.Context, studentID string) ([]string, error)
	ListByStudentIDs(ctx context.Context, studentIDs []string) ([]roster.Enrollment, error)
	Add(ctx context.Context, classID string, studentIDs []string) error
	Remove(ctx context.Context, classID string, studentIDs []string) error
	RemoveByStudent(ctx context.Context, studentID string) error
}

type AdminClasses interface {
	ListByIDs(ctx context.Context, ids []string) ([]class.Class, error)
}

type AdminAssessments interface {
	GetByUser(ctx context.Context, userID string) (assessment.Result, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]assessment.Result, error)
}

type AdminComments interface {
	ListByStudent(ctx context.Context, studentID string) ([]comment.Comment, error)
}

// AccountProvisioner creates and removes identity-provider accounts.
type AccountProvisioner interface {
	CreateUser(ctx context.Context, email, password string) (string, error)
	DeleteUser(ctx context.Context, userID string) error
}

type AdminStudentsHandler struct {
	profiles    AdminProfiles
	enrollments AdminEnrollments
	classes     AdminClasses
	assessments AdminAssessments
	comments    AdminComments
	accounts    AccountProvisioner
}

func NewAdminStudentsHandler(
	profiles AdminProfiles,
	enrollments AdminEnrollments,
	classes AdminClasses,
	assessments AdminAssessments,
	comments AdminComments,
	accounts AccountProvisioner,
) *AdminStudentsHandler {
	return &AdminStudentsHandler{
		profiles:    profiles,
		enrollments: enrollments,
		classes:     classes,
		assessments: assessments,
		comments:    comments,
		accounts:    accounts,
	}
}

// List returns every student in the school, enriched with class names and an
// assessment-completed flag.
func (h *AdminStudentsHandler) List(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	students, err := h.profiles.ListByRole(rctx, p.SchoolID, profile.RoleStudent)
	if err != nil {
		RespondInternal(ctx, "Could not list students")
		return
	}

	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}

	links, err := h.enrollments.ListByStudentIDs(rctx, ids)
	if err != nil {
		RespondInternal(ctx, "Could not load enrollments")
		return
	}

	classIDs := make([]string, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		if _, ok := seen[l.ClassID]; ok {
			continue
		}
		seen[l.ClassID] = struct{}{}
		classIDs = append(classIDs, l.ClassID)
	}

	classes, err := h.classes.ListByIDs(rctx, classIDs)
	if err != nil {
		RespondInternal(ctx, "Could not load classes")
		return
	}

	classNames := make(map[string]string, len(classes))
	for _, c := range classes {
		classNames[c.ID] = c.ClassName
	}

	namesByStudent := make(map[string][]string)
	for _, l := range links {
		if name, ok := classNames[l.ClassID]; ok {
			namesByStudent[l.StudentID] = append(namesByStudent[l.StudentID], name)
		}
	}

	results, err := h.assessments.ListByUserIDs(rctx, ids)
	if err != nil {
		RespondInternal(ctx, "Could not load assessments")
		return
	}

	hasAssessment := make(map[string]bool, len(results))
	for _, r := range results {
		hasAssessment[r.UserID] = true
	}

	items := make([]gin.H, 0, len(students))
	for _, s := range students {
		items = append(items, gin.H{
			"id":                   s.ID,
			"full_name":            s.FullName,
			"email":                s.Email,
			"year_level":           s.YearLevel,
			"classes":              namesByStudent[s.ID],
			"assessment_completed": hasAssessment[s.ID],
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *AdminStudentsHandler) Get(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	student, err := h.profiles.GetInSchool(rctx, p.SchoolID, ctx.Param("id"), profile.RoleStudent)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Student not found")
			return
		}
		RespondInternal(ctx, "Could not load student")
		return
	}

	classIDs, err := h.enrollments.ListClassIDs(rctx, student.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load enrollments")
		return
	}

	classes, err := h.classes.ListByIDs(rctx, classIDs)
	if err != nil {
		RespondInternal(ctx, "Could not load classes")
		return
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
		"classes":    classes,
		"assessment": result,
		"comments":   comments,
	})
}

// Add provisions the auth account first, then inserts the profile. A profile
// insert failure leaves an account without a profile; the error names the
// step so an operator can clean up.
func (h *AdminStudentsHandler) Add(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req profile.AddStudentRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	accountID, err := h.accounts.CreateUser(rctx, req.Email, req.Password)
	if err != nil {
		RespondError(ctx, http.StatusBadGateway, "provisioning_failed", "Could not create auth account", nil)
		return
	}

	student := profile.Profile{
		ID:        accountID,
		SchoolID:  p.SchoolID,
		Role:      profile.RoleStudent,
		FullName:  req.FullName,
		Email:     req.Email,
		YearLevel: req.YearLevel,
	}

	if err := h.profiles.Insert(rctx, student); err != nil {
		RespondError(ctx, http.StatusInternalServerError, "profile_insert_failed",
			"Auth account was created but the profile insert failed", gin.H{"account_id": accountID})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"student": student})
}

// Update patches profile fields and, when class_ids is present, replaces the
// student's entire enrollment set. A year-level change revalidates every
// class the student would remain in.
func (h *AdminStudentsHandler) Update(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req profile.UpdateStudentRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	student, err := h.profiles.GetInSchool(rctx, p.SchoolID, ctx.Param("id"), profile.RoleStudent)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Student not found")
			return
		}
		RespondInternal(ctx, "Could not load student")
		return
	}

	yearLevel := student.YearLevel
	if req.YearLevel != nil {
		yearLevel = *req.YearLevel
	}

	// Work out the enrollment set the student ends up in, then check every
	// class in it against the (possibly new) year level.
	targetClassIDs, err := h.targetClassIDs(rctx, student.ID, req.ClassIDs)
	if err != nil {
		RespondInternal(ctx, "Could not load enrollments")
		return
	}

	classes, err := h.classes.ListByIDs(rctx, targetClassIDs)
	if err != nil {
		RespondInternal(ctx, "Could not load classes")
		return
	}

	if req.ClassIDs != nil && len(classes) != len(targetClassIDs) {
		RespondBadRequest(ctx, "One or more classes do not exist", nil)
		return
	}

	for _, c := range classes {
		if c.SchoolID != p.SchoolID {
			RespondBadRequest(ctx, "One or more classes do not exist", nil)
			return
		}
		if c.YearLevel != yearLevel {
			RespondBadRequest(ctx, "Class "+c.ClassName+" is for year "+c.YearLevel+", student is year "+yearLevel, nil)
			return
		}
	}

	fields := datastore.Record{}
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.YearLevel != nil {
		fields["year_level"] = *req.YearLevel
	}

	if len(fields) > 0 {
		if err := h.profiles.Update(rctx, student.ID, fields); err != nil {
			RespondInternal(ctx, "Could not update student")
			return
		}
	}

	if req.ClassIDs != nil {
		if err := h.replaceStudentClasses(rctx, student.ID, targetClassIDs); err != nil {
			RespondInternal(ctx, "Could not update enrollments")
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete removes the profile first (enrollment links go with it), then the
// auth account. A failed deprovisioning leaves an orphaned account; the
// response names the step, there is no rollback.
func (h *AdminStudentsHandler) Delete(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	student, err := h.profiles.GetInSchool(rctx, p.SchoolID, ctx.Param("id"), profile.RoleStudent)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Student not found")
			return
		}
		RespondInternal(ctx, "Could not load student")
		return
	}

	if err := h.enrollments.RemoveByStudent(rctx, student.ID); err != nil {
		RespondInternal(ctx, "Could not remove enrollments")
		return
	}

	if err := h.profiles.Delete(rctx, student.ID); err != nil {
		RespondInternal(ctx, "Could not delete profile")
		return
	}

	if err := h.accounts.DeleteUser(rctx, student.ID); err != nil {
		RespondError(ctx, http.StatusBadGateway, "deprovisioning_failed",
			"Profile was deleted but the auth account remains", gin.H{"account_id": student.ID})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AdminStudentsHandler) targetClassIDs(ctx context.Context, studentID string, requested *[]string) ([]string, error) {
	if requested != nil {
		// dedupe, keep order
		seen := make(map[string]struct{}, len(*requested))
		out := make([]string, 0, len(*requested))
		for _, id := range *requested {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
		return out, nil
	}

	return h.enrollments.ListClassIDs(ctx, studentID)
}

func (h *AdminStudentsHandler) replaceStudentClasses(ctx context.Context, studentID string, target []string) error {
	current, err := h.enrollments.ListClassIDs(ctx, studentID)
	if err != nil {
		return err
	}

	targetSet := make(map[string]struct{}, len(target))
	for _, id := range target {
		targetSet[id] = struct{}{}
	}
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}

	for _, classID := range current {
		if _, ok := targetSet[classID]; !ok {
			if err := h.enrollments.Remove(ctx, classID, []string{studentID}); err != nil {
				return err
			}
		}
	}

	for _, classID := range target {
		if _, ok := currentSet[classID]; !ok {
			if err := h.enrollments.Add(ctx, classID, []string{studentID}); err != nil {
				return err
			}
		}
	}

	return nil
}

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
)

type AdminTeacherClasses interface {
	ListBySchool(ctx context.Context, schoolID string) ([]class.Class, error)
	ListByTeacher(ctx context.Context, schoolID, teacherID string) ([]class.Class, error)
}

type AdminTeacherSubjects interface {
	ListByIDs(ctx context.Context, ids []string) ([]subject.Subject, error)
}

type AdminTeachersHandler struct {
	profiles AdminProfiles
	classes  AdminTeacherClasses
	subjects AdminTeacherSubjects
	accounts AccountProvisioner
}

func NewAdminTeachersHandler(
	profiles AdminProfiles,
	classes AdminTeacherClasses,
	subjects AdminTeacherSubjects,
	accounts AccountProvisioner,
) *AdminTeachersHandler {
	return &AdminTeachersHandler{
		profiles: profiles,
		classes:  classes,
		subjects: subjects,
		accounts: accounts,
	}
}

// List returns every teacher with the classes and subjects they teach.
func (h *AdminTeachersHandler) List(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	teachers, err := h.profiles.ListByRole(rctx, p.SchoolID, profile.RoleTeacher)
	if err != nil {
		RespondInternal(ctx, "Could not list teachers")
		return
	}

	classes, err := h.classes.ListBySchool(rctx, p.SchoolID)
	if err != nil {
		RespondInternal(ctx, "Could not load classes")
		return
	}

	subjectNames, err := h.subjectNames(rctx, classes)
	if err != nil {
		RespondInternal(ctx, "Could not load subjects")
		return
	}

	classesByTeacher := make(map[string][]class.Class)
	for _, c := range classes {
		classesByTeacher[c.TeacherID] = append(classesByTeacher[c.TeacherID], c)
	}

	items := make([]gin.H, 0, len(teachers))
	for _, t := range teachers {
		classNames := make([]string, 0, len(classesByTeacher[t.ID]))
		subjectSet := make(map[string]struct{})
		subjects := make([]string, 0)

		for _, c := range classesByTeacher[t.ID] {
			classNames = append(classNames, c.ClassName)

			name := subjectNames[c.SubjectID]
			if name == "" {
				continue
			}
			if _, ok := subjectSet[name]; ok {
				continue
			}
			subjectSet[name] = struct{}{}
			subjects = append(subjects, name)
		}

		items = append(items, gin.H{
			"id":        t.ID,
			"full_name": t.FullName,
			"email":     t.Email,
			"classes":   classNames,
			"subjects":  subjects,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *AdminTeachersHandler) Get(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	teacher, err := h.profiles.GetInSchool(rctx, p.SchoolID, ctx.Param("id"), profile.RoleTeacher)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Teacher not found")
			return
		}
		RespondInternal(ctx, "Could not load teacher")
		return
	}

	classes, err := h.classes.ListByTeacher(rctx, p.SchoolID, teacher.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load classes")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"teacher": teacher, "classes": classes})
}

func (h *AdminTeachersHandler) Add(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req profile.AddTeacherRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	accountID, err := h.accounts.CreateUser(rctx, req.Email, req.Password)
	if err != nil {
		RespondError(ctx, http.StatusBadGateway, "provisioning_failed", "Could not create auth account", nil)
		return
	}

	teacher := profile.Profile{
		ID:       accountID,
		SchoolID: p.SchoolID,
		Role:     profile.RoleTeacher,
		FullName: req.FullName,
		Email:    req.Email,
	}

	if err := h.profiles.Insert(rctx, teacher); err != nil {
		RespondError(ctx, http.StatusInternalServerError, "profile_insert_failed",
			"Auth account was created but the profile insert failed", gin.H{"account_id": accountID})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"teacher": teacher})
}

func (h *AdminTeachersHandler) Update(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req profile.UpdateTeacherRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	teacher, err := h.profiles.GetInSchool(rctx, p.SchoolID, ctx.Param("id"), profile.RoleTeacher)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Teacher not found")
			return
		}
		RespondInternal(ctx, "Could not load teacher")
		return
	}

	fields := datastore.Record{}
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}

	if len(fields) > 0 {
		if err := h.profiles.Update(rctx, teacher.ID, fields); err != nil {
			RespondInternal(ctx, "Could not update teacher")
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete refuses while the teacher still owns classes; reassign first.
func (h *AdminTeachersHandler) Delete(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	teacher, err := h.profiles.GetInSchool(rctx, p.SchoolID, ctx.Param("id"), profile.RoleTeacher)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Teacher not found")
			return
		}
		RespondInternal(ctx, "Could not load teacher")
		return
	}

	classes, err := h.classes.ListByTeacher(rctx, p.SchoolID, teacher.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load classes")
		return
	}
	if len(classes) > 0 {
		RespondConflict(ctx, "teacher_has_classes", "Reassign this teacher's classes before deleting them")
		return
	}

	if err := h.profiles.Delete(rctx, teacher.ID); err != nil {
		RespondInternal(ctx, "Could not delete profile")
		return
	}

	if err := h.accounts.DeleteUser(rctx, teacher.ID); err != nil {
		RespondError(ctx, http.StatusBadGateway, "deprovisioning_failed",
			"Profile was deleted but the auth account remains", gin.H{"account_id": teacher.ID})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AdminTeachersHandler) subjectNames(ctx context.Context, classes []class.Class) (map[string]string, error) {
	ids := make([]string, 0, len(classes))
	seen := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		if _, ok := seen[c.SubjectID]; ok {
			continue
		}
		seen[c.SubjectID] = struct{}{}
		ids = append(ids, c.SubjectID)
	}

	subjects, err := h.subjects.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}

	return names, nil
}

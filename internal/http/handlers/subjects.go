package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/domain/class"
	"github.com/launchpadhq/schoolhub/internal/domain/subject"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
)

type SubjectCatalog interface {
	EnsureCatalog(ctx context.Context, schoolID string) ([]subject.Subject, error)
}

type SubjectClasses interface {
	ListBySchool(ctx context.Context, schoolID string) ([]class.Class, error)
}

type SubjectsHandler struct {
	subjects SubjectCatalog
	classes  SubjectClasses
}

func NewSubjectsHandler(subjects SubjectCatalog, classes SubjectClasses) *SubjectsHandler {
	return &SubjectsHandler{subjects: subjects, classes: classes}
}

// List seeds the catalog for the caller's school (idempotent upsert) and
// returns it with per-subject class counts.
func (h *SubjectsHandler) List(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	subjects, err := h.subjects.EnsureCatalog(rctx, p.SchoolID)
	if err != nil {
		RespondInternal(ctx, "Could not load subjects")
		return
	}

	classes, err := h.classes.ListBySchool(rctx, p.SchoolID)
	if err != nil {
		RespondInternal(ctx, "Could not load classes")
		return
	}

	counts := make(map[string]int, len(subjects))
	for _, c := range classes {
		counts[c.SubjectID]++
	}

	items := make([]gin.H, 0, len(subjects))
	for _, s := range subjects {
		items = append(items, gin.H{
			"id":          s.ID,
			"name":        s.Name,
			"category":    s.Category,
			"class_count": counts[s.ID],
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

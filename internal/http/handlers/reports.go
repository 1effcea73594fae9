package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/domain/assessment"
	"github.com/launchpadhq/schoolhub/internal/domain/class"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
)

type ReportProfiles interface {
	ListByRole(ctx context.Context, schoolID string, role profile.Role) ([]profile.Profile, error)
}

type ReportClasses interface {
	ListBySchool(ctx context.Context, schoolID string) ([]class.Class, error)
}

type ReportAssessments interface {
	ListBySchool(ctx context.Context, schoolID string) ([]assessment.Result, error)
}

type ReportsHandler struct {
	profiles    ReportProfiles
	classes     ReportClasses
	assessments ReportAssessments
}

func NewReportsHandler(profiles ReportProfiles, classes ReportClasses, assessments ReportAssessments) *ReportsHandler {
	return &ReportsHandler{profiles: profiles, classes: classes, assessments: assessments}
}

func (h *ReportsHandler) Stats(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	students, err := h.profiles.ListByRole(rctx, p.SchoolID, profile.RoleStudent)
	if err != nil {
		RespondInternal(ctx, "Could not count students")
		return
	}

	teachers, err := h.profiles.ListByRole(rctx, p.SchoolID, profile.RoleTeacher)
	if err != nil {
		RespondInternal(ctx, "Could not count teachers")
		return
	}

	classes, err := h.classes.ListBySchool(rctx, p.SchoolID)
	if err != nil {
		RespondInternal(ctx, "Could not count classes")
		return
	}

	results, err := h.assessments.ListBySchool(rctx, p.SchoolID)
	if err != nil {
		RespondInternal(ctx, "Could not count assessments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"students":              len(students),
		"teachers":              len(teachers),
		"classes":               len(classes),
		"assessments_completed": len(results),
	})
}

// Summary reports each student's top-ranked career and how often each career
// tops a ranking across the school.
func (h *ReportsHandler) Summary(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	results, err := h.assessments.ListBySchool(rctx, p.SchoolID)
	if err != nil {
		RespondInternal(ctx, "Could not load assessments")
		return
	}

	students, err := h.profiles.ListByRole(rctx, p.SchoolID, profile.RoleStudent)
	if err != nil {
		RespondInternal(ctx, "Could not load students")
		return
	}

	names := make(map[string]string, len(students))
	for _, s := range students {
		names[s.ID] = s.FullName
	}

	counts := make(map[string]int)
	items := make([]gin.H, 0, len(results))

	for _, r := range results {
		if len(r.Ranking) == 0 {
			continue
		}

		top := r.Ranking[0]
		counts[top.CareerName]++

		items = append(items, gin.H{
			"student_id": r.UserID,
			"full_name":  names[r.UserID],
			"top_career": top.CareerName,
			"soc_code":   top.SOCCode,
			"score":      top.Score,
		})
	}

	type careerCount struct {
		Career string `json:"career"`
		Count  int    `json:"count"`
	}

	topCareers := make([]careerCount, 0, len(counts))
	for career, n := range counts {
		topCareers = append(topCareers, careerCount{Career: career, Count: n})
	}
	sort.Slice(topCareers, func(i, j int) bool {
		if topCareers[i].Count != topCareers[j].Count {
			return topCareers[i].Count > topCareers[j].Count
		}
		return topCareers[i].Career < topCareers[j].Career
	})

	ctx.JSON(http.StatusOK, gin.H{
		"students":    items,
		"top_careers": topCareers,
	})
}

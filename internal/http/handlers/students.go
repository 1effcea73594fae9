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
	"github.com/launchpadhq/schoolhub/internal/domain/subject"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
)

// Interfaces stay small and consumer-side so tests can fake them.

type StudentAssessments interface {
	GetByUser(ctx context.Context, userID string) (assessment.Result, error)
	Upsert(ctx context.Context, callerToken string, row datastore.Record) error
}

type StudentEnrollments interface {
	ListClassIDs(ctx context.Context, studentID string) ([]string, error)
}

type StudentClasses interface {
	ListByIDs(ctx context.Context, ids []string) ([]class.Class, error)
}

type StudentSubjects interface {
	ListByIDs(ctx context.Context, ids []string) ([]subject.Subject, error)
}

type StudentComments interface {
	ListByStudent(ctx context.Context, studentID string) ([]comment.Comment, error)
}

type StudentPortfolio interface {
	ListAttributes(ctx context.Context, userID string) ([]datastore.Record, error)
	ListExperiences(ctx context.Context, userID string) ([]datastore.Record, error)
	ListProjects(ctx context.Context, userID string) ([]datastore.Record, error)
	AddExperience(ctx context.Context, callerToken string, row datastore.Record) ([]datastore.Record, error)
}

type CareerRanker interface {
	Rank(answers map[string]int) []assessment.RankedCareer
}

type StudentHandler struct {
	assessments StudentAssessments
	enrollments StudentEnrollments
	classes     StudentClasses
	subjects    StudentSubjects
	comments    StudentComments
	portfolio   StudentPortfolio
	ranker      CareerRanker
}

func NewStudentHandler(
	assessments StudentAssessments,
	enrollments StudentEnrollments,
	classes StudentClasses,
	subjects StudentSubjects,
	comments StudentComments,
	portfolio StudentPortfolio,
	ranker CareerRanker,
) *StudentHandler {
	return &StudentHandler{
		assessments: assessments,
		enrollments: enrollments,
		classes:     classes,
		subjects:    subjects,
		comments:    comments,
		portfolio:   portfolio,
		ranker:      ranker,
	}
}

// GetProfile aggregates everything the student dashboard needs in one call.
func (h *StudentHandler) GetProfile(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	rctx := ctx.Request.Context()

	var result any
	res, err := h.assessments.GetByUser(rctx, p.ID)
	switch {
	case err == nil:
		result = res
	case errors.Is(err, assessment.ErrNotFound):
		result = nil
	default:
		RespondInternal(ctx, "Could not load assessment")
		return
	}

	classIDs, err := h.enrollments.ListClassIDs(rctx, p.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load enrollments")
		return
	}

	classes, err := h.classes.ListByIDs(rctx, classIDs)
	if err != nil {
		RespondInternal(ctx, "Could not load classes")
		return
	}

	subjectNames, err := h.subjectNames(rctx, classes)
	if err != nil {
		RespondInternal(ctx, "Could not load subjects")
		return
	}

	classItems := make([]gin.H, 0, len(classes))
	for _, c := range classes {
		classItems = append(classItems, gin.H{
			"id":         c.ID,
			"class_name": c.ClassName,
			"year_level": c.YearLevel,
			"subject":    subjectNames[c.SubjectID],
		})
	}

	comments, err := h.comments.ListByStudent(rctx, p.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load comments")
		return
	}

	attributes, err := h.portfolio.ListAttributes(rctx, p.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load attributes")
		return
	}
	experiences, err := h.portfolio.ListExperiences(rctx, p.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load work experiences")
		return
	}
	projects, err := h.portfolio.ListProjects(rctx, p.ID)
	if err != nil {
		RespondInternal(ctx, "Could not load projects")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"profile":          p,
		"assessment":       result,
		"classes":          classItems,
		"comments":         comments,
		"attributes":       attributes,
		"work_experiences": experiences,
		"projects":         projects,
	})
}

type WorkExperienceRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Company     string `json:"company" binding:"required,min=1,max=200"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date"`
	Description string `json:"description" binding:"max=4000"`
}

// AddWorkExperience writes under the student's own token so the row is owned
// by them in the store.
func (h *StudentHandler) AddWorkExperience(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req WorkExperienceRequest
	if !BindJSON(ctx, &req) {
		return
	}

	row := datastore.Record{
		"user_id":     p.ID,
		"title":       req.Title,
		"company":     req.Company,
		"start_date":  req.StartDate,
		"description": req.Description,
	}
	if req.EndDate != "" {
		row["end_date"] = req.EndDate
	}

	rows, err := h.portfolio.AddExperience(ctx.Request.Context(), ident.Token, row)
	if err != nil {
		RespondInternal(ctx, "Could not save work experience")
		return
	}

	var saved any
	if len(rows) > 0 {
		saved = rows[0]
	}

	ctx.JSON(http.StatusCreated, gin.H{"work_experience": saved})
}

// SubmitAssessment validates answer completeness, ranks, and stores the
// result under the caller's token (conflict on user_id replaces the previous
// run).
func (h *StudentHandler) SubmitAssessment(ctx *gin.Context) {
	p, ok := middlewares.ProfileFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req assessment.Submission
	if !BindJSON(ctx, &req) {
		return
	}

	if missing := assessment.MissingAnswers(req.Answers); len(missing) > 0 {
		RespondBadRequest(ctx, "Assessment is incomplete", gin.H{"missing": missing})
		return
	}

	ranking := h.ranker.Rank(req.Answers)

	row := datastore.Record{
		"user_id":     p.ID,
		"school_id":   p.SchoolID,
		"raw_answers": req.Answers,
		"ranking":     ranking,
		"profile_data": datastore.Record{
			"full_name":  p.FullName,
			"year_level": p.YearLevel,
		},
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.assessments.Upsert(ctx.Request.Context(), ident.Token, row); err != nil {
		RespondInternal(ctx, "Could not store assessment result")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ranking": ranking})
}

func (h *StudentHandler) subjectNames(ctx context.Context, classes []class.Class) (map[string]string, error) {
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

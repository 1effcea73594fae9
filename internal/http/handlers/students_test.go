package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/assessment"
	"github.com/launchpadhq/schoolhub/internal/domain/class"
	"github.com/launchpadhq/schoolhub/internal/domain/comment"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/domain/subject"
	"github.com/launchpadhq/schoolhub/internal/http/handlers"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
	"github.com/launchpadhq/schoolhub/internal/identity"
	"github.com/launchpadhq/schoolhub/internal/ranking"
)

type fakeStudentAssessments struct {
	upsertToken string
	upserted    datastore.Record
}

func (f *fakeStudentAssessments) GetByUser(ctx context.Context, userID string) (assessment.Result, error) {
	return assessment.Result{}, assessment.ErrNotFound
}

func (f *fakeStudentAssessments) Upsert(ctx context.Context, callerToken string, row datastore.Record) error {
	f.upsertToken = callerToken
	f.upserted = row
	return nil
}

type fakeStudentEnrollments struct{}

func (f *fakeStudentEnrollments) ListClassIDs(ctx context.Context, studentID string) ([]string, error) {
	return nil, nil
}

type fakeStudentClasses struct{}

func (f *fakeStudentClasses) ListByIDs(ctx context.Context, ids []string) ([]class.Class, error) {
	return nil, nil
}

type fakeStudentSubjects struct{}

func (f *fakeStudentSubjects) ListByIDs(ctx context.Context, ids []string) ([]subject.Subject, error) {
	return nil, nil
}

type fakeStudentComments struct{}

func (f *fakeStudentComments) ListByStudent(ctx context.Context, studentID string) ([]comment.Comment, error) {
	return nil, nil
}

type fakeStudentPortfolio struct{}

func (f *fakeStudentPortfolio) ListAttributes(ctx context.Context, userID string) ([]datastore.Record, error) {
	return nil, nil
}

func (f *fakeStudentPortfolio) ListExperiences(ctx context.Context, userID string) ([]datastore.Record, error) {
	return nil, nil
}

func (f *fakeStudentPortfolio) ListProjects(ctx context.Context, userID string) ([]datastore.Record, error) {
	return nil, nil
}

func (f *fakeStudentPortfolio) AddExperience(ctx context.Context, callerToken string, row datastore.Record) ([]datastore.Record, error) {
	return []datastore.Record{row}, nil
}

func newStudentHandler(assessments *fakeStudentAssessments) *handlers.StudentHandler {
	return handlers.NewStudentHandler(
		assessments,
		&fakeStudentEnrollments{},
		&fakeStudentClasses{},
		&fakeStudentSubjects{},
		&fakeStudentComments{},
		&fakeStudentPortfolio{},
		ranking.New(),
	)
}

func studentContext(t *testing.T, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/student/assessment", &buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	middlewares.SetProfile(c, profile.Profile{
		ID:        "s1",
		SchoolID:  "school-1",
		Role:      profile.RoleStudent,
		FullName:  "Alice Ang",
		YearLevel: "10",
	})
	middlewares.SetIdentity(c, identity.Identity{SubjectID: "s1", Token: "caller-token"})

	return c, w
}

func completeAnswers() map[string]int {
	answers := map[string]int{}
	groups := map[string]int{"A": 5, "I": 6, "T": 6, "V": 6, "W": 4}

	for prefix, count := range groups {
		for i := 1; i <= count; i++ {
			answers[prefix+strconv.Itoa(i)] = 3
		}
	}

	return answers
}

func TestSubmitAssessmentRejectsIncomplete(t *testing.T) {
	assessments := &fakeStudentAssessments{}
	h := newStudentHandler(assessments)

	answers := completeAnswers()
	delete(answers, "A1")
	delete(answers, "W4")

	c, w := studentContext(t, gin.H{"answers": answers})
	h.SubmitAssessment(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("A1")) || !bytes.Contains(w.Body.Bytes(), []byte("W4")) {
		t.Fatalf("details should name the missing questions, body = %s", w.Body.String())
	}
	if assessments.upserted != nil {
		t.Fatalf("nothing may be stored for an incomplete submission")
	}
}

func TestSubmitAssessmentStoresUnderCallerToken(t *testing.T) {
	assessments := &fakeStudentAssessments{}
	h := newStudentHandler(assessments)

	c, w := studentContext(t, gin.H{"answers": completeAnswers()})
	h.SubmitAssessment(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if assessments.upsertToken != "caller-token" {
		t.Fatalf("upsert ran under %q, want the caller's token", assessments.upsertToken)
	}
	if assessments.upserted["user_id"] != "s1" || assessments.upserted["school_id"] != "school-1" {
		t.Fatalf("stored row misses identity fields: %v", assessments.upserted)
	}
	if _, ok := assessments.upserted["ranking"]; !ok {
		t.Fatalf("stored row should carry the ranking")
	}
}

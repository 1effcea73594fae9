package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/assessment"
	"github.com/launchpadhq/schoolhub/internal/domain/class"
	"github.com/launchpadhq/schoolhub/internal/domain/comment"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/http/handlers"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
)

type fakeTeacherClasses struct {
	classes []class.Class
}

func (f *fakeTeacherClasses) Get(ctx context.Context, schoolID, id string) (class.Class, error) {
	for _, c := range f.classes {
		if c.ID == id && c.SchoolID == schoolID {
			return c, nil
		}
	}
	return class.Class{}, class.ErrNotFound
}

func (f *fakeTeacherClasses) ListByTeacher(ctx context.Context, schoolID, teacherID string) ([]class.Class, error) {
	var out []class.Class
	for _, c := range f.classes {
		if c.SchoolID == schoolID && c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeTeacherEnrollments struct {
	byClass map[string][]string
}

func (f *fakeTeacherEnrollments) ListStudentIDs(ctx context.Context, classID string) ([]string, error) {
	return f.byClass[classID], nil
}

type fakeTeacherStudents struct {
	students map[string]profile.Profile
}

func (f *fakeTeacherStudents) GetInSchool(ctx context.Context, schoolID, id string, role profile.Role) (profile.Profile, error) {
	s, ok := f.students[id]
	if !ok || s.SchoolID != schoolID || s.Role != role {
		return profile.Profile{}, profile.ErrNotFound
	}
	return s, nil
}

func (f *fakeTeacherStudents) ListStudentsByIDs(ctx context.Context, schoolID string, ids []string) ([]profile.Profile, error) {
	var out []profile.Profile
	for _, id := range ids {
		if s, ok := f.students[id]; ok && s.SchoolID == schoolID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeTeacherComments struct{}

func (f *fakeTeacherComments) Find(ctx context.Context, teacherID, studentID, classID string) (comment.Comment, error) {
	return comment.Comment{}, comment.ErrNotFound
}

func (f *fakeTeacherComments) ListByStudent(ctx context.Context, studentID string) ([]comment.Comment, error) {
	return nil, nil
}

func (f *fakeTeacherComments) Insert(ctx context.Context, row datastore.Record) (comment.Comment, error) {
	return comment.Comment{ID: "cm-1"}, nil
}

func (f *fakeTeacherComments) Update(ctx context.Context, id string, fields datastore.Record) error {
	return nil
}

func (f *fakeTeacherComments) Delete(ctx context.Context, id string) error {
	return nil
}

type fakeTeacherAssessments struct{}

func (f *fakeTeacherAssessments) GetByUser(ctx context.Context, userID string) (assessment.Result, error) {
	return assessment.Result{}, assessment.ErrNotFound
}

func newTeacherHandler() *handlers.TeacherHandler {
	classes := &fakeTeacherClasses{classes: []class.Class{
		{ID: "c-1", SchoolID: "school-1", TeacherID: "t-1", YearLevel: "10", ClassName: "10PHYS1"},
	}}
	enrollments := &fakeTeacherEnrollments{byClass: map[string][]string{
		"c-1": {"s1"},
	}}
	students := &fakeTeacherStudents{students: map[string]profile.Profile{
		"s1": {ID: "s1", SchoolID: "school-1", Role: profile.RoleStudent, FullName: "Alice Ang", YearLevel: "10"},
		"s2": {ID: "s2", SchoolID: "school-1", Role: profile.RoleStudent, FullName: "Ben Boyd", YearLevel: "10"},
	}}

	return handlers.NewTeacherHandler(classes, enrollments, students, &fakeTeacherComments{}, &fakeTeacherAssessments{})
}

func teacherContext(t *testing.T, studentID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/teacher/students/"+studentID, nil)
	c.Params = gin.Params{{Key: "id", Value: studentID}}

	middlewares.SetProfile(c, profile.Profile{
		ID:       "t-1",
		SchoolID: "school-1",
		Role:     profile.RoleTeacher,
	})

	return c, w
}

func TestGetStudentSharedClass(t *testing.T) {
	h := newTeacherHandler()

	c, w := teacherContext(t, "s1")
	h.GetStudent(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

// A student who exists in the school but shares no class with the caller is
// forbidden, not hidden.
func TestGetStudentNotInMyClassesIsForbidden(t *testing.T) {
	h := newTeacherHandler()

	c, w := teacherContext(t, "s2")
	h.GetStudent(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403, body = %s", w.Code, w.Body.String())
	}
}

func TestGetStudentUnknownIsNotFound(t *testing.T) {
	h := newTeacherHandler()

	c, w := teacherContext(t, "nope")
	h.GetStudent(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", w.Code, w.Body.String())
	}
}

func TestListStudentsGroupsByClass(t *testing.T) {
	h := newTeacherHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/teacher/students", nil)
	middlewares.SetProfile(c, profile.Profile{ID: "t-1", SchoolID: "school-1", Role: profile.RoleTeacher})

	h.ListStudents(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1 (only s1 is enrolled)", body.Count)
	}
}

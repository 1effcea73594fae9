package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/class"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/domain/subject"
	"github.com/launchpadhq/schoolhub/internal/http/handlers"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
	"github.com/launchpadhq/schoolhub/internal/roster"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClassStore struct {
	getFn    func(ctx context.Context, schoolID, id string) (class.Class, error)
	listFn   func(ctx context.Context, schoolID string) ([]class.Class, error)
	insertFn func(ctx context.Context, row datastore.Record) (class.Class, error)
	updateFn func(ctx context.Context, id string, fields datastore.Record) error
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeClassStore) Get(ctx context.Context, schoolID, id string) (class.Class, error) {
	if f.getFn != nil {
		return f.getFn(ctx, schoolID, id)
	}
	return class.Class{}, class.ErrNotFound
}

func (f *fakeClassStore) ListBySchool(ctx context.Context, schoolID string) ([]class.Class, error) {
	if f.listFn != nil {
		return f.listFn(ctx, schoolID)
	}
	return nil, nil
}

func (f *fakeClassStore) Insert(ctx context.Context, row datastore.Record) (class.Class, error) {
	if f.insertFn != nil {
		return f.insertFn(ctx, row)
	}
	return class.Class{}, nil
}

func (f *fakeClassStore) Update(ctx context.Context, id string, fields datastore.Record) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, fields)
	}
	return nil
}

func (f *fakeClassStore) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeClassSubjects struct {
	getFn  func(ctx context.Context, schoolID, id string) (subject.Subject, error)
	nameFn func(ctx context.Context, schoolID, name string) (subject.Subject, error)
}

func (f *fakeClassSubjects) Get(ctx context.Context, schoolID, id string) (subject.Subject, error) {
	if f.getFn != nil {
		return f.getFn(ctx, schoolID, id)
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (f *fakeClassSubjects) FindByName(ctx context.Context, schoolID, name string) (subject.Subject, error) {
	if f.nameFn != nil {
		return f.nameFn(ctx, schoolID, name)
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (f *fakeClassSubjects) ListByIDs(ctx context.Context, ids []string) ([]subject.Subject, error) {
	return nil, nil
}

type fakeClassTeachers struct {
	getFn func(ctx context.Context, schoolID, id string, role profile.Role) (profile.Profile, error)
}

func (f *fakeClassTeachers) GetInSchool(ctx context.Context, schoolID, id string, role profile.Role) (profile.Profile, error) {
	if f.getFn != nil {
		return f.getFn(ctx, schoolID, id, role)
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (f *fakeClassTeachers) ListByIDs(ctx context.Context, ids []string) ([]profile.Profile, error) {
	return nil, nil
}

type fakeReconciler struct {
	rosterFn   func(ctx context.Context, schoolID, yearLevel string, studentIDs []string) error
	replaceFn  func(ctx context.Context, schoolID, classID, yearLevel string, studentIDs []string) error
	validateFn func(ctx context.Context, schoolID, classID, yearLevel string) error
}

func (f *fakeReconciler) ValidateRoster(ctx context.Context, schoolID, yearLevel string, studentIDs []string) error {
	if f.rosterFn != nil {
		return f.rosterFn(ctx, schoolID, yearLevel, studentIDs)
	}
	return nil
}

func (f *fakeReconciler) Replace(ctx context.Context, schoolID, classID, yearLevel string, studentIDs []string) error {
	if f.replaceFn != nil {
		return f.replaceFn(ctx, schoolID, classID, yearLevel, studentIDs)
	}
	return nil
}

func (f *fakeReconciler) ValidateExisting(ctx context.Context, schoolID, classID, yearLevel string) error {
	if f.validateFn != nil {
		return f.validateFn(ctx, schoolID, classID, yearLevel)
	}
	return nil
}

type fakeClassEnrollments struct {
	listFn func(ctx context.Context, classID string) ([]string, error)
}

func (f *fakeClassEnrollments) ListStudentIDs(ctx context.Context, classID string) ([]string, error) {
	if f.listFn != nil {
		return f.listFn(ctx, classID)
	}
	return nil, nil
}

func (f *fakeClassEnrollments) RemoveByClass(ctx context.Context, classID string) error {
	return nil
}

func adminContext(t *testing.T, method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	middlewares.SetProfile(c, profile.Profile{
		ID:       "admin-1",
		SchoolID: "school-1",
		Role:     profile.RoleAdmin,
	})

	return c, w
}

func TestCreateClassEnrollsRoster(t *testing.T) {
	var gotYear string
	var gotStudents []string

	h := handlers.NewAdminClassesHandler(
		&fakeClassStore{
			insertFn: func(ctx context.Context, row datastore.Record) (class.Class, error) {
				return class.Class{
					ID:        "c-1",
					SchoolID:  "school-1",
					SubjectID: row["subject_id"].(string),
					TeacherID: row["teacher_id"].(string),
					YearLevel: row["year_level"].(string),
					ClassName: row["class_name"].(string),
				}, nil
			},
		},
		&fakeClassSubjects{
			getFn: func(ctx context.Context, schoolID, id string) (subject.Subject, error) {
				return subject.Subject{ID: id, SchoolID: schoolID, Name: "Physics"}, nil
			},
		},
		&fakeClassTeachers{
			getFn: func(ctx context.Context, schoolID, id string, role profile.Role) (profile.Profile, error) {
				return profile.Profile{ID: id, SchoolID: schoolID, Role: role}, nil
			},
		},
		&fakeClassEnrollments{},
		&fakeReconciler{
			replaceFn: func(ctx context.Context, schoolID, classID, yearLevel string, studentIDs []string) error {
				gotYear = yearLevel
				gotStudents = studentIDs
				return nil
			},
		},
	)

	c, w := adminContext(t, http.MethodPost, "/admin/classes", gin.H{
		"subject_id": "sub-1",
		"teacher_id": "t-1",
		"year_level": "10",
		"class_name": "10PHYS1",
		"student_ids": []string{
			"s1", "s2",
		},
	})

	h.Create(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gotYear != "10" {
		t.Fatalf("reconciler got year %q", gotYear)
	}
	if len(gotStudents) != 2 {
		t.Fatalf("reconciler got students %v", gotStudents)
	}
}

// A bad roster must be rejected before the class row is written.
func TestCreateClassRejectsUnknownStudents(t *testing.T) {
	inserted := false

	h := handlers.NewAdminClassesHandler(
		&fakeClassStore{
			insertFn: func(ctx context.Context, row datastore.Record) (class.Class, error) {
				inserted = true
				return class.Class{ID: "c-1", SchoolID: "school-1", YearLevel: "10"}, nil
			},
		},
		&fakeClassSubjects{
			getFn: func(ctx context.Context, schoolID, id string) (subject.Subject, error) {
				return subject.Subject{ID: id}, nil
			},
		},
		&fakeClassTeachers{
			getFn: func(ctx context.Context, schoolID, id string, role profile.Role) (profile.Profile, error) {
				return profile.Profile{ID: id}, nil
			},
		},
		&fakeClassEnrollments{},
		&fakeReconciler{
			rosterFn: func(ctx context.Context, schoolID, yearLevel string, studentIDs []string) error {
				return &roster.UnknownStudentsError{Missing: []string{"ghost"}}
			},
		},
	)

	c, w := adminContext(t, http.MethodPost, "/admin/classes", gin.H{
		"subject_id":  "sub-1",
		"teacher_id":  "t-1",
		"year_level":  "10",
		"class_name":  "10PHYS1",
		"student_ids": []string{"ghost"},
	})

	h.Create(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("ghost")) {
		t.Fatalf("details should name the missing id, body = %s", w.Body.String())
	}
	if inserted {
		t.Fatalf("class row must not be written when the roster is invalid")
	}
}

func TestUpdateClassYearChangeRevalidatesRoster(t *testing.T) {
	validated := false

	h := handlers.NewAdminClassesHandler(
		&fakeClassStore{
			getFn: func(ctx context.Context, schoolID, id string) (class.Class, error) {
				return class.Class{ID: id, SchoolID: schoolID, YearLevel: "10", ClassName: "10PHYS1"}, nil
			},
		},
		&fakeClassSubjects{},
		&fakeClassTeachers{},
		&fakeClassEnrollments{},
		&fakeReconciler{
			validateFn: func(ctx context.Context, schoolID, classID, yearLevel string) error {
				validated = true
				return &roster.YearLevelError{Want: yearLevel, Students: []string{"Alice Ang"}}
			},
		},
	)

	c, w := adminContext(t, http.MethodPut, "/admin/classes/c-1", gin.H{
		"year_level": "11",
	})
	c.Params = gin.Params{{Key: "id", Value: "c-1"}}

	h.Update(c)

	if !validated {
		t.Fatalf("year change must revalidate the current roster")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Alice Ang")) {
		t.Fatalf("details should name the stranded student, body = %s", w.Body.String())
	}
}

func TestCreateClassRequiresSubject(t *testing.T) {
	h := handlers.NewAdminClassesHandler(
		&fakeClassStore{},
		&fakeClassSubjects{},
		&fakeClassTeachers{},
		&fakeClassEnrollments{},
		&fakeReconciler{},
	)

	c, w := adminContext(t, http.MethodPost, "/admin/classes", gin.H{
		"teacher_id": "t-1",
		"year_level": "10",
		"class_name": "10PHYS1",
	})

	h.Create(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

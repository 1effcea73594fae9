package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/launchpadhq/schoolhub/internal/domain/profile"
)

// Enrollment is a pure link row; it has no identity of its own and is only
// ever written by the reconciler.
type Enrollment struct {
	StudentID string `json:"student_id"`
	ClassID   string `json:"class_id"`
}

// UnknownStudentsError: some requested ids did not resolve to students in the
// class's school. Unknown ids are never silently dropped.
type UnknownStudentsError struct {
	Missing []string
}

func (e *UnknownStudentsError) Error() string {
	return "unknown student(s): " + strings.Join(e.Missing, ", ")
}

// YearLevelError names the students that break roster homogeneity.
type YearLevelError struct {
	Want     string
	Students []string
}

func (e *YearLevelError) Error() string {
	return fmt.Sprintf("year-level mismatch: %s must be in year %s", strings.Join(e.Students, ", "), e.Want)
}

type StudentDirectory interface {
	ListStudentsByIDs(ctx context.Context, schoolID string, ids []string) ([]profile.Profile, error)
}

type EnrollmentStore interface {
	ListStudentIDs(ctx context.Context, classID string) ([]string, error)
	Add(ctx context.Context, classID string, studentIDs []string) error
	Remove(ctx context.Context, classID string, studentIDs []string) error
}

// Reconciler keeps one class's enrollment set consistent under whole-roster
// replacement. The delete and insert halves are two independent wire calls:
// a failed delete stops the insert, but a failed insert after a successful
// delete leaves the roster smaller than either the old or the requested set.
// There is no compensation for that case; the store has no transactions at
// this boundary.
type Reconciler struct {
	students    StudentDirectory
	enrollments EnrollmentStore
}

func New(students StudentDirectory, enrollments EnrollmentStore) *Reconciler {
	return &Reconciler{students: students, enrollments: enrollments}
}

// ValidateRoster runs the resolution and year-level checks without touching
// enrollment rows. Callers that create the class row themselves use it to
// reject a bad roster before anything is written.
func (r *Reconciler) ValidateRoster(ctx context.Context, schoolID, classYearLevel string, requestedStudentIDs []string) error {
	requested := dedupe(requestedStudentIDs)
	if len(requested) == 0 {
		return nil
	}

	students, err := r.students.ListStudentsByIDs(ctx, schoolID, requested)
	if err != nil {
		return err
	}

	if err := checkResolved(requested, students); err != nil {
		return err
	}

	return checkYearLevels(classYearLevel, students)
}

// Replace validates the requested roster against the class's year level and
// applies the minimal add/remove delta. Replaying an already-applied request
// computes an empty delta and performs zero writes.
func (r *Reconciler) Replace(ctx context.Context, schoolID, classID, classYearLevel string, requestedStudentIDs []string) error {
	requested := dedupe(requestedStudentIDs)

	if err := r.ValidateRoster(ctx, schoolID, classYearLevel, requested); err != nil {
		return err
	}

	current, err := r.enrollments.ListStudentIDs(ctx, classID)
	if err != nil {
		return err
	}

	toAdd, toRemove := delta(requested, current)

	if len(toRemove) > 0 {
		if err := r.enrollments.Remove(ctx, classID, toRemove); err != nil {
			return err
		}
	}

	if len(toAdd) > 0 {
		if err := r.enrollments.Add(ctx, classID, toAdd); err != nil {
			return err
		}
	}

	return nil
}

// ValidateExisting re-checks the current roster against a (possibly new)
// class year level. Used when a class's own year level changes without a
// roster replacement: the update must be rejected outright if any current
// member would no longer match.
func (r *Reconciler) ValidateExisting(ctx context.Context, schoolID, classID, classYearLevel string) error {
	current, err := r.enrollments.ListStudentIDs(ctx, classID)
	if err != nil {
		return err
	}
	if len(current) == 0 {
		return nil
	}

	students, err := r.students.ListStudentsByIDs(ctx, schoolID, current)
	if err != nil {
		return err
	}

	return checkYearLevels(classYearLevel, students)
}

func checkResolved(requested []string, students []profile.Profile) error {
	if len(students) == len(requested) {
		return nil
	}

	found := make(map[string]struct{}, len(students))
	for _, s := range students {
		found[s.ID] = struct{}{}
	}

	var missing []string
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	return &UnknownStudentsError{Missing: missing}
}

func checkYearLevels(want string, students []profile.Profile) error {
	var bad []string

	for _, s := range students {
		if s.YearLevel == "" || s.YearLevel != want {
			bad = append(bad, s.FullName)
		}
	}

	if len(bad) > 0 {
		return &YearLevelError{Want: want, Students: bad}
	}

	return nil
}

// dedupe keeps first-seen order so replayed input stays deterministic.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

func delta(requested, current []string) (toAdd, toRemove []string) {
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}

	requestedSet := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		requestedSet[id] = struct{}{}
	}

	for _, id := range requested {
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}

	for _, id := range current {
		if _, ok := requestedSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	return toAdd, toRemove
}

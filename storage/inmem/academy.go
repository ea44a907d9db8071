package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/coachdesk/core/academy"
)

type academyRepository struct {
	db *DB
}

var _ academy.Repository = (*academyRepository)(nil)

func NewAcademyRepository(db *DB) academy.Repository {
	return &academyRepository{db: db}
}

// Batches

func (repo *academyRepository) batchUniqueness(b academy.Batch) func(academy.Batch) error {
	return func(other academy.Batch) error {
		if strings.EqualFold(other.Name, b.Name) {
			return academy.ErrBatchNameExists
		}
		return nil
	}
}

func (repo *academyRepository) CreateBatch(_ context.Context, b academy.Batch) (academy.Batch, error) {
	return repo.db.batches.save(b.ID, b, false, nil, repo.batchUniqueness(b))
}

func (repo *academyRepository) GetBatch(_ context.Context, id string) (academy.Batch, error) {
	if b, ok := repo.db.batches.get(id); ok {
		return b, nil
	}
	return academy.Batch{}, academy.ErrBatchNotFound
}

func (repo *academyRepository) QueryBatches(_ context.Context) ([]academy.Batch, error) {
	return repo.db.batches.query(nil, func(a, b academy.Batch) bool { return a.Name < b.Name }), nil
}

func (repo *academyRepository) UpdateBatch(_ context.Context, b academy.Batch) (academy.Batch, error) {
	return repo.db.batches.save(b.ID, b, true, academy.ErrBatchNotFound, repo.batchUniqueness(b))
}

func (repo *academyRepository) DeleteBatch(_ context.Context, id string) error {
	return repo.db.batches.delete(id, academy.ErrBatchNotFound)
}

// Students

func (repo *academyRepository) studentUniqueness(s academy.Student) func(academy.Student) error {
	return func(other academy.Student) error {
		if other.Code == s.Code {
			return academy.ErrStudentCodeExists
		}
		return nil
	}
}

func (repo *academyRepository) CreateStudent(_ context.Context, s academy.Student) (academy.Student, error) {
	return repo.db.students.save(s.ID, s, false, nil, repo.studentUniqueness(s))
}

func (repo *academyRepository) GetStudent(_ context.Context, id string) (academy.Student, error) {
	if s, ok := repo.db.students.get(id); ok {
		return s, nil
	}
	return academy.Student{}, academy.ErrStudentNotFound
}

func (repo *academyRepository) FilterStudents(_ context.Context, filter academy.StudentFilter) ([]academy.Student, error) {
	keep := func(s academy.Student) bool { return filter.BatchID == "" || s.BatchID == filter.BatchID }
	less := func(a, b academy.Student) bool {
		if a.Roll != b.Roll {
			return a.Roll < b.Roll
		}
		return a.Name < b.Name
	}
	return repo.db.students.query(keep, less), nil
}

func (repo *academyRepository) UpdateStudent(_ context.Context, s academy.Student) (academy.Student, error) {
	return repo.db.students.save(s.ID, s, true, academy.ErrStudentNotFound, repo.studentUniqueness(s))
}

func (repo *academyRepository) DeleteStudent(_ context.Context, id string) error {
	return repo.db.students.delete(id, academy.ErrStudentNotFound)
}

// Teachers

func (repo *academyRepository) teacherUniqueness(t academy.Teacher) func(academy.Teacher) error {
	return func(other academy.Teacher) error {
		if other.Code == t.Code {
			return academy.ErrTeacherCodeExists
		}
		return nil
	}
}

func (repo *academyRepository) CreateTeacher(_ context.Context, t academy.Teacher) (academy.Teacher, error) {
	return repo.db.teachers.save(t.ID, t, false, nil, repo.teacherUniqueness(t))
}

func (repo *academyRepository) GetTeacher(_ context.Context, id string) (academy.Teacher, error) {
	if t, ok := repo.db.teachers.get(id); ok {
		return t, nil
	}
	return academy.Teacher{}, academy.ErrTeacherNotFound
}

func (repo *academyRepository) GetTeacherByCode(_ context.Context, code string) (academy.Teacher, error) {
	found := repo.db.teachers.query(func(t academy.Teacher) bool { return t.Code == code }, nil)
	if len(found) == 0 {
		return academy.Teacher{}, academy.ErrTeacherNotFound
	}
	return found[0], nil
}

func (repo *academyRepository) FilterTeachers(_ context.Context, filter academy.TeacherFilter) ([]academy.Teacher, error) {
	keep := func(t academy.Teacher) bool {
		if filter.ExcludeSuspended && t.IsSuspended() {
			return false
		}
		return filter.Status == "" || t.Status == filter.Status
	}
	return repo.db.teachers.query(keep, func(a, b academy.Teacher) bool { return a.Name < b.Name }), nil
}

func (repo *academyRepository) UpdateTeacher(_ context.Context, t academy.Teacher) (academy.Teacher, error) {
	return repo.db.teachers.save(t.ID, t, true, academy.ErrTeacherNotFound, repo.teacherUniqueness(t))
}

func (repo *academyRepository) DeleteTeacher(_ context.Context, id string) error {
	return repo.db.teachers.delete(id, academy.ErrTeacherNotFound)
}

// Results

func (repo *academyRepository) CreateResult(_ context.Context, r academy.Result) (academy.Result, error) {
	return repo.db.results.save(r.ID, r, false, nil, nil)
}

func (repo *academyRepository) GetResult(_ context.Context, id string) (academy.Result, error) {
	if r, ok := repo.db.results.get(id); ok {
		return r, nil
	}
	return academy.Result{}, academy.ErrResultNotFound
}

func (repo *academyRepository) FilterResults(_ context.Context, filter academy.ResultFilter) ([]academy.Result, error) {
	keep := func(r academy.Result) bool { return filter.BatchID == "" || r.BatchID == filter.BatchID }
	return repo.db.results.query(keep, func(a, b academy.Result) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (repo *academyRepository) UpdateResult(_ context.Context, r academy.Result) (academy.Result, error) {
	return repo.db.results.save(r.ID, r, true, academy.ErrResultNotFound, nil)
}

func (repo *academyRepository) DeleteResult(_ context.Context, id string) error {
	return repo.db.results.delete(id, academy.ErrResultNotFound)
}

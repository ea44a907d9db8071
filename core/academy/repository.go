package academy

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
)

var (
	// errors
	ErrBatchNotFound   = core.NewNotFoundError("batch")
	ErrStudentNotFound = core.NewNotFoundError("student")
	ErrTeacherNotFound = core.NewNotFoundError("teacher")
	ErrResultNotFound  = core.NewNotFoundError("result")

	ErrBatchNameExists   = errors.New("a batch with this name already exists")
	ErrStudentCodeExists = errors.New("a student with this code already exists")
	ErrTeacherCodeExists = errors.New("a teacher with this code already exists")
)

type (
	BatchRepository interface {
		CreateBatch(ctx context.Context, b Batch) (Batch, error)
		GetBatch(ctx context.Context, id string) (Batch, error)
		QueryBatches(ctx context.Context) ([]Batch, error)
		UpdateBatch(ctx context.Context, b Batch) (Batch, error)
		DeleteBatch(ctx context.Context, id string) error
	}

	StudentRepository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		// FilterStudents returns students ordered by roll then name.
		FilterStudents(ctx context.Context, filter StudentFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	TeacherRepository interface {
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		GetTeacher(ctx context.Context, id string) (Teacher, error)
		GetTeacherByCode(ctx context.Context, code string) (Teacher, error)
		// FilterTeachers returns teachers ordered by name.
		FilterTeachers(ctx context.Context, filter TeacherFilter) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		DeleteTeacher(ctx context.Context, id string) error
	}

	ResultRepository interface {
		CreateResult(ctx context.Context, r Result) (Result, error)
		GetResult(ctx context.Context, id string) (Result, error)
		// FilterResults returns results, newest first.
		FilterResults(ctx context.Context, filter ResultFilter) ([]Result, error)
		UpdateResult(ctx context.Context, r Result) (Result, error)
		DeleteResult(ctx context.Context, id string) error
	}

	Repository interface {
		BatchRepository
		StudentRepository
		TeacherRepository
		ResultRepository
	}
)

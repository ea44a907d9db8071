package academy

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
)

var NowFunc = time.Now // mockable

// Service manages batches, students, teachers and results. Inputs are expected to be validated.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func uniquenessError(err error, what string) error {
	var field string
	switch errors.Cause(err) {
	case ErrBatchNameExists:
		field = "name"
	case ErrStudentCodeExists, ErrTeacherCodeExists:
		field = "code"
	default:
		return errors.Wrap(err, what)
	}
	return core.NewValidationError(err, core.FieldError{Field: field, Error: errors.Cause(err).Error()})
}

// checkBatch reports an unknown batch as a field error.
func (svc *Service) checkBatch(ctx context.Context, id string) error {
	if _, err := svc.repo.GetBatch(ctx, id); err != nil {
		if errors.Cause(err) == ErrBatchNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "batch_id", Error: err.Error()})
		}
		return errors.Wrap(err, "finding batch")
	}
	return nil
}

func getter[T any](ctx context.Context, id string, notFound error, get func(context.Context, string) (T, error)) (T, error) {
	if !core.IsValidID(id) {
		var zero T
		return zero, notFound
	}
	return get(ctx, id)
}

// Batches

func (svc *Service) CreateBatch(ctx context.Context, in BatchInput) (Batch, error) {
	now := NowFunc().UTC()
	b, err := svc.repo.CreateBatch(ctx, Batch{ID: core.NewID(), Name: in.Name, ClassName: in.ClassName, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return Batch{}, uniquenessError(err, "creating batch")
	}
	return b, nil
}

func (svc *Service) GetBatch(ctx context.Context, id string) (Batch, error) {
	return getter(ctx, id, ErrBatchNotFound, svc.repo.GetBatch)
}

func (svc *Service) QueryBatches(ctx context.Context) ([]Batch, error) {
	return svc.repo.QueryBatches(ctx)
}

func (svc *Service) UpdateBatch(ctx context.Context, id string, in BatchInput) (Batch, error) {
	b, err := svc.GetBatch(ctx, id)
	if err != nil {
		return Batch{}, err
	}
	b.Name, b.ClassName, b.UpdatedAt = in.Name, in.ClassName, NowFunc().UTC()
	if b, err = svc.repo.UpdateBatch(ctx, b); err != nil {
		return Batch{}, uniquenessError(err, "updating batch")
	}
	return b, nil
}

func (svc *Service) DeleteBatch(ctx context.Context, id string) error {
	if _, err := svc.GetBatch(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteBatch(ctx, id)
}

// Students

func (svc *Service) CreateStudent(ctx context.Context, in StudentInput) (Student, error) {
	if err := svc.checkBatch(ctx, in.BatchID); err != nil {
		return Student{}, err
	}
	now := NowFunc().UTC()
	s, err := svc.repo.CreateStudent(ctx, Student{
		ID:            core.NewID(),
		Code:          in.Code,
		Name:          in.Name,
		Roll:          in.Roll,
		BatchID:       in.BatchID,
		GuardianPhone: in.GuardianPhone,
		Phone:         in.Phone,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return Student{}, uniquenessError(err, "creating student")
	}
	return s, nil
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return getter(ctx, id, ErrStudentNotFound, svc.repo.GetStudent)
}

func (svc *Service) FilterStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) UpdateStudent(ctx context.Context, id string, in StudentInput) (Student, error) {
	s, err := svc.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if in.BatchID != s.BatchID {
		if err = svc.checkBatch(ctx, in.BatchID); err != nil {
			return Student{}, err
		}
	}
	s.Code, s.Name, s.Roll, s.BatchID = in.Code, in.Name, in.Roll, in.BatchID
	s.GuardianPhone, s.Phone, s.UpdatedAt = in.GuardianPhone, in.Phone, NowFunc().UTC()
	if s, err = svc.repo.UpdateStudent(ctx, s); err != nil {
		return Student{}, uniquenessError(err, "updating student")
	}
	return s, nil
}

func (svc *Service) DeleteStudent(ctx context.Context, id string) error {
	if _, err := svc.GetStudent(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteStudent(ctx, id)
}

// Teachers

func (svc *Service) CreateTeacher(ctx context.Context, in TeacherInput) (Teacher, error) {
	now := NowFunc().UTC()
	t, err := svc.repo.CreateTeacher(ctx, Teacher{
		ID:        core.NewID(),
		Code:      in.Code,
		Name:      in.Name,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Teacher{}, uniquenessError(err, "creating teacher")
	}
	return t, nil
}

func (svc *Service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return getter(ctx, id, ErrTeacherNotFound, svc.repo.GetTeacher)
}

func (svc *Service) FilterTeachers(ctx context.Context, filter TeacherFilter) ([]Teacher, error) {
	return svc.repo.FilterTeachers(ctx, filter)
}

func (svc *Service) UpdateTeacher(ctx context.Context, id string, in TeacherInput) (Teacher, error) {
	t, err := svc.GetTeacher(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	t.Code, t.Name, t.Phone, t.Subject, t.Status = in.Code, in.Name, in.Phone, in.Subject, in.Status
	t.UpdatedAt = NowFunc().UTC()
	if t, err = svc.repo.UpdateTeacher(ctx, t); err != nil {
		return Teacher{}, uniquenessError(err, "updating teacher")
	}
	return t, nil
}

func (svc *Service) DeleteTeacher(ctx context.Context, id string) error {
	if _, err := svc.GetTeacher(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteTeacher(ctx, id)
}

// Results

func (svc *Service) CreateResult(ctx context.Context, in ResultInput) (Result, error) {
	if err := svc.checkResultRefs(ctx, in); err != nil {
		return Result{}, err
	}
	now := NowFunc().UTC()
	r, err := svc.repo.CreateResult(ctx, Result{
		ID:         core.NewID(),
		BatchID:    in.BatchID,
		StudentID:  in.StudentID,
		Type:       in.Type,
		ExamDate:   in.ExamDate,
		Subjects:   in.Subjects,
		TotalMarks: in.TotalMarks,
		TotalGain:  in.TotalGain,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "creating result")
	}
	return r, nil
}

func (svc *Service) GetResult(ctx context.Context, id string) (Result, error) {
	return getter(ctx, id, ErrResultNotFound, svc.repo.GetResult)
}

func (svc *Service) FilterResults(ctx context.Context, filter ResultFilter) ([]Result, error) {
	return svc.repo.FilterResults(ctx, filter)
}

func (svc *Service) UpdateResult(ctx context.Context, id string, in ResultInput) (Result, error) {
	r, err := svc.GetResult(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if err = svc.checkResultRefs(ctx, in); err != nil {
		return Result{}, err
	}
	r.BatchID, r.StudentID, r.Type, r.ExamDate = in.BatchID, in.StudentID, in.Type, in.ExamDate
	r.Subjects, r.TotalMarks, r.TotalGain, r.UpdatedAt = in.Subjects, in.TotalMarks, in.TotalGain, NowFunc().UTC()
	if r, err = svc.repo.UpdateResult(ctx, r); err != nil {
		return Result{}, errors.Wrap(err, "updating result")
	}
	return r, nil
}

func (svc *Service) DeleteResult(ctx context.Context, id string) error {
	if _, err := svc.GetResult(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteResult(ctx, id)
}

func (svc *Service) checkResultRefs(ctx context.Context, in ResultInput) error {
	if err := svc.checkBatch(ctx, in.BatchID); err != nil {
		return err
	}
	if in.StudentID == "" {
		return nil
	}
	if _, err := svc.repo.GetStudent(ctx, in.StudentID); err != nil {
		if errors.Cause(err) == ErrStudentNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return errors.Wrap(err, "finding student")
	}
	return nil
}

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/coachdesk/core/academy"
)

var (
	batchConflicts   = map[string]error{idxBatchName: academy.ErrBatchNameExists}
	studentConflicts = map[string]error{idxStudentCode: academy.ErrStudentCodeExists}
	teacherConflicts = map[string]error{idxTeacherCode: academy.ErrTeacherCodeExists}
)

type academyRepository struct {
	batches  *mongo.Collection
	students *mongo.Collection
	teachers *mongo.Collection
	results  *mongo.Collection
}

var _ academy.Repository = (*academyRepository)(nil)

func NewAcademyRepository(db *DB) academy.Repository {
	return &academyRepository{
		batches:  db.col(colBatches),
		students: db.col(colStudents),
		teachers: db.col(colTeachers),
		results:  db.col(colResults),
	}
}

// Batches

func (repo *academyRepository) CreateBatch(ctx context.Context, b academy.Batch) (academy.Batch, error) {
	return insert(ctx, repo.batches, b, batchConflicts)
}

func (repo *academyRepository) GetBatch(ctx context.Context, id string) (academy.Batch, error) {
	return findOne[academy.Batch](ctx, repo.batches, bson.M{"_id": id}, academy.ErrBatchNotFound)
}

func (repo *academyRepository) QueryBatches(ctx context.Context) ([]academy.Batch, error) {
	return find[academy.Batch](ctx, repo.batches, bson.M{}, sortBy("name"))
}

func (repo *academyRepository) UpdateBatch(ctx context.Context, b academy.Batch) (academy.Batch, error) {
	return replace(ctx, repo.batches, b.ID, b, academy.ErrBatchNotFound, batchConflicts)
}

func (repo *academyRepository) DeleteBatch(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.batches, id, academy.ErrBatchNotFound)
}

// Students

func (repo *academyRepository) CreateStudent(ctx context.Context, s academy.Student) (academy.Student, error) {
	return insert(ctx, repo.students, s, studentConflicts)
}

func (repo *academyRepository) GetStudent(ctx context.Context, id string) (academy.Student, error) {
	return findOne[academy.Student](ctx, repo.students, bson.M{"_id": id}, academy.ErrStudentNotFound)
}

func (repo *academyRepository) FilterStudents(ctx context.Context, filter academy.StudentFilter) ([]academy.Student, error) {
	q := bson.M{}
	if filter.BatchID != "" {
		q["batch_id"] = filter.BatchID
	}
	return find[academy.Student](ctx, repo.students, q, sortBy("roll", "name"))
}

func (repo *academyRepository) UpdateStudent(ctx context.Context, s academy.Student) (academy.Student, error) {
	return replace(ctx, repo.students, s.ID, s, academy.ErrStudentNotFound, studentConflicts)
}

func (repo *academyRepository) DeleteStudent(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.students, id, academy.ErrStudentNotFound)
}

// Teachers

func (repo *academyRepository) CreateTeacher(ctx context.Context, t academy.Teacher) (academy.Teacher, error) {
	return insert(ctx, repo.teachers, t, teacherConflicts)
}

func (repo *academyRepository) GetTeacher(ctx context.Context, id string) (academy.Teacher, error) {
	return findOne[academy.Teacher](ctx, repo.teachers, bson.M{"_id": id}, academy.ErrTeacherNotFound)
}

func (repo *academyRepository) GetTeacherByCode(ctx context.Context, code string) (academy.Teacher, error) {
	return findOne[academy.Teacher](ctx, repo.teachers, bson.M{"code": code}, academy.ErrTeacherNotFound)
}

func (repo *academyRepository) FilterTeachers(ctx context.Context, filter academy.TeacherFilter) ([]academy.Teacher, error) {
	status := bson.M{}
	if filter.Status != "" {
		status["$eq"] = filter.Status
	}
	if filter.ExcludeSuspended {
		status["$ne"] = academy.TeacherSuspended
	}
	q := bson.M{}
	if len(status) > 0 {
		q["status"] = status
	}
	return find[academy.Teacher](ctx, repo.teachers, q, sortBy("name"))
}

func (repo *academyRepository) UpdateTeacher(ctx context.Context, t academy.Teacher) (academy.Teacher, error) {
	return replace(ctx, repo.teachers, t.ID, t, academy.ErrTeacherNotFound, teacherConflicts)
}

func (repo *academyRepository) DeleteTeacher(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.teachers, id, academy.ErrTeacherNotFound)
}

// Results

func (repo *academyRepository) CreateResult(ctx context.Context, r academy.Result) (academy.Result, error) {
	return insert(ctx, repo.results, r, nil)
}

func (repo *academyRepository) GetResult(ctx context.Context, id string) (academy.Result, error) {
	return findOne[academy.Result](ctx, repo.results, bson.M{"_id": id}, academy.ErrResultNotFound)
}

func (repo *academyRepository) FilterResults(ctx context.Context, filter academy.ResultFilter) ([]academy.Result, error) {
	q := bson.M{}
	if filter.BatchID != "" {
		q["batch_id"] = filter.BatchID
	}
	return find[academy.Result](ctx, repo.results, q, sortBy("-created_at"))
}

func (repo *academyRepository) UpdateResult(ctx context.Context, r academy.Result) (academy.Result, error) {
	return replace(ctx, repo.results, r.ID, r, academy.ErrResultNotFound, nil)
}

func (repo *academyRepository) DeleteResult(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.results, id, academy.ErrResultNotFound)
}

package academy_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/academy"
	inmemdb "github.com/trezcool/coachdesk/storage/inmem"
)

func fPtr(f float64) *float64 { return &f }

func TestResult_Totals(t *testing.T) {
	physics := academy.SubjectMark{ClassName: "Physics", MCQTotal: 25, MCQGain: 20, QuesTotal: 50, QuesGain: 40}
	math := academy.SubjectMark{ClassName: "Math", MCQTotal: 30, MCQGain: 22.5, TotalMarks: fPtr(100), TotalGain: fPtr(80)}

	tests := []struct {
		name      string
		result    academy.Result
		wantGain  float64
		wantTotal float64
	}{
		{name: "no subjects", result: academy.Result{}},
		{name: "summed", result: academy.Result{Subjects: []academy.SubjectMark{physics}}, wantGain: 60, wantTotal: 75},
		{name: "subject totals win", result: academy.Result{Subjects: []academy.SubjectMark{physics, math}}, wantGain: 140, wantTotal: 175},
		{
			name:     "result totals win",
			result:   academy.Result{Subjects: []academy.SubjectMark{physics, math}, TotalMarks: fPtr(200), TotalGain: fPtr(150.5)},
			wantGain: 150.5, wantTotal: 200,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gain, total := tt.result.Totals()
			assert.Equal(t, tt.wantGain, gain)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestTeacherInput_Validate(t *testing.T) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	tests := []struct {
		name       string
		in         academy.TeacherInput
		wantPhone  string
		wantStatus string
		wantErr    bool
	}{
		{name: "phone", in: academy.TeacherInput{Code: "T-1", Name: "Anwar", Phone: "017", Mobile: "018"}, wantPhone: "017", wantStatus: academy.TeacherActive},
		{name: "mobile", in: academy.TeacherInput{Code: "T-1", Name: "Anwar", Mobile: " 018 "}, wantPhone: "018", wantStatus: academy.TeacherActive},
		{name: "contact number", in: academy.TeacherInput{Code: "T-1", Name: "Anwar", ContactNumber: "019", Status: "SUSPENDED"}, wantPhone: "019", wantStatus: academy.TeacherSuspended},
		{name: "bad status", in: academy.TeacherInput{Code: "T-1", Name: "Anwar", Status: "retired"}, wantErr: true},
		{name: "required", in: academy.TeacherInput{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPhone, tt.in.Phone)
			assert.Equal(t, tt.wantStatus, tt.in.Status)
		})
	}
}

func TestService(t *testing.T) {
	repo := inmemdb.NewAcademyRepository(inmemdb.Open())
	svc := academy.NewService(repo)
	ctx := context.Background()

	fieldErr := func(t *testing.T, err error) core.FieldError {
		t.Helper()
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "got %v", err)
		require.Len(t, vErr.Fields, 1)
		return vErr.Fields[0]
	}

	batch, err := svc.CreateBatch(ctx, academy.BatchInput{Name: "HSC-24", ClassName: "HSC"})
	require.NoError(t, err)
	assert.True(t, core.IsValidID(batch.ID))

	t.Run("batch name is unique", func(t *testing.T) {
		_, err := svc.CreateBatch(ctx, academy.BatchInput{Name: "hsc-24"})
		assert.Equal(t, core.FieldError{Field: "name", Error: academy.ErrBatchNameExists.Error()}, fieldErr(t, err))
	})

	t.Run("students need an existing batch", func(t *testing.T) {
		_, err := svc.CreateStudent(ctx, academy.StudentInput{Code: "S-1", Name: "Arif", BatchID: core.NewID()})
		assert.Equal(t, "batch_id", fieldErr(t, err).Field)
	})

	student, err := svc.CreateStudent(ctx, academy.StudentInput{Code: "S-1", Name: "Arif", BatchID: batch.ID})
	require.NoError(t, err)

	t.Run("student code is unique", func(t *testing.T) {
		_, err := svc.CreateStudent(ctx, academy.StudentInput{Code: "S-1", Name: "Bithi", BatchID: batch.ID})
		assert.Equal(t, core.FieldError{Field: "code", Error: academy.ErrStudentCodeExists.Error()}, fieldErr(t, err))
	})

	t.Run("malformed ids are not found", func(t *testing.T) {
		_, err := svc.GetStudent(ctx, "lol")
		assert.Equal(t, academy.ErrStudentNotFound, err)
		_, err = svc.GetBatch(ctx, "lol")
		assert.Equal(t, academy.ErrBatchNotFound, err)
		assert.Equal(t, academy.ErrTeacherNotFound, svc.DeleteTeacher(ctx, "lol"))
	})

	t.Run("results reference a student of any batch", func(t *testing.T) {
		subjects := []academy.SubjectMark{{ClassName: "Physics", MCQTotal: 25, MCQGain: 20}}
		_, err := svc.CreateResult(ctx, academy.ResultInput{BatchID: batch.ID, StudentID: core.NewID(), Type: "Final", Subjects: subjects})
		assert.Equal(t, "student_id", fieldErr(t, err).Field)

		r, err := svc.CreateResult(ctx, academy.ResultInput{BatchID: batch.ID, StudentID: student.ID, Type: "Final", Subjects: subjects})
		require.NoError(t, err)
		results, err := svc.FilterResults(ctx, academy.ResultFilter{BatchID: batch.ID})
		require.NoError(t, err)
		assert.Equal(t, []academy.Result{r}, results)
	})

	t.Run("teachers", func(t *testing.T) {
		active, err := svc.CreateTeacher(ctx, academy.TeacherInput{Code: "T-1", Name: "Anwar", Status: academy.TeacherActive})
		require.NoError(t, err)
		_, err = svc.CreateTeacher(ctx, academy.TeacherInput{Code: "T-2", Name: "Babul", Status: academy.TeacherSuspended})
		require.NoError(t, err)

		_, err = svc.CreateTeacher(ctx, academy.TeacherInput{Code: "T-1", Name: "Chandan", Status: academy.TeacherActive})
		assert.Equal(t, "code", fieldErr(t, err).Field)

		teachers, err := svc.FilterTeachers(ctx, academy.TeacherFilter{ExcludeSuspended: true})
		require.NoError(t, err)
		assert.Equal(t, []academy.Teacher{active}, teachers)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.DeleteStudent(ctx, student.ID))
		_, err := svc.GetStudent(ctx, student.ID)
		assert.True(t, core.IsNotFound(err))
	})
}

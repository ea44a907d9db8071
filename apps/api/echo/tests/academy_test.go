package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coachdesk/core/academy"
	"github.com/trezcool/coachdesk/testutil"
)

func Test_academyApi_batches(t *testing.T) {
	srv := setup(t)
	token := getToken(t, testutil.CreateAdmin(t, admRepo, "rahim", "rahim@coach.test", pwd))

	hsc := testutil.CreateBatch(t, acdRepo, "HSC-24")
	ssc := testutil.CreateBatch(t, acdRepo, "SSC-24")
	arif := testutil.CreateStudent(t, acdRepo, hsc.ID, "S-1", "Arif", "1", "01711000001")
	testutil.CreateStudent(t, acdRepo, ssc.ID, "S-2", "Bithi", "1", "")

	tests := []httpTest{
		{name: "auth required", path: "/api/batches", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthorized)},
		{name: "get", path: "/api/batches/" + hsc.ID, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, hsc)},
		{name: "get (unknown)", path: "/api/batches/" + arif.ID, token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "batch not found"})},
		{name: "students of batch", path: "/api/batches/" + hsc.ID + "/students", token: token, wantCode: http.StatusOK, wantData: marchallList(t, arif)},
		{
			name: "create (required)", method: http.MethodPost, path: "/api/batches", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "create (duplicate name)", method: http.MethodPost, path: "/api/batches", token: token, body: []byte(`{"name": "hsc-24"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": academy.ErrBatchNameExists.Error()}),
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("create, update & delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/batches", token, []byte(`{"name": " Admission-25 ", "class_name": "University"}`))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		var batch academy.Batch
		unmarshal(t, rec, &batch)
		assert.Equal(t, "Admission-25", batch.Name)

		req, rec = newAuthRequest(http.MethodPut, "/api/batches/"+batch.ID, token, []byte(`{"name": "Admission-26"}`))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &batch)
		assert.Equal(t, "Admission-26", batch.Name)
		assert.Equal(t, "", batch.ClassName)

		req, rec = newAuthRequest(http.MethodGet, "/api/batches", token)
		srv.ServeHTTP(rec, req)
		var batches []academy.Batch
		unmarshal(t, rec, &batches)
		assert.Len(t, batches, 3)

		req, rec = newAuthRequest(http.MethodDelete, "/api/batches/"+batch.ID, token)
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func Test_academyApi_students(t *testing.T) {
	srv := setup(t)
	token := getToken(t, testutil.CreateAdmin(t, admRepo, "rahim", "rahim@coach.test", pwd))

	hsc := testutil.CreateBatch(t, acdRepo, "HSC-24")
	ssc := testutil.CreateBatch(t, acdRepo, "SSC-24")
	arif := testutil.CreateStudent(t, acdRepo, hsc.ID, "S-1", "Arif", "2", "01711000001")
	bithi := testutil.CreateStudent(t, acdRepo, hsc.ID, "S-2", "Bithi", "1", "")
	chayan := testutil.CreateStudent(t, acdRepo, ssc.ID, "S-3", "Chayan", "1", "")

	tests := []httpTest{
		{name: "list", path: "/api/students", token: token, wantCode: http.StatusOK, wantData: marchallList(t, bithi, chayan, arif)},
		{name: "filter by batch", path: "/api/students?batch_id=" + hsc.ID, token: token, wantCode: http.StatusOK, wantData: marchallList(t, bithi, arif)},
		{name: "get", path: "/api/students/" + chayan.ID, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, chayan)},
		{
			name: "create (unknown batch)", method: http.MethodPost, path: "/api/students", token: token,
			body:     marchallObj(t, academy.StudentInput{Code: "S-9", Name: "Dipu", BatchID: arif.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"batch_id": "batch not found"}),
		},
		{
			name: "create (malformed batch)", method: http.MethodPost, path: "/api/students", token: token,
			body:     marchallObj(t, academy.StudentInput{Code: "S-9", Name: "Dipu", BatchID: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"batch_id": "invalid identifier"}),
		},
		{
			name: "create (duplicate code)", method: http.MethodPost, path: "/api/students", token: token,
			body:     marchallObj(t, academy.StudentInput{Code: "S-1", Name: "Dipu", BatchID: hsc.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"code": academy.ErrStudentCodeExists.Error()}),
		},
		{name: "delete (unknown)", method: http.MethodDelete, path: "/api/students/" + hsc.ID, token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"})},
	}
	runHTTPTests(t, srv, tests)

	t.Run("move to another batch", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/students/"+arif.ID, token, marchallObj(t, academy.StudentInput{
			Code: arif.Code, Name: arif.Name, Roll: "9", BatchID: ssc.ID, GuardianPhone: "01711000009",
		}))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var student academy.Student
		unmarshal(t, rec, &student)
		assert.Equal(t, ssc.ID, student.BatchID)
		assert.Equal(t, "01711000009", student.GuardianPhone)
	})
}

func Test_academyApi_teachers(t *testing.T) {
	srv := setup(t)
	token := getToken(t, testutil.CreateAdmin(t, admRepo, "rahim", "rahim@coach.test", pwd))

	anwar := testutil.CreateTeacher(t, acdRepo, "T-1", "Anwar", "01811000001", academy.TeacherActive)
	babul := testutil.CreateTeacher(t, acdRepo, "T-2", "Babul", "", academy.TeacherSuspended)

	tests := []httpTest{
		{name: "list", path: "/api/teachers", token: token, wantCode: http.StatusOK, wantData: marchallList(t, anwar, babul)},
		{name: "filter by status", path: "/api/teachers?status=suspended", token: token, wantCode: http.StatusOK, wantData: marchallList(t, babul)},
		{
			name: "create (bad status)", method: http.MethodPost, path: "/api/teachers", token: token, body: []byte(`{"code": "T-3", "name": "Chandan", "status": "retired"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"status": "status must be one of [active suspended]"}),
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("phone aliases", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/teachers", token, []byte(`{"code": "T-3", "name": "Chandan", "contact_number": "01811000003"}`))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		var teacher academy.Teacher
		unmarshal(t, rec, &teacher)
		assert.Equal(t, "01811000003", teacher.Phone)
		assert.Equal(t, academy.TeacherActive, teacher.Status)
	})
}

func Test_academyApi_results(t *testing.T) {
	srv := setup(t)
	token := getToken(t, testutil.CreateAdmin(t, admRepo, "rahim", "rahim@coach.test", pwd))

	hsc := testutil.CreateBatch(t, acdRepo, "HSC-24")
	ssc := testutil.CreateBatch(t, acdRepo, "SSC-24")
	physics := academy.SubjectMark{ClassName: "Physics", MCQTotal: 25, MCQGain: 20, QuesTotal: 50, QuesGain: 40}
	midterm := testutil.CreateResult(t, acdRepo, hsc.ID, "Midterm", physics)

	tests := []httpTest{
		{name: "filter by batch", path: "/api/results?batch_id=" + hsc.ID, token: token, wantCode: http.StatusOK, wantData: marchallList(t, midterm)},
		{name: "filter by batch (none)", path: "/api/results?batch_id=" + ssc.ID, token: token, wantCode: http.StatusOK, wantData: marchallList(t)},
		{
			name: "create (subjects required)", method: http.MethodPost, path: "/api/results", token: token,
			body:     marchallObj(t, academy.ResultInput{BatchID: hsc.ID, Type: "Final"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"subjects": "this field is required"}),
		},
		{
			name: "create (bad exam date)", method: http.MethodPost, path: "/api/results", token: token,
			body:     marchallObj(t, academy.ResultInput{BatchID: hsc.ID, Type: "Final", ExamDate: "10/03/2024", Subjects: []academy.SubjectMark{physics}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"exam_date": "exam_date does not match the 2006-01-02 format"}),
		},
		{
			name: "create (unknown student)", method: http.MethodPost, path: "/api/results", token: token,
			body:     marchallObj(t, academy.ResultInput{BatchID: hsc.ID, StudentID: ssc.ID, Type: "Final", Subjects: []academy.SubjectMark{physics}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": "student not found"}),
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/results", token, marchallObj(t, academy.ResultInput{
			BatchID: ssc.ID, Type: " Final ", ExamDate: "2024-06-01", Subjects: []academy.SubjectMark{physics},
		}))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		var result academy.Result
		unmarshal(t, rec, &result)
		assert.Equal(t, "Final", result.Type)
		assert.Equal(t, ssc.ID, result.BatchID)
		require.Len(t, result.Subjects, 1)
	})
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core/academy"
)

type academyAPI struct {
	ServerDeps
}

func registerAcademyAPI(g *echo.Group, deps ServerDeps) {
	api := academyAPI{ServerDeps: deps}

	g.GET("/batches", api.listBatches)
	g.POST("/batches", api.createBatch)
	g.GET("/batches/:id", api.getBatch)
	g.PUT("/batches/:id", api.updateBatch)
	g.DELETE("/batches/:id", api.deleteBatch)
	g.GET("/batches/:id/students", api.batchStudents)

	g.GET("/students", api.listStudents)
	g.POST("/students", api.createStudent)
	g.GET("/students/:id", api.getStudent)
	g.PUT("/students/:id", api.updateStudent)
	g.DELETE("/students/:id", api.deleteStudent)

	g.GET("/teachers", api.listTeachers)
	g.POST("/teachers", api.createTeacher)
	g.GET("/teachers/:id", api.getTeacher)
	g.PUT("/teachers/:id", api.updateTeacher)
	g.DELETE("/teachers/:id", api.deleteTeacher)

	g.GET("/results", api.listResults)
	g.POST("/results", api.createResult)
	g.GET("/results/:id", api.getResult)
	g.PUT("/results/:id", api.updateResult)
	g.DELETE("/results/:id", api.deleteResult)
}

type validatable interface {
	Validate(validate *validator.Validate) error
}

// bindInput binds the request body to `data` and validates it.
func (api *academyAPI) bindInput(ctx echo.Context, data validatable, name string) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to "+name)
	}
	return data.Validate(api.Validate)
}

func respond(ctx echo.Context, code int, data interface{}, err error) error {
	if err != nil {
		return err
	}
	return ctx.JSON(code, data)
}

func deleted(ctx echo.Context, err error) error {
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Batches

func (api *academyAPI) listBatches(ctx echo.Context) error {
	batches, err := api.AcademySvc.QueryBatches(ctx.Request().Context())
	return respond(ctx, http.StatusOK, batches, errors.Wrap(err, "querying batches"))
}

func (api *academyAPI) createBatch(ctx echo.Context) error {
	var data academy.BatchInput
	if err := api.bindInput(ctx, &data, "BatchInput"); err != nil {
		return err
	}
	batch, err := api.AcademySvc.CreateBatch(ctx.Request().Context(), data)
	return respond(ctx, http.StatusCreated, batch, err)
}

func (api *academyAPI) getBatch(ctx echo.Context) error {
	batch, err := api.AcademySvc.GetBatch(ctx.Request().Context(), ctx.Param("id"))
	return respond(ctx, http.StatusOK, batch, err)
}

func (api *academyAPI) updateBatch(ctx echo.Context) error {
	var data academy.BatchInput
	if err := api.bindInput(ctx, &data, "BatchInput"); err != nil {
		return err
	}
	batch, err := api.AcademySvc.UpdateBatch(ctx.Request().Context(), ctx.Param("id"), data)
	return respond(ctx, http.StatusOK, batch, err)
}

func (api *academyAPI) deleteBatch(ctx echo.Context) error {
	return deleted(ctx, api.AcademySvc.DeleteBatch(ctx.Request().Context(), ctx.Param("id")))
}

func (api *academyAPI) batchStudents(ctx echo.Context) error {
	batch, err := api.AcademySvc.GetBatch(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	students, err := api.AcademySvc.FilterStudents(ctx.Request().Context(), academy.StudentFilter{BatchID: batch.ID})
	return respond(ctx, http.StatusOK, students, errors.Wrap(err, "filtering students"))
}

// Students

func (api *academyAPI) listStudents(ctx echo.Context) error {
	var filter academy.StudentFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to StudentFilter")
	}
	students, err := api.AcademySvc.FilterStudents(ctx.Request().Context(), filter)
	return respond(ctx, http.StatusOK, students, errors.Wrap(err, "filtering students"))
}

func (api *academyAPI) createStudent(ctx echo.Context) error {
	var data academy.StudentInput
	if err := api.bindInput(ctx, &data, "StudentInput"); err != nil {
		return err
	}
	student, err := api.AcademySvc.CreateStudent(ctx.Request().Context(), data)
	return respond(ctx, http.StatusCreated, student, err)
}

func (api *academyAPI) getStudent(ctx echo.Context) error {
	student, err := api.AcademySvc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	return respond(ctx, http.StatusOK, student, err)
}

func (api *academyAPI) updateStudent(ctx echo.Context) error {
	var data academy.StudentInput
	if err := api.bindInput(ctx, &data, "StudentInput"); err != nil {
		return err
	}
	student, err := api.AcademySvc.UpdateStudent(ctx.Request().Context(), ctx.Param("id"), data)
	return respond(ctx, http.StatusOK, student, err)
}

func (api *academyAPI) deleteStudent(ctx echo.Context) error {
	return deleted(ctx, api.AcademySvc.DeleteStudent(ctx.Request().Context(), ctx.Param("id")))
}

// Teachers

func (api *academyAPI) listTeachers(ctx echo.Context) error {
	var filter academy.TeacherFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to TeacherFilter")
	}
	teachers, err := api.AcademySvc.FilterTeachers(ctx.Request().Context(), filter)
	return respond(ctx, http.StatusOK, teachers, errors.Wrap(err, "filtering teachers"))
}

func (api *academyAPI) createTeacher(ctx echo.Context) error {
	var data academy.TeacherInput
	if err := api.bindInput(ctx, &data, "TeacherInput"); err != nil {
		return err
	}
	teacher, err := api.AcademySvc.CreateTeacher(ctx.Request().Context(), data)
	return respond(ctx, http.StatusCreated, teacher, err)
}

func (api *academyAPI) getTeacher(ctx echo.Context) error {
	teacher, err := api.AcademySvc.GetTeacher(ctx.Request().Context(), ctx.Param("id"))
	return respond(ctx, http.StatusOK, teacher, err)
}

func (api *academyAPI) updateTeacher(ctx echo.Context) error {
	var data academy.TeacherInput
	if err := api.bindInput(ctx, &data, "TeacherInput"); err != nil {
		return err
	}
	teacher, err := api.AcademySvc.UpdateTeacher(ctx.Request().Context(), ctx.Param("id"), data)
	return respond(ctx, http.StatusOK, teacher, err)
}

func (api *academyAPI) deleteTeacher(ctx echo.Context) error {
	return deleted(ctx, api.AcademySvc.DeleteTeacher(ctx.Request().Context(), ctx.Param("id")))
}

// Results

func (api *academyAPI) listResults(ctx echo.Context) error {
	var filter academy.ResultFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ResultFilter")
	}
	results, err := api.AcademySvc.FilterResults(ctx.Request().Context(), filter)
	return respond(ctx, http.StatusOK, results, errors.Wrap(err, "filtering results"))
}

func (api *academyAPI) createResult(ctx echo.Context) error {
	var data academy.ResultInput
	if err := api.bindInput(ctx, &data, "ResultInput"); err != nil {
		return err
	}
	result, err := api.AcademySvc.CreateResult(ctx.Request().Context(), data)
	return respond(ctx, http.StatusCreated, result, err)
}

func (api *academyAPI) getResult(ctx echo.Context) error {
	result, err := api.AcademySvc.GetResult(ctx.Request().Context(), ctx.Param("id"))
	return respond(ctx, http.StatusOK, result, err)
}

func (api *academyAPI) updateResult(ctx echo.Context) error {
	var data academy.ResultInput
	if err := api.bindInput(ctx, &data, "ResultInput"); err != nil {
		return err
	}
	result, err := api.AcademySvc.UpdateResult(ctx.Request().Context(), ctx.Param("id"), data)
	return respond(ctx, http.StatusOK, result, err)
}

func (api *academyAPI) deleteResult(ctx echo.Context) error {
	return deleted(ctx, api.AcademySvc.DeleteResult(ctx.Request().Context(), ctx.Param("id")))
}

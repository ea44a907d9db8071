package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core/sms"
)

type smsAPI struct {
	ServerDeps
}

func registerSMSAPI(g *echo.Group, deps ServerDeps) {
	api := smsAPI{ServerDeps: deps}

	g.GET("/templates", api.listTemplates)
	g.POST("/templates", api.createTemplate)
	g.GET("/templates/:id", api.getTemplate)
	g.PUT("/templates/:id", api.updateTemplate)
	g.DELETE("/templates/:id", api.deleteTemplate)

	g.POST("/preview", api.preview)
	g.POST("/send/students", api.sendToStudents)
	g.POST("/send/teachers", api.sendToTeachers)

	g.GET("/report/:requestId", api.deliveryReport)
	g.GET("/balance", api.balance)
	g.GET("/logs", api.logs)
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

func (api *smsAPI) listTemplates(ctx echo.Context) error {
	tmpls, err := api.SMSSvc.QueryTemplates(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying templates")
	}
	return ctx.JSON(http.StatusOK, tmpls)
}

func (api *smsAPI) bindTemplate(ctx echo.Context) (sms.TemplateInput, error) {
	var data sms.TemplateInput
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to TemplateInput")
	}
	return data, data.Validate(api.Validate)
}

func (api *smsAPI) createTemplate(ctx echo.Context) error {
	data, err := api.bindTemplate(ctx)
	if err != nil {
		return err
	}
	tmpl, err := api.SMSSvc.CreateTemplate(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tmpl)
}

func (api *smsAPI) getTemplate(ctx echo.Context) error {
	tmpl, err := api.SMSSvc.GetTemplate(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tmpl)
}

func (api *smsAPI) updateTemplate(ctx echo.Context) error {
	data, err := api.bindTemplate(ctx)
	if err != nil {
		return err
	}
	tmpl, err := api.SMSSvc.UpdateTemplate(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tmpl)
}

func (api *smsAPI) deleteTemplate(ctx echo.Context) error {
	if err := api.SMSSvc.DeleteTemplate(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *smsAPI) preview(ctx echo.Context) error {
	var data sms.PreviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PreviewRequest")
	}
	prev, err := api.Dispatcher.Preview(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prev)
}

func (api *smsAPI) sendToStudents(ctx echo.Context) error {
	var data sms.StudentDispatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentDispatch")
	}
	summary, err := api.Dispatcher.SendToStudents(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *smsAPI) sendToTeachers(ctx echo.Context) error {
	var data sms.TeacherDispatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherDispatch")
	}
	summary, err := api.Dispatcher.SendToTeachers(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *smsAPI) deliveryReport(ctx echo.Context) error {
	report, err := api.SMSSvc.DeliveryReport(ctx.Request().Context(), ctx.Param("requestId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *smsAPI) balance(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, BalanceResponse{Balance: api.SMSSvc.Balance(ctx.Request().Context())})
}

// logs accepts `from` and `to` as RFC 3339 timestamps.
func (api *smsAPI) logs(ctx echo.Context) error {
	var filter sms.LogFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to LogFilter")
	}
	entries, err := api.SMSSvc.QueryLogs(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying sms logs")
	}
	return ctx.JSON(http.StatusOK, entries)
}

package sms

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
)

// Service manages templates and exposes the delivery log and gateway queries.
type Service struct {
	templates TemplateRepository
	logs      LogRepository
	gateway   Gateway
}

func NewService(templates TemplateRepository, logs LogRepository, gateway Gateway) *Service {
	return &Service{templates: templates, logs: logs, gateway: gateway}
}

func templateUniquenessError(err error, what string) error {
	if errors.Cause(err) == ErrTemplateNameExists {
		return core.NewValidationError(err, core.FieldError{Field: "name", Error: ErrTemplateNameExists.Error()})
	}
	return errors.Wrap(err, what)
}

func (svc *Service) CreateTemplate(ctx context.Context, in TemplateInput) (Template, error) {
	now := NowFunc().UTC()
	tmpl, err := svc.templates.CreateTemplate(ctx, Template{ID: core.NewID(), Name: in.Name, Body: in.Body, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return Template{}, templateUniquenessError(err, "creating template")
	}
	return tmpl, nil
}

func (svc *Service) GetTemplate(ctx context.Context, id string) (Template, error) {
	if !core.IsValidID(id) {
		return Template{}, ErrTemplateNotFound
	}
	return svc.templates.GetTemplate(ctx, id)
}

func (svc *Service) QueryTemplates(ctx context.Context) ([]Template, error) {
	return svc.templates.QueryTemplates(ctx)
}

func (svc *Service) UpdateTemplate(ctx context.Context, id string, in TemplateInput) (Template, error) {
	tmpl, err := svc.GetTemplate(ctx, id)
	if err != nil {
		return Template{}, err
	}
	tmpl.Name, tmpl.Body, tmpl.UpdatedAt = in.Name, in.Body, NowFunc().UTC()
	if tmpl, err = svc.templates.UpdateTemplate(ctx, tmpl); err != nil {
		return Template{}, templateUniquenessError(err, "updating template")
	}
	return tmpl, nil
}

// DeleteTemplate keeps the log entries referencing the template.
func (svc *Service) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := svc.GetTemplate(ctx, id); err != nil {
		return err
	}
	return svc.templates.DeleteTemplate(ctx, id)
}

func (svc *Service) QueryLogs(ctx context.Context, filter LogFilter) ([]LogEntry, error) {
	filter.Clean()
	return svc.logs.FilterLogs(ctx, filter)
}

func (svc *Service) Balance(ctx context.Context) string {
	return svc.gateway.Balance(ctx)
}

func (svc *Service) DeliveryReport(ctx context.Context, requestID string) (DeliveryReport, error) {
	requestID = core.CleanString(requestID)
	if requestID == "" {
		return DeliveryReport{}, core.NewValidationError(nil, core.FieldError{Field: "request_id", Error: "this field is required"})
	}
	return svc.gateway.DeliveryReport(ctx, requestID), nil
}

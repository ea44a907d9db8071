package sms

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
)

var (
	ErrTemplateNotFound   = core.NewNotFoundError("template")
	ErrTemplateNameExists = errors.New("a template with this name already exists")
)

type Template struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type TemplateInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Body string `json:"body" validate:"required,max=1000"`
}

func (in *TemplateInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Body = core.CleanString(in.Body)
	return validate.Struct(in)
}

type TemplateRepository interface {
	CreateTemplate(ctx context.Context, tmpl Template) (Template, error)
	GetTemplate(ctx context.Context, id string) (Template, error)
	// QueryTemplates returns templates ordered by name.
	QueryTemplates(ctx context.Context) ([]Template, error)
	UpdateTemplate(ctx context.Context, tmpl Template) (Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

package admin

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("administrator")
	ErrEmailExists        = errors.New("an administrator with this email already exists")
	ErrUsernameExists     = errors.New("an administrator with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type (
	// GetFilter matches on the first non-empty criteria.
	GetFilter struct {
		ID              string
		UsernameOrEmail []string // matches any of username or email
	}

	Repository interface {
		GetAdmin(ctx context.Context, filter GetFilter) (Administrator, error)
		CreateAdmin(ctx context.Context, adm Administrator) (Administrator, error)
		UpdateAdmin(ctx context.Context, adm Administrator) (Administrator, error)
	}
)

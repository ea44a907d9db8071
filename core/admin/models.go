package admin

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coachdesk/core"
)

// RoleAdmin is the only role; every authenticated identity holds it.
const RoleAdmin = "admin"

type Administrator struct {
	ID                string     `json:"id" bson:"_id"`
	Email             string     `json:"email" bson:"email"`
	Username          string     `json:"username" bson:"username"`
	PasswordHash      []byte     `json:"-" bson:"password_hash"`
	Role              string     `json:"role" bson:"role"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"` // UTC
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty" bson:"password_changed_at,omitempty"`
}

func (a *Administrator) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a Administrator) CheckPassword(pwd string) bool {
	return VerifyPassword(pwd, a.PasswordHash)
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Email      string `json:"email,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password" validate:"required"`
}

// Validate accepts the identifier under any of `identifier`, `email` or `username`.
func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Identifier = core.CleanString(core.FirstNonEmpty(lr.Identifier, lr.Email, lr.Username), true /* lower */)
	return validate.Struct(lr)
}

type ChangePassword struct {
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`

	// compared against the new password
	Username string `json:"-"`
	Email    string `json:"-"`
}

func (cp *ChangePassword) Validate(validate *validator.Validate, adm Administrator) error {
	cp.Username = adm.Username
	cp.Email = adm.Email
	return validate.Struct(cp)
}

// SeedAdmin holds the bootstrap administrator.
type SeedAdmin struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,alphanum_"`
	Password string `json:"password" validate:"required"`
}

func (sa *SeedAdmin) Validate(validate *validator.Validate) error {
	sa.Email = core.CleanString(sa.Email, true /* lower */)
	sa.Username = core.CleanString(sa.Username, true /* lower */)
	return validate.Struct(sa)
}

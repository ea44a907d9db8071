package admin

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
)

var (
	NowFunc = time.Now // mockable

	// compared against when the identifier is unknown, so a miss costs as much as a wrong password.
	dummyHash, _ = HashPassword("coachdesk.dummy.password")
)

type (
	Service interface {
		// Authenticate returns ErrInvalidCredentials whether the identifier or the password is wrong.
		Authenticate(ctx context.Context, identifier, pwd string) (Administrator, error)
		GetByID(ctx context.Context, id string) (Administrator, error)
		GetByUsernameOrEmail(ctx context.Context, identifier string) (Administrator, error)
		ChangePassword(ctx context.Context, id string, data ChangePassword) (Administrator, error)
		// Seed updates or creates the bootstrap Administrator.
		Seed(ctx context.Context, data SeedAdmin) (adm Administrator, created bool, err error)
		ResetPassword(ctx context.Context, identifier, pwd string) (Administrator, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) Authenticate(ctx context.Context, identifier, pwd string) (Administrator, error) {
	adm, err := svc.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			VerifyPassword(pwd, dummyHash)
			return Administrator{}, ErrInvalidCredentials
		}
		return Administrator{}, errors.Wrap(err, "finding administrator")
	}
	if !adm.CheckPassword(pwd) {
		return Administrator{}, ErrInvalidCredentials
	}
	return adm, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Administrator, error) {
	if !core.IsValidID(id) {
		return Administrator{}, ErrNotFound
	}
	return svc.repo.GetAdmin(ctx, GetFilter{ID: id})
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, identifier string) (Administrator, error) {
	identifier = core.CleanString(identifier, true /* lower */)
	if identifier == "" {
		return Administrator{}, ErrNotFound
	}
	return svc.repo.GetAdmin(ctx, GetFilter{UsernameOrEmail: []string{identifier}})
}

// ChangePassword expects validated data. Concurrent changes for the same Administrator are not serialized.
func (svc *service) ChangePassword(ctx context.Context, id string, data ChangePassword) (Administrator, error) {
	adm, err := svc.GetByID(ctx, id)
	if err != nil {
		return Administrator{}, errors.Wrap(err, "finding administrator")
	}
	if !adm.CheckPassword(data.CurrentPassword) {
		return Administrator{}, core.NewValidationError(
			ErrWrongPassword,
			core.FieldError{Field: "current_password", Error: ErrWrongPassword.Error()},
		)
	}

	if err = adm.SetPassword(data.NewPassword); err != nil {
		return Administrator{}, errors.Wrap(err, "hashing password")
	}
	now := NowFunc().UTC()
	adm.PasswordChangedAt = &now
	adm.UpdatedAt = now
	if adm, err = svc.repo.UpdateAdmin(ctx, adm); err != nil {
		return Administrator{}, errors.Wrap(err, "updating administrator")
	}

	svc.sendPasswordChangedMail(adm)
	return adm, nil
}

func (svc *service) Seed(ctx context.Context, data SeedAdmin) (Administrator, bool, error) {
	var created bool
	adm, err := svc.repo.GetAdmin(ctx, GetFilter{UsernameOrEmail: []string{data.Username, data.Email}})
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Administrator{}, false, errors.Wrap(err, "finding administrator")
		}
		adm = Administrator{ID: core.NewID(), CreatedAt: NowFunc().UTC()}
		created = true
	}

	adm.Email = data.Email
	adm.Username = data.Username
	adm.Role = RoleAdmin
	adm.UpdatedAt = NowFunc().UTC()
	if err = adm.SetPassword(data.Password); err != nil {
		return Administrator{}, false, errors.Wrap(err, "hashing password")
	}

	if created {
		adm, err = svc.repo.CreateAdmin(ctx, adm)
	} else {
		adm, err = svc.repo.UpdateAdmin(ctx, adm)
	}
	if err != nil {
		return Administrator{}, false, svc.uniquenessError(err)
	}
	return adm, created, nil
}

func (svc *service) ResetPassword(ctx context.Context, identifier, pwd string) (Administrator, error) {
	adm, err := svc.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return Administrator{}, err
	}
	if len(pwd) > MaxPasswordLen {
		return Administrator{}, core.NewValidationError(nil, core.FieldError{Field: "password", Error: pwdMaxLenText})
	}
	if err = adm.SetPassword(pwd); err != nil {
		return Administrator{}, errors.Wrap(err, "hashing password")
	}
	now := NowFunc().UTC()
	adm.PasswordChangedAt = &now
	adm.UpdatedAt = now
	return svc.repo.UpdateAdmin(ctx, adm)
}

func (svc *service) uniquenessError(err error) error {
	var field string
	switch errors.Cause(err) {
	case ErrUsernameExists:
		field = "username"
	case ErrEmailExists:
		field = "email"
	default:
		return errors.Wrap(err, "saving administrator")
	}
	return core.NewValidationError(err, core.FieldError{Field: field, Error: errors.Cause(err).Error()})
}

func (svc *service) sendPasswordChangedMail(adm Administrator) {
	if adm.Email == "" || svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: adm.Username, Address: adm.Email}},
		Subject:      "Your password was changed",
		TemplateName: "password_changed",
		TemplateData: map[string]string{
			"Username":  adm.Username,
			"ChangedAt": adm.PasswordChangedAt.Format(time.RFC1123),
		},
	})
}

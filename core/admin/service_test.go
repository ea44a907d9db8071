package admin_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/admin"
	emailsvc "github.com/trezcool/coachdesk/services/email"
	inmemdb "github.com/trezcool/coachdesk/storage/inmem"
	"github.com/trezcool/coachdesk/testutil"
)

const pwd = "Pass.1234"

func setup(t *testing.T) (admin.Service, admin.Repository) {
	conf := testutil.NewConfig()
	repo := inmemdb.NewAdminRepository(inmemdb.Open())
	emailsvc.ResetSentMessages()
	return admin.NewService(repo, emailsvc.NewConsoleServiceMock(conf, testutil.NewLogger()), conf), repo
}

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)
	return validate
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	adm := testutil.CreateAdmin(t, repo, "rahim", "rahim@coach.test", pwd)
	testutil.CreateAdmin(t, repo, "nopwd", "nopwd@coach.test", "")

	tests := []struct {
		name       string
		identifier string
		pwd        string
		wantErr    error
	}{
		{name: "username", identifier: "rahim", pwd: pwd},
		{name: "email", identifier: "rahim@coach.test", pwd: pwd},
		{name: "any case", identifier: " RAHIM ", pwd: pwd},
		{name: "wrong password", identifier: "rahim", pwd: "pass.1234", wantErr: admin.ErrInvalidCredentials},
		{name: "unknown identifier", identifier: "karim", pwd: pwd, wantErr: admin.ErrInvalidCredentials},
		{name: "empty identifier", pwd: pwd, wantErr: admin.ErrInvalidCredentials},
		{name: "no password set", identifier: "nopwd", pwd: "", wantErr: admin.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(context.Background(), tt.identifier, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, adm.ID, got.ID)
		})
	}
}

func TestService_ChangePassword(t *testing.T) {
	svc, repo := setup(t)
	adm := testutil.CreateAdmin(t, repo, "rahim", "rahim@coach.test", pwd)
	validate := newValidator()
	ctx := context.Background()

	t.Run("policy", func(t *testing.T) {
		tests := []struct {
			name    string
			newPwd  string
			wantTag string
		}{
			{name: "too short", newPwd: "Ab1!", wantTag: "pwdminlen"},
			{name: "too long for bcrypt", newPwd: strings.Repeat("Ab1!", 19), wantTag: "pwdmaxlen"},
			{name: "longest", newPwd: strings.Repeat("Ab1!", 18)},
			{name: "whitespace", newPwd: "Pass 12345", wantTag: "pwdnospace"},
			{name: "similar to username", newPwd: "rahim123", wantTag: "pwdtoosim"},
			{name: "ok", newPwd: "N3w-pass!"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				data := admin.ChangePassword{CurrentPassword: pwd, NewPassword: tt.newPwd, NewPasswordConfirm: tt.newPwd}
				err := data.Validate(validate, adm)
				if tt.wantTag == "" {
					assert.NoError(t, err)
					return
				}
				var vErrs validator.ValidationErrors
				require.True(t, errors.As(err, &vErrs), "got %v", err)
				require.Len(t, vErrs, 1)
				assert.Equal(t, "new_password", vErrs[0].Field())
				assert.Equal(t, tt.wantTag, vErrs[0].Tag())
			})
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, adm.ID, admin.ChangePassword{CurrentPassword: "nope", NewPassword: "N3w-pass!", NewPasswordConfirm: "N3w-pass!"})
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, []core.FieldError{{Field: "current_password", Error: admin.ErrWrongPassword.Error()}}, vErr.Fields)
		assert.Equal(t, 0, emailsvc.SentCount())
	})

	t.Run("unknown administrator", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, core.NewID(), admin.ChangePassword{CurrentPassword: pwd})
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("success", func(t *testing.T) {
		updated, err := svc.ChangePassword(ctx, adm.ID, admin.ChangePassword{CurrentPassword: pwd, NewPassword: "N3w-pass!", NewPasswordConfirm: "N3w-pass!"})
		require.NoError(t, err)
		assert.True(t, updated.CheckPassword("N3w-pass!"))
		assert.False(t, updated.CheckPassword(pwd))
		require.NotNil(t, updated.PasswordChangedAt)
		require.Equal(t, 1, emailsvc.SentCount())
		notice := emailsvc.SentMessages[0]
		assert.Equal(t, "rahim@coach.test", notice.To[0].Address)
		assert.Contains(t, notice.TextContent, "Hello rahim,")
		assert.Contains(t, notice.HTMLContent, "<p>Hello rahim,</p>")

		_, err = svc.Authenticate(ctx, "rahim", pwd)
		assert.Equal(t, admin.ErrInvalidCredentials, errors.Cause(err))
		_, err = svc.Authenticate(ctx, "rahim", "N3w-pass!")
		assert.NoError(t, err)
	})
}

func TestService_Seed(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	data := admin.SeedAdmin{Username: "boss", Email: "boss@coach.test", Password: "s3cure-Pass!"}

	adm, created, err := svc.Seed(ctx, data)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, admin.RoleAdmin, adm.Role)
	assert.True(t, adm.CheckPassword(data.Password))

	data.Password = "An0ther-pass"
	again, created, err := svc.Seed(ctx, data)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, adm.ID, again.ID)
	assert.True(t, again.CheckPassword("An0ther-pass"))

	// found by email, username updated
	data.Username = "chief"
	renamed, created, err := svc.Seed(ctx, data)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, adm.ID, renamed.ID)
	assert.Equal(t, "chief", renamed.Username)

	t.Run("conflicting identity", func(t *testing.T) {
		other := testutil.CreateAdmin(t, repo, "rahim", "rahim@coach.test", pwd)
		// matches `chief` by email, but the username belongs to another administrator
		_, _, err := svc.Seed(ctx, admin.SeedAdmin{Username: other.Username, Email: "boss@coach.test", Password: pwd})
		require.Error(t, err)
	})
}

func TestService_ResetPassword(t *testing.T) {
	svc, repo := setup(t)
	adm := testutil.CreateAdmin(t, repo, "rahim", "rahim@coach.test", pwd)
	ctx := context.Background()

	_, err := svc.ResetPassword(ctx, "karim", "N3w-pass!")
	assert.Equal(t, admin.ErrNotFound, errors.Cause(err))

	_, err = svc.ResetPassword(ctx, "rahim", strings.Repeat("x", admin.MaxPasswordLen+1))
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, []core.FieldError{{Field: "password", Error: "password must not be longer than 72 bytes"}}, vErr.Fields)

	updated, err := svc.ResetPassword(ctx, "Rahim@Coach.test", "N3w-pass!")
	require.NoError(t, err)
	assert.Equal(t, adm.ID, updated.ID)
	assert.True(t, updated.CheckPassword("N3w-pass!"))
	assert.NotNil(t, updated.PasswordChangedAt)
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
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

var admRepo admin.Repository

func setup(t *testing.T) *commandLine {
	conf := testutil.NewConfig()
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)

	admRepo = inmemdb.NewAdminRepository(inmemdb.Open())
	mailSvc := emailsvc.NewConsoleServiceMock(conf, testutil.NewLogger())

	return &commandLine{
		conf:     conf,
		validate: validate,
		adminSvc: admin.NewService(admRepo, mailSvc, conf),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, errors.Cause(err))
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var ran []string
	migrateFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "sms_log_index", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
	assert.Equal(t, []string{"up", "up-to", "down", "status", "create"}, ran)
}

func Test_commandLine_seedAdmin(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "invalid email", args: []string{"seedadmin", "-email", "lol"}, wantErrStr: "Key: 'SeedAdmin.email' Error:Field validation for 'email' failed on the 'email' tag"},
		{name: "create from config", args: []string{"seedadmin"}},
		{name: "update from config", args: []string{"seedadmin"}},
		{name: "create with flags", args: []string{"seedadmin", "-username", "karim", "-email", "karim@coach.test"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	boss, err := admRepo.GetAdmin(context.Background(), admin.GetFilter{UsernameOrEmail: []string{cli.conf.Admin.Username}})
	require.NoError(t, err)
	assert.True(t, boss.CheckPassword(cli.conf.Admin.Password))
	_, err = admRepo.GetAdmin(context.Background(), admin.GetFilter{UsernameOrEmail: []string{"karim"}})
	assert.NoError(t, err)

	t.Run("prompted password", func(t *testing.T) {
		cli.conf.Admin.Password = ""
		for _, tt := range []cliTest{
			{name: "empty", args: []string{"seedadmin"}, wantErr: errHelp},
			{name: "too short", args: []string{"seedadmin"}, extra: extra{pwd: "short"}, wantErrStr: "Key: 'SeedAdmin.password' Error:Field validation for 'password' failed on the 'pwdminlen' tag"},
			{name: "ok", args: []string{"seedadmin"}, extra: extra{pwd: "An0ther-pass"}},
		} {
			readPasswordFunc = func(int) ([]byte, error) {
				if e, ok := tt.extra.(extra); ok {
					return []byte(e.pwd), nil
				}
				return nil, nil
			}
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		}

		boss, err := admRepo.GetAdmin(context.Background(), admin.GetFilter{ID: boss.ID})
		require.NoError(t, err)
		assert.True(t, boss.CheckPassword("An0ther-pass"))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	adm := testutil.CreateAdmin(t, admRepo, "rahim", "rahim@coach.test", "Pass.1234")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "admin not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: admin.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", adm.Username}, extra: extra{pwd: "N3w-pass!"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", adm.Email}, extra: extra{pwd: "N3w-pass?"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(int) ([]byte, error) {
			if e, ok := tt.extra.(extra); ok {
				return []byte(e.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkErr(t, tt, err)
			if err == nil {
				refreshed, err := admRepo.GetAdmin(context.Background(), admin.GetFilter{ID: adm.ID})
				require.NoError(t, err)
				assert.True(t, refreshed.CheckPassword(tt.extra.(extra).pwd))
				assert.NotNil(t, refreshed.PasswordChangedAt)
			}
		})
	}
}

package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/admin"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf     *core.Config
	validate *validator.Validate
	adminSvc admin.Service // set for the administrator commands
	db       *sql.DB       // set for migrate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  seedadmin [-username USERNAME] [-email EMAIL] - create or update the bootstrap administrator")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset an administrator's password")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command against the delivery log database")
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedAdminCmd := flag.NewFlagSet("seedadmin", flag.ContinueOnError)
	seedAdminUname := seedAdminCmd.String("username", cli.conf.Admin.Username, "The administrator's username. Defaults to ADMIN_USERNAME.")
	seedAdminEmail := seedAdminCmd.String("email", cli.conf.Admin.Email, "The administrator's email. Defaults to ADMIN_EMAIL.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The administrator's username or email. The password will be prompted next.")

	switch args[1] {
	case "seedadmin":
		if err := seedAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedAdminUname == "" || *seedAdminEmail == "" {
			seedAdminCmd.Usage()
			return errHelp
		}
		pwd := cli.conf.Admin.Password
		if pwd == "" {
			var err error
			if pwd, err = promptPassword("Enter password:"); err != nil {
				return err
			}
		}
		if pwd == "" {
			seedAdminCmd.Usage()
			return errHelp
		}
		return cli.seedAdmin(*seedAdminUname, *seedAdminEmail, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}

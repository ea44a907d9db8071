package main

import (
	"context"
	"fmt"

	"github.com/trezcool/coachdesk/core/admin"
)

// seedAdmin updates or creates the bootstrap admin.Administrator
func (cli *commandLine) seedAdmin(uname, email, pwd string) error {
	data := admin.SeedAdmin{Username: uname, Email: email, Password: pwd}
	if err := data.Validate(cli.validate); err != nil {
		return err
	}
	adm, created, err := cli.adminSvc.Seed(context.Background(), data)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("administrator %q created\n", adm.Username)
	} else {
		fmt.Printf("administrator %q updated\n", adm.Username)
	}
	return nil
}

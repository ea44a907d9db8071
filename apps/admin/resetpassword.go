package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPassword(identifier, pwd string) error {
	adm, err := cli.adminSvc.ResetPassword(context.Background(), identifier, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("password of %q reset\n", adm.Username)
	return nil
}

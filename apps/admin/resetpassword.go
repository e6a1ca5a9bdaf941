package main

import (
	"context"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

// resetPassword sets a new password on the account matching regNo.
func (cli *commandLine) resetPassword(regNo, pwd string) error {
	ctx := context.Background()
	regNo = core.CleanString(regNo, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{RegNoOrEmail: []string{regNo}})
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}

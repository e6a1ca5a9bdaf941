package main

import (
	"context"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

// addUser creates an account for the given registration number and email,
// or updates and reactivates an existing one. Admins get every role.
func (cli *commandLine) addUser(regNo, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	regNo = core.CleanString(regNo, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{RegNoOrEmail: []string{regNo, email}})
	if err == user.ErrNotFound {
		usr = user.User{RegNo: regNo, Email: email}
	} else if err != nil {
		return err
	}

	if isAdmin {
		usr.Roles = user.AllRoles
	}
	usr.SetActive(true)
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateOrCreateUser(ctx, usr)
	return err
}

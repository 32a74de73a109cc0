package main

import (
	"context"
	"time"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/user"
)

// addSuperuser promotes an existing account or creates a new one with full
// access.
func (cli *commandLine) addSuperuser(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			Role:      access.RoleMember,
			CreatedAt: now,
		}
	}
	usr.IsStaff = true
	usr.IsSuperuser = true
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == "" {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}

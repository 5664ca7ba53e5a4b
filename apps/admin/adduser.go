package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

var errNameRequired = errors.New("a name is required to create a user")

// addUser creates a user.User, or resets their password if the email is taken.
func (cli *commandLine) addUser(name, email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if _, err := cli.usrSvc.GetByEmail(ctx, email); err == nil {
		if err = cli.usrSvc.ResetPassword(ctx, email, pwd); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%s already exists: password updated\n", email)
		return nil
	} else if errors.Cause(err) != user.ErrNotFound {
		return err
	}

	name = core.CleanString(name)
	if name == "" {
		return errNameRequired
	}
	usr, err := cli.usrSvc.Create(ctx, user.NewUser{Name: name, Email: email, Password: pwd, PasswordConfirm: pwd})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created user %s <%s>\n", usr.Name, usr.Email)
	return nil
}

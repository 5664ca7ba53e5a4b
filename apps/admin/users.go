package main

import (
	"context"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/trezcool/gradebook/core/user"
)

const userDateLayout = "2006-01-02 15:04 UTC"

func (cli *commandLine) listUsers() error {
	users, err := cli.usrSvc.QueryAll(context.Background())
	if err != nil {
		return err
	}
	if len(users) == 0 {
		warnColor.Fprintln(cli.out, "No users.")
		return nil
	}

	titleColor.Fprintf(cli.out, "\n%d users\n", len(users))
	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"name", "email", "admin", "joined", "last login"})
	for _, usr := range users {
		table.Append([]string{
			usr.Name,
			usr.Email,
			strconv.FormatBool(cli.gradeSvc.IsAdmin(usr.Email)),
			usr.CreatedAt.UTC().Format(userDateLayout),
			lastLogin(usr),
		})
	}
	table.Render()
	return nil
}

func lastLogin(usr user.User) string {
	if usr.LastLogin.IsZero() {
		return "never"
	}
	return usr.LastLogin.UTC().Format(userDateLayout)
}

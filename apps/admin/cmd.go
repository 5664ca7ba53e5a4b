package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	usrSvc   *user.Service
	gradeSvc *grade.Service
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run DB migrations (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL - create a user, or reset their password if they exist")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  users - list the users, admins flagged")
	fmt.Fprintln(cli.out, "  grades [-ordering FIELDS] - print the grades table, eg: -ordering -grade,name")
	fmt.Fprintln(cli.out, "  import -file PATH - import a .xlsx or .csv grades sheet")
	fmt.Fprintln(cli.out, "  export [-format xlsx|csv] [-out PATH] - export the grades table")
	fmt.Fprintln(cli.out, "  deletegrades -yes - delete every grade record")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.SetOutput(cli.out)
	return fset
}

// readPassword prompts for a password; an empty one prints the usage of fset.
func (cli *commandLine) readPassword(fset *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fset.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		cmd := cli.newFlagSet("adduser")
		name := cmd.String("name", "", "The user's name.")
		email := cmd.String("email", "", "The user's email. The password will be prompted next.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword(cmd)
		if err != nil {
			return err
		}
		return cli.addUser(*name, *email, pwd)

	case "resetpassword":
		cmd := cli.newFlagSet("resetpassword")
		email := cmd.String("email", "", "The user's email. The password will be prompted next.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword(cmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*email, pwd)

	case "users":
		return cli.listUsers()

	case "grades":
		cmd := cli.newFlagSet("grades")
		ordering := cmd.String("ordering", "", "Comma separated columns, \"-\" prefixed for descending order.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listGrades(*ordering)

	case "import":
		cmd := cli.newFlagSet("import")
		fp := cmd.String("file", "", "Path to a .xlsx or .csv grades sheet.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *fp == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.importGrades(*fp)

	case "export":
		cmd := cli.newFlagSet("export")
		format := cmd.String("format", grade.FormatXLSX, "Sheet format: xlsx or csv.")
		out := cmd.String("out", "", "Output path. Defaults to a timestamped file in the current directory.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.exportGrades(*format, *out)

	case "deletegrades":
		cmd := cli.newFlagSet("deletegrades")
		yes := cmd.Bool("yes", false, "Confirm the deletion of every grade record.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if !*yes {
			cmd.Usage()
			return errHelp
		}
		return cli.deleteGrades()

	default:
		cli.printUsage()
		return errHelp
	}
}

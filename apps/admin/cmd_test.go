package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
	emailsvc "github.com/trezcool/gradebook/services/email"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	"github.com/trezcool/gradebook/testutil"
)

type fixtures struct {
	cli       *commandLine
	out       *bytes.Buffer
	usrRepo   user.Repository
	gradeRepo grade.Repository
}

func setup(t *testing.T) fixtures {
	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	usrRepo := dummydb.NewUserRepository(db)
	gradeRepo := dummydb.NewGradeRepository(db)

	usrSvc, err := user.NewService(usrRepo, emailsvc.NewConsoleServiceMock(conf, logger))
	require.NoError(t, err)
	gradeSvc, err := grade.NewService(gradeRepo, grade.NewAdminSet(conf.AdminEmails...), logger)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	return fixtures{
		cli: &commandLine{
			usrSvc:   usrSvc,
			gradeSvc: gradeSvc,
			out:      out,
		},
		out:       out,
		usrRepo:   usrRepo,
		gradeRepo: gradeRepo,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) run(t *testing.T, cli *commandLine) error {
	err := cli.run(append([]string{"admin"}, tt.args...))
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
	return err
}

func Test_commandLine_migrate(t *testing.T) {
	fx := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		if dir != "migrations" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, fx.cli)
		})
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	fx := setup(t)
	usr := testutil.CreateUser(t, fx.usrRepo, "User", "awe@test.cd", "mdr")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", usr.Email}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
		{name: "reset with uppercase email", args: []string{"resetpassword", "-email", "AWE@test.cd"}, extra: extra{pwd: "lmfao"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var pwd string
			if ex, ok := tt.extra.(extra); ok {
				pwd = ex.pwd
			}
			mockPassword(pwd)

			if err := tt.run(t, fx.cli); err == nil && pwd != "" {
				refreshed, err := fx.usrRepo.GetUserByID(context.Background(), usr.ID)
				require.NoError(t, err)
				assert.NoError(t, refreshed.CheckPassword(pwd))
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	fx := setup(t)
	existing := testutil.CreateUser(t, fx.usrRepo, "User", "awe@test.cd", "mdr")

	tests := []struct {
		cliTest
		pwd       string
		wantEmail string
	}{
		{cliTest: cliTest{name: "no email", args: []string{"adduser", "-name", "Joe"}, wantErr: errHelp}, pwd: "secret"},
		{cliTest: cliTest{name: "no password", args: []string{"adduser", "-name", "Joe", "-email", "joe@test.cd"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "new user without name", args: []string{"adduser", "-email", "joe@test.cd"}, wantErr: errNameRequired}, pwd: "secret"},
		{cliTest: cliTest{name: "new user", args: []string{"adduser", "-name", "Joe", "-email", "Joe@Test.cd"}}, pwd: "secret", wantEmail: "joe@test.cd"},
		{cliTest: cliTest{name: "existing user", args: []string{"adduser", "-email", existing.Email}}, pwd: "n3w-secret", wantEmail: existing.Email},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(tt.pwd)

			if err := tt.run(t, fx.cli); err == nil {
				usr, err := fx.usrRepo.GetUserByEmail(context.Background(), tt.wantEmail)
				require.NoError(t, err)
				assert.NoError(t, usr.CheckPassword(tt.pwd))
			}
		})
	}

	users, err := fx.usrRepo.QueryAllUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func Test_commandLine_users(t *testing.T) {
	fx := setup(t)

	t.Run("empty", func(t *testing.T) {
		fx.out.Reset()
		require.NoError(t, fx.cli.run([]string{"admin", "users"}))
		assert.Contains(t, fx.out.String(), "No users.")
	})

	testutil.CreateUser(t, fx.usrRepo, "Admin", testutil.AdminEmail, "adm1n-pa55")
	testutil.CreateUser(t, fx.usrRepo, "Jane", "jane@test.cd", "j4ne-pa55")

	t.Run("table", func(t *testing.T) {
		fx.out.Reset()
		require.NoError(t, fx.cli.run([]string{"admin", "users"}))
		out := fx.out.String()
		assert.Contains(t, out, "2 users")
		assert.Contains(t, out, testutil.AdminEmail)
		assert.Contains(t, out, "jane@test.cd")
		assert.Contains(t, out, "never")

		adminLine, janeLine := lineContaining(out, testutil.AdminEmail), lineContaining(out, "jane@test.cd")
		assert.Contains(t, adminLine, "true")
		assert.Contains(t, janeLine, "false")
	})
}

func lineContaining(out, substr string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

func Test_commandLine_grades(t *testing.T) {
	fx := setup(t)

	t.Run("empty", func(t *testing.T) {
		fx.out.Reset()
		require.NoError(t, fx.cli.run([]string{"admin", "grades"}))
		assert.Contains(t, fx.out.String(), "No grade records.")
	})

	testutil.CreateGradeRecords(t, fx.gradeRepo,
		grade.NewGradeRecord(2, "Bob", 80, 90),
		grade.NewGradeRecord(1, "Alice", 70, 90),
	)

	t.Run("ordered by grade desc", func(t *testing.T) {
		fx.out.Reset()
		require.NoError(t, fx.cli.run([]string{"admin", "grades", "-ordering", "-grade"}))
		out := fx.out.String()
		assert.Contains(t, out, "2 grade records")
		assert.Less(t, strings.Index(out, "Bob"), strings.Index(out, "Alice"))
		assert.Contains(t, out, "87")
		assert.Contains(t, out, "84")
	})
}

func Test_commandLine_importExportDelete(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	dir := t.TempDir()

	validFp := filepath.Join(dir, "grades.csv")
	require.NoError(t, os.WriteFile(validFp, []byte("id,name,middlegrade,finalgrade\n1,Alice,70,90\n2,Bob,80,90\n1,Alice B.,75,95\n"), 0o644))
	invalidFp := filepath.Join(dir, "invalid.csv")
	require.NoError(t, os.WriteFile(invalidFp, []byte("id,name,middlegrade,finalgrade\n3,Carol,60,60\nx,Dan,50,50\n"), 0o644))

	t.Run("import: no file", func(t *testing.T) {
		cliTest{args: []string{"import"}, wantErr: errHelp}.run(t, fx.cli)
	})

	t.Run("import: invalid sheet saves nothing", func(t *testing.T) {
		fx.out.Reset()
		err := fx.cli.run([]string{"admin", "import", "-file", invalidFp})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
		assert.Contains(t, fx.out.String(), "line 3")

		records, err := fx.gradeRepo.QueryAllGradeRecords(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("import", func(t *testing.T) {
		fx.out.Reset()
		require.NoError(t, fx.cli.run([]string{"admin", "import", "-file", validFp}))
		assert.Contains(t, fx.out.String(), "imported 2 grade records (3 rows, 1 duplicates)")

		records, err := fx.gradeRepo.QueryAllGradeRecords(ctx, grade.DefaultOrdering)
		require.NoError(t, err)
		assert.Equal(t, []grade.GradeRecord{
			grade.NewGradeRecord(1, "Alice B.", 75, 95),
			grade.NewGradeRecord(2, "Bob", 80, 90),
		}, records)
	})

	t.Run("export csv", func(t *testing.T) {
		outFp := filepath.Join(dir, "export.csv")
		require.NoError(t, fx.cli.run([]string{"admin", "export", "-format", "csv", "-out", outFp}))

		content, err := os.ReadFile(outFp)
		require.NoError(t, err)
		assert.Equal(t, "\xEF\xBB\xBFid,name,middlegrade,finalgrade,grade\n1,Alice B.,75,95,89\n2,Bob,80,90,87\n", string(content))
	})

	t.Run("export: unknown format", func(t *testing.T) {
		err := fx.cli.run([]string{"admin", "export", "-format", "xls", "-out", filepath.Join(dir, "export.xls")})
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("deletegrades: not confirmed", func(t *testing.T) {
		cliTest{args: []string{"deletegrades"}, wantErr: errHelp}.run(t, fx.cli)
	})

	t.Run("deletegrades", func(t *testing.T) {
		for i := 0; i < 2; i++ { // idempotent
			require.NoError(t, fx.cli.run([]string{"admin", "deletegrades", "-yes"}))
		}
		records, err := fx.gradeRepo.QueryAllGradeRecords(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

// Package testutil holds the fixtures shared by the tests of the apps.
package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/fs"
	logsvc "github.com/trezcool/gradebook/services/logger"
)

const AdminEmail = "admin@admin.com"

// NewConfig returns the default config in test mode, with AdminEmail as the only admin.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.RollbarToken = ""
	conf.AdminEmails = []string{AdminEmail}
	return conf
}

// NewLogger returns a silent logger that never reports to Rollbar.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger("TEST", io.Discard, conf)
	logger.Enable(false)
	return logger
}

func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	if err := user.LoadCommonPasswords(appfs.FS); err != nil {
		panic(err)
	}
	return validate, translator
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, usr.SetPassword(pwd))
	usr, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func CreateGradeRecords(t *testing.T, repo grade.Repository, records ...grade.GradeRecord) []grade.GradeRecord {
	t.Helper()

	require.NoError(t, repo.SaveGradeRecords(context.Background(), records))
	return records
}

package main

import (
	"os"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/fs"
	emailsvc "github.com/trezcool/gradebook/services/email"
	logsvc "github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database"
	sqlxrepos "github.com/trezcool/gradebook/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger("ADMIN", os.Stdout, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	// set up services
	mailSvc := emailsvc.NewConsoleService(conf, logger)
	core.ParseEmailTemplates(appfs.FS, conf, logger)

	usrSvc, err := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
	gradeSvc, err := grade.NewService(sqlxrepos.NewGradeRepository(db), grade.NewAdminSet(conf.AdminEmails...), logger)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrSvc:   usrSvc,
		gradeSvc: gradeSvc,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("\nerror: "+err.Error(), err)
		}
		os.Exit(1)
	}
}

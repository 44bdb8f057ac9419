package main

import (
	"log"
	"os"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/category"
	"github.com/coursecatalog/backend/core/review"
	"github.com/coursecatalog/backend/core/user"
	"github.com/coursecatalog/backend/storage/database"
	"github.com/coursecatalog/backend/storage/database/postgres"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)

	tx := database.NewTransactor(db)
	crsRepo := postgres.NewCourseRepository(db)

	// start CLI
	cli := commandLine{
		db:         db,
		usrSvc:     user.NewService(postgres.NewUserRepository(db), validate),
		catSvc:     category.NewService(postgres.NewCategoryRepository(db), validate),
		revSvc:     review.NewService(postgres.NewReviewRepository(db), crsRepo, tx, validate),
		translator: translator,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

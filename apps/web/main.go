package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoweb "github.com/coursecatalog/backend/apps/web/echo"
	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/category"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/image"
	"github.com/coursecatalog/backend/core/review"
	"github.com/coursecatalog/backend/core/user"
	logsvc "github.com/coursecatalog/backend/services/logger"
	"github.com/coursecatalog/backend/services/metrics"
	"github.com/coursecatalog/backend/storage/database"
	"github.com/coursecatalog/backend/storage/database/postgres"
	"github.com/coursecatalog/backend/storage/files"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	store, err := files.NewOsStore(conf.Media.UploadDir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up media store: %v", err), err)
	}

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)

	// set up services
	tx := database.NewTransactor(db)
	crsRepo := postgres.NewCourseRepository(db)
	imgSvc := image.NewService(postgres.NewImageRepository(db), store)
	usrSvc := user.NewService(postgres.NewUserRepository(db), validate)
	catSvc := category.NewService(postgres.NewCategoryRepository(db), validate)
	crsSvc := course.NewService(crsRepo, imgSvc, tx, validate)
	revSvc := review.NewService(postgres.NewReviewRepository(db), crsRepo, tx, validate)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	appMetrics := metrics.New()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - prometheus collectors.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", appMetrics.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Web Service

	server, err := echoweb.NewServer(
		echoweb.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			Metrics:     appMetrics,
			UserSvc:     usrSvc,
			CategorySvc: catSvc,
			CourseSvc:   crsSvc,
			ReviewSvc:   revSvc,
			ImageSvc:    imgSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

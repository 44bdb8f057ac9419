package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/category"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/image"
	"github.com/coursecatalog/backend/core/review"
	"github.com/coursecatalog/backend/core/user"
	dummydb "github.com/coursecatalog/backend/storage/database/dummy"
	"github.com/coursecatalog/backend/storage/files"
)

// App wires every service on top of the in-memory database.
type App struct {
	DB         *dummydb.DB
	Tx         core.Transactor
	FS         afero.Fs // backs Files, rooted at MediaDir
	Files      *files.Store
	Validate   *validator.Validate
	Translator ut.Translator

	UserRepo     user.Repository
	CategoryRepo category.Repository
	CourseRepo   course.Repository
	ReviewRepo   review.Repository

	Users      *user.Service
	Categories *category.Service
	Images     *image.Service
	Courses    *course.Service
	Reviews    *review.Service
}

const MediaDir = "/media"

func NewApp() *App {
	db := dummydb.Open()
	tx := dummydb.NewTransactor(db)
	mem := afero.NewMemMapFs()
	store, err := files.NewStore(mem, MediaDir)
	if err != nil {
		panic(err)
	}

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)

	app := &App{
		DB:           db,
		Tx:           tx,
		FS:           mem,
		Files:        store,
		Validate:     validate,
		Translator:   translator,
		UserRepo:     dummydb.NewUserRepository(db),
		CategoryRepo: dummydb.NewCategoryRepository(db),
		CourseRepo:   dummydb.NewCourseRepository(db),
		ReviewRepo:   dummydb.NewReviewRepository(db),
	}
	app.Users = user.NewService(app.UserRepo, validate)
	app.Categories = category.NewService(app.CategoryRepo, validate)
	app.Images = image.NewService(dummydb.NewImageRepository(db), store)
	app.Courses = course.NewService(app.CourseRepo, app.Images, tx, validate)
	app.Reviews = review.NewService(app.ReviewRepo, app.CourseRepo, tx, validate)
	return app
}

func CreateUser(t *testing.T, repo user.Repository, firstName, lastName, login, pwd string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FirstName: firstName,
		LastName:  lastName,
		Login:     login,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateCategory(t *testing.T, repo category.Repository, name string, parent ...category.Category) category.Category {
	cat := category.Category{Name: name}
	if len(parent) > 0 {
		cat.ParentID = &parent[0].ID
	}
	cat, err := repo.CreateCategory(context.Background(), cat)
	if err != nil {
		t.Fatalf("createCategory() failed: %v", err)
	}
	return cat
}

func CreateCourse(t *testing.T, repo course.Repository, name string, cat category.Category, author user.User) course.Course {
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Name:       name,
		ShortDesc:  name + " in short",
		FullDesc:   name + " in full",
		CategoryID: cat.ID,
		AuthorID:   author.ID,
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

// CreateReview inserts a review directly, bypassing the rating counters.
func CreateReview(t *testing.T, repo review.Repository, crs course.Course, usr user.User, rating int, createdAt time.Time) review.Review {
	rev, err := repo.CreateReview(context.Background(), review.Review{
		Rating:    rating,
		Text:      "review",
		CourseID:  crs.ID,
		UserID:    usr.ID,
		CreatedAt: createdAt.UTC(),
	})
	if err != nil {
		t.Fatalf("createReview() failed: %v", err)
	}
	return rev
}

// MediaFiles lists the names of the stored files.
func (app *App) MediaFiles(t *testing.T) []string {
	infos, err := afero.ReadDir(app.FS, MediaDir)
	if err != nil {
		t.Fatalf("mediaFiles() failed: %v", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names
}

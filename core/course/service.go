package course

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/image"
)

const imageObjectType = "course"

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	ErrCategoryNotFound = errors.New("the selected category does not exist")
	ErrAuthorNotFound   = errors.New("the selected author does not exist")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		// QueryCourses returns the page of courses matching filter, ordered by id, and the total number of matches.
		QueryCourses(ctx context.Context, filter QueryFilter, page core.Pagination, exec ...core.DBExecutor) ([]Course, int, error)
		GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (Course, error)
		// IncrementRating atomically adds rating to the course counters. Returns ErrNotFound when no row matched.
		IncrementRating(ctx context.Context, id, rating int, exec ...core.DBExecutor) error
	}

	Service struct {
		repo     Repository
		images   *image.Service
		tx       core.Transactor
		validate *validator.Validate
	}
)

func NewService(repo Repository, images *image.Service, tx core.Transactor, validate *validator.Validate) *Service {
	return &Service{repo: repo, images: images, tx: tx, validate: validate}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Course, core.Pagination, error) {
	filter.Clean()
	courses, total, err := svc.repo.QueryCourses(ctx, filter, page)
	if err != nil {
		return nil, page, err
	}
	page.Total = total
	return courses, page, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// Create saves the course and its optional background image in one transaction.
func (svc *Service) Create(ctx context.Context, nc NewCourse, up *image.Upload) (Course, error) {
	nc.Clean()
	if err := svc.validate.Struct(nc); err != nil {
		return Course{}, err
	}

	var (
		crs     Course
		img     image.Image
		created bool
	)
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		var err error
		var bgID *string
		if up != nil {
			if img, created, err = svc.images.Save(ctx, *up, exec); err != nil {
				return err
			}
			bgID = &img.ID
		}

		crs, err = svc.repo.CreateCourse(ctx, Course{
			Name:              nc.Name,
			ShortDesc:         nc.ShortDesc,
			FullDesc:          nc.FullDesc,
			CategoryID:        nc.CategoryID,
			AuthorID:          nc.AuthorID,
			BackgroundImageID: bgID,
		}, exec)
		if err != nil {
			return err
		}

		if created {
			return svc.images.Attach(ctx, img, imageObjectType, crs.ID, exec)
		}
		return nil
	})
	if err != nil {
		if created {
			_ = svc.images.Discard(img)
		}
		return Course{}, creationError(err)
	}
	return crs, nil
}

// creationError turns storage rejections into validation errors naming the offending field.
func creationError(err error) error {
	var field string
	cause := errors.Cause(err)
	switch cause {
	case ErrCategoryNotFound:
		field = "category_id"
	case ErrAuthorNotFound:
		field = "author_id"
	case image.ErrEmpty, image.ErrNotAnImage, image.ErrHashExists:
		field = "background_img"
	case core.ErrDataIntegrity:
		return core.NewValidationError(cause)
	default:
		return err
	}
	return core.NewValidationError(cause, core.FieldError{Field: field, Error: cause.Error()})
}

package postgres

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/image"
)

var imageColumns = []string{"id", "file_name", "mime_type", "md5_hash", "object_id", "object_type", "created_at"}

type imageRepository struct {
	repository
}

var _ image.Repository = (*imageRepository)(nil) // interface compliance check

func NewImageRepository(exec core.DBExecutor) *imageRepository {
	return &imageRepository{repository{exec: exec}}
}

func (repo imageRepository) getBy(ctx context.Context, cond sq.Eq, exec []core.DBExecutor) (image.Image, error) {
	var img image.Image
	if err := get(ctx, repo.getExec(exec), &img, psql.Select(imageColumns...).From("images").Where(cond)); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return image.Image{}, image.ErrNotFound
		}
		return image.Image{}, errors.Wrap(err, "selecting image")
	}
	return img, nil
}

func (repo imageRepository) CreateImage(ctx context.Context, img image.Image, exec ...core.DBExecutor) (image.Image, error) {
	query := psql.Insert("images").
		Columns("id", "file_name", "mime_type", "md5_hash", "object_id", "object_type", "created_at").
		Values(img.ID, img.FileName, img.MimeType, img.MD5Hash, img.ObjectID, img.ObjectType, img.CreatedAt)
	if _, err := execute(ctx, repo.getExec(exec), query); err != nil {
		if constraint, ok := constraintViolation(err, uniqueViolation); ok {
			if constraint == "uq_images_md5_hash" {
				return image.Image{}, image.ErrHashExists
			}
			return image.Image{}, core.ErrDataIntegrity
		}
		return image.Image{}, errors.Wrap(err, "inserting image")
	}
	return img, nil
}

func (repo imageRepository) GetImageByID(ctx context.Context, id string, exec ...core.DBExecutor) (image.Image, error) {
	return repo.getBy(ctx, sq.Eq{"id": id}, exec)
}

func (repo imageRepository) GetImageByHash(ctx context.Context, hash string, exec ...core.DBExecutor) (image.Image, error) {
	return repo.getBy(ctx, sq.Eq{"md5_hash": hash}, exec)
}

func (repo imageRepository) SetImageObject(ctx context.Context, id string, objectType string, objectID int, exec ...core.DBExecutor) error {
	query := psql.Update("images").
		Set("object_type", objectType).
		Set("object_id", objectID).
		Where(sq.Eq{"id": id})
	n, err := execute(ctx, repo.getExec(exec), query)
	if err != nil {
		return errors.Wrap(err, "updating image object")
	}
	if n == 0 {
		return image.ErrNotFound
	}
	return nil
}

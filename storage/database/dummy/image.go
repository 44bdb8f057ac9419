package dummydb

import (
	"context"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/image"
)

type imageRepository struct {
	db *DB
}

var _ image.Repository = (*imageRepository)(nil) // interface compliance check

func NewImageRepository(db *DB) image.Repository {
	return &imageRepository{db: db}
}

func (repo *imageRepository) CreateImage(_ context.Context, img image.Image, _ ...core.DBExecutor) (image.Image, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tables.images[img.ID]; ok {
		return image.Image{}, core.ErrDataIntegrity
	}
	for _, i := range repo.db.tables.images {
		if i.MD5Hash == img.MD5Hash {
			return image.Image{}, image.ErrHashExists
		}
	}
	repo.db.tables.images[img.ID] = img
	return img, nil
}

func (repo *imageRepository) GetImageByID(_ context.Context, id string, _ ...core.DBExecutor) (image.Image, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if img, ok := repo.db.tables.images[id]; ok {
		return img, nil
	}
	return image.Image{}, image.ErrNotFound
}

func (repo *imageRepository) GetImageByHash(_ context.Context, hash string, _ ...core.DBExecutor) (image.Image, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, img := range repo.db.tables.images {
		if img.MD5Hash == hash {
			return img, nil
		}
	}
	return image.Image{}, image.ErrNotFound
}

func (repo *imageRepository) SetImageObject(_ context.Context, id string, objectType string, objectID int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	img, ok := repo.db.tables.images[id]
	if !ok {
		return image.ErrNotFound
	}
	img.ObjectType = &objectType
	img.ObjectID = &objectID
	repo.db.tables.images[id] = img
	return nil
}

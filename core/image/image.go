package image

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
)

var (
	// errors
	ErrNotFound   = errors.New("image not found")
	ErrEmpty      = errors.New("the uploaded file is empty")
	ErrNotAnImage = errors.New("the uploaded file is not an image")
	ErrHashExists = errors.New("an image with the same content is being uploaded, please try again")
)

const (
	defaultMimeType = "application/octet-stream"
	// matches images.file_name
	maxFileNameLen = 100
)

type Image struct {
	ID         string    `db:"id" json:"id"`
	FileName   string    `db:"file_name" json:"file_name"`
	MimeType   string    `db:"mime_type" json:"mime_type"`
	MD5Hash    string    `db:"md5_hash" json:"md5_hash"`
	ObjectID   *int      `db:"object_id" json:"object_id"`
	ObjectType *string   `db:"object_type" json:"object_type"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"` // UTC
}

// StorageFilename is the name of the image in the FileStore.
func (img Image) StorageFilename() string {
	return img.ID + strings.ToLower(filepath.Ext(img.FileName))
}

func (img Image) URL() string {
	return "/images/" + img.ID
}

// Upload is an uploaded file waiting to be saved.
type Upload struct {
	FileName string
	MimeType string
	Content  io.Reader
}

type (
	// FileStore persists image bytes.
	FileStore interface {
		Save(name string, r io.Reader) error
		Open(name string) (io.ReadCloser, error)
		Remove(name string) error
	}

	Repository interface {
		CreateImage(ctx context.Context, img Image, exec ...core.DBExecutor) (Image, error)
		GetImageByID(ctx context.Context, id string, exec ...core.DBExecutor) (Image, error)
		GetImageByHash(ctx context.Context, hash string, exec ...core.DBExecutor) (Image, error)
		SetImageObject(ctx context.Context, id string, objectType string, objectID int, exec ...core.DBExecutor) error
	}

	Service struct {
		repo  Repository
		store FileStore
	}
)

func NewService(repo Repository, store FileStore) *Service {
	return &Service{repo: repo, store: store}
}

// Save stores the upload unless an image with the same content already exists, in which case that image is returned.
// created reports whether a new file was written; callers rolling back must Discard it.
func (svc *Service) Save(ctx context.Context, up Upload, exec ...core.DBExecutor) (img Image, created bool, err error) {
	data, err := io.ReadAll(up.Content)
	if err != nil {
		return Image{}, false, errors.Wrap(err, "reading upload")
	}
	if len(data) == 0 {
		return Image{}, false, ErrEmpty
	}

	sum := md5.Sum(data)
	hash := hex.EncodeToString(sum[:])
	img, err = svc.repo.GetImageByHash(ctx, hash, exec...)
	if err == nil {
		return img, false, nil
	}
	if err != ErrNotFound {
		return Image{}, false, err
	}

	mimeType := up.MimeType
	if mimeType == "" || mimeType == defaultMimeType {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Image{}, false, ErrNotAnImage
	}

	img = Image{
		ID:        uuid.New().String(),
		FileName:  shortenFileName(filepath.Base(up.FileName), maxFileNameLen),
		MimeType:  mimeType,
		MD5Hash:   hash,
		CreatedAt: time.Now().UTC(),
	}
	if img, err = svc.repo.CreateImage(ctx, img, exec...); err != nil {
		return Image{}, false, err
	}
	if err = svc.store.Save(img.StorageFilename(), bytes.NewReader(data)); err != nil {
		return Image{}, false, errors.Wrap(err, "writing image file")
	}
	return img, true, nil
}

// shortenFileName cuts name to n runes, keeping its extension when it fits.
func shortenFileName(name string, n int) string {
	runes := []rune(name)
	if len(runes) <= n {
		return name
	}
	ext := []rune(filepath.Ext(name))
	if len(ext) >= n {
		return string(runes[:n])
	}
	stem := runes[:len(runes)-len(ext)]
	return string(stem[:n-len(ext)]) + string(ext)
}

// Attach records the object img belongs to.
func (svc *Service) Attach(ctx context.Context, img Image, objectType string, objectID int, exec ...core.DBExecutor) error {
	return svc.repo.SetImageObject(ctx, img.ID, objectType, objectID, exec...)
}

// Discard removes the file of an image whose row was rolled back.
func (svc *Service) Discard(img Image) error {
	return svc.store.Remove(img.StorageFilename())
}

func (svc *Service) GetByID(ctx context.Context, id string) (Image, error) {
	return svc.repo.GetImageByID(ctx, id)
}

// Open returns the image and its content. The caller closes the reader.
func (svc *Service) Open(ctx context.Context, id string) (Image, io.ReadCloser, error) {
	img, err := svc.repo.GetImageByID(ctx, id)
	if err != nil {
		return Image{}, nil, err
	}
	rc, err := svc.store.Open(img.StorageFilename())
	if err != nil {
		return Image{}, nil, errors.Wrap(err, "opening image file")
	}
	return img, rc, nil
}

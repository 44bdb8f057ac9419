package files

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/coursecatalog/backend/core/image"
)

// Store keeps uploaded files under a root directory of an afero filesystem.
type Store struct {
	fs afero.Fs
}

var _ image.FileStore = (*Store)(nil) // interface compliance check

// NewStore returns a Store rooted at dir, created when missing.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload dir")
	}
	return &Store{fs: afero.NewBasePathFs(fs, dir)}, nil
}

// NewOsStore stores files on disk under dir.
func NewOsStore(dir string) (*Store, error) {
	return NewStore(afero.NewOsFs(), dir)
}

func (s *Store) Save(name string, r io.Reader) error {
	name = filepath.Base(name)
	if err := afero.WriteReader(s.fs, name, r); err != nil {
		return errors.Wrapf(err, "saving %s", name)
	}
	return nil
}

func (s *Store) Open(name string) (io.ReadCloser, error) {
	f, err := s.fs.Open(filepath.Base(name))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	return f, nil
}

// Remove ignores files that do not exist.
func (s *Store) Remove(name string) error {
	err := s.fs.Remove(filepath.Base(name))
	if err != nil && !os.IsNotExist(errors.Cause(err)) {
		return errors.Wrapf(err, "removing %s", name)
	}
	return nil
}

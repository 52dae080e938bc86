package embeddings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore reads embedding blobs from a directory tree.
type FileStore struct {
	fs   afero.Fs
	root string
}

func NewFileStore(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: fs, root: root}
}

func (s *FileStore) path(id int64) string {
	return filepath.Join(s.root, IDToPath(id))
}

func (s *FileStore) Exists(_ context.Context, id int64) (bool, error) {
	exists, err := afero.Exists(s.fs, s.path(id))
	if err != nil {
		return false, fmt.Errorf("checking embedding %d: %w", id, err)
	}
	return exists, nil
}

func (s *FileStore) Fetch(_ context.Context, id int64) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading embedding %d: %w", id, err)
	}
	return data, nil
}

func (s *FileStore) Delete(_ context.Context, id int64) error {
	if err := s.fs.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting embedding %d: %w", id, err)
	}
	return nil
}

func (s *FileStore) Type() string {
	return "fs"
}

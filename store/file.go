package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agrichain/pricecast/pricemodel"
)

// FileStore keeps each model as a JSON file in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on
// the first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the store's directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the artifact path used for crop.
func (s *FileStore) Path(crop string) string {
	return filepath.Join(s.dir, ArtifactKey(crop)+".json")
}

// Save writes the model through a temporary file and a rename, so readers
// never observe a partially written artifact.
func (s *FileStore) Save(ctx context.Context, m *pricemodel.TrainedModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := pricemodel.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model %s: %w", m.Crop(), err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	path := s.Path(m.Crop())
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// Load reads the model saved for crop.
func (s *FileStore) Load(ctx context.Context, crop string) (*pricemodel.TrainedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(crop)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, crop)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	m, err := pricemodel.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/utils/safe"
)

// File persists the cache document as a JSON file. Save writes a temporary
// file next to the target and renames it, so readers never see a partial
// document.
type File struct {
	path string
}

var _ interfaces.CacheStore = &File{}

func New(path string) (*File, error) {
	if path == "" {
		return nil, goerr.New("cache file path is required")
	}
	return &File{path: path}, nil
}

// Path returns the document location
func (f *File) Path() string {
	return f.path
}

func (f *File) Load(ctx context.Context) ([]*model.CacheEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*model.CacheEntry{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read cache file", goerr.V("path", f.path))
	}

	entries, err := model.UnmarshalCacheDocument(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse cache file", goerr.V("path", f.path))
	}
	return entries, nil
}

func (f *File) Save(ctx context.Context, entries []*model.CacheEntry) error {
	data, err := model.MarshalCacheDocument(entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return goerr.Wrap(err, "failed to create cache directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary cache file", goerr.V("dir", dir))
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		safe.Close(ctx, tmp)
		return goerr.Wrap(err, "failed to write cache file", goerr.V("path", tmpName))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close cache file", goerr.V("path", tmpName))
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return goerr.Wrap(err, "failed to replace cache file", goerr.V("path", f.path))
	}
	return nil
}

func (f *File) Close() error {
	return nil
}

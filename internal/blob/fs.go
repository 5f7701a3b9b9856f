package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// Filesystem keeps blobs as files under a root directory. The content type
// is derived from the key's extension.
type Filesystem struct {
	root string
}

// NewFilesystem returns a store rooted at root, creating it if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) Driver() Driver { return DriverFilesystem }

func (s *Filesystem) pathFor(key string) (string, string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", "", err
	}
	return k, filepath.Join(s.root, filepath.FromSlash(k)), nil
}

// Put writes to a temp file in the target directory and renames it over the
// destination so readers never see a partial blob.
func (s *Filesystem) Put(_ context.Context, key string, r io.Reader, _ string) (Info, error) {
	k, p, err := s.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return Info{}, fmt.Errorf("creating blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return Info{}, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return Info{}, fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Info{}, fmt.Errorf("closing blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return Info{}, fmt.Errorf("storing blob: %w", err)
	}

	return s.stat(k, p)
}

func (s *Filesystem) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	k, p, err := s.pathFor(key)
	if err != nil {
		return Info{}, nil, err
	}
	info, err := s.stat(k, p)
	if err != nil {
		return Info{}, nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return Info{}, nil, fmt.Errorf("opening blob: %w", err)
	}
	return info, f, nil
}

func (s *Filesystem) Head(_ context.Context, key string) (Info, error) {
	k, p, err := s.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	return s.stat(k, p)
}

func (s *Filesystem) Delete(_ context.Context, key string) error {
	_, p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

func (s *Filesystem) stat(key, p string) (Info, error) {
	st, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return Info{}, fmt.Errorf("stat blob: %w", err)
	}
	return Info{
		Key:          key,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(p)),
		LastModified: st.ModTime().UTC(),
	}, nil
}

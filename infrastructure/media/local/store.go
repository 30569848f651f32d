// Package local stores product images on the local filesystem and serves
// them under a public base URL.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"storefront/application/product"
	"storefront/config"

	"github.com/google/uuid"
)

// MaxImageBytes upper bound for one uploaded image
const MaxImageBytes = 10 << 20

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// ErrNotManaged url does not point into this store
var ErrNotManaged = errors.New("url is not managed by this media store")

// Store files live under root; URLs are baseURL + "/" + name
type Store struct {
	root    string
	baseURL string
}

// New creates root if missing
func New(cfg config.MediaConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Store{root: cfg.RootDir, baseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}, nil
}

// Root directory served at the public base URL
func (s *Store) Root() string {
	return s.root
}

// Upload writes r under a random name that keeps the original extension
func (s *Store) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	name := uuid.NewString() + ext
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, MaxImageBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	if n > MaxImageBytes {
		return "", fmt.Errorf("image %s exceeds %d bytes", filename, MaxImageBytes)
	}
	if n == 0 {
		return "", fmt.Errorf("image %s is empty", filename)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, name)); err != nil {
		return "", err
	}
	return s.baseURL + "/" + name, nil
}

// Delete removes the file behind url; a missing file is not an error
func (s *Store) Delete(ctx context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %s", ErrNotManaged, url)
	}
	err := os.Remove(filepath.Join(s.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

var _ product.MediaStore = (*Store)(nil)

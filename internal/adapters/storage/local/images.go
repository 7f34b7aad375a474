package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vncsmyrnk/idolvote/internal/core/ports"
)

// ImageStore writes contestant images into a directory served under URLPrefix.
type ImageStore struct {
	dir       string
	urlPrefix string
}

func NewImageStore(dir, urlPrefix string) (ports.ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &ImageStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *ImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid image filename %q", filename)
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return s.urlPrefix + "/" + name, nil
}

func (s *ImageStore) Delete(_ context.Context, ref string) error {
	name := strings.TrimPrefix(ref, s.urlPrefix+"/")
	if name == ref || name != filepath.Base(name) {
		return fmt.Errorf("image reference %q is not served from %s", ref, s.urlPrefix)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}

package resume

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/justsurfingit/jobx/internal/apperr"
)

// DiskBackend writes resumes under Dir; the router serves Dir at PublicPath.
type DiskBackend struct {
	Dir        string
	PublicPath string
}

func NewDiskBackend(dir, publicPath string) (*DiskBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Wrapf(err, "create upload dir %s", dir)
	}
	return &DiskBackend{Dir: dir, PublicPath: "/" + strings.Trim(publicPath, "/")}, nil
}

func (b *DiskBackend) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	if err := os.WriteFile(filepath.Join(b.Dir, name), data, 0o644); err != nil {
		return "", apperr.Wrap(err, "write resume")
	}
	return path.Join(b.PublicPath, name), nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Local reads attachments from a filesystem.
type Local struct {
	fsys fs.FS
}

// NewLocal creates a source rooted at dir. Keys are resolved relative to dir,
// so with dir "/" an absolute path such as "/srv/files/report.pdf" works as-is.
func NewLocal(dir string) *Local {
	return &Local{fsys: os.DirFS(dir)}
}

// NewLocalFS creates a source over an arbitrary filesystem (embed.FS, fstest.MapFS).
func NewLocalFS(fsys fs.FS) *Local {
	return &Local{fsys: fsys}
}

// Open opens the file stored under key.
func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(key, "/")
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	f, err := l.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrAccessDenied, key)
		}
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	return f, nil
}

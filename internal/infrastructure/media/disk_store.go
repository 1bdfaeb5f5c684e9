package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// DiskStore persists uploads under a local directory and serves them from a
// URL prefix. It stands in for object storage in dev and single-node
// deployments.
type DiskStore struct {
	dir       string
	urlPrefix string
}

func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("media dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	urlPrefix = strings.TrimRight(strings.TrimSpace(urlPrefix), "/")
	if urlPrefix == "" {
		urlPrefix = "/media"
	}

	return &DiskStore{dir: dir, urlPrefix: urlPrefix}, nil
}

// Save streams r into a temp file and renames it into place, so a failed
// upload never leaves a partial object at the final name.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", 0, fmt.Errorf("object name is required")
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp upload: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	size, err := copyWithPool(ctx, tmp, r)
	closeErr := tmp.Close()
	if err != nil {
		return "", 0, err
	}
	if closeErr != nil {
		return "", 0, fmt.Errorf("close temp upload: %w", closeErr)
	}

	finalPath := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, finalPath); err != nil {
		return "", 0, fmt.Errorf("place upload: %w", err)
	}

	return s.urlPrefix + "/" + name, size, nil
}

func copyWithPool(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if cap(buf.B) < 64<<10 {
		buf.B = make([]byte, 64<<10)
	}
	chunk := buf.B[:cap(buf.B)]

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := src.Read(chunk)
		if n > 0 {
			wn, writeErr := dst.Write(chunk[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, fmt.Errorf("write upload: %w", writeErr)
			}
			if wn < n {
				return written, io.ErrShortWrite
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

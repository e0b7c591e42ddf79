package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps uploads under a local directory. Files are served back
// by Handler at "/uploads/"; the stored name is the path below Root.
type DiskStore struct {
	Root    string
	BaseURL string // public origin, e.g. https://example.com
}

var _ ObjectStore = (*DiskStore)(nil)

func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (d *DiskStore) Configured() bool { return d.Root != "" }

// Put writes to a temp file and renames it into place, so a reader never
// sees a partial file. Metadata is applied at serve time by Handler.
func (d *DiskStore) Put(ctx context.Context, name string, body io.Reader, _ Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dst := filepath.Join(d.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("upload: creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("upload: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("upload: writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("upload: closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("upload: moving %s into place: %w", name, err)
	}
	return nil
}

func (d *DiskStore) URL(name string) string {
	return d.BaseURL + "/uploads/" + name
}

// Handler serves stored files with a long-lived cache header. Names are
// unique per upload, so a cached copy never goes stale.
func (d *DiskStore) Handler() http.Handler {
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r) // no directory listings
			return
		}
		w.Header().Set("Cache-Control", CacheControl)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	})
}

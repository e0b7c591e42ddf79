// Package upload validates, names and stores files sent from the admin
// panel (project screenshots, certificate scans, the profile photo).
package upload

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"slices"
	"strings"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
)

// AllowedTypes is the content-type allow-list. image/jpg is not a
// registered type but some browsers send it.
var AllowedTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
}

const (
	DefaultMaxBytes  int64 = 5 << 20
	DefaultDirectory       = "uploads"
	CacheControl           = "public,max-age=31536000"
)

// Validate checks the declared content type and size of an upload. The
// type is checked first, so an oversized file of a disallowed type reports
// the type. maxBytes <= 0 means DefaultMaxBytes.
func Validate(contentType string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if !slices.Contains(AllowedTypes, mediaType(contentType)) {
		return apperror.ValidationFailed("file",
			"file type not allowed, allowed types: "+strings.Join(AllowedTypes, ", "))
	}
	if size > maxBytes {
		return TooLarge(maxBytes)
	}
	if size <= 0 {
		return apperror.ValidationFailed("file", "file is empty")
	}
	return nil
}

// TooLarge is the validation error for a file over maxBytes. The HTTP
// layer also returns it when the request body itself hits the limit.
func TooLarge(maxBytes int64) error {
	return apperror.ValidationFailed("file",
		fmt.Sprintf("file too large, maximum size is %.1fMB", float64(maxBytes)/(1<<20)))
}

// mediaType strips parameters ("image/png; q=1") and lower-cases.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// ResolveDirectory turns a client-supplied directory into a relative
// slash-separated path. Backslashes become slashes, empty and "." segments
// are dropped, and any ".." segment is rejected. An empty result means
// DefaultDirectory.
func ResolveDirectory(dir string) (string, error) {
	dir = strings.ReplaceAll(dir, `\`, "/")

	var parts []string
	for seg := range strings.SplitSeq(dir, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", apperror.ValidationFailed("directory", "directory must not contain ..")
		}
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return DefaultDirectory, nil
	}
	return strings.Join(parts, "/"), nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateName returns "{dir}/{unixMillis}_{random6}.{ext}". ext is the
// lower-cased text after the last dot of original, or "dat" when there is
// none or it is not plain alphanumeric.
func GenerateName(dir, original string, now time.Time, rnd io.Reader) (string, error) {
	buf := make([]byte, 6)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return "", fmt.Errorf("upload: generating name: %w", err)
	}
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}
	return fmt.Sprintf("%s/%d_%s.%s", dir, now.UnixMilli(), buf, extension(original)), nil
}

func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "dat"
	}
	ext := strings.ToLower(name[i+1:])
	if ext == "" {
		return "dat"
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "dat"
		}
	}
	return ext
}

// Metadata travels with a stored object.
type Metadata struct {
	ContentType  string
	CacheControl string
}

// ObjectStore is where accepted files end up.
type ObjectStore interface {
	Configured() bool
	Put(ctx context.Context, name string, body io.Reader, meta Metadata) error
	URL(name string) string
}

// File is one incoming upload.
type File struct {
	Name        string // original client file name
	ContentType string
	Size        int64
	Directory   string
	Body        io.Reader
}

// Result describes a stored file.
type Result struct {
	URL          string `json:"url"`
	FileName     string `json:"fileName"`
	ContentType  string `json:"contentType"`
	CacheControl string `json:"cacheControl"`
}

// Service runs the upload pipeline: configured check, validation, naming,
// storage. Nothing reaches the store unless validation passed.
type Service struct {
	store    ObjectStore
	maxBytes int64
	logger   *slog.Logger

	now  func() time.Time
	rand io.Reader
}

func NewService(store ObjectStore, maxBytes int64, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
		rand:     rand.Reader,
	}
}

// MaxBytes is the effective per-file size limit.
func (s *Service) MaxBytes() int64 {
	if s.maxBytes <= 0 {
		return DefaultMaxBytes
	}
	return s.maxBytes
}

func (s *Service) Upload(ctx context.Context, f File) (*Result, error) {
	if s.store == nil || !s.store.Configured() {
		return nil, apperror.NotConfigured("file storage")
	}
	if err := Validate(f.ContentType, f.Size, s.maxBytes); err != nil {
		return nil, err
	}

	dir, err := ResolveDirectory(f.Directory)
	if err != nil {
		return nil, err
	}
	name, err := GenerateName(dir, f.Name, s.now(), s.rand)
	if err != nil {
		return nil, err
	}

	meta := Metadata{ContentType: mediaType(f.ContentType), CacheControl: CacheControl}
	if err := s.store.Put(ctx, name, io.LimitReader(f.Body, s.MaxBytes()), meta); err != nil {
		s.logger.Error("failed to store upload",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("file storage", err)
	}

	s.logger.Info("file uploaded",
		slog.String("name", name),
		slog.String("content_type", meta.ContentType),
		slog.Int64("size", f.Size),
	)
	return &Result{
		URL:          s.store.URL(name),
		FileName:     name,
		ContentType:  meta.ContentType,
		CacheControl: meta.CacheControl,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/cache"
)

// DefaultProfilePhoto is served until the admin uploads one.
const DefaultProfilePhoto = "/Photo.png"

// AdminTabs are the admin panel tabs, in display order.
var AdminTabs = []string{"projects", "certificates", "comments", "profile"}

// ProfileService keeps the small site settings that live in the local
// key-value cache: the profile photo URL and the admin panel's last tab.
type ProfileService struct {
	kv     cache.Store
	logger *slog.Logger
}

func NewProfileService(kv cache.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{kv: kv, logger: logger}
}

// Photo returns the profile photo URL, or DefaultProfilePhoto.
func (s *ProfileService) Photo(ctx context.Context) string {
	v, ok, err := s.kv.Read(ctx, cache.KeyProfilePhoto)
	if err != nil {
		s.logger.Warn("failed to read profile photo", slog.String("error", err.Error()))
		return DefaultProfilePhoto
	}
	if !ok || v == "" {
		return DefaultProfilePhoto
	}
	return v
}

// SetPhoto stores a new profile photo URL. Site-relative paths and
// absolute http(s) URLs are accepted.
func (s *ProfileService) SetPhoto(ctx context.Context, photoURL string) error {
	photoURL = strings.TrimSpace(photoURL)
	if photoURL == "" {
		return apperror.ValidationFailed("url", "photo URL is required")
	}
	if !strings.HasPrefix(photoURL, "/") || strings.HasPrefix(photoURL, "//") {
		u, err := url.Parse(photoURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return apperror.ValidationFailed("url", "photo URL must be a site path or an http(s) URL")
		}
	}

	if err := s.kv.Write(ctx, cache.KeyProfilePhoto, photoURL); err != nil {
		return fmt.Errorf("service/profile: saving photo: %w", err)
	}
	s.logger.Info("profile photo updated", slog.String("url", photoURL))
	return nil
}

// ActiveTab returns the admin panel tab to open, "projects" by default or
// when the stored value is not a known tab.
func (s *ProfileService) ActiveTab(ctx context.Context) string {
	v, ok, err := s.kv.Read(ctx, cache.KeyAdminActiveTab)
	if err != nil || !ok || !slices.Contains(AdminTabs, v) {
		return AdminTabs[0]
	}
	return v
}

func (s *ProfileService) SetActiveTab(ctx context.Context, tab string) error {
	if !slices.Contains(AdminTabs, tab) {
		return apperror.ValidationFailed("tab",
			"tab must be one of "+strings.Join(AdminTabs, ", "))
	}
	if err := s.kv.Write(ctx, cache.KeyAdminActiveTab, tab); err != nil {
		return fmt.Errorf("service/profile: saving tab: %w", err)
	}
	return nil
}

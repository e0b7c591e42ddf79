package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/reconcile"
	"github.com/sakif/portfolio/internal/repository"
)

// Comment limits, in characters.
const (
	MinCommentLength = 10
	MaxCommentLength = 400
	MaxAuthorLength  = 50
)

var (
	angleBrackets  = regexp.MustCompile(`[<>]`)
	jsScheme       = regexp.MustCompile(`(?i)javascript:`)
	eventAttribute = regexp.MustCompile(`(?i)on\w+=`)

	// Content matching any of these is refused outright rather than cleaned.
	suspiciousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script`),
		regexp.MustCompile(`(?i)<iframe`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)on\w+=`),
		regexp.MustCompile(`(?i)eval\(`),
		regexp.MustCompile(`(?i)fetch\(`),
		regexp.MustCompile(`(?i)\.(key|token|password)`),
		regexp.MustCompile(`(?i)collect-keys`),
		regexp.MustCompile(`(?i)data:`),
	}
)

// Sanitize strips angle brackets, javascript: schemes and inline event
// attributes, then trims surrounding space.
func Sanitize(s string) string {
	s = angleBrackets.ReplaceAllString(s, "")
	s = jsScheme.ReplaceAllString(s, "")
	s = eventAttribute.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func suspicious(s string) bool {
	for _, p := range suspiciousPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// CommentService accepts visitor comments and serves them in display order.
type CommentService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewCommentService(store repository.Store, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, logger: logger}
}

// CommentInput is a submission as received from a client.
type CommentInput struct {
	Content    string `json:"content"`
	AuthorName string `json:"userName"`
}

// Submit validates and stores a visitor comment.
func (s *CommentService) Submit(ctx context.Context, in CommentInput) (*model.Comment, error) {
	return s.create(ctx, in, false)
}

// PostAsAdmin stores a comment flagged as written by the site owner.
func (s *CommentService) PostAsAdmin(ctx context.Context, in CommentInput) (*model.Comment, error) {
	return s.create(ctx, in, true)
}

func (s *CommentService) create(ctx context.Context, in CommentInput, admin bool) (*model.Comment, error) {
	c, err := buildComment(in)
	if err != nil {
		return nil, err
	}
	c.IsAdmin = admin

	if !s.store.Configured() {
		return nil, apperror.NotConfigured("comments")
	}
	if err := s.store.Comments().Create(ctx, c); err != nil {
		s.logger.Error("failed to store comment", slog.String("error", err.Error()))
		return nil, apperror.Unavailable("comments", err)
	}

	s.logger.Info("comment posted",
		slog.String("id", c.ID),
		slog.Bool("admin", admin),
	)
	return c, nil
}

// buildComment checks the raw input, then sanitizes it and checks bounds.
func buildComment(in CommentInput) (*model.Comment, error) {
	if suspicious(in.Content) {
		return nil, apperror.ValidationFailed("content", "comment contains content that is not allowed")
	}
	if suspicious(in.AuthorName) {
		return nil, apperror.ValidationFailed("userName", "name contains content that is not allowed")
	}

	content := Sanitize(in.Content)
	author := Sanitize(in.AuthorName)

	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		return nil, apperror.ValidationFailed("content", "comment is required")
	case n < MinCommentLength:
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be at least %d characters", MinCommentLength))
	case n > MaxCommentLength:
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be at most %d characters", MaxCommentLength))
	}

	if author == "" {
		return nil, apperror.ValidationFailed("userName", "name is required")
	}
	if utf8.RuneCountInString(author) > MaxAuthorLength {
		return nil, apperror.ValidationFailed("userName",
			fmt.Sprintf("name must be at most %d characters", MaxAuthorLength))
	}

	return &model.Comment{Content: content, AuthorName: author}, nil
}

// List returns every comment, pinned first and newest first. Comments are
// a data-loading path: a missing or failing store yields an empty list.
func (s *CommentService) List(ctx context.Context) []model.Comment {
	if !s.store.Configured() {
		return []model.Comment{}
	}
	comments, err := s.store.Comments().List(ctx, repository.ListOptions{})
	if err != nil {
		s.logger.Warn("failed to list comments", slog.String("error", err.Error()))
		return []model.Comment{}
	}
	return reconcile.OrderComments(comments)
}

func (s *CommentService) SetPinned(ctx context.Context, id string, pinned bool) error {
	if id == "" {
		return apperror.ValidationFailed("id", "comment ID is required")
	}
	if !s.store.Configured() {
		return apperror.NotConfigured("comments")
	}
	if err := s.store.Comments().SetPinned(ctx, id, pinned); err != nil {
		return fmt.Errorf("service/comment: pinning %s: %w", id, err)
	}
	s.logger.Info("comment pin changed", slog.String("id", id), slog.Bool("pinned", pinned))
	return nil
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "comment ID is required")
	}
	if !s.store.Configured() {
		return apperror.NotConfigured("comments")
	}
	if err := s.store.Comments().Delete(ctx, id); err != nil {
		return fmt.Errorf("service/comment: deleting %s: %w", id, err)
	}
	s.logger.Info("comment deleted", slog.String("id", id))
	return nil
}

// Package surreal implements the repository interfaces on a SurrealDB
// document store.
//
// The connection is opened lazily on first use and reused afterwards. A
// failed connect is returned as an ordinary error (the fallback chain
// treats it as a source failure) and is retried on the next call, so the
// site keeps serving cached and bundled data while the store is down.
//
// All statements go through surrealdb.Query with $parameters; record ids
// are passed as models.RecordID, never spliced into the query text.
package surreal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/sakif/portfolio/internal/repository"
)

// Table names. They match the collection names the site has always used.
const (
	tableProjects     = "projects"
	tableCertificates = "certificates"
	tableComments     = "portfolio_comments"
)

// Config holds connection settings. URL empty means "not configured".
type Config struct {
	URL       string // e.g. ws://localhost:8000/rpc
	Namespace string
	Database  string
	Username  string
	Password  string
}

// Store is a lazily connected SurrealDB backend.
type Store struct {
	cfg    Config
	logger *slog.Logger

	mu sync.Mutex
	db *surrealdb.DB
}

var _ repository.Store = (*Store)(nil)

// New returns a Store. It does not connect.
func New(cfg Config, logger *slog.Logger) *Store {
	return &Store{cfg: cfg, logger: logger}
}

// Configured reports whether enough settings are present to try connecting.
func (s *Store) Configured() bool {
	return s.cfg.URL != "" && s.cfg.Namespace != "" && s.cfg.Database != ""
}

func (s *Store) Name() string { return "surrealdb" }

func (s *Store) Projects() repository.ProjectRepository         { return &projectTable{s: s} }
func (s *Store) Certificates() repository.CertificateRepository { return &certificateTable{s: s} }
func (s *Store) Comments() repository.CommentRepository         { return &commentTable{s: s} }

var errNotConfigured = errors.New("surreal: store is not configured")

// conn returns the shared connection, opening it if needed.
func (s *Store) conn(ctx context.Context) (*surrealdb.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	if !s.Configured() {
		return nil, errNotConfigured
	}

	db, err := surrealdb.FromEndpointURLString(ctx, s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("surreal: connecting to %s: %w", s.cfg.URL, err)
	}

	if s.cfg.Username != "" {
		if _, err := db.SignIn(ctx, surrealdb.Auth{
			Username: s.cfg.Username,
			Password: s.cfg.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("surreal: signing in: %w", err)
		}
	}

	if err := db.Use(ctx, s.cfg.Namespace, s.cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("surreal: selecting %s/%s: %w", s.cfg.Namespace, s.cfg.Database, err)
	}

	s.logger.Info("connected to document store",
		slog.String("url", s.cfg.URL),
		slog.String("namespace", s.cfg.Namespace),
		slog.String("database", s.cfg.Database),
	)
	s.db = db
	return db, nil
}

// Close closes the connection if one was opened.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close(ctx)
	s.db = nil
	return err
}

// reset drops a connection that returned a transport error so the next
// call reconnects.
func (s *Store) reset(ctx context.Context, db *surrealdb.DB) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == db {
		_ = db.Close(ctx)
		s.db = nil
	}
}

// query runs one statement and returns its rows.
func (s *Store) query(ctx context.Context, sql string, vars map[string]any) ([]map[string]any, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	results, err := surrealdb.Query[[]map[string]any](ctx, db, sql, vars)
	if err != nil {
		// a QueryError means the statement failed, not the connection
		if !errors.Is(err, &surrealdb.QueryError{}) {
			s.reset(ctx, db)
		}
		return nil, err
	}
	if results == nil || len(*results) == 0 {
		return []map[string]any{}, nil
	}

	first := (*results)[0]
	if first.Status != "OK" {
		return nil, fmt.Errorf("surreal: statement status %s", first.Status)
	}
	if first.Result == nil {
		return []map[string]any{}, nil
	}
	return first.Result, nil
}

func recordID(table, id string) models.RecordID {
	return models.NewRecordID(table, id)
}

func datetime(t time.Time) models.CustomDateTime {
	return models.CustomDateTime{Time: t}
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

const envelopeVersion = 1

type envelope[T any] struct {
	Version   int       `json:"version"`
	SavedAt   time.Time `json:"savedAt"`
	Confirmed bool      `json:"confirmed"`
	Items     []T       `json:"items"`
}

// Snapshot is what Load found in the cache.
type Snapshot[T any] struct {
	Items   []T
	SavedAt time.Time
	// Confirmed is true when the items were written right after the
	// document store answered successfully.
	Confirmed bool
}

// Normalizer turns one raw cached document into a record and reports any
// fields it did not recognize.
type Normalizer[T any] func(map[string]any) (T, []string)

// Collection reads and writes one cached collection.
type Collection[T any] struct {
	store     Store
	key       string
	normalize Normalizer[T]
	logger    *slog.Logger
	now       func() time.Time
}

func NewCollection[T any](store Store, key string, normalize Normalizer[T], logger *slog.Logger) *Collection[T] {
	return &Collection[T]{
		store:     store,
		key:       key,
		normalize: normalize,
		logger:    logger,
		now:       time.Now,
	}
}

// Key returns the cache key of this collection.
func (c *Collection[T]) Key() string { return c.key }

// Load returns the cached collection. It never fails: a missing key, a
// store error, or content that does not parse all yield an empty snapshot.
//
// Two formats are accepted: the current envelope, and a bare JSON array
// written by older versions (read as unconfirmed).
func (c *Collection[T]) Load(ctx context.Context) Snapshot[T] {
	empty := Snapshot[T]{Items: []T{}}

	raw, ok, err := c.store.Read(ctx, c.key)
	if err != nil {
		c.logger.Warn("cache read failed, treating as empty",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
		return empty
	}
	if !ok || raw == "" {
		return empty
	}

	snap, err := c.decode(raw)
	if err != nil {
		c.logger.Warn("malformed cache content, treating as empty",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
		return empty
	}
	return snap
}

func (c *Collection[T]) decode(raw string) (Snapshot[T], error) {
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return Snapshot[T]{}, fmt.Errorf("decoding %s: %w", c.key, err)
	}

	var snap Snapshot[T]
	var docs []any

	switch v := probe.(type) {
	case []any:
		docs = v
	case map[string]any:
		var env envelope[json.RawMessage]
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			return Snapshot[T]{}, fmt.Errorf("decoding %s envelope: %w", c.key, err)
		}
		if env.Version != envelopeVersion {
			return Snapshot[T]{}, fmt.Errorf("unsupported %s cache version %d", c.key, env.Version)
		}
		items, ok := v["items"].([]any)
		if !ok && v["items"] != nil {
			return Snapshot[T]{}, fmt.Errorf("%s cache items is not an array", c.key)
		}
		docs = items
		snap.SavedAt = env.SavedAt
		snap.Confirmed = env.Confirmed
	default:
		return Snapshot[T]{}, fmt.Errorf("%s cache holds %T, want array or object", c.key, probe)
	}

	snap.Items = make([]T, 0, len(docs))
	for i, d := range docs {
		doc, ok := d.(map[string]any)
		if !ok {
			c.logger.Warn("skipping non-object cache entry",
				slog.String("key", c.key),
				slog.Int("index", i),
			)
			continue
		}
		rec, unknown := c.normalize(doc)
		if len(unknown) > 0 {
			c.logger.Debug("dropping unrecognized cached fields",
				slog.String("key", c.key),
				slog.Any("fields", unknown),
			)
		}
		snap.Items = append(snap.Items, rec)
	}
	return snap, nil
}

// Save replaces the cached collection.
func (c *Collection[T]) Save(ctx context.Context, items []T, confirmed bool) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(envelope[T]{
		Version:   envelopeVersion,
		SavedAt:   c.now().UTC(),
		Confirmed: confirmed,
		Items:     items,
	})
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", c.key, err)
	}
	if err := c.store.Write(ctx, c.key, string(b)); err != nil {
		return fmt.Errorf("cache: writing %s: %w", c.key, err)
	}
	return nil
}

// Package cache is the local read-through cache for reconciled collections.
//
// The backing Store is a plain string key/value table (SQLite in
// production, Memory in tests). Collections are written whole under a
// fixed key and wrapped in a small envelope that records when they were
// saved and whether the document store had confirmed the data.
package cache

import (
	"context"
	"sync"
)

// Well-known keys.
const (
	KeyProjects       = "projects"
	KeyCertificates   = "certificates"
	KeyProfilePhoto   = "profilePhoto"
	KeyAdminActiveTab = "adminPanelActiveTab"
)

// Store is a string key/value store. Write replaces the whole value.
type Store interface {
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	Write(ctx context.Context, key, value string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Read(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Write(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

var _ Store = (*Memory)(nil)

package store

import (
	"context"
	"sync"

	"github.com/zjrosen/hoard/internal/inventory"
)

// Memory is an in-process Store. Saved documents are deep-copied.
type Memory struct {
	mu    sync.Mutex
	doc   *inventory.Document
	saves int
}

// NewMemory returns an empty store, or one seeded with docs[0].
func NewMemory(docs ...inventory.Document) *Memory {
	m := &Memory{}
	if len(docs) > 0 {
		doc := docs[0].Clone()
		m.doc = &doc
	}
	return m
}

// Load returns the last saved document.
func (m *Memory) Load(context.Context) (inventory.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc == nil {
		return inventory.Document{}, ErrNotFound
	}
	return m.doc.Clone(), nil
}

// Save replaces the stored document.
func (m *Memory) Save(_ context.Context, doc inventory.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := doc.Clone()
	m.doc = &clone
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saves
}

// Package store persists inventory documents. Stores sit outside the catalog:
// the service loads a Document, hands it to the catalog, and later saves the
// catalog's snapshot back.
package store

import (
	"context"
	"errors"

	"github.com/zjrosen/hoard/internal/inventory"
)

// Store errors
var (
	ErrNotFound          = errors.New("document not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrLocked            = errors.New("document is locked by another process")
)

// Store loads and saves a whole Document.
type Store interface {
	// Load returns ErrNotFound when nothing has been persisted yet.
	Load(ctx context.Context) (inventory.Document, error)
	Save(ctx context.Context, doc inventory.Document) error
}

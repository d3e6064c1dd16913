// Package pubsub fans out catalog change notifications and log entries to
// any number of subscribers without blocking publishers.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened.
type EventType string

const (
	AssetUpserted    EventType = "asset.upserted"
	AssetDeleted     EventType = "asset.deleted"
	DocumentReplaced EventType = "document.replaced"
	DocumentSaved    EventType = "document.saved"
	MetadataUpdated  EventType = "document.metadata_updated"
	LogEntry         EventType = "log.entry"

	RelationshipTypeRegistered EventType = "relationship_type.registered"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

package Store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Document is the raw JSON form of a stored record. Both backends speak
// JSON so records round-trip identically through Firestore and the
// in-memory store.
type Document []byte

// Decode unmarshals the document into dest.
func (d Document) Decode(dest interface{}) error {
	return json.Unmarshal(d, dest)
}

// Filter narrows a Query to documents whose field satisfies Op against
// Value. Supported operators: ==, !=, <, <=, >, >=.
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Order sorts Query results by a single field.
type Order struct {
	Field string
	Desc  bool
}

type EventType string

const (
	EventAdded    EventType = "added"
	EventModified EventType = "modified"
	EventRemoved  EventType = "removed"
)

// Event is one change delivered on a Subscribe stream.
type Event struct {
	Type       EventType
	Collection string
	ID         string
	Doc        Document
}

// ErrNotFound is returned by Get when no document exists under the given
// id, and when a weak reference points at a deleted record.
var ErrNotFound = errors.New("document not found")

// Store is the minimal contract the ledger engine needs from a
// document-oriented backend. Subscribe exists for presentation layers
// only; the engine itself never calls it.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Put(ctx context.Context, collection, id string, doc interface{}) error
	Query(ctx context.Context, collection string, filters []Filter, order *Order) ([]Document, error)
	Subscribe(ctx context.Context, collection string, filters []Filter) (<-chan Event, error)
	Close() error
}

// GetAs fetches a document and decodes it into dest in one call.
func GetAs(ctx context.Context, s Store, collection, id string, dest interface{}) error {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := doc.Decode(dest); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

package Store

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the production Store backed by Cloud Firestore,
// initialised through the Firebase SDK with a service account key.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestore connects to the Firestore database of the Firebase project
// described by the credentials file.
func NewFirestore(ctx context.Context, credentialsFile string) (*FirestoreStore, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("firestore get %s/%s: %w", collection, id, err)
	}

	raw, err := json.Marshal(snap.Data())
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return Document(raw), nil
}

func (s *FirestoreStore) Put(ctx context.Context, collection, id string, doc interface{}) error {
	fields, err := toFields(doc)
	if err != nil {
		return err
	}

	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, fields); err != nil {
		return fmt.Errorf("firestore put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, filters []Filter, order *Order) ([]Document, error) {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, f.Op, f.Value)
	}
	if order != nil {
		dir := firestore.Asc
		if order.Desc {
			dir = firestore.Desc
		}
		q = q.OrderBy(order.Field, dir)
	}

	var docs []Document
	it := q.Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore query %s: %w", collection, err)
		}
		raw, err := json.Marshal(snap.Data())
		if err != nil {
			return nil, fmt.Errorf("encode %s/%s: %w", collection, snap.Ref.ID, err)
		}
		docs = append(docs, Document(raw))
	}
	return docs, nil
}

// Subscribe streams snapshot changes for the filtered collection. The
// returned channel closes when ctx is cancelled.
func (s *FirestoreStore) Subscribe(ctx context.Context, collection string, filters []Filter) (<-chan Event, error) {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, f.Op, f.Value)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		snaps := q.Snapshots(ctx)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				return
			}
			for _, change := range snap.Changes {
				raw, err := json.Marshal(change.Doc.Data())
				if err != nil {
					continue
				}
				ev := Event{Collection: collection, ID: change.Doc.Ref.ID, Doc: Document(raw)}
				switch change.Kind {
				case firestore.DocumentAdded:
					ev.Type = EventAdded
				case firestore.DocumentModified:
					ev.Type = EventModified
				case firestore.DocumentRemoved:
					ev.Type = EventRemoved
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// toFields converts any JSON-marshalable value into the map form the
// Firestore SDK expects for Set.
func toFields(doc interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	return fields, nil
}

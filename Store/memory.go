package Store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used by tests and offline
// development. Documents are kept as raw JSON so behavior matches the
// Firestore backend.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Document
	subs []*memorySub
}

type memorySub struct {
	collection string
	filters    []Filter
	ch         chan Event
	done       <-chan struct{}
}

func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]Document)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(Document, len(doc))
	copy(out, doc)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, collection, id string, doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	col, ok := s.data[collection]
	if !ok {
		col = make(map[string]Document)
		s.data[collection] = col
	}
	_, existed := col[id]
	col[id] = Document(raw)

	evType := EventAdded
	if existed {
		evType = EventModified
	}
	ev := Event{Type: evType, Collection: collection, ID: id, Doc: Document(raw)}
	subs := make([]*memorySub, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.collection != collection || !matches(Document(raw), sub.filters) {
			continue
		}
		select {
		case sub.ch <- ev:
		case <-sub.done:
		default:
		}
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, filters []Filter, order *Order) ([]Document, error) {
	s.mu.RLock()
	var docs []Document
	for _, doc := range s.data[collection] {
		if matches(doc, filters) {
			out := make(Document, len(doc))
			copy(out, doc)
			docs = append(docs, out)
		}
	}
	s.mu.RUnlock()

	if order != nil {
		sort.SliceStable(docs, func(i, j int) bool {
			less := compareField(docs[i], docs[j], order.Field) < 0
			if order.Desc {
				return !less && compareField(docs[i], docs[j], order.Field) != 0
			}
			return less
		})
	}
	return docs, nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection string, filters []Filter) (<-chan Event, error) {
	sub := &memorySub{
		collection: collection,
		filters:    filters,
		ch:         make(chan Event, 16),
		done:       ctx.Done(),
	}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		for i, candidate := range s.subs {
			if candidate == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(sub.ch)
	}()
	return sub.ch, nil
}

func (s *MemoryStore) Close() error { return nil }

func matches(doc Document, filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false
	}
	for _, f := range filters {
		cmp, comparable := compare(fields[f.Field], f.Value)
		if !comparable {
			return false
		}
		switch f.Op {
		case "==":
			if cmp != 0 {
				return false
			}
		case "!=":
			if cmp == 0 {
				return false
			}
		case "<":
			if cmp >= 0 {
				return false
			}
		case "<=":
			if cmp > 0 {
				return false
			}
		case ">":
			if cmp <= 0 {
				return false
			}
		case ">=":
			if cmp < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func compareField(a, b Document, field string) int {
	var fa, fb map[string]interface{}
	if json.Unmarshal(a, &fa) != nil || json.Unmarshal(b, &fb) != nil {
		return 0
	}
	cmp, ok := compare(fa[field], fb[field])
	if !ok {
		return 0
	}
	return cmp
}

// compare orders two JSON-decoded values. Numbers compare numerically,
// strings lexicographically (RFC 3339 timestamps order correctly this
// way), bools false-before-true.
func compare(a, b interface{}) (int, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}

	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if aok && bok {
		switch {
		case ab == bb:
			return 0, true
		case !ab:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

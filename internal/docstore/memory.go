package docstore

import (
	"context"
	"sync"
)

// Memory is the in-process Store used by unit tests. Values are
// JSON-normalized on write so reads look the same as from the real
// backends.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]map[string]any)}
}

func (m *Memory) GetDocument(_ context.Context, collection, id string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return Encode(doc)
}

func (m *Memory) SetFields(_ context.Context, collection, id string, fields map[string]any) error {
	normalized, err := Encode(fields)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.doc(collection, id)
	for k, v := range normalized {
		doc[k] = v
	}
	return nil
}

func (m *Memory) AppendToArrayField(_ context.Context, collection, id, field string, values ...any) error {
	if len(values) == 0 {
		return nil
	}
	normalized, err := Encode(map[string]any{field: values})
	if err != nil {
		return err
	}
	incoming, _ := normalized[field].([]any)

	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.doc(collection, id)
	existing, _ := doc[field].([]any)
	doc[field] = appendUnique(existing, incoming)
	return nil
}

func (m *Memory) ListDocuments(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for id, doc := range m.collections[collection] {
		fields, err := Encode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{ID: id, Fields: fields})
	}
	return out, nil
}

// doc returns the live document, creating collection and document as
// needed. Caller holds the write lock.
func (m *Memory) doc(collection, id string) map[string]any {
	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		m.collections[collection] = coll
	}
	doc, ok := coll[id]
	if !ok {
		doc = make(map[string]any)
		coll[id] = doc
	}
	return doc
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type memoryDoc struct {
	fields  []byte
	version int64
}

// Memory is a map-backed Store with the same version semantics as DB.
// Used by tests and local runs.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryDoc
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]*memoryDoc)}
}

func (m *Memory) Create(ctx context.Context, collection, id string, doc any) error {
	fields, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collections[collection]
	if coll == nil {
		coll = make(map[string]*memoryDoc)
		m.collections[collection] = coll
	}
	if _, ok := coll[id]; ok {
		return ErrAlreadyExists
	}
	coll[id] = &memoryDoc{fields: fields, version: 1}
	return nil
}

func (m *Memory) Get(ctx context.Context, collection, id string, out any) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return 0, ErrNotFound
	}
	if err := json.Unmarshal(doc.fields, out); err != nil {
		return 0, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return doc.version, nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, doc any, expectedVersion int64) error {
	fields, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	if expectedVersion != AnyVersion && existing.version != expectedVersion {
		return ErrVersionMismatch
	}
	existing.fields = fields
	existing.version++
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) List(ctx context.Context, collection string, filter Filter, out any) error {
	m.mu.RLock()
	raws := make([]json.RawMessage, 0)
	for _, doc := range m.collections[collection] {
		var fields map[string]any
		if err := json.Unmarshal(doc.fields, &fields); err != nil {
			m.mu.RUnlock()
			return err
		}
		if matchesFilter(fields, filter) {
			raws = append(raws, json.RawMessage(doc.fields))
		}
	}
	m.mu.RUnlock()

	arr, err := json.Marshal(raws)
	if err != nil {
		return err
	}
	return json.Unmarshal(arr, out)
}

func matchesFilter(fields map[string]any, filter Filter) bool {
	for field, want := range filter {
		got, ok := fields[field]
		if !ok {
			return false
		}
		switch v := want.(type) {
		case []string:
			found := false
			for _, alt := range v {
				if fmt.Sprint(got) == alt {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if fmt.Sprint(got) != fmt.Sprint(want) {
				return false
			}
		}
	}
	return true
}

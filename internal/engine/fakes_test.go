package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/rajithacharith/thunder-sub007/store"
)

// memoryStore keeps records in insertion order and counts calls.
type memoryStore struct {
	mu       sync.Mutex
	source   resource.Source
	readOnly bool
	order    []string
	items    map[string]resource.Resource
	calls    atomic.Int64
	listErr  error
	// block makes List wait for the context to end.
	block bool
}

func newMemoryStore(source resource.Source, records ...resource.Resource) *memoryStore {
	m := &memoryStore{source: source, items: map[string]resource.Resource{}}
	for _, record := range records {
		m.put(record)
	}
	return m
}

func (m *memoryStore) put(record resource.Resource) {
	record.Source = m.source
	if _, exists := m.items[record.ID]; !exists {
		m.order = append(m.order, record.ID)
	}
	m.items[record.ID] = record
}

func (m *memoryStore) Get(ctx context.Context, resourceType string, id string) (resource.Resource, error) {
	m.calls.Add(1)
	if err := faults.FromContext("memory get interrupted", ctx.Err()); err != nil {
		return resource.Resource{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return resource.Resource{}, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("%s %q not found", resourceType, id), nil)
	}
	return item.Clone(), nil
}

func (m *memoryStore) List(ctx context.Context, _ string, page store.PageRequest) (store.PageResult, error) {
	m.calls.Add(1)
	if m.block {
		<-ctx.Done()
		return store.PageResult{}, faults.FromContext("memory list interrupted", ctx.Err())
	}
	if m.listErr != nil {
		return store.PageResult{}, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ordered := make([]resource.Resource, 0, len(m.order))
	for _, id := range m.order {
		ordered = append(ordered, m.items[id].Clone())
	}
	return store.PageResult{Items: page.Window(ordered), TotalCount: len(ordered)}, nil
}

func (m *memoryStore) Create(_ context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	m.calls.Add(1)
	if m.readOnly {
		return resource.Resource{}, faults.NewTypedError(faults.ImmutableResourceError, "read-only", nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[value.ID]; exists {
		return resource.Resource{}, faults.NewTypedError(faults.ConflictError, fmt.Sprintf("%s %q already exists", resourceType, value.ID), nil)
	}
	m.put(value)
	return m.items[value.ID].Clone(), nil
}

func (m *memoryStore) Update(_ context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	m.calls.Add(1)
	if m.readOnly {
		return resource.Resource{}, faults.NewTypedError(faults.ImmutableResourceError, "read-only", nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[value.ID]; !exists {
		return resource.Resource{}, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("%s %q not found", resourceType, value.ID), nil)
	}
	m.put(value)
	return m.items[value.ID].Clone(), nil
}

func (m *memoryStore) Delete(_ context.Context, resourceType string, id string) error {
	m.calls.Add(1)
	if m.readOnly {
		return faults.NewTypedError(faults.ImmutableResourceError, "read-only", nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[id]; !exists {
		return faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("%s %q not found", resourceType, id), nil)
	}
	delete(m.items, id)
	for idx, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:idx], m.order[idx+1:]...)
			break
		}
	}
	return nil
}

type countingTruncations struct {
	count atomic.Int64
}

func (c *countingTruncations) ObserveCompositeTruncation(string) {
	c.count.Add(1)
}

func named(id string, name string) resource.Resource {
	return resource.Resource{ID: id, Attributes: map[string]any{"name": name}}
}

func numbered(prefix string, count int) []resource.Resource {
	records := make([]resource.Resource, 0, count)
	for idx := range count {
		records = append(records, resource.Resource{ID: fmt.Sprintf("%s-%04d", prefix, idx)})
	}
	return records
}

func idsOf(items []resource.Resource) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

package declarative

import (
	"context"
	"fmt"

	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/rajithacharith/thunder-sub007/store"
)

var _ store.Store = (*Adapter)(nil)

// SnapshotSource yields the snapshot a request should read from.
type SnapshotSource interface {
	Current() *Snapshot
}

// Adapter is the read-only backend over declarative snapshots. Each call
// reads one snapshot; a concurrent reload never changes what an in-flight
// call sees.
type Adapter struct {
	snapshots SnapshotSource
}

func NewAdapter(snapshots SnapshotSource) *Adapter {
	return &Adapter{snapshots: snapshots}
}

func (a *Adapter) Get(ctx context.Context, resourceType string, id string) (resource.Resource, error) {
	if err := ctx.Err(); err != nil {
		return resource.Resource{}, faults.FromContext("declarative get interrupted", err)
	}

	item, ok := a.snapshots.Current().Get(resourceType, id)
	if !ok {
		return resource.Resource{}, notFoundError(fmt.Sprintf("%s %q not found", resourceType, id))
	}
	return item.Clone(), nil
}

// List pages the snapshot's ordered slice. A non-positive limit returns every
// record from the offset on.
func (a *Adapter) List(ctx context.Context, resourceType string, page store.PageRequest) (store.PageResult, error) {
	if err := ctx.Err(); err != nil {
		return store.PageResult{}, faults.FromContext("declarative list interrupted", err)
	}

	items := a.snapshots.Current().Items(resourceType)
	window := page.Window(items)
	for idx := range window {
		window[idx] = window[idx].Clone()
	}

	return store.PageResult{
		Items:      window,
		TotalCount: len(items),
	}, nil
}

func (a *Adapter) Create(_ context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	return resource.Resource{}, immutableError(fmt.Sprintf("%s %q is declarative and cannot be created at runtime", resourceType, value.ID))
}

func (a *Adapter) Update(_ context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	return resource.Resource{}, immutableError(fmt.Sprintf("%s %q is declarative and cannot be updated", resourceType, value.ID))
}

func (a *Adapter) Delete(_ context.Context, resourceType string, id string) error {
	return immutableError(fmt.Sprintf("%s %q is declarative and cannot be deleted", resourceType, id))
}

package store

import (
	"context"

	"github.com/rajithacharith/thunder-sub007/resource"
)

// Reader is the read capability shared by every backend and by the
// composite coordinator.
type Reader interface {
	Get(ctx context.Context, resourceType string, id string) (resource.Resource, error)
	List(ctx context.Context, resourceType string, page PageRequest) (PageResult, error)
}

// Writer is the mutation capability. Read-only backends implement it by
// returning an ImmutableResourceError from every method.
type Writer interface {
	Create(ctx context.Context, resourceType string, value resource.Resource) (resource.Resource, error)
	Update(ctx context.Context, resourceType string, value resource.Resource) (resource.Resource, error)
	Delete(ctx context.Context, resourceType string, id string) error
}

// Store is the capability interface each store mode strategy exposes.
type Store interface {
	Reader
	Writer
}

package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/rajithacharith/thunder-sub007/store"
	"golang.org/x/sync/errgroup"
)

var _ store.Store = (*Coordinator)(nil)

// TruncationRecorder is notified when a composite listing hits the ceiling.
type TruncationRecorder interface {
	ObserveCompositeTruncation(resourceType string)
}

type CoordinatorOptions struct {
	Logger   logr.Logger
	Recorder TruncationRecorder
}

// Coordinator serves composite resource types by combining the mutable store
// with the declarative snapshot. It is the only component that knows how the
// two sources relate: mutable records shadow declarative records with the
// same id, and declarative records can never be mutated.
type Coordinator struct {
	mutable     store.Store
	declarative store.Reader
	logger      logr.Logger
	recorder    TruncationRecorder
}

func NewCoordinator(mutable store.Store, declarative store.Reader, opts CoordinatorOptions) *Coordinator {
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Coordinator{
		mutable:     mutable,
		declarative: declarative,
		logger:      logger.WithName("composite"),
		recorder:    opts.Recorder,
	}
}

// List fetches both sources concurrently, caps the combined record count at
// store.MaxCompositeStoreRecords, removes declarative records shadowed by
// mutable ones, sorts by id and returns the requested window. A failure on
// either side fails the whole call.
func (c *Coordinator) List(ctx context.Context, resourceType string, page store.PageRequest) (store.PageResult, error) {
	fetch := store.PageRequest{Offset: 0, Limit: store.MaxCompositeStoreRecords + 1}

	var mutableItems, declarativeItems []resource.Resource
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		result, err := c.mutable.List(groupCtx, resourceType, fetch)
		if err != nil {
			return err
		}
		mutableItems = result.Items
		return nil
	})
	group.Go(func() error {
		result, err := c.declarative.List(groupCtx, resourceType, fetch)
		if err != nil {
			return err
		}
		declarativeItems = result.Items
		return nil
	})
	if err := group.Wait(); err != nil {
		return store.PageResult{}, withContextCategory(ctx, "composite list interrupted", err)
	}
	// The deadline may expire after both fetches returned but before merging.
	if err := faults.FromContext("composite list interrupted", ctx.Err()); err != nil {
		return store.PageResult{}, err
	}

	combined := make([]resource.Resource, 0, len(mutableItems)+len(declarativeItems))
	combined = append(combined, mutableItems...)
	combined = append(combined, declarativeItems...)

	truncated := false
	if len(combined) > store.MaxCompositeStoreRecords {
		truncated = true
		combined = combined[:store.MaxCompositeStoreRecords]
		c.logger.Info("composite listing truncated",
			"resourceType", resourceType,
			"mutable", len(mutableItems),
			"declarative", len(declarativeItems),
			"limit", store.MaxCompositeStoreRecords,
		)
		if c.recorder != nil {
			c.recorder.ObserveCompositeTruncation(resourceType)
		}
	}

	merged := dedupeByID(combined)
	slices.SortStableFunc(merged, func(a, b resource.Resource) int {
		return strings.Compare(a.ID, b.ID)
	})

	result := store.PageResult{
		Items:       page.Window(merged),
		TotalCount:  len(merged),
		TotalCapped: truncated,
		Truncated:   truncated,
	}
	if truncated {
		result.Diagnostics = []store.Diagnostic{store.LimitExceededDiagnostic(resourceType)}
	}
	return result, nil
}

// dedupeByID keeps the first record seen for each id. Callers order mutable
// records first so they win.
func dedupeByID(items []resource.Resource) []resource.Resource {
	seen := make(map[string]struct{}, len(items))
	deduped := make([]resource.Resource, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		deduped = append(deduped, item)
	}
	return deduped
}

func (c *Coordinator) Get(ctx context.Context, resourceType string, id string) (resource.Resource, error) {
	item, err := c.mutable.Get(ctx, resourceType, id)
	if err == nil {
		return item, nil
	}
	if !faults.IsCategory(err, faults.NotFoundError) {
		return resource.Resource{}, err
	}
	return c.declarative.Get(ctx, resourceType, id)
}

func (c *Coordinator) Create(ctx context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	declared, err := c.declaredExists(ctx, resourceType, value.ID)
	if err != nil {
		return resource.Resource{}, err
	}
	if declared {
		return resource.Resource{}, faults.NewTypedError(
			faults.ConflictError,
			fmt.Sprintf("%s %q already exists as a declarative resource", resourceType, value.ID),
			nil,
		)
	}
	return c.mutable.Create(ctx, resourceType, value)
}

func (c *Coordinator) Update(ctx context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	updated, err := c.mutable.Update(ctx, resourceType, value)
	if err == nil {
		return updated, nil
	}
	return resource.Resource{}, c.explainMissing(ctx, resourceType, value.ID, err)
}

func (c *Coordinator) Delete(ctx context.Context, resourceType string, id string) error {
	err := c.mutable.Delete(ctx, resourceType, id)
	if err == nil {
		return nil
	}
	return c.explainMissing(ctx, resourceType, id, err)
}

// explainMissing turns a mutable NotFound into ImmutableResource when the id
// belongs to a declarative record.
func (c *Coordinator) explainMissing(ctx context.Context, resourceType string, id string, mutableErr error) error {
	if !faults.IsCategory(mutableErr, faults.NotFoundError) {
		return mutableErr
	}
	declared, err := c.declaredExists(ctx, resourceType, id)
	if err != nil {
		return err
	}
	if declared {
		return faults.NewTypedError(
			faults.ImmutableResourceError,
			fmt.Sprintf("%s %q is declarative and cannot be modified", resourceType, id),
			nil,
		)
	}
	return mutableErr
}

func (c *Coordinator) declaredExists(ctx context.Context, resourceType string, id string) (bool, error) {
	_, err := c.declarative.Get(ctx, resourceType, id)
	switch {
	case err == nil:
		return true, nil
	case faults.IsCategory(err, faults.NotFoundError):
		return false, nil
	default:
		return false, err
	}
}

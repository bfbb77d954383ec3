// Package engine routes resource operations to the backend selected by each
// resource type's store mode.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/rajithacharith/thunder-sub007/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rajithacharith/thunder-sub007/internal/engine"

type OperationKind string

const (
	OperationGet    OperationKind = "get"
	OperationList   OperationKind = "list"
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

type Operation struct {
	Kind         OperationKind
	ResourceType string
	// ID addresses Get, Update and Delete. For Update it may be left empty
	// when Resource.ID is set.
	ID       string
	Resource resource.Resource
	Page     store.PageRequest
}

// Result holds the outcome of one dispatched operation. Resource is set for
// Get, Create and Update; Page for List.
type Result struct {
	Resource resource.Resource
	Page     store.PageResult
}

// Strategies are the backends a router may dispatch to, one per store mode.
// Only the strategies required by the configured modes must be set.
type Strategies struct {
	Mutable     store.Store
	Declarative store.Store
	Composite   store.Store
}

func (s Strategies) forMode(mode config.StoreMode) store.Store {
	switch mode {
	case config.StoreModeMutable:
		return s.Mutable
	case config.StoreModeDeclarative:
		return s.Declarative
	case config.StoreModeComposite:
		return s.Composite
	default:
		return nil
	}
}

var _ store.Store = (*Router)(nil)

type RouterOptions struct {
	// OperationTimeout bounds operations whose context has no deadline.
	// Zero disables the bound.
	OperationTimeout time.Duration
	Logger           logr.Logger
	// TracerProvider defaults to the global otel provider.
	TracerProvider trace.TracerProvider
}

// Router dispatches operations by store mode. It holds no merge logic; the
// composite strategy owns that.
type Router struct {
	modes   config.StoreModeConfig
	routes  map[string]store.Store
	timeout time.Duration
	logger  logr.Logger
	tracer  trace.Tracer
}

func NewRouter(modes config.StoreModeConfig, strategies Strategies, opts RouterOptions) (*Router, error) {
	routes := make(map[string]store.Store, len(modes))
	for _, resourceType := range modes.Types() {
		mode := modes[resourceType]
		if !mode.Valid() {
			return nil, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("resource type %q has invalid store mode %q", resourceType, mode),
				nil,
			)
		}
		strategy := strategies.forMode(mode)
		if strategy == nil {
			return nil, faults.NewTypedError(
				faults.InternalError,
				fmt.Sprintf("no backend available for store mode %q (resource type %q)", mode, resourceType),
				nil,
			)
		}
		routes[resourceType] = strategy
	}

	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	tracerProvider := opts.TracerProvider
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}
	return &Router{
		modes:   modes.Clone(),
		routes:  routes,
		timeout: opts.OperationTimeout,
		logger:  logger.WithName("router"),
		tracer:  tracerProvider.Tracer(tracerName),
	}, nil
}

// Modes returns a copy of the resource type to store mode table.
func (r *Router) Modes() config.StoreModeConfig {
	return r.modes.Clone()
}

// Mode reports the store mode configured for resourceType.
func (r *Router) Mode(resourceType string) (config.StoreMode, bool) {
	mode, ok := r.modes[strings.TrimSpace(resourceType)]
	return mode, ok
}

func (r *Router) Dispatch(ctx context.Context, op Operation) (result Result, err error) {
	resourceType := strings.TrimSpace(op.ResourceType)
	ctx, span := r.tracer.Start(ctx, "store."+string(op.Kind), trace.WithAttributes(
		attribute.String("store.operation", string(op.Kind)),
		attribute.String("store.resource_type", resourceType),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(faults.CategoryOf(err)))
		}
		span.End()
	}()

	strategy, ok := r.routes[resourceType]
	if !ok {
		return Result{}, faults.NewTypedError(
			faults.UnknownResourceTypeError,
			fmt.Sprintf("resource type %q is not configured", op.ResourceType),
			nil,
		)
	}
	mode := r.modes[resourceType]
	span.SetAttributes(attribute.String("store.mode", string(mode)))

	ctx, cancel := r.withOperationTimeout(ctx)
	defer cancel()

	r.logger.V(1).Info("dispatch", "operation", string(op.Kind), "resourceType", resourceType, "mode", string(mode))

	result, err = r.dispatch(ctx, strategy, resourceType, op)
	if err == nil && op.Kind == OperationList {
		span.SetAttributes(
			attribute.Int("store.total_count", result.Page.TotalCount),
			attribute.Bool("store.truncated", result.Page.Truncated),
		)
	}
	return result, err
}

func (r *Router) dispatch(ctx context.Context, strategy store.Store, resourceType string, op Operation) (Result, error) {
	switch op.Kind {
	case OperationGet:
		id, err := resource.NormalizeIdentifier(op.ID)
		if err != nil {
			return Result{}, err
		}
		item, err := strategy.Get(ctx, resourceType, id)
		if err != nil {
			return Result{}, withContextCategory(ctx, "get interrupted", err)
		}
		return Result{Resource: item}, nil

	case OperationList:
		page, err := strategy.List(ctx, resourceType, op.Page.Normalize())
		if err != nil {
			return Result{}, withContextCategory(ctx, "list interrupted", err)
		}
		return Result{Page: page}, nil

	case OperationCreate:
		value, err := prepareResource(resourceType, op.Resource.ID, op.Resource)
		if err != nil {
			return Result{}, err
		}
		value.Revision = ""
		created, err := strategy.Create(ctx, resourceType, value)
		if err != nil {
			return Result{}, withContextCategory(ctx, "create interrupted", err)
		}
		return Result{Resource: created}, nil

	case OperationUpdate:
		id := op.ID
		if strings.TrimSpace(id) == "" {
			id = op.Resource.ID
		}
		value, err := prepareResource(resourceType, id, op.Resource)
		if err != nil {
			return Result{}, err
		}
		updated, err := strategy.Update(ctx, resourceType, value)
		if err != nil {
			return Result{}, withContextCategory(ctx, "update interrupted", err)
		}
		return Result{Resource: updated}, nil

	case OperationDelete:
		id, err := resource.NormalizeIdentifier(op.ID)
		if err != nil {
			return Result{}, err
		}
		if err := strategy.Delete(ctx, resourceType, id); err != nil {
			return Result{}, withContextCategory(ctx, "delete interrupted", err)
		}
		return Result{}, nil

	default:
		return Result{}, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("unsupported operation %q", op.Kind), nil)
	}
}

func (r *Router) Get(ctx context.Context, resourceType string, id string) (resource.Resource, error) {
	result, err := r.Dispatch(ctx, Operation{Kind: OperationGet, ResourceType: resourceType, ID: id})
	return result.Resource, err
}

func (r *Router) List(ctx context.Context, resourceType string, page store.PageRequest) (store.PageResult, error) {
	result, err := r.Dispatch(ctx, Operation{Kind: OperationList, ResourceType: resourceType, Page: page})
	return result.Page, err
}

func (r *Router) Create(ctx context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	result, err := r.Dispatch(ctx, Operation{Kind: OperationCreate, ResourceType: resourceType, Resource: value})
	return result.Resource, err
}

func (r *Router) Update(ctx context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	result, err := r.Dispatch(ctx, Operation{Kind: OperationUpdate, ResourceType: resourceType, ID: value.ID, Resource: value})
	return result.Resource, err
}

func (r *Router) Delete(ctx context.Context, resourceType string, id string) error {
	_, err := r.Dispatch(ctx, Operation{Kind: OperationDelete, ResourceType: resourceType, ID: id})
	return err
}

func (r *Router) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func prepareResource(resourceType string, id string, value resource.Resource) (resource.Resource, error) {
	normalizedID, err := resource.NormalizeIdentifier(id)
	if err != nil {
		return resource.Resource{}, err
	}
	if value.ID != "" && strings.TrimSpace(value.ID) != normalizedID {
		return resource.Resource{}, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("resource id %q does not match addressed id %q", value.ID, normalizedID),
			nil,
		)
	}
	if value.Type != "" && strings.TrimSpace(value.Type) != resourceType {
		return resource.Resource{}, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("resource type %q does not match addressed type %q", value.Type, resourceType),
			nil,
		)
	}

	prepared := value.Clone()
	prepared.ID = normalizedID
	prepared.Type = resourceType
	prepared.Source = resource.SourceMutable
	return prepared, nil
}

// withContextCategory reports an untyped failure as a timeout when the
// operation's context has ended.
func withContextCategory(ctx context.Context, message string, err error) error {
	if faults.IsCategory(err, faults.TimeoutError) {
		return err
	}
	if ctxErr := faults.FromContext(message, err); ctxErr != nil {
		return ctxErr
	}
	var typedErr *faults.TypedError
	if errors.As(err, &typedErr) {
		return err
	}
	if ctxErr := faults.FromContext(message, ctx.Err()); ctxErr != nil {
		return ctxErr
	}
	return err
}

package declarative

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// Recorder receives declarative load statistics. internal/metrics provides
// the Prometheus implementation.
type Recorder interface {
	ObserveDeclarativeReload(success bool)
	SetDeclarativeResources(resourceType string, count int)
	AddDeclarativeSkippedFiles(resourceType string, count int)
}

type HolderOptions struct {
	Logger   logr.Logger
	Recorder Recorder
}

// Holder publishes the current declarative snapshot through a single atomic
// pointer. Readers never lock; Reload builds a complete new snapshot and swaps
// it in only when the load succeeds.
type Holder struct {
	baseDir       string
	resourceTypes []string
	current       atomic.Pointer[Snapshot]
	reloadMu      sync.Mutex
	logger        logr.Logger
	recorder      Recorder
}

func NewHolder(baseDir string, resourceTypes []string, opts HolderOptions) *Holder {
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	holder := &Holder{
		baseDir:       baseDir,
		resourceTypes: append([]string(nil), resourceTypes...),
		logger:        logger.WithName("declarative"),
		recorder:      opts.Recorder,
	}
	holder.current.Store(emptySnapshot())
	return holder
}

// Current returns the snapshot visible to new requests. It is never nil.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Reload re-scans every declarative type directory. On failure the previous
// snapshot stays current and the error is returned.
func (h *Holder) Reload(ctx context.Context) (*Snapshot, error) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	snapshot, err := LoadAll(ctx, h.baseDir, h.resourceTypes)
	if err != nil {
		h.logger.Error(err, "declarative reload failed; keeping previous snapshot", "baseDir", h.baseDir)
		if h.recorder != nil {
			h.recorder.ObserveDeclarativeReload(false)
		}
		return nil, err
	}

	for _, diagnostic := range snapshot.diagnostics {
		h.logger.Info("skipped declarative file", "file", diagnostic.Subject, "reason", diagnostic.Message)
	}

	previous := h.current.Swap(snapshot)
	if h.recorder != nil {
		h.recorder.ObserveDeclarativeReload(true)
		for _, resourceType := range h.resourceTypes {
			h.recorder.SetDeclarativeResources(resourceType, snapshot.Len(resourceType))
			if skipped := snapshot.Skipped(resourceType); skipped > 0 {
				h.recorder.AddDeclarativeSkippedFiles(resourceType, skipped)
			}
		}
	}

	h.logger.V(1).Info("declarative snapshot swapped",
		"digest", snapshot.Digest().String(),
		"previousDigest", previous.Digest().String(),
		"skippedFiles", len(snapshot.diagnostics),
	)
	return snapshot, nil
}

func (h *Holder) BaseDir() string { return h.baseDir }

func (h *Holder) ResourceTypes() []string {
	return append([]string(nil), h.resourceTypes...)
}

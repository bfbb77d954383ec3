package declarative

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/rajithacharith/thunder-sub007/store"
)

// TypeIndex holds the resources parsed from one resource type directory in
// lexical file order. It is never modified after Load returns it.
type TypeIndex struct {
	resourceType string
	items        []resource.Resource
	byID         map[string]int
	skipped      int
}

func newTypeIndex(resourceType string) *TypeIndex {
	return &TypeIndex{resourceType: resourceType, byID: map[string]int{}}
}

func (i *TypeIndex) add(item resource.Resource) bool {
	if _, exists := i.byID[item.ID]; exists {
		return false
	}
	i.byID[item.ID] = len(i.items)
	i.items = append(i.items, item)
	return true
}

func (i *TypeIndex) Type() string { return i.resourceType }

func (i *TypeIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.items)
}

// Snapshot is an immutable view of every declarative resource type. Holders
// replace snapshots wholesale; readers may keep using an old snapshot after a
// reload.
type Snapshot struct {
	types       map[string]*TypeIndex
	loadedAt    time.Time
	digest      digest.Digest
	diagnostics []store.Diagnostic
}

func emptySnapshot() *Snapshot {
	snapshot, _ := newSnapshot(nil, nil, time.Time{})
	return snapshot
}

func newSnapshot(indexes []*TypeIndex, diagnostics []store.Diagnostic, loadedAt time.Time) (*Snapshot, error) {
	types := make(map[string]*TypeIndex, len(indexes))
	for _, index := range indexes {
		types[index.resourceType] = index
	}

	fingerprint, err := fingerprintTypes(types)
	if err != nil {
		return nil, internalError("failed to fingerprint declarative snapshot", err)
	}

	return &Snapshot{
		types:       types,
		loadedAt:    loadedAt,
		digest:      fingerprint,
		diagnostics: append([]store.Diagnostic(nil), diagnostics...),
	}, nil
}

// fingerprintTypes digests the canonical JSON form of every type index.
// encoding/json sorts map keys, so equal content always yields equal digests.
func fingerprintTypes(types map[string]*TypeIndex) (digest.Digest, error) {
	canonical := make(map[string][]resource.Resource, len(types))
	for resourceType, index := range types {
		canonical[resourceType] = index.items
	}
	encoded, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	return digest.FromBytes(encoded), nil
}

// Get returns the resource without copying it. Callers must not modify the
// returned attributes.
func (s *Snapshot) Get(resourceType string, id string) (resource.Resource, bool) {
	index, ok := s.types[resourceType]
	if !ok {
		return resource.Resource{}, false
	}
	position, ok := index.byID[id]
	if !ok {
		return resource.Resource{}, false
	}
	return index.items[position], true
}

// Items returns the shared, read-only ordered slice for resourceType.
func (s *Snapshot) Items(resourceType string) []resource.Resource {
	index, ok := s.types[resourceType]
	if !ok {
		return nil
	}
	return index.items
}

func (s *Snapshot) Len(resourceType string) int {
	return s.types[resourceType].Len()
}

// Skipped returns how many files of resourceType were skipped while loading.
func (s *Snapshot) Skipped(resourceType string) int {
	index, ok := s.types[resourceType]
	if !ok {
		return 0
	}
	return index.skipped
}

func (s *Snapshot) Types() []string {
	types := make([]string, 0, len(s.types))
	for resourceType := range s.types {
		types = append(types, resourceType)
	}
	sort.Strings(types)
	return types
}

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

func (s *Snapshot) Digest() digest.Digest { return s.digest }

// Diagnostics returns the non-fatal problems recorded while loading.
func (s *Snapshot) Diagnostics() []store.Diagnostic {
	return append([]store.Diagnostic(nil), s.diagnostics...)
}

func (s *Snapshot) String() string {
	total := 0
	for _, index := range s.types {
		total += index.Len()
	}
	return fmt.Sprintf("declarative snapshot %s (%d types, %d resources)", s.digest.Encoded()[:12], len(s.types), total)
}

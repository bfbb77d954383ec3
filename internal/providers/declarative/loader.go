package declarative

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/rajithacharith/thunder-sub007/store"
	"go.yaml.in/yaml/v3"
)

const maxFileBytes = 4 << 20

// Load scans dir non-recursively and parses every regular file as one
// resource of resourceType. Files are processed in lexical path order.
// A file that cannot be read or parsed is skipped and reported as a
// FileParseSkipped diagnostic; only an unlistable directory fails the load.
func Load(ctx context.Context, resourceType string, dir string) (*TypeIndex, []store.Diagnostic, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, directoryUnavailableError(
			fmt.Sprintf("declarative directory %q for resource type %q cannot be listed", dir, resourceType),
			err,
		)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	index := newTypeIndex(resourceType)
	var diagnostics []store.Diagnostic
	skip := func(filePath string, format string, args ...any) {
		index.skipped++
		diagnostics = append(diagnostics, store.Diagnostic{
			Code:    store.DiagnosticFileParseSkipped,
			Message: fmt.Sprintf(format, args...),
			Subject: filePath,
		})
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, nil, faults.FromContext("declarative load interrupted", err)
		}

		filePath := filepath.Join(dir, name)
		info, statErr := os.Stat(filePath)
		if statErr != nil {
			skip(filePath, "cannot stat file: %v", statErr)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if !isPathUnderRoot(dir, filePath) {
			skip(filePath, "file resolves outside the resource type directory")
			continue
		}

		item, parseErr := parseFile(filePath, resourceType)
		if parseErr != nil {
			skip(filePath, "%v", parseErr)
			continue
		}
		if !index.add(item) {
			skip(filePath, "duplicate resource id %q; an earlier file already defines it", item.ID)
		}
	}

	return index, diagnostics, nil
}

// LoadAll builds a complete snapshot from baseDir/<type> for every given type.
// Any unlistable type directory fails the whole load so that a reload never
// publishes a snapshot with a type silently missing.
func LoadAll(ctx context.Context, baseDir string, resourceTypes []string) (*Snapshot, error) {
	indexes := make([]*TypeIndex, 0, len(resourceTypes))
	var diagnostics []store.Diagnostic

	for _, resourceType := range resourceTypes {
		index, typeDiagnostics, err := Load(ctx, resourceType, filepath.Join(baseDir, resourceType))
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, index)
		diagnostics = append(diagnostics, typeDiagnostics...)
	}

	return newSnapshot(indexes, diagnostics, time.Now().UTC())
}

func parseFile(filePath string, resourceType string) (resource.Resource, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("cannot read file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxFileBytes+1))
	if err != nil {
		return resource.Resource{}, fmt.Errorf("cannot read file: %w", err)
	}
	if len(data) > maxFileBytes {
		return resource.Resource{}, errors.New("file exceeds maximum supported size")
	}
	return parseDocument(data, resourceType)
}

// parseDocument decodes a single YAML (or JSON) mapping into a resource.
func parseDocument(data []byte, resourceType string) (resource.Resource, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return resource.Resource{}, errors.New("file is empty")
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return resource.Resource{}, fmt.Errorf("invalid resource document: %w", err)
	}
	var extra any
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return resource.Resource{}, errors.New("file must contain exactly one resource document")
	}

	document, ok := decoded.(map[string]any)
	if !ok {
		return resource.Resource{}, fmt.Errorf("resource document must be a mapping, got %T", decoded)
	}

	rawID, declaredType, attributes := resource.FromDocument(document)
	id, err := resource.NormalizeIdentifier(rawID)
	if err != nil {
		return resource.Resource{}, err
	}
	if declaredType != "" && declaredType != resourceType {
		return resource.Resource{}, fmt.Errorf("resource declares type %q but lives in the %q directory", declaredType, resourceType)
	}

	normalized, err := resource.NormalizeAttributes(attributes)
	if err != nil {
		return resource.Resource{}, err
	}

	return resource.Resource{
		ID:         id,
		Type:       resourceType,
		Attributes: normalized,
		Source:     resource.SourceDeclarative,
	}, nil
}

func directoryUnavailableError(message string, cause error) error {
	return faults.NewTypedError(faults.DirectoryUnavailableError, message, cause)
}

func immutableError(message string) error {
	return faults.NewTypedError(faults.ImmutableResourceError, message, nil)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}

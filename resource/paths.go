package resource

import (
	"fmt"
	"strings"

	"github.com/rajithacharith/thunder-sub007/faults"
)

const maxIdentifierLength = 255

// NormalizeIdentifier trims and validates a resource identifier.
func NormalizeIdentifier(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", faults.NewTypedError(faults.ValidationError, "resource id must not be empty", nil)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("resource id must not exceed %d bytes", maxIdentifierLength),
			nil,
		)
	}
	if strings.ContainsAny(trimmed, "\x00\n\r") {
		return "", faults.NewTypedError(faults.ValidationError, "resource id must not contain control characters", nil)
	}
	return trimmed, nil
}

// NormalizeTypeName validates a resource type name. Type names double as
// declarative subdirectory names, so path separators and traversal are
// rejected.
func NormalizeTypeName(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", faults.NewTypedError(faults.ValidationError, "resource type must not be empty", nil)
	}
	if strings.ContainsAny(trimmed, `/\`) {
		return "", faults.NewTypedError(faults.ValidationError, "resource type must not contain path separators", nil)
	}
	if trimmed == "." || trimmed == ".." || strings.HasPrefix(trimmed, ".") {
		return "", faults.NewTypedError(faults.ValidationError, "resource type must not start with \".\"", nil)
	}
	return trimmed, nil
}

package resource

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rajithacharith/thunder-sub007/faults"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("normalizes_nested_attributes", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"port":    json.Number("8443"),
			"enabled": true,
			"weights": []any{
				uint16(3),
				json.Number("1.5"),
			},
			"claims": map[string]any{
				"ttl": int8(9),
			},
			"issued": time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}

		got, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}

		expected := map[string]any{
			"port":    int64(8443),
			"enabled": true,
			"weights": []any{
				int64(3),
				float64(1.5),
			},
			"claims": map[string]any{
				"ttl": int64(9),
			},
			"issued": "2026-01-02T03:04:05Z",
		}

		if diff := cmp.Diff(expected, got); diff != "" {
			t.Fatalf("unexpected normalized value (-want +got):\n%s", diff)
		}
	})

	t.Run("converts_typed_string_maps", func(t *testing.T) {
		t.Parallel()

		got, err := Normalize(map[string]string{"a": "b"})
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if diff := cmp.Diff(map[string]any{"a": "b"}, got); diff != "" {
			t.Fatalf("unexpected normalized value (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects_non_string_map_keys", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize(map[int]string{1: "x"})
		assertValidationErrorNormalize(t, err)
	})

	t.Run("rejects_non_finite_float", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize(math.Inf(1))
		assertValidationErrorNormalize(t, err)
	})

	t.Run("rejects_out_of_range_integer", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize(uint64(math.MaxInt64) + 1)
		assertValidationErrorNormalize(t, err)
	})

	t.Run("rejects_unsupported_type", func(t *testing.T) {
		t.Parallel()

		type payload struct {
			ID string
		}
		_, err := Normalize(payload{ID: "x"})
		assertValidationErrorNormalize(t, err)
	})
}

func TestNormalizeAttributesNil(t *testing.T) {
	t.Parallel()

	got, err := NormalizeAttributes(nil)
	if err != nil {
		t.Fatalf("NormalizeAttributes returned error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", got)
	}
}

func TestFromDocument(t *testing.T) {
	t.Parallel()

	id, resourceType, attributes := FromDocument(map[string]any{
		"id":       " idp-1 ",
		"type":     "identity-provider",
		"source":   "ignored",
		"revision": "ignored",
		"name":     "Google",
	})
	if id != "idp-1" {
		t.Fatalf("expected trimmed id, got %q", id)
	}
	if resourceType != "identity-provider" {
		t.Fatalf("expected type identity-provider, got %q", resourceType)
	}
	if diff := cmp.Diff(map[string]any{"name": "Google"}, attributes); diff != "" {
		t.Fatalf("unexpected attributes (-want +got):\n%s", diff)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := Resource{
		ID:         "a",
		Attributes: map[string]any{"nested": map[string]any{"k": "v"}, "list": []any{"x"}},
	}
	cloned := original.Clone()
	cloned.Attributes["nested"].(map[string]any)["k"] = "changed"
	cloned.Attributes["list"].([]any)[0] = "changed"

	if original.Attributes["nested"].(map[string]any)["k"] != "v" {
		t.Fatalf("expected nested map to be copied")
	}
	if original.Attributes["list"].([]any)[0] != "x" {
		t.Fatalf("expected nested slice to be copied")
	}
}

func assertValidationErrorNormalize(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var typed *faults.TypedError
	if !errors.As(err, &typed) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typed.Category != faults.ValidationError {
		t.Fatalf("expected %q category, got %q", faults.ValidationError, typed.Category)
	}
}

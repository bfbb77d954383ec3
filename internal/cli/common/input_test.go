package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/spf13/cobra"
)

func newCommandWithStdin(input string) *cobra.Command {
	command := &cobra.Command{}
	command.SetIn(strings.NewReader(input))
	return command
}

func TestReadInputWithFileDashReadsStdin(t *testing.T) {
	command := newCommandWithStdin("  {\"name\":\"value\"}  ")

	data, err := ReadInput(command, InputFlags{Payload: stdinFileIndicator})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.TrimSpace(string(data)) != "{\"name\":\"value\"}" {
		t.Fatalf("unexpected payload: %q", string(data))
	}
}

func TestReadInputWithFileDashEmptyInputReportsRequiredError(t *testing.T) {
	command := newCommandWithStdin("   \n")

	_, err := ReadInput(command, InputFlags{Payload: stdinFileIndicator})
	if err == nil {
		t.Fatalf("expected error for empty stdin")
	}
	if err.Error() != MissingInputMessage {
		t.Fatalf("expected message %q, got %q", MissingInputMessage, err.Error())
	}
}

func TestReadInputRejectsOversizedStdin(t *testing.T) {
	command := newCommandWithStdin(strings.Repeat("a", maxInputBytes+1))

	_, err := ReadInput(command, InputFlags{Payload: stdinFileIndicator})
	if err == nil {
		t.Fatal("expected oversized stdin error")
	}
	if !strings.Contains(err.Error(), "maximum supported size") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadInputRejectsOversizedFile(t *testing.T) {
	command := &cobra.Command{}
	path := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(path, []byte(strings.Repeat("a", maxInputBytes+1)), 0o600); err != nil {
		t.Fatalf("failed to write oversized file: %v", err)
	}

	_, err := ReadInput(command, InputFlags{Payload: path})
	if err == nil {
		t.Fatal("expected oversized file error")
	}
	if !strings.Contains(err.Error(), "maximum supported size") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeResourceSplitsReservedKeys(t *testing.T) {
	t.Parallel()

	command := newCommandWithStdin("id: app-1\ntype: application\nrevision: r1\nsource: declarative\nname: Portal\nports: [80, 443]\n")

	value, err := DecodeResource(command, InputFlags{Payload: stdinFileIndicator, Format: OutputYAML})
	if err != nil {
		t.Fatalf("DecodeResource returned error: %v", err)
	}
	want := resource.Resource{
		ID:         "app-1",
		Type:       "application",
		Revision:   "r1",
		Attributes: map[string]any{"name": "Portal", "ports": []any{int64(80), int64(443)}},
	}
	if diff := cmp.Diff(want, value); diff != "" {
		t.Fatalf("unexpected resource (-want +got):\n%s", diff)
	}
}

func TestDecodeResourceJSONKeepsIntegers(t *testing.T) {
	t.Parallel()

	command := newCommandWithStdin(`{"id": "a", "count": 9007199254740993, "ratio": 0.5}`)

	value, err := DecodeResource(command, InputFlags{Payload: stdinFileIndicator, Format: OutputJSON})
	if err != nil {
		t.Fatalf("DecodeResource returned error: %v", err)
	}
	if value.Attributes["count"] != int64(9007199254740993) || value.Attributes["ratio"] != 0.5 {
		t.Fatalf("unexpected attributes %#v", value.Attributes)
	}
}

func TestDecodeResourceRejectsNonObject(t *testing.T) {
	t.Parallel()

	command := newCommandWithStdin("- a\n- b\n")

	_, err := DecodeResource(command, InputFlags{Payload: stdinFileIndicator, Format: OutputYAML})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

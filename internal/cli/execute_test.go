package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/rajithacharith/thunder-sub007/faults"

	"github.com/spf13/cobra"
)

func TestShouldSuppressStatusMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want bool
	}{
		{name: "default false", args: []string{"resource", "list", "application"}, want: false},
		{name: "long flag", args: []string{"--no-status", "resource", "list", "application"}, want: true},
		{name: "short flag", args: []string{"-n", "resource", "list", "application"}, want: true},
		{name: "flag after positionals", args: []string{"resource", "list", "application", "--no-status"}, want: true},
		{name: "explicit true", args: []string{"--no-status=true", "resource", "list", "application"}, want: true},
		{name: "explicit false", args: []string{"--no-status=false", "resource", "list", "application"}, want: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := shouldSuppressStatusMessage(testCase.args)
			if got != testCase.want {
				t.Fatalf("shouldSuppressStatusMessage(%v) = %t, want %t", testCase.args, got, testCase.want)
			}
		})
	}
}

func TestExecutionStatusWriters(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		buffer := &bytes.Buffer{}
		writeExecutionOKStatus(buffer)
		if got, want := buffer.String(), "[OK] command executed successfully.\n"; got != want {
			t.Fatalf("writeExecutionOKStatus() = %q, want %q", got, want)
		}
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		buffer := &bytes.Buffer{}
		writeExecutionErrorStatus(buffer, errors.New("resource not found"))
		if got, want := buffer.String(), "[ERROR] command execution failed: resource not found.\n"; got != want {
			t.Fatalf("writeExecutionErrorStatus() = %q, want %q", got, want)
		}
	})
}

func TestCommandPathSupportsExecutionStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path string
		want bool
	}{
		{path: "thunder-store resource create", want: true},
		{path: "thunder-store resource update", want: true},
		{path: "thunder-store resource delete", want: true},
		{path: "thunder-store resource get", want: false},
		{path: "thunder-store resource list", want: false},
		{path: "thunder-store declarative check", want: false},
		{path: "thunder-store serve", want: false},
	}

	for _, testCase := range testCases {
		if got := commandPathSupportsExecutionStatus(testCase.path); got != testCase.want {
			t.Fatalf("commandPathSupportsExecutionStatus(%q) = %t, want %t", testCase.path, got, testCase.want)
		}
	}
}

func TestShouldSuppressColor(t *testing.T) {
	t.Run("no color env", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		if !shouldSuppressColor([]string{"resource", "get", "application", "app-1"}) {
			t.Fatal("expected color suppression when NO_COLOR is set")
		}
	})

	t.Run("flag parsing", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		if !shouldSuppressColor([]string{"resource", "get", "application", "app-1", "--no-color"}) {
			t.Fatal("expected color suppression for --no-color")
		}
		if shouldSuppressColor([]string{"resource", "get", "application", "app-1", "--no-color=false"}) {
			t.Fatal("expected color enabled when --no-color=false")
		}
	})
}

func TestShouldEmitExecutionStatus(t *testing.T) {
	t.Parallel()

	buildCommandPath := func(names ...string) *cobra.Command {
		root := &cobra.Command{Use: "thunder-store"}
		current := root
		for _, name := range names {
			next := &cobra.Command{Use: name}
			current.AddCommand(next)
			current = next
		}
		return current
	}

	testCases := []struct {
		name string
		args []string
		want bool
	}{
		{name: "mutation command", args: []string{"resource", "delete", "application", "app-1"}, want: true},
		{name: "mutation command no status", args: []string{"resource", "delete", "application", "app-1", "--no-status"}, want: false},
		{name: "help invocation", args: []string{"resource", "delete", "--help"}, want: false},
		{name: "completion invocation", args: []string{"completion", "bash"}, want: false},
		{name: "read command", args: []string{"resource", "get", "application", "app-1"}, want: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			command := buildCommandPath("resource", "delete")
			if testCase.name == "read command" {
				command = buildCommandPath("resource", "get")
			}
			got := shouldEmitExecutionStatus(testCase.args, command)
			if got != testCase.want {
				t.Fatalf("shouldEmitExecutionStatus(%v) = %t, want %t", testCase.args, got, testCase.want)
			}
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "untyped", err: errors.New("boom"), want: 1},
		{name: "validation", err: faults.NewTypedError(faults.ValidationError, "bad", nil), want: 2},
		{name: "not found", err: faults.NewTypedError(faults.NotFoundError, "missing", nil), want: 3},
		{name: "immutable", err: faults.NewTypedError(faults.ImmutableResourceError, "read-only", nil), want: 4},
		{name: "conflict", err: faults.NewTypedError(faults.ConflictError, "exists", nil), want: 5},
		{name: "unknown type", err: faults.NewTypedError(faults.UnknownResourceTypeError, "unknown", nil), want: 6},
		{name: "directory", err: faults.NewTypedError(faults.DirectoryUnavailableError, "no dir", nil), want: 7},
		{name: "timeout", err: faults.NewTypedError(faults.TimeoutError, "slow", nil), want: 8},
		{name: "internal", err: faults.NewTypedError(faults.InternalError, "bug", nil), want: 1},
		{name: "wrapped", err: fmt.Errorf("list: %w", faults.NewTypedError(faults.NotFoundError, "missing", nil)), want: 3},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			if got := ExitCodeForError(testCase.err); got != testCase.want {
				t.Fatalf("ExitCodeForError(%v) = %d, want %d", testCase.err, got, testCase.want)
			}
		})
	}
}

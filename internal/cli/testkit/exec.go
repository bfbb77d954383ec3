package testkit

import (
	"bytes"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

var executeCommandMu sync.Mutex

// ExecuteCommand runs command with args and stdin, returning what it wrote to
// stdout and stderr.
func ExecuteCommand(command *cobra.Command, stdin string, args ...string) (string, string, error) {
	// Cobra mutates flag annotation maps while serving help output, so parallel
	// tests must not execute commands concurrently.
	executeCommandMu.Lock()
	defer executeCommandMu.Unlock()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	command.SetOut(stdout)
	command.SetErr(stderr)
	command.SetIn(strings.NewReader(stdin))
	command.SetArgs(args)

	err := command.Execute()
	return stdout.String(), stderr.String(), err
}

// CommandPaths lists every user-facing command path under command.
func CommandPaths(command *cobra.Command) []string {
	var paths []string
	for _, child := range command.Commands() {
		name := child.Name()
		if name == "help" || strings.HasPrefix(name, "__") {
			continue
		}
		paths = append(paths, child.CommandPath())
		paths = append(paths, CommandPaths(child)...)
	}
	return paths
}

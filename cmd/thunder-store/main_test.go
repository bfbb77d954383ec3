package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/internal/cli/common"
)

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	if got := exitCodeForError(faults.NewTypedError(faults.ImmutableResourceError, "read-only", nil)); got != 4 {
		t.Fatalf("expected exit code 4, got %d", got)
	}
	if got := exitCodeForError(errors.New("boom")); got != 1 {
		t.Fatalf("expected exit code 1, got %d", got)
	}
}

func TestDependenciesOpenEngineFromConfigFile(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(baseDir, "declarative", "identity-provider"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(
		filepath.Join(baseDir, "declarative", "identity-provider", "google.yaml"),
		[]byte("id: google\nname: Google\n"),
		0o600,
	); err != nil {
		t.Fatalf("write resource: %v", err)
	}

	configPath := filepath.Join(baseDir, "store.yaml")
	content := "database:\n  path: " + filepath.Join(baseDir, "store.db") + "\n" +
		"declarative:\n  base-dir: " + filepath.Join(baseDir, "declarative") + "\n" +
		"resources:\n  identity-provider: composite\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	deps := dependencies()
	cfg, err := deps.LoadConfig(context.Background(), configPath)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got := cfg.Resources["identity-provider"]; got != config.StoreModeComposite {
		t.Fatalf("expected composite mode, got %q", got)
	}

	engine, err := deps.OpenEngine(context.Background(), cfg, common.EngineOptions{})
	if err != nil {
		t.Fatalf("OpenEngine returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := engine.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	item, err := engine.Store().Get(context.Background(), "identity-provider", "google")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if item.Attributes["name"] != "Google" {
		t.Fatalf("expected declarative attributes, got %#v", item.Attributes)
	}

	summary, err := deps.CheckDeclarative(context.Background(), cfg, common.EngineOptions{})
	if err != nil {
		t.Fatalf("CheckDeclarative returned error: %v", err)
	}
	if len(summary.Types) != 1 || summary.Types[0].Resources != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/rajithacharith/thunder-sub007/store"
)

func TestEngineCompositeListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := writeEngineFixture(t, map[string]string{
		"a.yaml": "id: a\nname: File-A\n",
		"b.json": `{"id": "b", "name": "File-B"}`,
	})

	built, err := NewEngine(ctx, cfg, EngineOptions{Registerer: prometheus.NewRegistry()})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	t.Cleanup(func() { _ = built.Close() })

	if _, err := built.Router.Create(ctx, "idp", resource.Resource{ID: "c", Attributes: map[string]any{"name": "DB-C"}}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := built.Router.Create(ctx, "idp", resource.Resource{ID: "a", Attributes: map[string]any{"name": "DB-A"}}); !faults.IsCategory(err, faults.ConflictError) {
		t.Fatalf("expected conflict for declarative id, got %v", err)
	}

	result, err := built.Router.List(ctx, "idp", store.PageRequest{Offset: 0, Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	want := []resource.Resource{
		{ID: "a", Type: "idp", Attributes: map[string]any{"name": "File-A"}, Source: resource.SourceDeclarative},
		{ID: "b", Type: "idp", Attributes: map[string]any{"name": "File-B"}, Source: resource.SourceDeclarative},
		{ID: "c", Type: "idp", Attributes: map[string]any{"name": "DB-C"}, Source: resource.SourceMutable},
	}
	if diff := cmp.Diff(want, result.Items, cmpopts.IgnoreFields(resource.Resource{}, "Revision")); diff != "" {
		t.Fatalf("unexpected listing (-want +got):\n%s", diff)
	}
	if result.TotalCount != 3 || result.Truncated {
		t.Fatalf("unexpected page metadata %+v", result)
	}

	if err := built.Router.Delete(ctx, "idp", "b"); !faults.IsCategory(err, faults.ImmutableResourceError) {
		t.Fatalf("expected immutable resource, got %v", err)
	}
	if _, err := built.Router.List(ctx, "tenant", store.PageRequest{}); !faults.IsCategory(err, faults.UnknownResourceTypeError) {
		t.Fatalf("expected unknown resource type, got %v", err)
	}
}

func TestEngineMutableRecordShadowsDeclarative(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := writeEngineFixture(t, map[string]string{
		"a.yaml": "id: a\nname: File-A\n",
		"b.yaml": "id: b\nname: File-B\n",
	})

	// Seed the database before the declarative file for "a" existed, the way
	// an operator would migrate a record into files after the fact.
	seedCfg := cfg
	seedCfg.Resources = config.StoreModeConfig{"idp": config.StoreModeMutable}
	seed, err := NewEngine(ctx, seedCfg, EngineOptions{})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	if _, err := seed.Router.Create(ctx, "idp", resource.Resource{ID: "a", Attributes: map[string]any{"name": "DB-A"}}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := seed.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	built, err := NewEngine(ctx, cfg, EngineOptions{})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	t.Cleanup(func() { _ = built.Close() })

	result, err := built.Router.List(ctx, "idp", store.PageRequest{Offset: 0, Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	got := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		got = append(got, item.ID+"="+item.Attributes["name"].(string))
	}
	if diff := cmp.Diff([]string{"a=DB-A", "b=File-B"}, got); diff != "" {
		t.Fatalf("unexpected listing (-want +got):\n%s", diff)
	}
	if result.TotalCount != 2 || result.Truncated {
		t.Fatalf("unexpected page metadata %+v", result)
	}
}

func TestEngineFailsWhenDeclarativeDirectoryMissing(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfg := config.Engine{
		Database:    config.Database{Path: filepath.Join(tempDir, "store.db")},
		Declarative: config.Declarative{BaseDir: filepath.Join(tempDir, "declarative")},
		Resources:   config.StoreModeConfig{"idp": config.StoreModeComposite},
	}

	_, err := NewEngine(context.Background(), cfg, EngineOptions{})
	if !faults.IsCategory(err, faults.DirectoryUnavailableError) {
		t.Fatalf("expected directory unavailable, got %v", err)
	}
}

func TestEngineReloadAndSummary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := writeEngineFixture(t, map[string]string{"a.yaml": "id: a\n"})
	built, err := NewEngine(ctx, cfg, EngineOptions{})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	t.Cleanup(func() { _ = built.Close() })

	before := built.DeclarativeSummary()
	typeDir := filepath.Join(cfg.Declarative.BaseDir, "idp")
	if err := os.WriteFile(filepath.Join(typeDir, "b.yaml"), []byte("id: b\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(typeDir, "c.yaml"), []byte("id: [\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	after, err := built.ReloadDeclarative(ctx)
	if err != nil {
		t.Fatalf("ReloadDeclarative returned error: %v", err)
	}
	if before.Digest == after.Digest {
		t.Fatalf("expected digest to change after reload")
	}
	want := []store.TypeSummary{{Type: "idp", Mode: config.StoreModeComposite, Resources: 2, Skipped: 1}}
	if diff := cmp.Diff(want, after.Types); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}
	if len(after.Diagnostics) != 1 || after.Diagnostics[0].Code != store.DiagnosticFileParseSkipped {
		t.Fatalf("expected one skipped-file diagnostic, got %+v", after.Diagnostics)
	}
}

func TestEngineWatchDeclarative(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := writeEngineFixture(t, map[string]string{"a.yaml": "id: a\n"})
	cfg.Declarative.WatchDebounce = config.Duration(30 * time.Millisecond)
	built, err := NewEngine(ctx, cfg, EngineOptions{})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	t.Cleanup(func() { _ = built.Close() })

	if err := built.WatchDeclarative(ctx); err != nil {
		t.Fatalf("WatchDeclarative returned error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Declarative.BaseDir, "idp", "b.yaml"), []byte("id: b\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		item, err := built.Router.Get(ctx, "idp", "b")
		if err == nil && item.Source == resource.SourceDeclarative {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected watcher to load b.yaml, last error: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestCheckDeclarativeSkipsDatabase(t *testing.T) {
	t.Parallel()

	cfg := writeEngineFixture(t, map[string]string{"a.yaml": "id: a\n"})
	cfg.Database.Path = filepath.Join(t.TempDir(), "never", "store.db")

	summary, err := CheckDeclarative(context.Background(), cfg, EngineOptions{})
	if err != nil {
		t.Fatalf("CheckDeclarative returned error: %v", err)
	}
	if len(summary.Types) != 1 || summary.Types[0].Resources != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if _, err := os.Stat(filepath.Dir(cfg.Database.Path)); !os.IsNotExist(err) {
		t.Fatalf("expected database directory to stay absent, got %v", err)
	}
}

func TestOpenEngineFromConfigFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	declarativeDir := filepath.Join(tempDir, "declarative")
	if err := os.MkdirAll(filepath.Join(declarativeDir, "idp"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	configPath := filepath.Join(tempDir, "store.yaml")
	content := "database:\n  path: " + filepath.Join(tempDir, "store.db") + "\n" +
		"declarative:\n  base-dir: " + declarativeDir + "\n" +
		"resources:\n  idp: declarative\n  organization-unit: mutable\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	built, err := OpenEngine(
		context.Background(),
		BootstrapConfig{ConfigPath: configPath, LookupEnv: func(string) (string, bool) { return "", false }},
		EngineOptions{},
	)
	if err != nil {
		t.Fatalf("OpenEngine returned error: %v", err)
	}
	t.Cleanup(func() { _ = built.Close() })

	want := config.StoreModeConfig{"idp": config.StoreModeDeclarative, "organization-unit": config.StoreModeMutable}
	if diff := cmp.Diff(want, built.Router.Modes()); diff != "" {
		t.Fatalf("unexpected modes (-want +got):\n%s", diff)
	}
}

func writeEngineFixture(t *testing.T, files map[string]string) config.Engine {
	t.Helper()

	tempDir := t.TempDir()
	typeDir := filepath.Join(tempDir, "declarative", "idp")
	if err := os.MkdirAll(typeDir, 0o755); err != nil {
		t.Fatalf("failed to create declarative dir: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(typeDir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	return config.Engine{
		Database:    config.Database{Path: filepath.Join(tempDir, "store.db")},
		Declarative: config.Declarative{BaseDir: filepath.Join(tempDir, "declarative")},
		Resources:   config.StoreModeConfig{"idp": config.StoreModeComposite},
	}
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/neutralizer/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFalsePositives_Defaults(t *testing.T) {
	table, err := LoadFalsePositives("", []string{"Landmark Ruling"})
	if err != nil {
		t.Fatalf("LoadFalsePositives failed: %v", err)
	}

	if _, ok := table.Match("prime minister"); !ok {
		t.Error("Expected built-in entries")
	}
	if _, ok := table.Match("landmark ruling"); !ok {
		t.Error("Expected extra phrase")
	}
}

func TestLoadFalsePositives_List(t *testing.T) {
	path := writeTemp(t, "fp.yaml", "- state of emergency\n- gold standard\n")

	table, err := LoadFalsePositives(path, nil)
	if err != nil {
		t.Fatalf("LoadFalsePositives failed: %v", err)
	}
	if _, ok := table.Match("State of Emergency"); !ok {
		t.Error("Expected phrase from list file")
	}
}

func TestLoadFalsePositives_Structured(t *testing.T) {
	path := writeTemp(t, "fp.yaml", "phrases:\n  - gold standard\npatterns:\n  - weather service\n")

	table, err := LoadFalsePositives(path, nil)
	if err != nil {
		t.Fatalf("LoadFalsePositives failed: %v", err)
	}
	if _, ok := table.Match("gold standard"); !ok {
		t.Error("Expected phrase from file")
	}
	if entry, ok := table.Match("National Weather Service"); !ok || entry != "weather service" {
		t.Errorf("Expected pattern match, got %q %v", entry, ok)
	}
}

func TestLoadFalsePositives_Errors(t *testing.T) {
	if _, err := LoadFalsePositives(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeTemp(t, "bad.yaml", "phrases: [unclosed")
	if _, err := LoadFalsePositives(path, nil); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func pipelineWithFalsePositives(t *testing.T, path string) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Filter.FalsePositivesFile = path

	table, err := LoadFalsePositives(path, nil)
	if err != nil {
		t.Fatalf("LoadFalsePositives failed: %v", err)
	}
	return NewPipeline(cfg, Deps{FalsePositives: table})
}

func TestPipeline_ReloadFalsePositives(t *testing.T) {
	path := writeTemp(t, "fp.yaml", "- gold standard\n")
	p := pipelineWithFalsePositives(t, path)

	if _, ok := p.filter.FalsePositives().Match("landmark ruling"); ok {
		t.Fatal("Expected phrase absent before reload")
	}

	if err := os.WriteFile(path, []byte("- landmark ruling\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := p.ReloadFalsePositives(); err != nil {
		t.Fatalf("ReloadFalsePositives failed: %v", err)
	}
	if _, ok := p.filter.FalsePositives().Match("landmark ruling"); !ok {
		t.Error("Expected reloaded phrase")
	}
	if _, ok := p.filter.FalsePositives().Match("prime minister"); !ok {
		t.Error("Expected built-in entries kept")
	}

	// A broken file leaves the current table in place
	if err := os.WriteFile(path, []byte("phrases: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := p.ReloadFalsePositives(); err == nil {
		t.Error("Expected error for malformed file")
	}
	if _, ok := p.filter.FalsePositives().Match("landmark ruling"); !ok {
		t.Error("Expected previous table kept after failed reload")
	}
}

func TestPipeline_WatchFalsePositives(t *testing.T) {
	path := writeTemp(t, "fp.yaml", "- gold standard\n")
	p := pipelineWithFalsePositives(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.WatchFalsePositives(ctx) }()

	// Keep writing until the watcher is registered and has picked a change up
	deadline := time.Now().Add(5 * time.Second)
	reloaded := false
	for time.Now().Before(deadline) {
		if err := os.WriteFile(path, []byte("- landmark ruling\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, ok := p.filter.FalsePositives().Match("landmark ruling"); ok {
			reloaded = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !reloaded {
		t.Error("Expected watcher to reload the changed file")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watcher did not stop after cancel")
	}
}

func TestPipeline_WatchFalsePositives_NoFile(t *testing.T) {
	p := NewPipeline(model.DefaultConfig(), Deps{})
	if err := p.WatchFalsePositives(context.Background()); err != nil {
		t.Errorf("Expected nil without a configured file, got %v", err)
	}
}

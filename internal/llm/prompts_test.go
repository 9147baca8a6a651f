package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/neutralizer/internal/model"
)

func TestDefaultPrompts(t *testing.T) {
	prompts := DefaultPrompts()

	if prompts.System == "" || prompts.Rewrite == "" {
		t.Fatal("Expected system and rewrite prompts")
	}
	for _, pass := range []string{model.PassHighRecall, model.PassAdversarial} {
		if _, ok := prompts.Passes[pass]; !ok {
			t.Errorf("Expected default pass %s", pass)
		}
	}
}

func TestDetectionPrompt(t *testing.T) {
	prompt, err := DefaultPrompts().DetectionPrompt(model.PassHighRecall, "Article body.")
	if err != nil {
		t.Fatalf("DetectionPrompt failed: %v", err)
	}

	for _, want := range []string{
		highRecallInstructions,
		`{"phrases": []}`,
		"emotional_trigger",
		"selective_quoting",
		"<<<\nArticle body.\n>>>",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
	if strings.Contains(prompt, "%!") {
		t.Errorf("Prompt has a formatting error: %s", prompt)
	}
}

func TestDetectionPrompt_UnknownPass(t *testing.T) {
	if _, err := DefaultPrompts().DetectionPrompt("bogus", "text"); err == nil {
		t.Fatal("Expected error for unknown pass")
	}
}

func TestLoadPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := `system: "Custom system"
passes:
  high_recall: "Custom recall"
  headlines: "Check the headline only"
  adversarial: "   "
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write prompts: %v", err)
	}

	prompts, err := LoadPrompts(path)
	if err != nil {
		t.Fatalf("LoadPrompts failed: %v", err)
	}

	if prompts.System != "Custom system" {
		t.Errorf("Expected custom system, got %q", prompts.System)
	}
	if prompts.Passes[model.PassHighRecall] != "Custom recall" {
		t.Errorf("Expected custom recall, got %q", prompts.Passes[model.PassHighRecall])
	}
	if prompts.Passes["headlines"] != "Check the headline only" {
		t.Errorf("Expected added pass, got %q", prompts.Passes["headlines"])
	}
	if prompts.Passes[model.PassAdversarial] != adversarialInstructions {
		t.Error("Blank override must keep the default adversarial prompt")
	}
	if prompts.Rewrite != rewriteSystem {
		t.Error("Missing rewrite must keep the default")
	}
}

func TestLoadPrompts_Errors(t *testing.T) {
	if _, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("passes: [unclosed"), 0644); err != nil {
		t.Fatalf("write prompts: %v", err)
	}
	if _, err := LoadPrompts(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleTemplates = `
templates:
  dev-tip:
    description: "Quick developer tip"
    pillar: tips
    segments_count: 4
    segment_duration: 5
    default_config:
      provider: pika
      voice: Josh
  product-demo:
    description: "BoliBana Stock walkthrough"
    pillar: demo
    segments_count: 8
    segment_duration: 4
`

func TestParseTemplates(t *testing.T) {
	templates, err := ParseTemplates([]byte(sampleTemplates))
	if err != nil {
		t.Fatalf("ParseTemplates: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("templates = %d, want 2", len(templates))
	}

	tip := templates["dev-tip"]
	if tip.Name != "dev-tip" {
		t.Errorf("Name = %q, map key should become the name", tip.Name)
	}
	if tip.Pillar != "tips" || tip.SegmentsCount != 4 {
		t.Errorf("dev-tip parsed wrong: %+v", tip)
	}
	if tip.DefaultConfig.Provider != "pika" || tip.DefaultConfig.Voice != "Josh" {
		t.Errorf("default_config parsed wrong: %+v", tip.DefaultConfig)
	}
}

func TestParseTemplatesBadPillar(t *testing.T) {
	_, err := ParseTemplates([]byte("templates:\n  x:\n    pillar: gaming\n"))
	if err == nil {
		t.Fatal("expected error for unknown pillar")
	}
}

func TestLoadTemplatesMissingFile(t *testing.T) {
	templates, err := LoadTemplates(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("templates = %d, want 0", len(templates))
	}
}

func TestLoadTemplatesFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte(sampleTemplates), 0o644); err != nil {
		t.Fatal(err)
	}
	templates, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	if _, ok := templates["product-demo"]; !ok {
		t.Error("product-demo template missing")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Overpass.Endpoint == "" {
		t.Error("default endpoint missing")
	}
	if cfg.Map.DebounceMs != 500 {
		t.Errorf("debounce default = %d, want 500", cfg.Map.DebounceMs)
	}
	if cfg.Map.MinZoom != 15 {
		t.Errorf("min zoom default = %f, want 15", cfg.Map.MinZoom)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "floormap.yaml")
	data := "overpass:\n  endpoint: http://localhost:9999/api\nmap:\n  zoom: 17\n"
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Overpass.Endpoint != "http://localhost:9999/api" {
		t.Errorf("endpoint = %s", cfg.Overpass.Endpoint)
	}
	if cfg.Map.Zoom != 17 {
		t.Errorf("zoom = %f, want 17", cfg.Map.Zoom)
	}
	// untouched keys keep defaults
	if cfg.Map.DebounceMs != 500 {
		t.Errorf("debounce = %d, want default 500", cfg.Map.DebounceMs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("explicit missing config file should error")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

func TestEmptyDecoderConfig_Defaults(t *testing.T) {
	cfg := EmptyDecoderConfig()

	if got := cfg.GetDefaultVersion(); got != (schema.Version{Major: 1, Minor: 8}) {
		t.Errorf("GetDefaultVersion() = %v, want 1.8", got)
	}
	if got := cfg.GetScale(); got != 0.001 {
		t.Errorf("GetScale() = %v, want 0.001", got)
	}
	if got := cfg.GetNodeOffset(); got != [3]float64{} {
		t.Errorf("GetNodeOffset() = %v, want origin", got)
	}
	if got := cfg.GetWorkers(); got != 4 {
		t.Errorf("GetWorkers() = %d, want 4", got)
	}
	if got := cfg.GetQueueSize(); got != 64 {
		t.Errorf("GetQueueSize() = %d, want 64", got)
	}
	if got := cfg.GetCompression(); got != "none" {
		t.Errorf("GetCompression() = %q, want none", got)
	}
	if cfg.GetCompressionLevel() != 0 || cfg.GetDebug() || cfg.GetSchema() != "" {
		t.Error("unexpected non-zero defaults")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty config should validate: %v", err)
	}
}

func TestLoadDecoderConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "decoder.json")

	testJSON := `{
  "default_version": "1.3",
  "scale": 0.01,
  "node_offset": [10, 20, 30],
  "schema": "POSITION_CARTESIAN,RGBA_PACKED",
  "workers": 2,
  "compression": "zstd",
  "compression_level": 3,
  "debug": true
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadDecoderConfig(configPath)
	if err != nil {
		t.Fatalf("LoadDecoderConfig failed: %v", err)
	}

	if got := cfg.GetDefaultVersion(); got.QuantizedPositions() {
		t.Errorf("version %v should select legacy positions", got)
	}
	if cfg.GetScale() != 0.01 {
		t.Errorf("GetScale() = %v, want 0.01", cfg.GetScale())
	}
	if cfg.GetNodeOffset() != [3]float64{10, 20, 30} {
		t.Errorf("GetNodeOffset() = %v", cfg.GetNodeOffset())
	}
	if cfg.GetSchema() != "POSITION_CARTESIAN,RGBA_PACKED" {
		t.Errorf("GetSchema() = %q", cfg.GetSchema())
	}
	if cfg.GetWorkers() != 2 {
		t.Errorf("GetWorkers() = %d, want 2", cfg.GetWorkers())
	}
	if cfg.GetQueueSize() != 64 {
		t.Errorf("unset queue_size should default, got %d", cfg.GetQueueSize())
	}
	if cfg.GetCompression() != "zstd" || cfg.GetCompressionLevel() != 3 {
		t.Errorf("compression = %q/%d", cfg.GetCompression(), cfg.GetCompressionLevel())
	}
	if !cfg.GetDebug() {
		t.Error("GetDebug() = false, want true")
	}
}

func TestLoadDecoderConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("cfg.yaml", "{}"), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "nope.json"), "stat"},
		{"bad json", write("bad.json", "{"), "parse"},
		{"bad version", write("v.json", `{"default_version": "x.y"}`), "default_version"},
		{"unknown attribute", write("s.json", `{"schema": "POSITION_CARTESIAN,GPS_TIME"}`), "schema"},
		{"zero workers", write("w.json", `{"workers": 0}`), "workers"},
		{"negative queue", write("q.json", `{"queue_size": -1}`), "queue_size"},
		{"bad compression", write("c.json", `{"compression": "lz4"}`), "compression"},
		{"bad level", write("l.json", `{"compression_level": 9}`), "compression_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDecoderConfig(tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDecoderConfig_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.json")
	if err := os.WriteFile(p, make([]byte, 1024*1024+1), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDecoderConfig(p); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("expected BaseURL=http://localhost:8000, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 0 {
		t.Errorf("expected no client timeout, got %v", cfg.Server.Timeout)
	}
	if cfg.Chunk.Method != "fixed_size" {
		t.Errorf("expected Chunk.Method=fixed_size, got %s", cfg.Chunk.Method)
	}
	if cfg.Chunk.ChunkSize != 1000 || cfg.Chunk.ChunkOverlap != 200 {
		t.Errorf("expected chunk 1000/200, got %d/%d", cfg.Chunk.ChunkSize, cfg.Chunk.ChunkOverlap)
	}
	if cfg.Output.PreviewChars != 300 {
		t.Errorf("expected PreviewChars=300, got %d", cfg.Output.PreviewChars)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config should validate, got %v", errs)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "docstage.yaml")

	content := `
server:
  base_url: http://ingest.internal:9000
  timeout: 45s
chunk:
  method: by_sentences
  chunk_size: 600
  params:
    keep_separator: "true"
output:
  format: json
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.BaseURL != "http://ingest.internal:9000" {
		t.Errorf("expected overridden BaseURL, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 45*time.Second {
		t.Errorf("expected Timeout=45s, got %v", cfg.Server.Timeout)
	}
	if cfg.Chunk.Method != "by_sentences" || cfg.Chunk.ChunkSize != 600 {
		t.Errorf("expected by_sentences/600, got %s/%d", cfg.Chunk.Method, cfg.Chunk.ChunkSize)
	}
	if cfg.Chunk.ChunkOverlap != 200 {
		t.Errorf("expected default ChunkOverlap=200 to survive, got %d", cfg.Chunk.ChunkOverlap)
	}
	if cfg.Chunk.Params["keep_separator"] != "true" {
		t.Errorf("expected keep_separator param, got %v", cfg.Chunk.Params)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected Format=json, got %s", cfg.Output.Format)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docstage.yaml")
	if err := os.WriteFile(configPath, []byte("server: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected an error for invalid YAML")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".docstage"), 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".docstage", "config.yaml")

	content := `
parse:
  method: by_titles
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Parse.Method != "by_titles" {
		t.Errorf("expected Parse.Method=by_titles, got %s", cfg.Parse.Method)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCSTAGE_BASE_URL", "https://docs.example.com")
	t.Setenv("DOCSTAGE_LOG_LEVEL", "debug")

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.BaseURL != "https://docs.example.com" {
		t.Errorf("expected env BaseURL, got %s", cfg.Server.BaseURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level, got %s", cfg.Logging.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docstage.yaml")
	cfg := DefaultConfig()
	cfg.Server.Timeout = 2 * time.Minute
	cfg.Load.PDFMethod = "unstructured"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Server.Timeout != 2*time.Minute || loaded.Load.PDFMethod != "unstructured" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.Server.BaseURL = "localhost:8000" }, "server.base_url"},
		{"ftp url", func(c *Config) { c.Server.BaseURL = "ftp://files" }, "server.base_url"},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }, "server.timeout"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"output format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"chunk method", func(c *Config) { c.Chunk.Method = "by_vibes" }, "chunk.method"},
		{"chunk size", func(c *Config) { c.Chunk.ChunkSize = 0 }, "chunk.chunk_size"},
		{"overlap", func(c *Config) { c.Chunk.ChunkOverlap = 1000 }, "chunk.chunk_overlap"},
		{"pdf method", func(c *Config) { c.Load.PDFMethod = "text" }, "load.pdf_method"},
		{"parse method", func(c *Config) { c.Parse.Method = "ocr" }, "parse.method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			found := false
			for _, e := range cfg.Validate() {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a validation error on %s", tt.field)
			}
		})
	}
}

func TestStorePath(t *testing.T) {
	path := StorePath("/home/user/.docstage")
	expected := filepath.Join("/home/user/.docstage", "artifacts.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}

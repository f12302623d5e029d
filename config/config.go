package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the docstage client.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Load      LoadConfig      `yaml:"load"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Parse     ParseConfig     `yaml:"parse"`
	Output    OutputConfig    `yaml:"output"`
	DevServer DevServerConfig `yaml:"devserver"`
}

// ServerConfig points at the processing service.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout of zero leaves every request to the service's own timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// LoadConfig holds the defaults of the load stage.
type LoadConfig struct {
	PDFMethod string            `yaml:"pdf_method"` // pymupdf, pypdf, pdfplumber, unstructured
	Params    map[string]string `yaml:"params"`
}

// ChunkConfig holds the defaults of the chunk stage.
type ChunkConfig struct {
	Method       string            `yaml:"method"`
	ChunkSize    int               `yaml:"chunk_size"`
	ChunkOverlap int               `yaml:"chunk_overlap"`
	Params       map[string]string `yaml:"params"`
}

// ParseConfig holds the defaults of the parse stage.
type ParseConfig struct {
	Method string `yaml:"method"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format       string `yaml:"format"` // "text" or "json"
	PreviewChars int    `yaml:"preview_chars"`
}

// DevServerConfig holds the reference processing server settings.
type DevServerConfig struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"data_dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8000",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Load: LoadConfig{
			PDFMethod: "pymupdf",
		},
		Chunk: ChunkConfig{
			Method:       "fixed_size",
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Parse: ParseConfig{
			Method: "all_text",
		},
		Output: OutputConfig{
			Format:       "text",
			PreviewChars: 300,
		},
		DevServer: DevServerConfig{
			Addr:    ":8000",
			DataDir: ".docstage",
		},
	}
}

// Load loads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			mergeWithEnv(cfg)
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	mergeWithEnv(cfg)
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docstage.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docstage.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docstage", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	mergeWithEnv(cfg)
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StorePath returns the path of the reference server database.
func StorePath(dataDir string) string {
	return filepath.Join(dataDir, "artifacts.db")
}

// EnsureDataDir ensures the data directory exists.
func EnsureDataDir(dataDir string) error {
	return os.MkdirAll(dataDir, 0755)
}

func mergeWithEnv(cfg *Config) {
	if baseURL := os.Getenv("DOCSTAGE_BASE_URL"); baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}
	if level := os.Getenv("DOCSTAGE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

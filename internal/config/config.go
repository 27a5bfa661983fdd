// Package config manages the .csvgraph working directory: the YAML
// configuration file and the JSON graph cache.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"go.yaml.in/yaml/v3"
)

// DirName is the per-project configuration directory.
const DirName = ".csvgraph"

// FileName is the configuration file inside DirName.
const FileName = "config.yaml"

// Config holds the tool's settings.
type Config struct {
	// OutputFile is the default name for written CSV results.
	OutputFile string `yaml:"output_file"`

	// OutputPath is where generated files (dot, rendered images) go.
	OutputPath string `yaml:"output_path"`

	// SourcePath is the directory holding the CSV files.
	SourcePath string `yaml:"source_path"`

	// Graphviz controls the external renderer.
	Graphviz GraphvizSettings `yaml:"graphviz"`

	// Log controls logger level and format.
	Log LogSettings `yaml:"log"`

	// Store configures an object-store row source. When Endpoint is set
	// the CLI reads table objects from the bucket instead of SourcePath.
	Store StoreSettings `yaml:"store"`
}

// GraphvizSettings configures the external rendering command.
type GraphvizSettings struct {
	Engine string `yaml:"engine"` // e.g. "dot"
	Format string `yaml:"format"` // e.g. "png"
}

// LogSettings configures the logger.
type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreSettings holds MinIO/S3 connection settings for bucket-backed
// sources. All fields default to empty, which keeps the local directory
// source in use.
type StoreSettings struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// Default returns the settings written by `csvg init`.
func Default() *Config {
	return &Config{
		OutputFile: "output.csv",
		OutputPath: filepath.Join(DirName, "generated-files"),
		SourcePath: "./",
		Graphviz: GraphvizSettings{
			Engine: "dot",
			Format: "png",
		},
		Log: LogSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// Dir returns the configuration directory under the working directory.
func Dir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errs.IO("resolving working directory", err)
	}
	return filepath.Join(cwd, DirName), nil
}

// EnsureDir creates the configuration directory (and a default config file
// when absent) and returns its path.
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.IO("creating config directory", err)
	}

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(Default(), dir); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// Load reads the config file from dir, falling back to defaults when the
// file does not exist.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errs.IO("reading config file", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.IO("parsing config file", err)
	}
	return cfg, nil
}

// Save writes cfg to the config file in dir.
func Save(cfg *Config, dir string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errs.IO("serializing config", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		return errs.IO("writing config file", err)
	}
	return nil
}

// FindSQLSchema returns the first .sql file in the working directory, or
// "" when none exists.
func FindSQLSchema() string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			return e.Name()
		}
	}
	return ""
}

// RelPath renders path relative to the working directory for messages.
func RelPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// CSVPath resolves a table name to its CSV file under the source path.
func (c *Config) CSVPath(tbl string) string {
	return filepath.Join(c.SourcePath, fmt.Sprintf("%s.csv", tbl))
}

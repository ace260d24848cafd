package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Position encodings a client may negotiate.
const (
	EncodingUTF8  = "utf-8"
	EncodingUTF16 = "utf-16"
)

// Text synchronization modes.
const (
	SyncIncremental = "incremental"
	SyncFull        = "full"
)

// Syntax tree providers.
const (
	ParserNative     = "native"
	ParserTreeSitter = "tree-sitter"
)

type Config struct {
	PositionEncoding string   `json:"position_encoding" yaml:"position_encoding"`
	Parser           string   `json:"parser" yaml:"parser"`
	Sync             string   `json:"sync" yaml:"sync"`
	ParserPoolSize   int      `json:"parser_pool_size" yaml:"parser_pool_size"`
	TreeViewAddress  string   `json:"tree_view_address" yaml:"tree_view_address"`
	FileExtensions   []string `json:"file_extensions" yaml:"file_extensions"`
	IndexWorkers     int      `json:"index_workers" yaml:"index_workers"`
}

var defaultConfig = Config{
	PositionEncoding: EncodingUTF8,
	Parser:           ParserNative,
	Sync:             SyncIncremental,
	ParserPoolSize:   1,
	TreeViewAddress:  "localhost:1234",
	FileExtensions:   []string{".rho"},
	IndexWorkers:     4,
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	cfg := defaultConfig
	cfg.FileExtensions = append([]string(nil), defaultConfig.FileExtensions...)
	return cfg
}

// Load overlays v, typically the client's initializationOptions, onto the
// defaults.
func Load(v any) (Config, error) {
	return Default().Overlay(v)
}

// Overlay returns c with the fields present in v replaced.
func (c Config) Overlay(v any) (Config, error) {
	cfg := c
	cfg.FileExtensions = append([]string(nil), c.FileExtensions...)
	if v == nil {
		return cfg, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}

	// only fields present in src will overwrite.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}

	return cfg, cfg.Validate()
}

// LoadFromJSON reads JSON from r into a Config.
func LoadFromJSON(r io.Reader) (Config, error) {
	cfg := Default()

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// LoadFromYAML reads YAML from r into a Config.
func LoadFromYAML(r io.Reader) (Config, error) {
	cfg := Default()

	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("failed to decode yaml: %w", err)
	}

	return cfg, cfg.Validate()
}

// LoadFile reads a config file, choosing the format by extension. Anything
// other than .json is read as YAML.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	if filepath.Ext(path) == ".json" {
		return LoadFromJSON(f)
	}
	return LoadFromYAML(f)
}

// Validate rejects values the server cannot honour.
func (c Config) Validate() error {
	switch c.PositionEncoding {
	case EncodingUTF8, EncodingUTF16:
	default:
		return fmt.Errorf("unknown position_encoding %q", c.PositionEncoding)
	}
	switch c.Parser {
	case ParserNative, ParserTreeSitter:
	default:
		return fmt.Errorf("unknown parser %q", c.Parser)
	}
	switch c.Sync {
	case SyncIncremental, SyncFull:
	default:
		return fmt.Errorf("unknown sync mode %q", c.Sync)
	}
	if c.ParserPoolSize < 1 {
		return fmt.Errorf("parser_pool_size must be positive, got %d", c.ParserPoolSize)
	}
	if c.IndexWorkers < 1 {
		return fmt.Errorf("index_workers must be positive, got %d", c.IndexWorkers)
	}
	return nil
}

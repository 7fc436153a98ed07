package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

// DecoderConfig holds the defaults a host applies to decode requests and the
// worker pool. Every field is optional; the Get* methods supply defaults for
// anything left unset, so partial files are safe.
type DecoderConfig struct {
	// Request defaults
	DefaultVersion *string     `json:"default_version,omitempty"` // e.g. "1.8"
	Scale          *float64    `json:"scale,omitempty"`
	NodeOffset     *[3]float64 `json:"node_offset,omitempty"`
	Schema         *string     `json:"schema,omitempty"` // comma-separated descriptor keys

	// Worker pool
	Workers   *int `json:"workers,omitempty"`
	QueueSize *int `json:"queue_size,omitempty"`

	// Transport encoding
	Compression      *string `json:"compression,omitempty"` // "none" or "zstd"
	CompressionLevel *int    `json:"compression_level,omitempty"`

	Debug *bool `json:"debug,omitempty"`
}

const (
	defaultVersion     = "1.8"
	defaultScale       = 0.001
	defaultWorkers     = 4
	defaultQueueSize   = 64
	defaultCompression = "none"
)

// EmptyDecoderConfig returns a DecoderConfig with all fields set to nil.
func EmptyDecoderConfig() *DecoderConfig {
	return &DecoderConfig{}
}

// LoadDecoderConfig loads a DecoderConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadDecoderConfig(path string) (*DecoderConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyDecoderConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *DecoderConfig) Validate() error {
	if c.DefaultVersion != nil {
		if _, err := schema.ParseVersion(*c.DefaultVersion); err != nil {
			return fmt.Errorf("default_version: %w", err)
		}
	}
	if c.Schema != nil && *c.Schema != "" {
		if _, err := schema.ParseSchema(*c.Schema); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	if c.QueueSize != nil && *c.QueueSize < 0 {
		return fmt.Errorf("queue_size must be non-negative, got %d", *c.QueueSize)
	}
	if c.Compression != nil {
		switch *c.Compression {
		case "", "none", "zstd":
		default:
			return fmt.Errorf("compression must be \"none\" or \"zstd\", got %q", *c.Compression)
		}
	}
	if c.CompressionLevel != nil && (*c.CompressionLevel < 0 || *c.CompressionLevel > 4) {
		return fmt.Errorf("compression_level must be between 0 and 4, got %d", *c.CompressionLevel)
	}
	return nil
}

// GetDefaultVersion returns the parsed default_version or 1.8.
func (c *DecoderConfig) GetDefaultVersion() schema.Version {
	if c.DefaultVersion == nil {
		return schema.MustParseVersion(defaultVersion)
	}
	v, err := schema.ParseVersion(*c.DefaultVersion)
	if err != nil {
		return schema.MustParseVersion(defaultVersion) // default on parse error
	}
	return v
}

// GetScale returns the scale value or the default.
func (c *DecoderConfig) GetScale() float64 {
	if c.Scale == nil {
		return defaultScale
	}
	return *c.Scale
}

// GetNodeOffset returns the node_offset value or the origin.
func (c *DecoderConfig) GetNodeOffset() [3]float64 {
	if c.NodeOffset == nil {
		return [3]float64{}
	}
	return *c.NodeOffset
}

// GetSchema returns the schema key list, or "" if unset.
func (c *DecoderConfig) GetSchema() string {
	if c.Schema == nil {
		return ""
	}
	return *c.Schema
}

// GetWorkers returns the workers value or the default.
func (c *DecoderConfig) GetWorkers() int {
	if c.Workers == nil {
		return defaultWorkers
	}
	return *c.Workers
}

// GetQueueSize returns the queue_size value or the default.
func (c *DecoderConfig) GetQueueSize() int {
	if c.QueueSize == nil {
		return defaultQueueSize
	}
	return *c.QueueSize
}

// GetCompression returns the compression value or "none".
func (c *DecoderConfig) GetCompression() string {
	if c.Compression == nil || *c.Compression == "" {
		return defaultCompression
	}
	return *c.Compression
}

// GetCompressionLevel returns the compression_level value or 0 (encoder default).
func (c *DecoderConfig) GetCompressionLevel() int {
	if c.CompressionLevel == nil {
		return 0
	}
	return *c.CompressionLevel
}

// GetDebug returns the debug value or false.
func (c *DecoderConfig) GetDebug() bool {
	if c.Debug == nil {
		return false
	}
	return *c.Debug
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Output selects where and how one report is written.
type Output struct {
	Format  string                 `yaml:"format"`
	File    string                 `yaml:"file"`
	Options map[string]interface{} `yaml:"options,omitempty"`
}

// the null exporter writes nothing and needs no file
func (o Output) valid() bool {
	return o.File != "" || o.Format == "null"
}

// Log configures the process logger.
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is a complete run configuration.
type Config struct {
	LookupTableFile      string   `yaml:"lookup_table_file"`
	ProtocolMappingsFile string   `yaml:"protocol_mappings_file"`
	FlowLogFiles         []string `yaml:"flow_log_files"`

	TagCounts          Output `yaml:"tag_counts"`
	PortProtocolCounts Output `yaml:"port_protocol_counts"`

	Workers           int    `yaml:"workers"`
	BatchSize         int    `yaml:"batch_size"`
	Strict            bool   `yaml:"strict"`
	MaxReportedErrors int    `yaml:"max_reported_errors"`
	MetricsFile       string `yaml:"metrics_file"`

	Log Log `yaml:"log"`
}

// Default returns a configuration with all defaults set and no files.
func Default() *Config {
	return &Config{
		TagCounts:          Output{Format: DefaultFormat},
		PortProtocolCounts: Output{Format: DefaultFormat},
		Workers:            DefaultWorkers,
		BatchSize:          DefaultBatchSize,
		MaxReportedErrors:  DefaultMaxReportedErrors,
		Log:                Log{Level: DefaultLogLevel},
	}
}

// Parse decodes a yaml configuration over the defaults. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.TagCounts.Format == "" {
		cfg.TagCounts.Format = DefaultFormat
	}
	if cfg.PortProtocolCounts.Format == "" {
		cfg.PortProtocolCounts.Format = DefaultFormat
	}
	return cfg, nil
}

// Load reads a yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Validate reports the first missing or invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.LookupTableFile == "":
		return errors.New("lookup table file is required")
	case len(c.FlowLogFiles) == 0:
		return errors.New("at least one flow log file is required")
	case !c.TagCounts.valid():
		return errors.New("tag count file is required")
	case !c.PortProtocolCounts.valid():
		return errors.New("port/protocol count file is required")
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case c.BatchSize < 1:
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	case c.MaxReportedErrors < 0:
		return fmt.Errorf("max reported errors must not be negative, got %d", c.MaxReportedErrors)
	}
	return nil
}

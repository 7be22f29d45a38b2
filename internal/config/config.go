// Package config holds environment based configuration. Command-line flags
// override these values.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"

	"github.com/ethanolivertroy/compdef-insights/internal/export"
	"github.com/ethanolivertroy/compdef-insights/internal/graph"
)

// EnvPrefix prefixes every variable, e.g. COMPDEF_BASE_PATH.
const EnvPrefix = "COMPDEF"

// Config is the run configuration.
type Config struct {
	// Root of the trestle workspace. Relative hrefs and trestle:// hrefs
	// resolve against it.
	BasePath string `envconfig:"BASE_PATH" default:"."`

	// Component definition, relative to BasePath.
	FilePath string `envconfig:"FILE_PATH"`

	// Directory receiving the report artifacts.
	OutputPath string `envconfig:"OUTPUT_PATH" default:"insights"`

	// What to do with unresolved control and rule references: exclude,
	// include or fail.
	ReferencePolicy string `envconfig:"REFERENCE_POLICY" default:"exclude"`

	Formats     []string `envconfig:"FORMATS" default:"txt,json,csv,md"`
	Metrics     bool     `envconfig:"METRICS" default:"true"`
	Concurrent  bool     `envconfig:"CONCURRENT"`
	ChartWidth  int      `envconfig:"CHART_WIDTH" default:"100"`
	ChartHeight int      `envconfig:"CHART_HEIGHT" default:"30"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	Theme       string   `envconfig:"THEME" default:"default"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load that exits on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.WithError(err).Fatal("Error loading configuration")
	}
	return cfg
}

// Validate checks the settings needed to analyze a workspace.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("file path is required (--file-path or %s_FILE_PATH)", EnvPrefix)
	}
	if info, err := os.Stat(c.BasePath); err != nil || !info.IsDir() {
		return fmt.Errorf("base path %q is not a directory", c.BasePath)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := c.ExportFormats(); err != nil {
		return err
	}
	if c.ChartWidth < 20 || c.ChartHeight < 10 {
		return fmt.Errorf("chart size %dx%d is too small", c.ChartWidth, c.ChartHeight)
	}
	return nil
}

// Policy parses ReferencePolicy.
func (c *Config) Policy() (graph.ReferencePolicy, error) {
	return graph.ParsePolicy(c.ReferencePolicy)
}

// ExportFormats parses Formats.
func (c *Config) ExportFormats() ([]export.Format, error) {
	var names []string
	for _, f := range c.Formats {
		for _, part := range strings.Split(f, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}
	return export.ParseFormats(names)
}

// String implements fmt.Stringer for log output.
func (c *Config) String() string {
	return fmt.Sprintf("base=%s file=%s output=%s policy=%s formats=%v",
		c.BasePath, c.FilePath, c.OutputPath, c.ReferencePolicy, c.Formats)
}

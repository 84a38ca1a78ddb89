package core

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/lensgallery/internal/common"
	"github.com/jo-hoe/lensgallery/internal/imageprocessing"
)

const (
	// BaseURLEnv overrides api.baseURL when set.
	BaseURLEnv = "GALLERY_API_BASE_URL"

	DefaultPort          = 8080
	DefaultStatsInterval = 15 * time.Second
	DefaultLocale        = "en"
	DefaultPreviewWidth  = 480
)

type APIConfig struct {
	BaseURL string `yaml:"baseURL" validate:"required,url"`
	// Timeout of a single request; 0 lets requests run to completion.
	Timeout time.Duration `yaml:"timeout"`
}

type StatsConfig struct {
	Interval time.Duration `yaml:"interval"`
	Locale   string        `yaml:"locale"`
}

type PreviewConfig struct {
	// Commands normalize a selected file before it is shown. Nil selects the
	// default pipeline, an empty list shows files unmodified.
	Commands []imageprocessing.CommandConfig `yaml:"commands"`
	// MaxPixels is the largest image, in pixels, the pipeline decodes.
	// Larger files are shown unprocessed.
	MaxPixels int `yaml:"maxPixels" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

type ServiceConfig struct {
	Port    int           `yaml:"port" validate:"gte=0,lte=65535"`
	API     APIConfig     `yaml:"api"`
	Stats   StatsConfig   `yaml:"stats"`
	Preview PreviewConfig `yaml:"preview"`
	Log     LogConfig     `yaml:"log"`
}

// DefaultPreviewCommands converts to PNG and shrinks to DefaultPreviewWidth.
func DefaultPreviewCommands() []imageprocessing.CommandConfig {
	return []imageprocessing.CommandConfig{
		{Name: imageprocessing.PngConverterCommandName, Params: map[string]any{"svgFallbackWidth": 800, "svgFallbackHeight": 600}},
		{Name: imageprocessing.PixelScaleCommandName, Params: map[string]any{"width": DefaultPreviewWidth}},
	}
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return config, nil
}

// ParseConfig parses YAML, applies the environment override and defaults and validates the result.
func ParseConfig(data []byte) (*ServiceConfig, error) {
	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if baseURL := strings.TrimSpace(os.Getenv(BaseURLEnv)); baseURL != "" {
		config.API.BaseURL = baseURL
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *ServiceConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Stats.Interval == 0 {
		c.Stats.Interval = DefaultStatsInterval
	}
	if c.Stats.Locale == "" {
		c.Stats.Locale = DefaultLocale
	}
	if c.Preview.Commands == nil {
		c.Preview.Commands = DefaultPreviewCommands()
	}
	if c.Preview.MaxPixels == 0 {
		c.Preview.MaxPixels = imageprocessing.DefaultMaxPixels
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks struct tags and the cross field rules.
func (c *ServiceConfig) Validate() error {
	if err := common.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Stats.Interval < 0 {
		return fmt.Errorf("invalid configuration: stats interval must be positive, got %s", c.Stats.Interval)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("invalid configuration: api timeout must not be negative, got %s", c.API.Timeout)
	}
	if _, err := NewCountFormatter(c.Stats.Locale); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateCommands(c.Preview.Commands); err != nil {
		return fmt.Errorf("invalid preview command configuration: %w", err)
	}
	return nil
}

// validateCommands ensures all command configurations have required fields
func validateCommands(commands []imageprocessing.CommandConfig) error {
	seenNames := make(map[string]bool)

	for i, cmd := range commands {
		if cmd.Name == "" {
			return fmt.Errorf("command at index %d has empty name", i)
		}
		if !imageprocessing.DefaultRegistry.IsRegistered(cmd.Name) {
			return fmt.Errorf("command at index %d is unknown: %s", i, cmd.Name)
		}
		if seenNames[cmd.Name] {
			return fmt.Errorf("duplicate command name: %s", cmd.Name)
		}
		seenNames[cmd.Name] = true
	}

	return nil
}

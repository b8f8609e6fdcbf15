// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/cv-analyzer/internal/gateway"
	"github.com/jonathan/cv-analyzer/internal/llm"
)

// Report formats
const (
	ReportText = "txt"
	ReportPDF  = "pdf"
)

// Environment variables read by FromEnv
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
	EnvChromePath  = "CHROME_PATH"
)

// Duration is a time.Duration written as a Go duration string ("90s", "2m")
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON writes the duration string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalYAML accepts a duration string
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration. A nil Duration is zero.
func (d *Duration) Std() time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(*d)
}

func durationPtr(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// GatewayConfig is the model failover policy section.
// The delays are pointers so an explicit zero ("0s") is kept apart from unset.
type GatewayConfig struct {
	Models         []string  `json:"models,omitempty" yaml:"models,omitempty" validate:"dive,required"`
	FallbackModel  string    `json:"fallback_model,omitempty" yaml:"fallback_model,omitempty"`
	TransientDelay *Duration `json:"transient_delay,omitempty" yaml:"transient_delay,omitempty" validate:"omitempty,min=0"`
	BackoffFactor  float64   `json:"backoff_factor,omitempty" yaml:"backoff_factor,omitempty" validate:"omitempty,min=1"`
	MaxDelay       *Duration `json:"max_delay,omitempty" yaml:"max_delay,omitempty" validate:"omitempty,min=0"`
	Cooldown       *Duration `json:"cooldown,omitempty" yaml:"cooldown,omitempty" validate:"omitempty,min=0"`
}

// Gateway converts the section into a gateway.Config
func (g GatewayConfig) Gateway() gateway.Config {
	return gateway.Config{
		Models:         append([]string(nil), g.Models...),
		FallbackModel:  g.FallbackModel,
		TransientDelay: g.TransientDelay.Std(),
		BackoffFactor:  g.BackoffFactor,
		MaxDelay:       g.MaxDelay.Std(),
		Cooldown:       g.Cooldown.Std(),
	}
}

// RoadmapConfig controls roadmap generation
type RoadmapConfig struct {
	// Live fetches search pages and extracts course links
	Live               bool   `json:"live,omitempty" yaml:"live,omitempty"`
	CoursesPerProvider int    `json:"courses_per_provider,omitempty" yaml:"courses_per_provider,omitempty" validate:"min=0"`
	Output             string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	CV        string `json:"cv,omitempty" yaml:"cv,omitempty"`                 // Path to the CV document
	Template  string `json:"template,omitempty" yaml:"template,omitempty"`     // Template selection (1-3 or file name)
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"` // Directory for final CVs
	ReportDir string `json:"report_dir,omitempty" yaml:"report_dir,omitempty"` // Directory for skill reports

	// Run
	Role         string `json:"role,omitempty" yaml:"role,omitempty"`
	ReportFormat string `json:"report_format,omitempty" yaml:"report_format,omitempty" validate:"omitempty,oneof=txt pdf"`
	VerifySource string `json:"verify_source,omitempty" yaml:"verify_source,omitempty" validate:"omitempty,oneof=report gap_report"`

	// Behavior
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`           // Gemini API key
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	ChromePath  string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`   // Chrome binary for PDF reports
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`           // Print detailed debug information
	LogFormat   string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=text json"`

	// Server
	Port      int    `json:"port,omitempty" yaml:"port,omitempty" validate:"min=0,max=65535"`
	UploadDir string `json:"upload_dir,omitempty" yaml:"upload_dir,omitempty"`

	Gateway GatewayConfig `json:"gateway,omitempty" yaml:"gateway,omitempty"`
	Roadmap RoadmapConfig `json:"roadmap,omitempty" yaml:"roadmap,omitempty"`
}

var validate = validator.New()

// Defaults returns the built-in configuration
func Defaults() Config {
	gw := gateway.DefaultConfig()
	return Config{
		Template:     "template_1.tex",
		OutputDir:    "generated_cvs",
		ReportDir:    ".",
		ReportFormat: ReportText,
		VerifySource: "report",
		LogFormat:    "text",
		Port:         8000,
		Gateway: GatewayConfig{
			Models:         gw.Models,
			FallbackModel:  gw.FallbackModel,
			TransientDelay: durationPtr(gw.TransientDelay),
			BackoffFactor:  gw.BackoffFactor,
			MaxDelay:       durationPtr(gw.MaxDelay),
			Cooldown:       durationPtr(gw.Cooldown),
		},
		Roadmap: RoadmapConfig{
			CoursesPerProvider: 3,
			Output:             "upskilling_roadmap.json",
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv fills secrets and machine-specific paths left empty from the environment.
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAPIKey)
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv(EnvDatabaseURL)
	}
	if c.ChromePath == "" {
		c.ChromePath = os.Getenv(EnvChromePath)
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.CV != "" {
		if _, err := os.Stat(c.CV); os.IsNotExist(err) {
			return fmt.Errorf("config error: cv file not found: %s", c.CV)
		}
	}

	if len(c.Gateway.Models) > 0 {
		if err := c.Gateway.Gateway().Validate(); err != nil {
			return fmt.Errorf("config error: gateway: %w", err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.CV, defaults.CV)
	fill(&result.Template, defaults.Template)
	fill(&result.OutputDir, defaults.OutputDir)
	fill(&result.ReportDir, defaults.ReportDir)
	fill(&result.Role, defaults.Role)
	fill(&result.ReportFormat, defaults.ReportFormat)
	fill(&result.VerifySource, defaults.VerifySource)
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.ChromePath, defaults.ChromePath)
	fill(&result.LogFormat, defaults.LogFormat)
	fill(&result.UploadDir, defaults.UploadDir)
	fill(&result.Roadmap.Output, defaults.Roadmap.Output)

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Roadmap.CoursesPerProvider == 0 {
		result.Roadmap.CoursesPerProvider = defaults.Roadmap.CoursesPerProvider
	}

	// Gateway: an explicit model list replaces the default list
	gw := &result.Gateway
	if len(gw.Models) == 0 {
		gw.Models = append([]string(nil), defaults.Gateway.Models...)
	}
	fill(&gw.FallbackModel, defaults.Gateway.FallbackModel)
	if gw.FallbackModel == "" {
		gw.FallbackModel = llm.DefaultFallbackModel
	}
	fillDuration := func(dst **Duration, def *Duration) {
		if *dst == nil && def != nil {
			v := *def
			*dst = &v
		}
	}
	fillDuration(&gw.TransientDelay, defaults.Gateway.TransientDelay)
	if gw.BackoffFactor == 0 {
		gw.BackoffFactor = defaults.Gateway.BackoffFactor
	}
	fillDuration(&gw.MaxDelay, defaults.Gateway.MaxDelay)
	fillDuration(&gw.Cooldown, defaults.Gateway.Cooldown)

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Codec backends
const (
	BackendOpenCV = "opencv"
	BackendGo     = "go"
)

// Resave formats
const (
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
)

// Config holds the application configuration
type Config struct {
	Ghost    GhostConfig    `json:"ghost"`
	ELA      ELAConfig      `json:"ela"`
	Noise    NoiseConfig    `json:"noise"`
	Codec    CodecConfig    `json:"codec"`
	Metadata MetadataConfig `json:"metadata"`
	Output   OutputConfig   `json:"output"`
	Logging  LoggingConfig  `json:"logging"`
}

// GhostConfig holds the JPEG Ghost parameters
type GhostConfig struct {
	Quality         int `json:"quality"`
	SmoothingKernel int `json:"smoothing_kernel"`
}

// ELAConfig holds the error level analysis parameters
type ELAConfig struct {
	Quality    int     `json:"quality"`
	Multiplier float64 `json:"multiplier"`
}

// NoiseConfig holds the median-filter residue parameters
type NoiseConfig struct {
	KernelSize int     `json:"kernel_size"`
	Multiplier float64 `json:"multiplier"`
}

// CodecConfig selects how resaved copies are produced
type CodecConfig struct {
	Backend  string `json:"backend"`
	Format   string `json:"format"`
	TempFile bool   `json:"temp_file"`
}

// MetadataConfig controls the raw metadata pass
type MetadataConfig struct {
	UseExiftool  bool   `json:"use_exiftool"`
	ExiftoolPath string `json:"exiftool_path"`
}

// OutputConfig controls presentation
type OutputConfig struct {
	SaveComparison string `json:"save_comparison"`
	NoColor        bool   `json:"no_color"`
}

// LoggingConfig controls the log destination
type LoggingConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Ghost: GhostConfig{
			Quality:         60,
			SmoothingKernel: 17,
		},
		ELA: ELAConfig{
			Quality:    90,
			Multiplier: 15,
		},
		Noise: NoiseConfig{
			KernelSize: 3,
			Multiplier: 10,
		},
		Codec: CodecConfig{
			Backend: BackendOpenCV,
			Format:  FormatJPEG,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// LoadFromFile loads configuration from a JSON file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from IMAGEFORENSICS_* environment variables
func (c *Config) ApplyEnv() {
	c.Codec.Backend = getEnvOrDefault("IMAGEFORENSICS_BACKEND", c.Codec.Backend)
	c.Codec.Format = getEnvOrDefault("IMAGEFORENSICS_FORMAT", c.Codec.Format)
	c.Codec.TempFile = parseBoolOrDefault("IMAGEFORENSICS_TEMPFILE", c.Codec.TempFile)
	c.Metadata.ExiftoolPath = getEnvOrDefault("IMAGEFORENSICS_EXIFTOOL", c.Metadata.ExiftoolPath)
	if c.Metadata.ExiftoolPath != "" {
		c.Metadata.UseExiftool = true
	}
	c.Output.NoColor = parseBoolOrDefault("NO_COLOR", c.Output.NoColor)
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getEnvOrDefault("IMAGEFORENSICS_LOGFILE", c.Logging.File)
}

// Validate checks if the configuration is valid.
// Resave quality is deliberately not range-checked; the codec decides.
func (c *Config) Validate() error {
	if c.Ghost.SmoothingKernel < 1 || c.Ghost.SmoothingKernel%2 == 0 {
		return fmt.Errorf("ghost.smoothing_kernel must be a positive odd integer (got %d)", c.Ghost.SmoothingKernel)
	}

	if c.ELA.Multiplier <= 0 {
		return fmt.Errorf("ela.multiplier must be > 0 (got %g)", c.ELA.Multiplier)
	}

	if c.Noise.Multiplier <= 0 {
		return fmt.Errorf("noise.multiplier must be > 0 (got %g)", c.Noise.Multiplier)
	}

	switch c.Codec.Backend {
	case BackendOpenCV, BackendGo:
	default:
		return fmt.Errorf("codec.backend must be %q or %q (got %q)", BackendOpenCV, BackendGo, c.Codec.Backend)
	}

	switch c.Codec.Format {
	case FormatJPEG, FormatWebP:
	default:
		return fmt.Errorf("codec.format must be %q or %q (got %q)", FormatJPEG, FormatWebP, c.Codec.Format)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

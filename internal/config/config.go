package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envPrefix is prepended to every environment override
const envPrefix = "CAMERAVIEW_"

// Config holds the application configuration
type Config struct {
	View     ViewConfig     `json:"view"`
	Camera   CameraConfig   `json:"camera"`
	Output   OutputConfig   `json:"output"`
	Describe DescribeConfig `json:"describe"`
	Log      LogConfig      `json:"log"`
}

// ViewConfig holds the camera view geometry and behaviour
type ViewConfig struct {
	Width                 int  `json:"width"`
	Height                int  `json:"height"`
	ButtonSize            int  `json:"button_size"`
	HideButtonDuringFocus bool `json:"hide_button_during_focus"`
}

// CameraConfig lists the image sources used as capture devices
type CameraConfig struct {
	Sources []string `json:"sources"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format   string   `json:"format"`
	Quality  int      `json:"quality"`
	Lossless bool     `json:"lossless"`
	Dir      string   `json:"dir"`
	Prefix   string   `json:"prefix"`
	Ratios   []string `json:"ratios"`
}

// DescribeConfig holds the vision model used to describe captures
type DescribeConfig struct {
	Enabled     bool     `json:"enabled"`
	URL         string   `json:"url"`
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	Raw         bool     `json:"raw"`
	SendSize    int      `json:"send_size"`
	SendQuality int      `json:"send_quality"`
	Timeout     Duration `json:"timeout"`
}

// Duration is a time.Duration written in JSON as a string such as "5m".
// Plain numbers are read as nanoseconds.
type Duration struct {
	time.Duration
}

// MarshalJSON writes the duration in time.Duration string form
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reads a duration string or a number of nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		d.Duration = parsed
	case float64:
		d.Duration = time.Duration(val)
	default:
		return fmt.Errorf("invalid duration %s", data)
	}
	return nil
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		View: ViewConfig{
			Width:                 1080,
			Height:                1080,
			HideButtonDuringFocus: true,
		},
		Output: OutputConfig{
			Format:  "jpg",
			Quality: 90,
			Dir:     "./out",
		},
		Describe: DescribeConfig{
			URL:         "http://localhost:11434",
			Model:       "llava",
			SendSize:    1024,
			SendQuality: 85,
			Timeout:     Duration{5 * time.Minute},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a JSON file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
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

// ApplyEnv overrides fields from CAMERAVIEW_* environment variables. Files
// given are loaded as .env files first; missing files are ignored.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var err error
	c.View.Width = getEnvAsInt("VIEW_WIDTH", c.View.Width, &err)
	c.View.Height = getEnvAsInt("VIEW_HEIGHT", c.View.Height, &err)
	c.View.ButtonSize = getEnvAsInt("BUTTON_SIZE", c.View.ButtonSize, &err)
	c.View.HideButtonDuringFocus = getEnvAsBool("HIDE_BUTTON_DURING_FOCUS", c.View.HideButtonDuringFocus, &err)
	c.Camera.Sources = getEnvAsList("SOURCES", c.Camera.Sources)
	c.Output.Format = getEnv("OUTPUT_FORMAT", c.Output.Format)
	c.Output.Quality = getEnvAsInt("OUTPUT_QUALITY", c.Output.Quality, &err)
	c.Output.Lossless = getEnvAsBool("OUTPUT_LOSSLESS", c.Output.Lossless, &err)
	c.Output.Dir = getEnv("OUTPUT_DIR", c.Output.Dir)
	c.Output.Prefix = getEnv("OUTPUT_PREFIX", c.Output.Prefix)
	c.Output.Ratios = getEnvAsList("OUTPUT_RATIOS", c.Output.Ratios)
	c.Describe.Enabled = getEnvAsBool("DESCRIBE", c.Describe.Enabled, &err)
	c.Describe.URL = getEnv("OLLAMA_URL", c.Describe.URL)
	c.Describe.Model = getEnv("OLLAMA_MODEL", c.Describe.Model)
	c.Describe.Prompt = getEnv("DESCRIBE_PROMPT", c.Describe.Prompt)
	c.Describe.Raw = getEnvAsBool("DESCRIBE_RAW", c.Describe.Raw, &err)
	c.Describe.Timeout.Duration = getDuration("DESCRIBE_TIMEOUT", c.Describe.Timeout.Duration, &err)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Development = getEnvAsBool("LOG_DEVELOPMENT", c.Log.Development, &err)
	return err
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.View.Width <= 0 || c.View.Height <= 0 {
		return fmt.Errorf("view.width and view.height must be positive")
	}

	if c.View.ButtonSize < 0 {
		return fmt.Errorf("view.button_size cannot be negative")
	}

	switch strings.ToLower(c.Output.Format) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format must be one of jpg, png, webp")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir cannot be empty")
	}

	if c.Describe.Enabled {
		if c.Describe.URL == "" || c.Describe.Model == "" {
			return fmt.Errorf("describe.url and describe.model are required when describe is enabled")
		}
		if c.Describe.SendQuality < 1 || c.Describe.SendQuality > 100 {
			return fmt.Errorf("describe.send_quality must be between 1 and 100")
		}
		if c.Describe.Timeout.Duration < 0 {
			return fmt.Errorf("describe.timeout cannot be negative")
		}
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "cameraview", "config.json")
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultVal int, errp *error) int {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		setErr(errp, key, err)
		return defaultVal
	}
	return v
}

func getEnvAsBool(key string, defaultVal bool, errp *error) bool {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultVal
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		setErr(errp, key, err)
		return defaultVal
	}
	return v
}

func getDuration(key string, defaultVal time.Duration, errp *error) time.Duration {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultVal
	}
	v, err := time.ParseDuration(value)
	if err != nil {
		setErr(errp, key, err)
		return defaultVal
	}
	return v
}

func setErr(errp *error, key string, err error) {
	if *errp == nil {
		*errp = fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
	}
}

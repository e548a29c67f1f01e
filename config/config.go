package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvAPIKey names the environment variable holding the solve collaborator
// credential. Its absence is a fatal configuration error at startup.
const EnvAPIKey = "SNAPSOLVE_API_KEY"

// ErrMissingAPIKey indicates the credential was not found in the environment
// or a .env file.
var ErrMissingAPIKey = fmt.Errorf("%s is not set", EnvAPIKey)

// Config holds runtime configuration for the app. Fields may be loaded from a
// YAML file; the credential always comes from the environment.
type Config struct {
	Debug bool `yaml:"debug"`

	// Preview geometry
	PreviewMaxW int     `yaml:"preview_max_w"`
	PreviewMaxH int     `yaml:"preview_max_h"`
	Density     float64 `yaml:"density"` // device pixel density multiplier

	// Extraction
	CropMediaType string `yaml:"crop_media_type"`

	// Solve collaborator
	SolverModel          string `yaml:"solver_model"`
	SolverBaseURL        string `yaml:"solver_base_url"`
	SolverTimeoutSeconds int    `yaml:"solver_timeout_seconds"`
	SolveCacheSize       int    `yaml:"solve_cache_size"`

	Dark bool `yaml:"dark"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                false,
		PreviewMaxW:          760,
		PreviewMaxH:          520,
		Density:              1.0,
		CropMediaType:        "image/png",
		SolverModel:          "gpt-4o-mini",
		SolverTimeoutSeconds: 120,
		SolveCacheSize:       64,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.PreviewMaxW < 100 {
		c.PreviewMaxW = 760
	}
	if c.PreviewMaxH < 100 {
		c.PreviewMaxH = 520
	}
	if c.Density < 1 {
		c.Density = 1.0
	}
	switch c.CropMediaType {
	case "image/png", "image/jpeg":
	default:
		c.CropMediaType = "image/png"
	}
	if c.SolverModel == "" {
		c.SolverModel = "gpt-4o-mini"
	}
	if c.SolverTimeoutSeconds <= 0 {
		c.SolverTimeoutSeconds = 120
	}
	if c.SolveCacheSize <= 0 {
		c.SolveCacheSize = 64
	}
	return nil
}

// Load attempts to read configuration from the given YAML file path. If the
// file does not exist it returns DefaultConfig(). On YAML error it returns
// defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in YAML format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	raw, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// APIKeyFromEnv resolves the collaborator credential, consulting a .env file
// in the working directory the way the process environment would. The key is
// checked once at startup; a missing key aborts initialization.
func APIKeyFromEnv() (string, error) {
	// absence of a .env file is fine
	_ = godotenv.Load()
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

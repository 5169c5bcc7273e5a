package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read once at cold start.
type Config struct {
	CGMBaseURL string `envconfig:"CGM_BASE_URL" required:"true"`
	// ParamPrefix locates <prefix>/cgm-token in SSM. Ignored when CGMAPIToken is set.
	ParamPrefix string `envconfig:"PARAM_PREFIX"`
	// CGMAPIToken is meant for local runs; deployed functions read SSM.
	CGMAPIToken string `envconfig:"CGM_API_TOKEN"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional dotenv file, then the process environment.
// Variables already set in the environment win over the file.
func Load(dotenvFiles ...string) (Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.CGMBaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: CGM_BASE_URL %q must be an absolute URL", c.CGMBaseURL)
	}
	if strings.TrimSpace(c.CGMAPIToken) == "" && strings.TrimRight(strings.TrimSpace(c.ParamPrefix), "/") == "" {
		return errors.New("config: one of CGM_API_TOKEN or PARAM_PREFIX must be set")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// UsesParamStore reports whether the CGM token must be fetched from SSM.
func (c Config) UsesParamStore() bool {
	return strings.TrimSpace(c.CGMAPIToken) == ""
}

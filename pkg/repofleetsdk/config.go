package repofleetsdk

import (
	"io"
	"log/slog"
	"strings"
)

// Config defines the SDK behavior for direct core access.
type Config struct {
	// ConfigPath points at the declared-state document (TOML, YAML or JSON).
	ConfigPath string
	// Logger receives progress and warning records. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a config that reads the given declared-state
// document and logs nothing.
func DefaultConfig(configPath string) Config {
	return Config{ConfigPath: configPath}
}

func normalizeConfig(cfg Config) (Config, error) {
	if strings.TrimSpace(cfg.ConfigPath) == "" {
		return cfg, ErrConfigPathRequired
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg, nil
}

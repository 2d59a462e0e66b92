package bootstrap

import (
	"log/slog"
	"os"
	"strings"

	"github.com/menta2k/design-analyzer/internal/config"
)

// ConfigEnv names the variable holding an explicit config file path
const ConfigEnv = "DESIGN_ANALYZER_CONFIG"

// LoadConfig loads and validates the configuration. The file comes from
// DESIGN_ANALYZER_CONFIG, or the default config path when that file exists.
func LoadConfig() (*config.Config, error) {
	path := os.Getenv(ConfigEnv)
	if path == "" {
		if _, err := os.Stat(config.GetConfigPath()); err == nil {
			path = config.GetConfigPath()
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

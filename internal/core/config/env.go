package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: REPOGRAPH_[SECTION]_[KEY] (e.g., REPOGRAPH_ANALYSIS_MAX_FILES).
// GITHUB_TOKEN is honored when no token is configured.
func ApplyEnvOverrides(cfg *Config) {
	if cfg.GitHub.Token == "" {
		if token, ok := os.LookupEnv("GITHUB_TOKEN"); ok {
			cfg.GitHub.Token = token
		}
	}
	setEnvSecret(&cfg.GitHub.Token, "REPOGRAPH_GITHUB_TOKEN")
	setEnvString(&cfg.GitHub.APIBase, "REPOGRAPH_GITHUB_API_BASE")
	setEnvDuration(&cfg.GitHub.Timeout, "REPOGRAPH_GITHUB_TIMEOUT")
	setEnvFloat64(&cfg.GitHub.RatePerSecond, "REPOGRAPH_GITHUB_RATE_PER_SECOND")

	setEnvInt(&cfg.Analysis.MaxFiles, "REPOGRAPH_ANALYSIS_MAX_FILES")
	setEnvInt(&cfg.Analysis.BatchSize, "REPOGRAPH_ANALYSIS_BATCH_SIZE")
	setEnvInt(&cfg.Analysis.MaxCycles, "REPOGRAPH_ANALYSIS_MAX_CYCLES")
	setEnvInt(&cfg.Analysis.GodFileThreshold, "REPOGRAPH_ANALYSIS_GOD_FILE_THRESHOLD")

	setEnvString(&cfg.Resolver.AliasPrefix, "REPOGRAPH_RESOLVER_ALIAS_PREFIX")
	setEnvString(&cfg.Resolver.AliasTarget, "REPOGRAPH_RESOLVER_ALIAS_TARGET")

	setEnvString(&cfg.Server.Address, "REPOGRAPH_SERVER_ADDRESS")
	setEnvDuration(&cfg.Server.RequestTimeout, "REPOGRAPH_SERVER_REQUEST_TIMEOUT")

	setEnvBool(&cfg.History.Enabled, "REPOGRAPH_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "REPOGRAPH_HISTORY_PATH")

	setEnvBool(&cfg.Tracing.Enabled, "REPOGRAPH_TRACING_ENABLED")
	setEnvString(&cfg.Tracing.Endpoint, "REPOGRAPH_TRACING_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvSecret(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "PLANNER_"

// EnvFileVar names the variable that points at the .env file; ".env" is used
// when it is unset. A missing file is not an error.
const EnvFileVar = envPrefix + "ENV_FILE"

type lookupFunc func(key string) (string, bool)

// parseEnv overlays cfg with PLANNER_* variables.
func parseEnv(cfg *Config, lookup lookupFunc) error {
	path := ".env"
	if v, ok := lookup(EnvFileVar); ok && v != "" {
		path = v
	}

	file, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	get := func(name string) (string, bool) {
		if v, ok := lookup(envPrefix + name); ok {
			return v, true
		}
		v, ok := file[envPrefix+name]
		return v, ok
	}

	if v, ok := get("DATABASE_PATH"); ok {
		cfg.DatabasePath = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	if v, ok := get("EXPORT_DIR"); ok {
		cfg.ExportDir = v
	}
	if v, ok := get("HISTORY_FILE"); ok {
		cfg.HistoryFile = v
	}
	if v, ok := get("TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := get("ENCRYPT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sENCRYPT: %w", envPrefix, err)
		}
		cfg.Encrypt = b
	}
	if v, ok := get("VIEW_CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sVIEW_CACHE_TTL: %w", envPrefix, err)
		}
		cfg.ViewCacheTTL = d
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tripkeeper/internal/flagx"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// tell "absent" apart from zero values, so a partial file only overrides
// what it names.
type JsonConfig struct {
	DatabasePath *string         `json:"database_path"`
	LogLevel     *string         `json:"log_level"`
	LogFormat    *string         `json:"log_format"`
	ExportDir    *string         `json:"export_dir"`
	HistoryFile  *string         `json:"history_file"`
	Encrypt      *bool           `json:"encrypt"`
	ViewCacheTTL *timex.Duration `json:"view_cache_ttl"`
	Timezone     *string         `json:"timezone"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// Without such a flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.HistoryFile, jc.HistoryFile)
	setString(&cfg.Timezone, jc.Timezone)
	if jc.Encrypt != nil {
		cfg.Encrypt = *jc.Encrypt
	}
	if jc.ViewCacheTTL != nil {
		cfg.ViewCacheTTL = jc.ViewCacheTTL.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/tripkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string   database path
//	-l string   log level
//	-e string   export directory
//	-x          seal stored data with a passphrase
//
// args are filtered with flagx.FilterArgs first so flags owned by other
// components do not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-d", "-l", "-e", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the SQLite database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "directory for exported files")
	fs.BoolVar(&cfg.Encrypt, "x", cfg.Encrypt, "seal stored data with a passphrase")

	return fs.Parse(filtered)
}

package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// parseArgs splits a command line on spaces; double quotes group words.
func parseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	for _, r := range input {
		switch r {
		case '"':
			inQuotes = !inQuotes
			quoted = true
		case ' ', '\t':
			if inQuotes {
				current.WriteRune(r)
				continue
			}
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
			}
			quoted = false
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}
	return args
}

// newFlagSet returns a per-command flag set that reports errors instead of
// exiting.
func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}

// setFlags returns the names of flags given explicitly on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	seen := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

func parseTime(field, s string, loc *time.Location) (time.Time, error) {
	t, err := timex.ParseISO(strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, common.NewValidationError(field, fmt.Sprintf("cannot parse %q", s))
	}
	return t, nil
}

func parseCategory(s string) (models.Category, error) {
	c := models.Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", common.NewValidationError("category", fmt.Sprintf("unknown category %q", s))
	}
	return c, nil
}

func parsePriority(s string) (models.Priority, error) {
	p := models.Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", common.NewValidationError("priority", fmt.Sprintf("unknown priority %q", s))
	}
	return p, nil
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return models.NormalizeTags(strings.Split(s, ","))
}

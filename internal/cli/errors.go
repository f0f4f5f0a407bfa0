package cli

import (
	"errors"
	"flag"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
)

// describeError turns an operation error into the line shown to the user.
func describeError(err error) string {
	var (
		ve *common.ValidationError
		ne *common.NotFoundError
		ie *common.ImportError
		pe *common.PersistenceError
	)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return ""
	case errors.As(err, &ve):
		return "Invalid input: " + ve.Field + " " + ve.Reason
	case errors.As(err, &ne):
		return "Not found: " + ne.Kind + " " + ne.ID
	case errors.As(err, &ie):
		return "Import failed: " + ie.Error()
	case errors.As(err, &pe):
		if pe.Kind == common.PersistenceCorrupt {
			return "Stored data was unreadable: " + pe.Error()
		}
		return "Could not save (" + string(pe.Kind) + "). Changes are kept in memory; run 'flush' to retry."
	}
	return "Error: " + err.Error()
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. The real App type
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	// Exec runs one command. ok is false for an unknown command.
	Exec(ctx context.Context, name string, args []string) (ok bool, err error)
	Help() string
	// Shutdown runs before the loop exits; it retries a pending flush.
	Shutdown(ctx context.Context) error
}

// runREPL reads commands from lr until EOF, "exit" or "quit" and dispatches
// them to a. The prompt shows the status from statusFn. Command errors are
// reported and the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, lr LineReader) {
	for {
		if ctx.Err() != nil {
			return
		}
		line, err := lr.ReadLine(fmt.Sprintf("planner%s> ", statusFn()))
		if errors.Is(err, errInterrupted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				printlnFn("Error:", err)
			}
			shutdown(ctx, a)
			return
		}

		parts := parseArgs(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn(a.Help())

		case "exit", "quit":
			shutdown(ctx, a)
			printlnFn("Bye!")
			return

		default:
			ok, err := a.Exec(ctx, cmd, parts[1:])
			if !ok {
				printlnFn("Unknown command:", cmd)
				continue
			}
			if err != nil {
				printlnFn(describeError(err))
			}
		}
	}
}

func shutdown(ctx context.Context, a execIface) {
	if err := a.Shutdown(ctx); err != nil {
		printlnFn(describeError(err))
	}
}

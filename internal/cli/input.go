package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// errInterrupted is returned by a LineReader when the user pressed Ctrl-C on
// a non-empty line.
var errInterrupted = errors.New("interrupted")

// LineReader reads one line of user input after printing prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type bufferedReader struct {
	r *bufio.Reader
	w io.Writer
}

// NewBufferedReader reads lines from r and writes prompts to w. It is used
// when stdin is not a terminal and in tests.
func NewBufferedReader(r io.Reader, w io.Writer) LineReader {
	return &bufferedReader{r: bufio.NewReader(r), w: w}
}

// ReadLine returns the partial line if EOF follows some input.
func (b *bufferedReader) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		if _, err := fmt.Fprint(b.w, prompt); err != nil {
			return "", err
		}
	}
	line, err := b.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *bufferedReader) Close() error { return nil }

type readlineReader struct {
	rl *readline.Instance
}

// NewTerminalReader opens a readline session with persistent history.
func NewTerminalReader(historyFile string) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("readline: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		if len(line) == 0 {
			return "", io.EOF
		}
		return "", errInterrupted
	}
	return line, err
}

func (r *readlineReader) Close() error { return r.rl.Close() }

// NewLineReader picks readline for interactive terminals and plain buffered
// reading otherwise.
func NewLineReader(historyFile string) (LineReader, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return NewTerminalReader(historyFile)
	}
	return NewBufferedReader(os.Stdin, os.Stdout), nil
}

// GetSimpleText asks a single question and returns the trimmed answer.
//
//	Prompt text
//	> _
func GetSimpleText(lr LineReader, prompt string) (string, error) {
	line, err := lr.ReadLine(prompt + "\n> ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetMultiline reads lines until an empty one (or EOF) and joins them with
// '\n'.
func GetMultiline(lr LineReader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := lr.ReadLine("")
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// GetPassword reads a passphrase from the terminal without echo.
// The caller should wipe the returned slice when done.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Fallback answers dialogs when no host shell is attached.
type Fallback interface {
	Confirm(ctx context.Context, message string) (bool, error)
	Alert(ctx context.Context, message string) error
}

// DenyFallback declines every confirmation and drops alerts.
// It suits non-interactive runs where destructive actions must not proceed.
type DenyFallback struct{}

// Confirm always returns false.
func (DenyFallback) Confirm(context.Context, string) (bool, error) { return false, nil }

// Alert does nothing.
func (DenyFallback) Alert(context.Context, string) error { return nil }

// TerminalFallback prompts on a text terminal.
type TerminalFallback struct {
	out io.Writer
	in  *bufio.Reader
	mu  sync.Mutex
}

// NewTerminalFallback creates a fallback reading answers from in and writing prompts to out.
func NewTerminalFallback(in io.Reader, out io.Writer) *TerminalFallback {
	return &TerminalFallback{in: bufio.NewReader(in), out: out}
}

// Confirm prints the question and accepts y/yes/д/да as consent.
func (f *TerminalFallback) Confirm(ctx context.Context, message string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := fmt.Fprintf(f.out, "%s [y/N]: ", message); err != nil {
		return false, err
	}
	line, err := f.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "д", "да":
		return true, nil
	default:
		return false, nil
	}
}

// Alert prints the message.
func (f *TerminalFallback) Alert(_ context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, err := fmt.Fprintln(f.out, message)
	return err
}

// readLine reads one line. The read itself is not interruptible; ctx is
// checked before it starts.
func (f *TerminalFallback) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := f.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return line, err
}

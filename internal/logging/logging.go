// Package logging provides the line logger shared by the scan and generation
// stages. Messages are prefixed with the tool tag; verbose messages are
// dropped unless verbose output was requested.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Prefix tags every line written by the logger.
const Prefix = "[nukta-test-gen]"

// Logger writes prefixed lines to an output stream.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	verbose  bool
	prefix   lipgloss.Style
	errStyle lipgloss.Style
}

// New creates a logger writing to out. Styling follows the color profile
// detected for out, so plain writers receive no escape sequences.
func New(out io.Writer, verbose bool) *Logger {
	r := lipgloss.NewRenderer(out)
	return &Logger{
		out:      out,
		verbose:  verbose,
		prefix:   r.NewStyle().Faint(true),
		errStyle: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"}),
	}
}

// Stdout creates a logger writing to os.Stdout.
func Stdout(verbose bool) *Logger {
	return New(os.Stdout, verbose)
}

// Discard returns a verbose logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, true)
}

// Verbose reports whether verbose messages are emitted.
func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

// Printf writes a line unconditionally.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Verbosef writes a line only when verbose output is enabled.
func (l *Logger) Verbosef(format string, args ...any) {
	if !l.Verbose() {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Errorf writes a highlighted line unconditionally.
func (l *Logger) Errorf(format string, args ...any) {
	if l == nil {
		return
	}
	l.write(l.errStyle.Render(fmt.Sprintf(format, args...)))
}

// Func adapts the verbose channel to a printf-style callback.
func (l *Logger) Func() func(format string, args ...any) {
	return l.Verbosef
}

func (l *Logger) write(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", l.prefix.Render(Prefix), msg)
}

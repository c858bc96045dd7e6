package logging

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/extender/tui/theme"
)

type contextKey string

const outputWriterKey contextKey = "console_output_writer"

// GetWriter retrieves the console writer from context.
// It falls back to the global logger output if no writer is found.
func GetWriter(ctx context.Context) io.Writer {
	if writer, ok := ctx.Value(outputWriterKey).(io.Writer); ok && writer != nil {
		return writer
	}
	return GetGlobalOutput()
}

// WithWriter returns a new context with a console writer attached.
func WithWriter(ctx context.Context, writer io.Writer) context.Context {
	return context.WithValue(ctx, outputWriterKey, writer)
}

// PrettyLogger writes human-facing status lines for CLI commands. It is
// separate from the structured loggers, which may be silenced on a tty.
type PrettyLogger struct {
	writer io.Writer
	styles PrettyStyles
}

// PrettyStyles contains lipgloss styles for different line kinds
type PrettyStyles struct {
	Success lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
}

// DefaultPrettyStyles derives the styles from the active theme.
func DefaultPrettyStyles() PrettyStyles {
	t := theme.DefaultTheme
	return PrettyStyles{
		Success: t.Success,
		Info:    t.Info,
		Warning: t.Warning,
		Error:   t.Error,
		Key:     t.Muted,
		Value:   t.Bold,
	}
}

// NewPrettyLogger creates a pretty logger writing to the context's writer.
func NewPrettyLogger(ctx context.Context) *PrettyLogger {
	return &PrettyLogger{
		writer: GetWriter(ctx),
		styles: DefaultPrettyStyles(),
	}
}

// Success prints a message with a checkmark
func (p *PrettyLogger) Success(message string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.styles.Success.Render(theme.IconSuccess),
		p.styles.Success.Render(message))
}

// Info prints an informational message
func (p *PrettyLogger) Info(message string) {
	fmt.Fprintf(p.writer, "%s\n", p.styles.Info.Render(message))
}

// Warn prints a warning
func (p *PrettyLogger) Warn(message string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.styles.Warning.Render("!"),
		p.styles.Warning.Render(message))
}

// Error prints an error with an optional cause
func (p *PrettyLogger) Error(message string, err error) {
	fmt.Fprintf(p.writer, "%s %s",
		p.styles.Error.Render(theme.IconError),
		p.styles.Error.Render(message))
	if err != nil {
		fmt.Fprintf(p.writer, ": %s", err.Error())
	}
	fmt.Fprintln(p.writer)
}

// Field prints a key-value pair
func (p *PrettyLogger) Field(key string, value interface{}) {
	fmt.Fprintf(p.writer, "  %s: %s\n",
		p.styles.Key.Render(key),
		p.styles.Value.Render(fmt.Sprint(value)))
}

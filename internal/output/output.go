// Package output writes plain CLI status lines for rmkgen commands.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Writer writes status lines. Write errors are ignored; this is console
// output.
type Writer struct {
	out io.Writer
}

// New creates a Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints msg after icon, or indented when icon is empty.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status line.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success line.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success line.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning line.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error line.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// List prints each item indented under a bullet.
func (w *Writer) List(items []string) {
	for _, it := range items {
		_, _ = fmt.Fprintf(w.out, "   - %s\n", it)
	}
}

// Code prints content indented, surrounded by blank lines.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Table prints rows in aligned columns under header.
func (w *Writer) Table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, r := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Bytes prints an in-place download progress line. A negative total means
// the size is unknown.
func (w *Writer) Bytes(downloaded, total int64, msg string) {
	if total <= 0 {
		_, _ = fmt.Fprintf(w.out, "\r%s %s", FormatBytes(downloaded), msg)
		return
	}
	bar := renderProgressBar(downloaded, total, 30)
	_, _ = fmt.Fprintf(w.out, "\r[%s] %s/%s %s", bar, FormatBytes(downloaded), FormatBytes(total), msg)
	if downloaded >= total {
		_, _ = fmt.Fprintln(w.out)
	}
}

// FormatBytes formats n as B, KB or MB.
func FormatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func renderProgressBar(current, total int64, width int) string {
	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_StatusLines(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"status", func(w *Writer) { w.Status("📁", "Output: kb") }, "📁 Output: kb\n"},
		{"indented", func(w *Writer) { w.Status("", "detail") }, "   detail\n"},
		{"statusf", func(w *Writer) { w.Statusf("🔧", "%d files", 3) }, "🔧 3 files\n"},
		{"success", func(w *Writer) { w.Successf("Generated %s", "kb") }, "✅ Generated kb\n"},
		{"warning", func(w *Writer) { w.Warningf("%s exists", "kb") }, "⚠️  kb exists\n"},
		{"error", func(w *Writer) { w.Error("failed") }, "❌ failed\n"},
		{"list", func(w *Writer) { w.List([]string{"a", "b"}) }, "   - a\n   - b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.write(New(&buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_Code_IndentsLines(t *testing.T) {
	var buf bytes.Buffer

	New(&buf).Code("line1\nline2\n")

	assert.Equal(t, "\n  line1\n  line2\n\n", buf.String())
}

func TestWriter_Table_AlignsColumns(t *testing.T) {
	// Given: a header and two rows of different widths
	var buf bytes.Buffer

	// When: printing the table
	New(&buf).Table([]string{"TOKEN", "KEYCODE"}, [][]string{{"KC_A", "A"}, {"KC_ENTER", "Enter"}})

	// Then: columns line up
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "-----     -------", lines[1])
	assert.Equal(t, strings.Index(lines[0], "KEYCODE"), strings.Index(lines[3], "Enter"))
}

func TestWriter_Bytes(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Bytes(512, 1024, "template")
	assert.Contains(t, buf.String(), "512 B/1.0 KB template")
	assert.NotContains(t, buf.String(), "\n")

	w.Bytes(1024, 1024, "template")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	buf.Reset()
	w.Bytes(2048, -1, "template")
	assert.Equal(t, "\r2.0 KB template", buf.String())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "10 B", FormatBytes(10))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 MB", FormatBytes(2*1024*1024))
}

func TestRenderProgressBar_Clamps(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 10), renderProgressBar(20, 10, 10))
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), renderProgressBar(5, 10, 10))
}

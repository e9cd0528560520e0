package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/rmkgen/internal/output"
)

// TUIRenderer provides rich terminal UI using bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *generateModel
	tracker *ProgressTracker
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer.
// Returns an error if TUI initialization fails (e.g., non-TTY output).
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	tracker := NewProgressTracker()
	model := newGenerateModel(tracker, cfg.Title)
	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &TUIRenderer{
		cfg:     cfg,
		tracker: tracker,
		model:   model,
		done:    make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	ctx, r.cancel = context.WithCancel(ctx)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.SetStage(event.Stage)
	r.tracker.Update(event.Current, event.Total, event.Message)

	if r.program != nil {
		r.program.Send(progressUpdateMsg(event))
	}
}

// AddError implements Renderer.
func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.AddError(event)

	if r.program != nil {
		r.program.Send(errorMsg(event))
	}
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.SetStage(StageComplete)
	if stats.Stages == nil {
		stats.Stages = r.tracker.Timings()
	}

	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program, started := r.program, r.started
	r.mu.Unlock()

	if !started {
		return nil
	}

	program.Quit()
	// Wait with timeout to avoid hanging on unresponsive TUI
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

// Message types for bubbletea
type progressUpdateMsg ProgressEvent
type errorMsg ErrorEvent
type completeMsg CompletionStats
type tickMsg time.Time

// generateModel is the bubbletea model for a generation run.
type generateModel struct {
	tracker     *ProgressTracker
	width       int
	quitting    bool
	complete    bool
	stats       CompletionStats
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
	title       string
}

func newGenerateModel(tracker *ProgressTracker, title string) *generateModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	p := progress.New(
		progress.WithSolidFill(ColorLime),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &generateModel{
		tracker:     tracker,
		spinner:     s,
		progressBar: p,
		styles:      DefaultStyles(),
		width:       80,
		title:       title,
	}
}

// Init implements tea.Model.
func (m *generateModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *generateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = max(msg.Width-30, 20)

	case progressUpdateMsg, errorMsg:
		// Already recorded by the tracker.
		return m, nil

	case completeMsg:
		m.complete = true
		m.stats = CompletionStats(msg)
		return m, tea.Quit

	case tickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *generateModel) View() string {
	if m.quitting {
		return "Cancelled.\n"
	}
	if m.complete {
		return m.renderComplete()
	}

	contentWidth := max(m.width-4, 40)
	sections := []string{
		m.renderStages(),
		m.renderDivider(contentWidth),
		m.renderActivity(),
	}

	title := "rmkgen"
	if m.title != "" {
		title = "rmkgen • " + m.title
	}
	return m.wrapInPanel(title, strings.Join(sections, "\n"), contentWidth) + "\n" + m.renderStatusBar()
}

// renderStages renders the pipeline stage indicators.
func (m *generateModel) renderStages() string {
	current := m.tracker.Stats().Stage

	parts := make([]string, 0, len(pipelineStages))
	for _, s := range pipelineStages {
		var icon string
		var style lipgloss.Style
		switch {
		case s < current:
			icon, style = "●", m.styles.Success
		case s == current:
			icon, style = m.spinner.View(), m.styles.Active
		default:
			icon, style = "○", m.styles.Dim
		}
		parts = append(parts, style.Render(icon+" "+s.Short()))
	}
	return strings.Join(parts, m.styles.Dim.Render(" → "))
}

// renderActivity renders the current stage, with a byte progress bar while
// the template downloads.
func (m *generateModel) renderActivity() string {
	stats := m.tracker.Stats()
	label := stats.Message
	if label == "" {
		label = stats.Stage.String()
	}

	if stats.Total <= 0 {
		line := fmt.Sprintf("%s %s...", m.spinner.View(), label)
		if stats.Current > 0 {
			line += " " + m.styles.Label.Render(output.FormatBytes(stats.Current))
		}
		return line
	}

	bar := m.progressBar.ViewAs(stats.Progress)
	pct := m.styles.Active.Render(fmt.Sprintf("%3.0f%%", stats.Progress*100))
	count := fmt.Sprintf("%s / %s", output.FormatBytes(stats.Current), output.FormatBytes(stats.Total))
	if stats.Speed > 0 {
		count += fmt.Sprintf("  •  %s/s", output.FormatBytes(int64(stats.Speed)))
	}
	return fmt.Sprintf("%s\n%s  %s\n%s", label, bar, pct, m.styles.Label.Render(count))
}

func (m *generateModel) renderDivider(width int) string {
	return m.styles.Border.Render(strings.Repeat("─", width))
}

func (m *generateModel) wrapInPanel(title, content string, width int) string {
	panel := m.styles.Panel.Width(width)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(title),
		panel.Render(content),
	)
}

// renderStatusBar renders the bottom status bar with warnings/errors.
func (m *generateModel) renderStatusBar() string {
	stats := m.tracker.Stats()
	var parts []string
	if stats.WarnCount > 0 {
		parts = append(parts, m.styles.Warning.Render(fmt.Sprintf("⚠ %d warnings", stats.WarnCount)))
	}
	if stats.ErrorCount > 0 {
		parts = append(parts, m.styles.Error.Render(fmt.Sprintf("✗ %d errors", stats.ErrorCount)))
	}
	parts = append(parts, m.styles.Dim.Render("ctrl+c to cancel"))
	return strings.Join(parts, m.styles.Dim.Render("  │  "))
}

// renderComplete renders the completion summary.
func (m *generateModel) renderComplete() string {
	contentWidth := max(m.width-4, 40)
	s := m.stats

	var lines []string
	if s.CheckOnly {
		lines = append(lines, m.styles.Success.Render("✓ Check passed"))
	} else {
		lines = append(lines, m.styles.Success.Render("✓ Project generated"))
	}
	lines = append(lines, "")

	row := func(label, value string) {
		lines = append(lines, fmt.Sprintf("%s %s", m.styles.Label.Render(fmt.Sprintf("%-10s", label)), m.styles.Active.Render(value)))
	}
	row("Keyboard:", s.Keyboard)
	row("Layers:", fmt.Sprintf("%d", s.Layers))
	row("Keys:", fmt.Sprintf("%d", s.Keys))
	if !s.CheckOnly {
		row("Template:", s.Variant)
		row("Output:", s.Dest)
		row("Files:", fmt.Sprintf("%d", s.Files))
	}
	row("Duration:", formatDuration(s.Duration))

	if s.Errors > 0 || s.Warnings > 0 {
		lines = append(lines, "")
		if s.Errors > 0 {
			lines = append(lines, m.styles.Error.Render(fmt.Sprintf("✗ %d errors", s.Errors)))
		}
		if s.Warnings > 0 {
			lines = append(lines, m.styles.Warning.Render(fmt.Sprintf("⚠ %d warnings", s.Warnings)))
		}
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorLime)).
		Padding(1, 2).
		Width(contentWidth)
	return panel.Render(strings.Join(lines, "\n")) + "\n"
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

var _ Renderer = (*TUIRenderer)(nil)

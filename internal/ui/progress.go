package ui

import (
	"sync"
	"time"
)

// ProgressTracker manages progress state across stages.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu         sync.RWMutex
	stage      Stage
	current    int64
	total      int64
	message    string
	startTime  time.Time
	stageStart time.Time
	timings    map[Stage]time.Duration
	errors     []ErrorEvent
	warnings   []ErrorEvent

	// Download speed, bytes/sec, sampled every 250ms.
	lastCurrent   int64
	lastSpeedCalc time.Time
	speed         float64
}

// ProgressStats contains a snapshot of current progress.
type ProgressStats struct {
	Stage      Stage
	Current    int64
	Total      int64
	Progress   float64
	Message    string
	Speed      float64
	ErrorCount int
	WarnCount  int
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker() *ProgressTracker {
	now := time.Now()
	return &ProgressTracker{
		stage:         StageParse,
		startTime:     now,
		stageStart:    now,
		lastSpeedCalc: now,
		timings:       make(map[Stage]time.Duration),
	}
}

// SetStage transitions to a new stage, recording how long the previous one
// took. Setting the current stage again is a no-op.
func (p *ProgressTracker) SetStage(stage Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stage == p.stage {
		return
	}
	now := time.Now()
	p.timings[p.stage] += now.Sub(p.stageStart)
	p.stage = stage
	p.current, p.total = 0, 0
	p.message = ""
	p.stageStart = now
	p.lastCurrent = 0
	p.lastSpeedCalc = now
	p.speed = 0
}

// Update records progress within the current stage.
func (p *ProgressTracker) Update(current, total int64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current, p.total = current, total
	if message != "" {
		p.message = message
	}

	now := time.Now()
	if elapsed := now.Sub(p.lastSpeedCalc); elapsed >= 250*time.Millisecond {
		if delta := current - p.lastCurrent; delta > 0 {
			p.speed = float64(delta) / elapsed.Seconds()
		}
		p.lastCurrent = current
		p.lastSpeedCalc = now
	}
}

// AddError records an error or warning.
func (p *ProgressTracker) AddError(event ErrorEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.IsWarn {
		p.warnings = append(p.warnings, event)
	} else {
		p.errors = append(p.errors, event)
	}
}

// Progress returns current progress (0.0-1.0), 0 when the total is unknown.
func (p *ProgressTracker) Progress() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.progress()
}

func (p *ProgressTracker) progress() float64 {
	if p.total <= 0 {
		return 0
	}
	progress := float64(p.current) / float64(p.total)
	if progress > 1.0 {
		return 1.0
	}
	return progress
}

// Elapsed returns time since tracker creation.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return time.Since(p.startTime)
}

// Timings returns the duration of every finished stage.
func (p *ProgressTracker) Timings() map[Stage]time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[Stage]time.Duration, len(p.timings))
	for s, d := range p.timings {
		out[s] = d
	}
	return out
}

// Stats returns current statistics snapshot.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressStats{
		Stage:      p.stage,
		Current:    p.current,
		Total:      p.total,
		Progress:   p.progress(),
		Message:    p.message,
		Speed:      p.speed,
		ErrorCount: len(p.errors),
		WarnCount:  len(p.warnings),
	}
}

// Errors returns the list of recorded errors.
func (p *ProgressTracker) Errors() []ErrorEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]ErrorEvent, len(p.errors))
	copy(result, p.errors)
	return result
}

// Warnings returns the list of recorded warnings.
func (p *ProgressTracker) Warnings() []ErrorEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]ErrorEvent, len(p.warnings))
	copy(result, p.warnings)
	return result
}

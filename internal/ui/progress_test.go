package ui

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewProgressTracker(t *testing.T) {
	tracker := NewProgressTracker()

	stats := tracker.Stats()
	assert.Equal(t, StageParse, stats.Stage)
	assert.Zero(t, stats.Current)
	assert.Zero(t, stats.Total)
	assert.Zero(t, tracker.Progress())
}

func TestProgressTracker_SetStage_RecordsTimings(t *testing.T) {
	// Given: a tracker that spent some time parsing
	tracker := NewProgressTracker()
	time.Sleep(5 * time.Millisecond)

	// When: moving to the next stage
	tracker.SetStage(StageReconcile)

	// Then: the parse duration is recorded and progress resets
	timings := tracker.Timings()
	assert.GreaterOrEqual(t, timings[StageParse], 5*time.Millisecond)
	assert.NotContains(t, timings, StageReconcile)
	assert.Equal(t, StageReconcile, tracker.Stats().Stage)
}

func TestProgressTracker_SetStage_SameStageKeepsProgress(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.SetStage(StageTemplate)
	tracker.Update(50, 100, "Downloading template")

	tracker.SetStage(StageTemplate)

	stats := tracker.Stats()
	assert.Equal(t, int64(50), stats.Current)
	assert.Equal(t, "Downloading template", stats.Message)
}

func TestProgressTracker_Progress(t *testing.T) {
	tests := []struct {
		name           string
		current, total int64
		want           float64
	}{
		{"unknown total", 10, 0, 0},
		{"half", 50, 100, 0.5},
		{"clamped", 150, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewProgressTracker()
			tracker.Update(tt.current, tt.total, "")
			assert.InDelta(t, tt.want, tracker.Progress(), 1e-9)
		})
	}
}

func TestProgressTracker_ErrorsAndWarnings(t *testing.T) {
	tracker := NewProgressTracker()

	tracker.AddError(ErrorEvent{Err: errors.New("bad")})
	tracker.AddError(ErrorEvent{Err: errors.New("meh"), IsWarn: true})
	tracker.AddError(ErrorEvent{Err: errors.New("worse")})

	stats := tracker.Stats()
	assert.Equal(t, 2, stats.ErrorCount)
	assert.Equal(t, 1, stats.WarnCount)
	assert.Len(t, tracker.Errors(), 2)
	assert.Len(t, tracker.Warnings(), 1)
}

func TestProgressTracker_ConcurrentUpdates(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.SetStage(StageTemplate)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			tracker.Update(n*100, 1000, "")
			_ = tracker.Stats()
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, int64(1000), tracker.Stats().Total)
}

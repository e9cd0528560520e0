package ui

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/pipeline"
)

type recordingRenderer struct {
	mu       sync.Mutex
	progress []ProgressEvent
	errs     []ErrorEvent
}

func (r *recordingRenderer) Start(context.Context) error { return nil }
func (r *recordingRenderer) Stop() error                  { return nil }
func (r *recordingRenderer) Complete(CompletionStats)     {}

func (r *recordingRenderer) UpdateProgress(e ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, e)
}

func (r *recordingRenderer) AddError(e ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, e)
}

func TestObserver_MapsEveryPipelineStage(t *testing.T) {
	rec := &recordingRenderer{}
	o := NewObserver(rec)

	for _, s := range pipeline.Stages {
		o.StageStarted(s)
		o.StageFinished(s, nil)
	}

	got := make([]Stage, len(rec.progress))
	for i, e := range rec.progress {
		got[i] = e.Stage
	}
	assert.Equal(t, pipelineStages, got)
	assert.Empty(t, rec.errs)
}

func TestObserver_ForwardsStageFailure(t *testing.T) {
	rec := &recordingRenderer{}
	o := NewObserver(rec)
	err := errors.New(errors.ErrCodeUnknownKeycode, "unknown keycode", nil)

	o.StageFinished(pipeline.StageResolve, err)

	if assert.Len(t, rec.errs, 1) {
		assert.Equal(t, StageResolve, rec.errs[0].Stage)
		assert.Same(t, err, rec.errs[0].Err)
	}
}

func TestObserver_DownloadProgress(t *testing.T) {
	rec := &recordingRenderer{}
	progress := NewObserver(rec).Download()

	progress(512, 1024)
	progress(2048, -1)

	assert.Equal(t, []ProgressEvent{
		{Stage: StageTemplate, Current: 512, Total: 1024, Message: "Downloading template"},
		{Stage: StageTemplate, Current: 2048, Total: 0, Message: "Downloading template"},
	}, rec.progress)
}

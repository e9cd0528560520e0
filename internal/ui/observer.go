package ui

import (
	"github.com/Aman-CERP/rmkgen/internal/pipeline"
	"github.com/Aman-CERP/rmkgen/internal/template"
)

// Observer forwards pipeline stage events and template download progress to
// a Renderer.
type Observer struct {
	r Renderer
}

// NewObserver creates an Observer writing to r.
func NewObserver(r Renderer) *Observer {
	return &Observer{r: r}
}

// StageStarted implements pipeline.Observer.
func (o *Observer) StageStarted(stage pipeline.Stage) {
	s := fromPipeline(stage)
	o.r.UpdateProgress(ProgressEvent{Stage: s, Message: s.String()})
}

// StageFinished implements pipeline.Observer.
func (o *Observer) StageFinished(stage pipeline.Stage, err error) {
	if err != nil {
		o.r.AddError(ErrorEvent{Stage: fromPipeline(stage), Err: err})
	}
}

// Download returns a template.ProgressFunc reporting bytes received.
func (o *Observer) Download() template.ProgressFunc {
	return func(downloaded, total int64) {
		if total < 0 {
			total = 0
		}
		o.r.UpdateProgress(ProgressEvent{
			Stage:   StageTemplate,
			Current: downloaded,
			Total:   total,
			Message: "Downloading template",
		})
	}
}

func fromPipeline(stage pipeline.Stage) Stage {
	switch stage {
	case pipeline.StageParse:
		return StageParse
	case pipeline.StageReconcile:
		return StageReconcile
	case pipeline.StageResolve:
		return StageResolve
	case pipeline.StageEmit:
		return StageEmit
	case pipeline.StageTemplate:
		return StageTemplate
	case pipeline.StageMaterialize:
		return StageMaterialize
	}
	return StageComplete
}

var _ pipeline.Observer = (*Observer)(nil)

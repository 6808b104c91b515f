package pipeline

import "github.com/go-kit/log/level"

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		before := len(ctx.Errors)
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages;
		// each stage decides through Skip whether it can run.
		if n := len(ctx.Errors) - before; n > 0 {
			level.Debug(ctx.Logger).Log("msg", "stage reported errors", "stage", stageName(processor), "errors", n)
		}
	}
	return ctx
}

type named interface {
	Name() string
}

func stageName(p Processor) string {
	if n, ok := p.(named); ok {
		return n.Name()
	}
	return "stage"
}

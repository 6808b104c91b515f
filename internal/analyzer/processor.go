package analyzer

import (
	"github.com/go-kit/log/level"

	"github.com/funvibe/autotype/internal/constraints"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/pipeline"
	"github.com/funvibe/autotype/internal/symbols"
	"github.com/funvibe/autotype/internal/token"
	"github.com/funvibe/autotype/internal/typesystem"
)

// Processors returns the semantic stages in the order they must run.
func Processors() []pipeline.Processor {
	return []pipeline.Processor{
		&CollectorProcessor{},
		&BuilderProcessor{},
		&InferenceProcessor{},
		&LinkerProcessor{},
		&FinisherProcessor{},
	}
}

// guard turns an invariant violation raised by a stage into an F001
// diagnostic and halts the pipeline. Any other panic is not ours to hide.
func guard(ctx *pipeline.PipelineContext) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*InvariantError)
	if !ok {
		panic(r)
	}
	ctx.AddError(diagnostics.NewError(diagnostics.ErrF001, token.Token{}, ie.Error()))
	ctx.Halted = true
}

// CollectorProcessor registers the classes and links the hierarchy.
type CollectorProcessor struct{}

func (cp *CollectorProcessor) Name() string { return "collector" }

func (cp *CollectorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Skip() {
		return ctx
	}
	defer guard(ctx)

	ctx.Types = typesystem.NewContext()
	ctx.Scope = symbols.NewScope()
	c := &collector{reporter: newReporter(ctx), program: ctx.AstRoot}
	if !c.run() {
		level.Debug(ctx.Logger).Log("msg", "hierarchy is not a tree, stopping")
		ctx.Halted = true
	}
	return ctx
}

// BuilderProcessor defines the features of every class.
type BuilderProcessor struct{}

func (bp *BuilderProcessor) Name() string { return "builder" }

func (bp *BuilderProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Skip() || ctx.Types == nil {
		return ctx
	}
	defer guard(ctx)

	b := &builder{reporter: newReporter(ctx), program: ctx.AstRoot, requireMain: ctx.Settings.MainRequired()}
	b.run()
	return ctx
}

// InferenceProcessor gathers every constraint once and then narrows the
// placeholders until a pass changes nothing.
type InferenceProcessor struct{}

func (ip *InferenceProcessor) Name() string { return "inference" }

func (ip *InferenceProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Skip() || ctx.Types == nil {
		return ctx
	}
	defer guard(ctx)

	ctx.Graph = constraints.New()
	r := newReporter(ctx)
	w := newWalker(r, ctx.Scope, ctx.Graph)

	ctx.Types.BeginEpoch()
	w.pass(modeGather, ctx.AstRoot)
	level.Debug(ctx.Logger).Log("msg", "gathered", "edges", ctx.Graph.Len(), "errors", r.added)
	if r.added > 0 {
		return ctx
	}

	limit := ctx.Settings.MaxInferencePasses
	if limit == 0 {
		limit = ctx.Types.NumTypes()
	}
	ctx.Passes = 0
	for ctx.Passes < limit {
		before := r.added
		ctx.Types.BeginEpoch()
		changed := w.pass(modeInfer, ctx.AstRoot)
		ctx.Passes++
		level.Debug(ctx.Logger).Log("msg", "inference pass", "pass", ctx.Passes, "changed", changed)
		if !changed || r.added > before {
			break
		}
	}
	return ctx
}

// LinkerProcessor settles the placeholder graph and links the program.
type LinkerProcessor struct{}

func (lp *LinkerProcessor) Name() string { return "linker" }

func (lp *LinkerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Skip() || ctx.Graph == nil {
		return ctx
	}
	defer guard(ctx)

	l := newLinker(newReporter(ctx))
	res := l.settle(ctx.Graph)
	level.Debug(ctx.Logger).Log("msg", "settled", "narrowed", res.Narrowed,
		"conflicts", len(res.Conflicts), "ambiguous", len(res.Ambiguous))

	l.bindOverrides(ctx.AstRoot)
	if l.pass(ctx.AstRoot) && ctx.Settings.LinkerPasses > 1 {
		level.Debug(ctx.Logger).Log("msg", "linker filtered candidates, running second pass")
		l.pass(ctx.AstRoot)
	}
	return ctx
}

// FinisherProcessor resolves every list to a single type.
type FinisherProcessor struct{}

func (fp *FinisherProcessor) Name() string { return "finisher" }

func (fp *FinisherProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Skip() || ctx.Graph == nil {
		return ctx
	}
	defer guard(ctx)

	newFinisher(ctx).run(ctx.AstRoot)
	return ctx
}

package pipeline

import (
	"github.com/go-kit/log"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/config"
	"github.com/funvibe/autotype/internal/constraints"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/symbols"
	"github.com/funvibe/autotype/internal/token"
	"github.com/funvibe/autotype/internal/typesystem"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Inference is one declaration written as AUTO_TYPE together with the
// type it was resolved to.
type Inference struct {
	Token   token.Token
	Class   string
	Feature string // enclosing method or attribute, empty for the attribute itself
	Name    string
	Kind    string // attribute, parameter, return, local, branch
	Type    string
}

// PipelineContext is the state shared by every stage for one source file.
type PipelineContext struct {
	SourceCode string
	FilePath   string
	Settings   config.Settings
	Logger     log.Logger

	Tokens  []token.Token
	AstRoot *ast.Program

	Types *typesystem.Context
	Scope *symbols.Scope
	Graph *constraints.Graph

	// Passes is the number of inference passes run after gathering.
	Passes   int
	Inferred []Inference

	Errors []*diagnostics.DiagnosticError
	// Halted is set when a stage found the program state unusable; later
	// stages do nothing.
	Halted bool
}

// NewContext returns a context with default settings and a no-op logger.
func NewContext(source, path string) *PipelineContext {
	return &PipelineContext{
		SourceCode: source,
		FilePath:   path,
		Settings:   config.DefaultSettings(),
		Logger:     log.NewNopLogger(),
	}
}

// AddError records err, filling in the file path.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

// HasErrors reports whether any error of the given phase was recorded.
func (ctx *PipelineContext) HasErrors(phase diagnostics.Phase) bool {
	for _, err := range ctx.Errors {
		if err.Phase() == phase {
			return true
		}
	}
	return false
}

// Skip reports whether semantic stages should not run: the parse failed,
// the hierarchy was never built or a stage halted.
func (ctx *PipelineContext) Skip() bool {
	return ctx.Halted || ctx.AstRoot == nil || ctx.HasErrors(diagnostics.PhaseParse)
}

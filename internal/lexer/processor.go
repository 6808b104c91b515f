package lexer

import (
	"fmt"

	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/pipeline"
	"github.com/funvibe/autotype/internal/token"
)

// LexerProcessor turns ctx.SourceCode into ctx.Tokens. ILLEGAL tokens are
// reported as P001 and left out of the stream.
type LexerProcessor struct{}

func (lp *LexerProcessor) Name() string { return "lexer" }

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.SourceCode)
	ctx.Tokens = ctx.Tokens[:0]
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, tok, fmt.Sprint(tok.Literal)))
			continue
		}
		ctx.Tokens = append(ctx.Tokens, tok)
		if tok.Type == token.EOF {
			return ctx
		}
	}
}

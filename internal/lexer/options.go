package lexer

import (
	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil — тогда ошибки игнорируем (но продолжаем сканировать)

	// MergeLineComments joins `//` comments that sit alone on consecutive
	// lines into a single block.
	MergeLineComments bool

	// NestedBlockComments lets `/*` open a nested level inside a block comment.
	// Java does not nest; the option exists for languages that do.
	NestedBlockComments bool
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter == nil {
		return
	}
	diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
}

package lexer

import (
	"cmtcode/internal/comment"
	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

// Lexer walks a Java-like source file and collects its comments. It only
// tracks the boundaries of comments and literals; the code itself is skipped.
type Lexer struct {
	file *source.File
	sc   scanner
	opts Options
	out  []comment.Block
	// последний `//` комментарий, стоящий один на строке (кандидат на склейку)
	lastLone int
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:     file,
		sc:       newScanner(file),
		opts:     opts,
		lastLone: -1,
	}
}

// Extract returns every comment of file in source order.
func Extract(file *source.File, opts Options) []comment.Block {
	return New(file, opts).Run()
}

// Run scans the whole file. It may be called once per Lexer.
func (lx *Lexer) Run() []comment.Block {
	for !lx.sc.eof() {
		switch {
		case lx.sc.has("//"):
			lx.scanLineComment()
		case lx.sc.has("/*"):
			lx.scanBlockComment()
		case lx.sc.has(`"""`):
			lx.scanTextBlock()
		case lx.sc.has(`"`), lx.sc.has("'"):
			lx.scanQuoted(lx.sc.peek(0))
		default:
			switch lx.sc.peek(0) {
			case ' ', '\t', '\n', '\r':
			default:
				// код между комментариями разрывает цепочку `//`
				lx.lastLone = -1
			}
			lx.sc.advance(1)
		}
	}
	return lx.out
}

func (lx *Lexer) scanLineComment() {
	start := lx.sc.off
	lx.sc.advance(2)
	lx.sc.skipLine()
	lx.emitLine(lx.sc.spanFrom(start))
}

// scanBlockComment consumes `/*...*/` or `/**...*/`. Without a closing
// delimiter the comment runs to the end of the file.
func (lx *Lexer) scanBlockComment() {
	start := lx.sc.off
	lx.sc.advance(2)
	kind := comment.KindBlock
	// "/**/" — пустой обычный комментарий, не doc
	if lx.sc.has("*") && !lx.sc.has("*/") && lx.sc.remaining() > 1 {
		kind = comment.KindDoc
	}
	depth := 1
	for depth > 0 && !lx.sc.eof() {
		switch {
		case lx.opts.NestedBlockComments && lx.sc.has("/*"):
			lx.sc.advance(2)
			depth++
		case lx.sc.has("*/"):
			lx.sc.advance(2)
			depth--
		default:
			lx.sc.advance(1)
		}
	}
	sp := lx.sc.spanFrom(start)
	if depth > 0 {
		lx.errLex(diag.LexUnterminatedBlockComment, sp, "unterminated block comment")
	}
	lx.emit(kind, sp)
	lx.lastLone = -1
}

// scanTextBlock skips a `"""` text block, which may span lines.
func (lx *Lexer) scanTextBlock() {
	start := lx.sc.off
	lx.lastLone = -1
	lx.sc.advance(3)
	for !lx.sc.eof() {
		switch {
		case lx.sc.has("\\"):
			lx.sc.advance(2)
		case lx.sc.has(`"""`):
			lx.sc.advance(3)
			return
		default:
			lx.sc.advance(1)
		}
	}
	lx.errLex(diag.LexUnterminatedTextBlock, lx.sc.spanFrom(start), "unterminated text block")
}

// scanQuoted skips a string or char literal. These never span lines, so an
// unterminated one stops at the line break.
func (lx *Lexer) scanQuoted(quote byte) {
	lx.lastLone = -1
	lx.sc.advance(1)
	for !lx.sc.eof() {
		switch c := lx.sc.peek(0); {
		case c == '\\' && !isLineBreak(lx.sc.peek(1)):
			lx.sc.advance(2)
		case c == quote:
			lx.sc.advance(1)
			return
		case isLineBreak(c):
			return
		default:
			lx.sc.advance(1)
		}
	}
}

func (lx *Lexer) emit(kind comment.Kind, sp source.Span) {
	startLine, endLine := lx.file.LineRange(sp)
	lx.out = append(lx.out, comment.Block{
		Kind:      kind,
		Text:      string(lx.file.Content[sp.Start:sp.End]),
		StartLine: startLine,
		EndLine:   endLine,
		Span:      sp,
	})
}

// emitLine records a `//` comment, merging it into the previous one when
// both sit alone on adjacent lines and merging is enabled.
func (lx *Lexer) emitLine(sp source.Span) {
	lone := lx.aloneOnLine(sp.Start)
	if lx.opts.MergeLineComments && lone && lx.lastLone >= 0 {
		prev := &lx.out[lx.lastLone]
		startLine, _ := lx.file.LineRange(sp)
		if prev.EndLine+1 == startLine {
			merged := prev.Span.Cover(sp)
			prev.Span = merged
			prev.Text = string(lx.file.Content[merged.Start:merged.End])
			prev.EndLine = startLine
			return
		}
	}
	lx.emit(comment.KindLine, sp)
	if lone {
		lx.lastLone = len(lx.out) - 1
	} else {
		lx.lastLone = -1
	}
}

// aloneOnLine reports whether only blanks precede off on its line.
func (lx *Lexer) aloneOnLine(off uint32) bool {
	for i := int(off) - 1; i >= 0; i-- {
		switch lx.file.Content[i] {
		case ' ', '\t':
			continue
		case '\n', '\r':
			return true
		default:
			return false
		}
	}
	return true
}

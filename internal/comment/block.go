package comment

import "cmtcode/internal/source"

// Kind classifies the lexical form of a comment.
type Kind uint8

const (
	// KindLine is a `//` comment running to the end of the line.
	KindLine Kind = iota
	// KindBlock is a `/* ... */` comment.
	KindBlock
	// KindDoc is a `/** ... */` documentation comment.
	KindDoc
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindBlock:
		return "block"
	case KindDoc:
		return "doc"
	}
	return "unknown"
}

// Block is one contiguous comment extracted from a source file.
// Text keeps the delimiters exactly as they appear in the source.
type Block struct {
	Kind      Kind
	Text      string
	StartLine uint32 // 1-based
	EndLine   uint32 // 1-based, включительно
	Span      source.Span
}

// SingleLine reports whether the block starts and ends on the same line.
func (b Block) SingleLine() bool {
	return b.StartLine == b.EndLine
}

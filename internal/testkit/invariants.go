package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"cmtcode/internal/comment"
	"cmtcode/internal/source"
)

// CheckBlockInvariants runs a minimal set of invariants on extracted comments:
// 1) every block span is non-empty, points at sf and stays within its content
// 2) Text is exactly the source under the span and opens with the delimiter of its Kind
// 3) StartLine/EndLine agree with the line index
// 4) blocks come in source order and never overlap
func CheckBlockInvariants(sf *source.File, blocks []comment.Block) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var prevEnd uint32
	for i, b := range blocks {
		sp := b.Span
		// 1) span sanity
		if sp.End <= sp.Start {
			return fmt.Errorf("block %d: empty span %v", i, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("block %d: span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End > lenContent {
			return fmt.Errorf("block %d: span end beyond content: %d > %d", i, sp.End, lenContent)
		}

		// 2) text and delimiter
		if b.Text != string(sf.Content[sp.Start:sp.End]) {
			return fmt.Errorf("block %d: text does not match source under %v", i, sp)
		}
		if prefix := openingDelimiter(b.Kind); !strings.HasPrefix(b.Text, prefix) {
			return fmt.Errorf("block %d: %s comment does not start with %q: %q", i, b.Kind, prefix, b.Text)
		}

		// 3) lines
		start, end := sf.LineRange(sp)
		if b.StartLine != start || b.EndLine != end {
			return fmt.Errorf("block %d: lines %d-%d, line index says %d-%d", i, b.StartLine, b.EndLine, start, end)
		}

		// 4) order
		if i > 0 && sp.Start < prevEnd {
			return fmt.Errorf("block %d: span %v overlaps previous block ending at %d", i, sp, prevEnd)
		}
		prevEnd = sp.End
	}
	return nil
}

func openingDelimiter(k comment.Kind) string {
	switch k {
	case comment.KindLine:
		return "//"
	case comment.KindDoc:
		return "/**"
	default:
		return "/*"
	}
}

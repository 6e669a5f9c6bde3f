package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"cmtcode/internal/source"
)

// scanner — позиция в содержимом файла. Все методы безопасны на EOF:
// чтение за концом даёт 0, сдвиг упирается в конец.
type scanner struct {
	src  []byte
	file source.FileID
	off  uint32
	end  uint32 // exclusive
}

func newScanner(f *source.File) scanner {
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return scanner{src: f.Content, file: f.ID, end: end}
}

func (s *scanner) eof() bool { return s.off >= s.end }

// remaining is the number of unread bytes.
func (s *scanner) remaining() uint32 { return s.end - min(s.off, s.end) }

// peek returns the byte n positions ahead of the cursor, 0 past the end.
func (s *scanner) peek(n uint32) byte {
	if n >= s.remaining() {
		return 0
	}
	return s.src[s.off+n]
}

// has reports whether the unread input starts with prefix.
func (s *scanner) has(prefix string) bool {
	n := uint32(len(prefix)) //nolint:gosec // prefixes are short literals
	if n > s.remaining() {
		return false
	}
	return string(s.src[s.off:s.off+n]) == prefix
}

func (s *scanner) advance(n uint32) {
	s.off += min(n, s.remaining())
}

// skipLine moves to the next '\n' or '\r' without consuming it.
func (s *scanner) skipLine() {
	for !s.eof() && !isLineBreak(s.src[s.off]) {
		s.off++
	}
}

func (s *scanner) spanFrom(start uint32) source.Span {
	return source.Span{File: s.file, Start: start, End: s.off}
}

func isLineBreak(b byte) bool { return b == '\n' || b == '\r' }

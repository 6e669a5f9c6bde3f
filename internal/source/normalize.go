package source

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Normalize turns raw file bytes into UTF-8 with `\n` line breaks and
// reports what it changed. UTF-16 is recognised only by its byte order mark.
func Normalize(raw []byte) ([]byte, FileFlags, error) {
	var flags FileFlags
	content := raw

	if bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE) {
		// UseBOM: порядок байт берём из BOM, сам BOM выкидываем
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, content)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to decode UTF-16: %w", err)
		}
		content = out
		flags |= FileDecodedUTF16 | FileHadBOM
	}
	if rest, ok := bytes.CutPrefix(content, bomUTF8); ok {
		content = rest
		flags |= FileHadBOM
	}
	// одиночный \r остаётся как есть: это тоже перевод строки для индекса
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return content, flags, nil
}

// buildLineIndex records the offset of every line break. After CRLF
// normalisation a remaining '\r' is a lone carriage return and ends a line too.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b == '\n' || b == '\r' {
			out = append(out, mustU32(i))
		}
	}
	return out
}

package source

import (
	"fmt"
	"strings"
)

// FileID identifies a file within one FileSet.
type FileID uint32

// FileFlags record how a file's bytes were produced on load.
type FileFlags uint8

const (
	// FileVirtual: content came from memory (stdin, tests), not from disk.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileDecodedUTF16: content was transcoded from UTF-16; it is never
	// written back.
	FileDecodedUTF16
)

var flagNames = []struct {
	flag FileFlags
	name string
}{
	{FileVirtual, "virtual"},
	{FileHadBOM, "bom"},
	{FileNormalizedCRLF, "crlf"},
	{FileDecodedUTF16, "utf16"},
}

// Has reports whether every bit of x is set.
func (f FileFlags) Has(x FileFlags) bool {
	return f&x == x
}

func (f FileFlags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// File is one loaded source file. Content is always UTF-8 with `\n` line
// breaks; Flags say what was undone to get there.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte // sha256 of Content
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Span is a half-open byte range [Start, End) of one file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Len() uint32 { return s.End - s.Start }

// Contains reports whether off falls inside s.
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off < s.End
}

// Cover returns the smallest span holding both s and other. Spans of
// different files are not merged; s is returned unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	return Span{File: s.File, Start: min(s.Start, other.Start), End: max(s.End, other.End)}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

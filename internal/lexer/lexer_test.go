package lexer

import (
	"testing"

	"cmtcode/internal/comment"
	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

func extract(t *testing.T, src string, opts Options) ([]comment.Block, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("Test.java", []byte(src))
	bag := diag.NewBag(0)
	if opts.Reporter == nil {
		opts.Reporter = diag.BagReporter{Bag: bag}
	}
	return Extract(fs.Get(id), opts), bag
}

type wantBlock struct {
	kind       comment.Kind
	text       string
	start, end uint32
}

func checkBlocks(t *testing.T, got []comment.Block, want []wantBlock) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d blocks, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Kind != w.kind || g.Text != w.text || g.StartLine != w.start || g.EndLine != w.end {
			t.Errorf("block %d = {%s %q %d..%d}, want {%s %q %d..%d}",
				i, g.Kind, g.Text, g.StartLine, g.EndLine, w.kind, w.text, w.start, w.end)
		}
	}
}

func TestExtractCommentKinds(t *testing.T) {
	src := "package a;\n" +
		"/**\n * Docs.\n */\n" +
		"class A { // trailing\n" +
		"  /* block */ int x;\n" +
		"  /**/ int y;\n" +
		"}\n"
	got, bag := extract(t, src, Options{})
	checkBlocks(t, got, []wantBlock{
		{comment.KindDoc, "/**\n * Docs.\n */", 2, 4},
		{comment.KindLine, "// trailing", 5, 5},
		{comment.KindBlock, "/* block */", 6, 6},
		{comment.KindBlock, "/**/", 7, 7},
	})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
}

func TestExtractSpansMatchText(t *testing.T) {
	src := "int a; // one\n/* two\n   lines */\n"
	fs := source.NewFileSet()
	id := fs.AddVirtual("Test.java", []byte(src))
	for _, b := range Extract(fs.Get(id), Options{}) {
		if got := src[b.Span.Start:b.Span.End]; got != b.Text {
			t.Errorf("span text %q != block text %q", got, b.Text)
		}
		if b.Span.File != id {
			t.Errorf("span file = %d, want %d", b.Span.File, id)
		}
	}
}

func TestExtractSkipsLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []wantBlock
	}{
		{
			name: "url in string",
			src:  "String u = \"http://example.com\"; // real\n",
			want: []wantBlock{{comment.KindLine, "// real", 1, 1}},
		},
		{
			name: "block opener in string",
			src:  "String s = \"/* not a comment */\";\n",
			want: nil,
		},
		{
			name: "escaped quote",
			src:  "String s = \"a\\\" // still string\"; /* c */\n",
			want: []wantBlock{{comment.KindBlock, "/* c */", 1, 1}},
		},
		{
			name: "char literal",
			src:  "char c = '/'; char q = '\\''; // c\n",
			want: []wantBlock{{comment.KindLine, "// c", 1, 1}},
		},
		{
			name: "text block",
			src:  "String t = \"\"\"\n  // inside\n  /* also */\n  \"\"\";\n// after\n",
			want: []wantBlock{{comment.KindLine, "// after", 5, 5}},
		},
		{
			name: "unterminated string ends at line break",
			src:  "String s = \"oops\n// next\n",
			want: []wantBlock{{comment.KindLine, "// next", 2, 2}},
		},
		{
			name: "division is not a comment",
			src:  "int x = a / b; // half\n",
			want: []wantBlock{{comment.KindLine, "// half", 1, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := extract(t, tt.src, Options{})
			checkBlocks(t, got, tt.want)
		})
	}
}

func TestExtractUnterminatedBlockComment(t *testing.T) {
	got, bag := extract(t, "int a;\n/* never\nclosed", Options{})
	checkBlocks(t, got, []wantBlock{{comment.KindBlock, "/* never\nclosed", 2, 3}})
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.LexUnterminatedBlockComment || d.Severity != diag.SevError {
		t.Fatalf("unexpected diagnostic %s %s", d.Severity, d.Code.ID())
	}
	if d.Primary.Start != 7 || d.Primary.End != 22 {
		t.Fatalf("primary span = %s", d.Primary)
	}
}

func TestExtractUnterminatedTextBlock(t *testing.T) {
	got, bag := extract(t, "String t = \"\"\"\n// swallowed\n", Options{})
	if len(got) != 0 {
		t.Fatalf("text block content must not produce comments: %+v", got)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnterminatedTextBlock {
		t.Fatalf("expected unterminated text block diagnostic, got %d items", bag.Len())
	}
}

func TestExtractWithoutReporter(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("Test.java", []byte("/* open"))
	got := Extract(fs.Get(id), Options{})
	if len(got) != 1 {
		t.Fatalf("expected the truncated comment, got %d blocks", len(got))
	}
}

func TestExtractLineCommentsSeparateByDefault(t *testing.T) {
	src := "// int a = 1;\n// int b = 2;\n"
	got, _ := extract(t, src, Options{})
	checkBlocks(t, got, []wantBlock{
		{comment.KindLine, "// int a = 1;", 1, 1},
		{comment.KindLine, "// int b = 2;", 2, 2},
	})
}

func TestExtractMergeLineComments(t *testing.T) {
	src := "  // first\n" +
		"  // second\n" +
		"\n" +
		"// third\n" +
		"int x; // trailing\n" +
		"// fourth\n" +
		"foo();\n" +
		"// fifth\n"
	got, _ := extract(t, src, Options{MergeLineComments: true})
	checkBlocks(t, got, []wantBlock{
		{comment.KindLine, "// first\n  // second", 1, 2},
		{comment.KindLine, "// third", 4, 4},
		{comment.KindLine, "// trailing", 5, 5},
		{comment.KindLine, "// fourth", 6, 6},
		{comment.KindLine, "// fifth", 8, 8},
	})
}

func TestExtractNestedBlockComments(t *testing.T) {
	src := "/* outer /* inner */ still outer */ int x;"

	flat, _ := extract(t, src, Options{})
	checkBlocks(t, flat, []wantBlock{{comment.KindBlock, "/* outer /* inner */", 1, 1}})

	nested, _ := extract(t, src, Options{NestedBlockComments: true})
	checkBlocks(t, nested, []wantBlock{{comment.KindBlock, "/* outer /* inner */ still outer */", 1, 1}})
}

func TestExtractCarriageReturnLines(t *testing.T) {
	got, _ := extract(t, "// a\r/* b\r c */", Options{})
	checkBlocks(t, got, []wantBlock{
		{comment.KindLine, "// a", 1, 1},
		{comment.KindBlock, "/* b\r c */", 2, 3},
	})
}

package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

var javaSeeds = []string{
	"",
	"class A {}\n",
	"class A {\n    // int x = 5;\n    // This is a great helper method.\n    int y = 1;\n}\n",
	"/**\n * Javadoc with code: int x = 1;\n */\nclass A {}\n",
	"/* if (a && b) {\n   run();\n} */\n",
	"String s = \"// not a comment\"; char c = '/'; // tail\n",
	"String t = \"\"\"\n  /* in text block */\n  \"\"\";\n",
	"int a; /* unterminated",
	"String u = \"\"\"\nnever closed",
	"// cmt int kept = 1;\n",
	"class A {\r\n  // x++;\r\n}\r\n",
	"\uFEFF// bom first();\n",
	"/**/ /***/ //\n",
	"// a();\n// b();\n// c();\n",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range javaSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.java файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".java" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		return append([]byte(nil), src[:maxSeedBytes]...)
	}
	return src
}

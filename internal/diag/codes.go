package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические: границы комментариев и литералов
	LexInfo                     Code = 1000
	LexUnterminatedBlockComment Code = 1001
	LexUnterminatedTextBlock    Code = 1002

	// Находки классификатора
	CmtInfo             Code = 2000
	CmtCommentedOutCode Code = 2001

	// Ввод-вывод
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Конфигурация
	CfgInfo            Code = 5000
	CfgInvalidManifest Code = 5001

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexUnterminatedTextBlock:    "Unterminated text block",
		CmtInfo:                     "Comment information",
		CmtCommentedOutCode:         "Commented-out code",
		IOInfo:                      "I/O information",
		IOLoadFileError:             "I/O load file error",
		IOCacheError:                "Result cache unavailable",
		CfgInfo:                     "Configuration information",
		CfgInvalidManifest:          "Invalid cmtcode.toml",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode maps an ID such as "CMT2001" back to its Code.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}

// Global reports whether diagnostics with this code describe the whole run
// rather than a place in a file. Their Primary span is meaningless.
func (c Code) Global() bool {
	return c >= ObsInfo && c < 7000
}

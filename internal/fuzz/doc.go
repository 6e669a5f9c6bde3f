// Package fuzztests houses Go fuzz harnesses that exercise the comment
// pipeline (source -> lexer -> classifier). Its goal is to smoke test
// robustness and guard against panics or broken spans on arbitrary inputs.
//
// Назначение: загружать байты в FileSet, извлекать комментарии и
// классифицировать их, проверяя инварианты блоков.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/classify,
// internal/diag, internal/testkit.

package fuzztests

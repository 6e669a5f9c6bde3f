package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"cmtcode/internal/config"
	"cmtcode/internal/diag"
	"cmtcode/internal/source"
	"cmtcode/internal/trace"
)

// ListFiles expands paths into the sorted list of files to check.
// Directories are walked recursively: hidden directories are skipped and
// files must pass Settings.Includes. Files named explicitly are always kept.
func ListFiles(paths []string, settings config.Settings) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			// несуществующий путь превращается в IO-диагностику при загрузке
			add(root)
			continue
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if settings.Includes(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckDir checks every matching file under dir. Paths in the report are
// relative to dir.
func CheckDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	if opts.Settings.Root == "" {
		opts.Settings.Root = dir
	}
	return CheckPaths(ctx, []string{dir}, opts)
}

// CheckPaths checks files and directories in parallel. A file that cannot be
// read does not abort the run: it is reported as IO4001 on a placeholder.
// The returned error is non-nil only for invalid settings, a failed walk or
// cancellation.
func CheckPaths(ctx context.Context, paths []string, opts Options) (*Result, error) {
	files, err := ListFiles(paths, opts.Settings)
	if err != nil {
		return nil, err
	}

	fileSet := source.NewFileSetWithBase(opts.Settings.Root)
	result := &Result{FileSet: fileSet}
	if len(files) == 0 {
		result.collect()
		result.Timings = opts.Timer.Report()
		return result, nil
	}

	ctx, span := trace.Start(ctx, trace.ScopeRun, "check")
	span.Attr("files", strconv.Itoa(len(files)))
	defer span.End("")

	c, err := newChecker(ctx, fileSet, opts)
	if err != nil {
		return nil, err
	}

	// Предзагружаем все файлы: FileSet не должен расти, пока его читают воркеры
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	stopLoad := opts.Timer.Start("load")
	for i, path := range files {
		opts.Progress.emit(Event{File: path, Stage: StageLoad, Status: StatusQueued})
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			id = fileSet.AddVirtual(path, nil)
		}
		fileIDs[i] = id
	}
	stopLoad(strconv.Itoa(len(files)) + " files")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[i]; failed {
				bag := diag.NewBag(opts.MaxDiagnostics)
				diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError,
					source.Span{File: fileIDs[i]}, "failed to load file: "+loadErr.Error()).Emit()
				results[i] = FileResult{Path: path, FileID: fileIDs[i], Bag: bag}
				opts.Progress.emit(Event{File: path, Stage: StageLoad, Status: StatusError})
				return nil
			}

			res := c.checkFile(path, fileIDs[i])
			results[i] = res
			status := StatusDone
			if res.Cached {
				status = StatusCached
			}
			opts.Progress.emit(Event{File: path, Stage: StageClassify, Status: status, Findings: res.Findings()})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Files = results
	result.collect()
	result.Timings = opts.Timer.Report()
	return result, nil
}

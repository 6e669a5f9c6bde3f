package driver

import (
	"context"
	"fmt"
	"strconv"

	"cmtcode/internal/classify"
	"cmtcode/internal/comment"
	"cmtcode/internal/diag"
	"cmtcode/internal/lexer"
	"cmtcode/internal/source"
	"cmtcode/internal/trace"
)

// checker runs the per-file pipeline: extract comments, classify each one,
// report the flagged ones. One checker serves all workers of a run; it holds
// no mutable state besides what Options carries.
type checker struct {
	fs          *source.FileSet
	cls         *classify.Classifier
	opts        Options
	fingerprint string
	tracer      trace.Tracer
	parent      uint64
}

func newChecker(ctx context.Context, fs *source.FileSet, opts Options) (*checker, error) {
	if err := opts.Settings.Classify.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &checker{
		fs:          fs,
		cls:         classify.New(opts.Settings.Classify),
		opts:        opts,
		fingerprint: opts.Settings.Fingerprint(),
		tracer:      trace.FromContext(ctx),
		parent:      trace.ParentOf(ctx),
	}, nil
}

func (c *checker) checkFile(path string, id source.FileID) (res FileResult) {
	file := c.fs.Get(id)
	bag := diag.NewBag(c.opts.MaxDiagnostics)
	res = FileResult{Path: path, FileID: id, Loaded: true, Bag: bag}
	reporter := diag.BagReporter{Bag: bag}

	span := trace.Begin(c.tracer, trace.ScopeFile, "file", c.parent).Attr("path", path)
	defer func() {
		detail := "checked"
		if res.Cached {
			detail = "cached"
		}
		span.Attr("comments", strconv.Itoa(res.Comments)).
			Attr("findings", strconv.Itoa(res.Findings())).
			End(detail)
	}()

	key := CacheKey(file.Hash, c.fingerprint)
	if c.opts.Cache != nil {
		var payload DiskPayload
		hit, err := c.opts.Cache.Get(key, &payload)
		if err != nil {
			diag.ReportWarning(reporter, diag.IOCacheError, source.Span{File: id},
				fmt.Sprintf("result cache read failed: %v", err)).Emit()
		} else if hit {
			if verdicts, lexDiags, ok := fromDiskPayload(&payload, file); ok {
				for _, d := range lexDiags {
					bag.Add(d)
				}
				c.finish(file, &res, verdicts, reporter, span.ID())
				res.Cached = true
				return res
			}
		}
	}

	c.opts.Progress.emit(Event{File: path, Stage: StageExtract, Status: StatusWorking})
	var blocks []comment.Block
	before := bag.Len()
	c.opts.Timer.Measure("extract", func() {
		blocks = lexer.Extract(file, lexer.Options{
			Reporter:          reporter,
			MergeLineComments: c.opts.Settings.MergeLineComments,
		})
	})
	lexDiags := append([]*diag.Diagnostic(nil), bag.Items()[before:]...)

	c.opts.Progress.emit(Event{File: path, Stage: StageClassify, Status: StatusWorking})
	verdicts := make([]Verdict, len(blocks))
	c.opts.Timer.Measure("classify", func() {
		for i, b := range blocks {
			verdicts[i] = Verdict{Block: b, Result: c.cls.Classify(b)}
		}
	})

	if c.opts.Cache != nil {
		if err := c.opts.Cache.Put(key, toDiskPayload(path, verdicts, lexDiags)); err != nil {
			diag.ReportWarning(reporter, diag.IOCacheError, source.Span{File: id},
				fmt.Sprintf("result cache write failed: %v", err)).Emit()
		}
	}

	c.finish(file, &res, verdicts, reporter, span.ID())
	return res
}

// finish reports flagged verdicts and fills res.
func (c *checker) finish(file *source.File, res *FileResult, verdicts []Verdict, reporter diag.Reporter, parent uint64) {
	res.Comments = len(verdicts)
	for _, v := range verdicts {
		trace.Point(c.tracer, trace.ScopeComment, "comment",
			fmt.Sprintf("%s %s p=%s", classify.LineRange(v.Block.StartLine, v.Block.EndLine), v.Result.Reason, classify.FormatProbability(v.Result.Probability)),
			parent)
		if v.Result.IsCode {
			c.report(file, v, reporter)
		}
		if v.Result.IsCode || c.opts.KeepVerdicts {
			res.Verdicts = append(res.Verdicts, v)
		}
	}
}

func (c *checker) report(file *source.File, v Verdict, reporter diag.Reporter) {
	msg := c.cls.Message(c.opts.Settings.Message, v.Result)
	b := diag.NewReportBuilder(reporter, c.opts.Settings.Severity, diag.CmtCommentedOutCode, v.Block.Span, msg)
	if !v.Block.SingleLine() {
		line := v.Block.StartLine + uint32(v.Result.Line)
		b.WithNote(triggerSpan(file, v.Block, v.Result.Line),
			fmt.Sprintf("line %d reaches probability %s", line, classify.FormatProbability(v.Result.Probability)))
	}
	rel := file.FormatPath("relative", c.fs.BaseDir())
	b.WithFixSuggestion(removalFix(FixID(rel, v.Block.StartLine), file, v.Block)).
		WithFixSuggestion(keepFix(KeepFixID(rel, v.Block.StartLine), file, v.Block, c.cls.Config().SkipSequence)).
		Emit()
}

// CheckSource checks in-memory content registered under name. The content
// is normalised the same way files loaded from disk are.
func CheckSource(ctx context.Context, name string, content []byte, opts Options) (*Result, error) {
	normalized, flags, err := source.Normalize(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	fs := source.NewFileSetWithBase(opts.Settings.Root)
	id := fs.Add(name, normalized, flags|source.FileVirtual)

	c, err := newChecker(ctx, fs, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{FileSet: fs, Files: []FileResult{c.checkFile(name, id)}}
	result.collect()
	result.Timings = opts.Timer.Report()
	return result, nil
}

// CheckFile loads and checks a single file. A load failure is returned as
// an error, unlike CheckPaths which turns it into a diagnostic.
func CheckFile(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSetWithBase(opts.Settings.Root)
	var id source.FileID
	var err error
	opts.Timer.Measure("load", func() {
		id, err = fs.Load(path)
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	c, err := newChecker(ctx, fs, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{FileSet: fs, Files: []FileResult{c.checkFile(path, id)}}
	result.collect()
	result.Timings = opts.Timer.Report()
	return result, nil
}

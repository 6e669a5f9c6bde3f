package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cmtcode/internal/config"
)

const sampleJava = "class A {\n    // int x = 5;\n    // This is a great helper method.\n    int y = 1;\n}\n"

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeJava(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckShort(t *testing.T) {
	dir := t.TempDir()
	writeJava(t, dir, "src/A.java", sampleJava)

	res := runCLI(t, "", "check", "--format", "short", dir)
	if res.err != nil {
		t.Fatalf("check: %v\n%s", res.err, res.stderr)
	}
	if !strings.HasPrefix(res.stdout, "warning CMT2001 src/A.java:2:5 ") {
		t.Fatalf("unexpected output:\n%s", res.stdout)
	}
	if strings.Count(res.stdout, "\n") != 1 {
		t.Fatalf("expected exactly one finding:\n%s", res.stdout)
	}
}

func TestCheckExitCodes(t *testing.T) {
	dir := t.TempDir()
	writeJava(t, dir, "A.java", sampleJava)

	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		wantText string
	}{
		{"warnings pass", []string{"check", "--format", "short", dir}, false, "warning CMT2001"},
		{"fail on findings", []string{"check", "--format", "short", "--fail-on-findings", dir}, true, "warning CMT2001"},
		{"warnings as errors", []string{"check", "--format", "short", "--warnings-as-errors", dir}, true, "error CMT2001"},
		{"no warnings", []string{"check", "--format", "short", "--no-warnings", dir}, false, ""},
		{"severity flag", []string{"check", "--format", "short", "--severity", "error", dir}, true, "error CMT2001"},
		{"high threshold", []string{"check", "--format", "short", "--threshold", "0.99", dir}, false, ""},
		{"skip sequence", []string{"check", "--format", "short", "--skip-sequence", "int", dir}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)
			if (res.err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", res.err, tt.wantErr)
			}
			if res.err != nil && exitCodeOf(res.err) != 1 {
				t.Fatalf("exit code = %d, want 1", exitCodeOf(res.err))
			}
			if tt.wantText == "" {
				if res.stdout != "" {
					t.Fatalf("expected no output, got:\n%s", res.stdout)
				}
				return
			}
			if !strings.Contains(res.stdout, tt.wantText) {
				t.Fatalf("output missing %q:\n%s", tt.wantText, res.stdout)
			}
		})
	}
}

func TestCheckInvalidFlags(t *testing.T) {
	dir := t.TempDir()
	tests := [][]string{
		{"check", "--format", "xml", dir},
		{"check", "--threshold", "1.5", dir},
		{"check", "--threshold", "0", dir},
		{"check", "--skip-sequence", "", dir},
		{"check", "--severity", "fatal", dir},
		{"check", "--path-mode", "weird", dir},
		{"check", "--ui", "maybe", dir},
		{"check", "--no-warnings", "--warnings-as-errors", dir},
		{"check", "-", dir},
	}
	for _, args := range tests {
		if res := runCLI(t, "", args...); res.err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestCheckStdin(t *testing.T) {
	res := runCLI(t, sampleJava, "check", "--format", "short", "--stdin-filename", "Foo.java", "-")
	if res.err != nil {
		t.Fatalf("check: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Foo.java:2:5") {
		t.Fatalf("unexpected output:\n%s", res.stdout)
	}
}

func TestCheckJSON(t *testing.T) {
	dir := t.TempDir()
	writeJava(t, dir, "A.java", sampleJava)

	res := runCLI(t, "", "check", "--format", "json", "--suggest", dir)
	if res.err != nil {
		t.Fatalf("check: %v", res.err)
	}
	var doc struct {
		Diagnostics []struct {
			Code     string `json:"code"`
			Severity string `json:"severity"`
			Fixes    []struct {
				ID string `json:"id"`
			} `json:"fixes"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &doc); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, res.stdout)
	}
	if len(doc.Diagnostics) != 1 || doc.Diagnostics[0].Code != "CMT2001" {
		t.Fatalf("unexpected diagnostics %+v", doc.Diagnostics)
	}
	if len(doc.Diagnostics[0].Fixes) != 2 || doc.Diagnostics[0].Fixes[0].ID != "A.java:2" {
		t.Fatalf("unexpected fixes %+v", doc.Diagnostics[0].Fixes)
	}
}

func TestCheckSarif(t *testing.T) {
	dir := t.TempDir()
	writeJava(t, dir, "A.java", sampleJava)

	res := runCLI(t, "", "check", "--format", "sarif", dir)
	if res.err != nil {
		t.Fatalf("check: %v", res.err)
	}
	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Results []struct {
				RuleID string `json:"ruleId"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &log); err != nil {
		t.Fatalf("invalid sarif: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 || len(log.Runs[0].Results) != 1 {
		t.Fatalf("unexpected sarif %+v", log)
	}
	if log.Runs[0].Results[0].RuleID != "CMT2001" {
		t.Fatalf("ruleId = %q", log.Runs[0].Results[0].RuleID)
	}
}

func TestCheckPrettySummaryAndTimings(t *testing.T) {
	dir := t.TempDir()
	writeJava(t, dir, "A.java", sampleJava)

	res := runCLI(t, "", "check", "--color", "off", "--timings", dir)
	if res.err != nil {
		t.Fatalf("check: %v", res.err)
	}
	if !strings.Contains(res.stdout, "A.java:2:5: WARNING CMT2001: ") {
		t.Fatalf("pretty header missing:\n%s", res.stdout)
	}
	if !strings.Contains(res.stdout, "OBS6001: timings (check)") {
		t.Fatalf("timings missing:\n%s", res.stdout)
	}
	if !strings.Contains(res.stderr, "checked 1 file(s), 2 comment(s): 1 finding(s)") {
		t.Fatalf("summary missing:\n%s", res.stderr)
	}

	quiet := runCLI(t, "", "check", "--color", "off", "--quiet", dir)
	if quiet.stderr != "" {
		t.Fatalf("--quiet must suppress the summary, got %q", quiet.stderr)
	}
}

func TestCheckUsesManifest(t *testing.T) {
	dir := t.TempDir()
	writeJava(t, dir, "A.java", sampleJava)
	writeJava(t, dir, "build/Gen.java", sampleJava)
	if _, err := config.WriteDefault(dir, false); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, "", "check", "--format", "short", dir)
	if res.err != nil {
		t.Fatalf("check: %v", res.err)
	}
	if strings.Contains(res.stdout, "Gen.java") {
		t.Fatalf("build/ must be excluded by the default manifest:\n%s", res.stdout)
	}

	custom := filepath.Join(t.TempDir(), "strict.toml")
	if err := os.WriteFile(custom, []byte("[check]\nseverity = \"error\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	res = runCLI(t, "", "check", "--format", "short", "--config", custom, dir)
	if res.err == nil || !strings.Contains(res.stdout, "error CMT2001") {
		t.Fatalf("--config not honoured: err=%v\n%s", res.err, res.stdout)
	}
}

func TestCheckCache(t *testing.T) {
	dir := t.TempDir()
	writeJava(t, dir, "A.java", sampleJava)
	cacheDir := t.TempDir()

	first := runCLI(t, "", "check", "--color", "off", "--cache", "--cache-dir", cacheDir, dir)
	second := runCLI(t, "", "check", "--color", "off", "--cache", "--cache-dir", cacheDir, dir)
	if first.err != nil || second.err != nil {
		t.Fatalf("check: %v / %v", first.err, second.err)
	}
	if first.stdout != second.stdout {
		t.Fatalf("cached output differs:\n%s\n---\n%s", first.stdout, second.stdout)
	}
	if !strings.Contains(second.stderr, "1 from cache") {
		t.Fatalf("second run not served from cache: %q", second.stderr)
	}

	cleared := runCLI(t, "", "check", "--color", "off", "--clear-cache", "--cache-dir", cacheDir, dir)
	if cleared.err != nil {
		t.Fatalf("check: %v", cleared.err)
	}
	if strings.Contains(cleared.stderr, "from cache") {
		t.Fatalf("--clear-cache run used stale results: %q", cleared.stderr)
	}
}

func TestExplainRawStdin(t *testing.T) {
	res := runCLI(t, "int x = 5;\n", "explain", "--raw", "-")
	if res.err != nil {
		t.Fatalf("explain: %v", res.err)
	}
	if !strings.Contains(res.stdout, "stdin:1 (block comment): code (p=") {
		t.Fatalf("unexpected header:\n%s", res.stdout)
	}
	if !strings.Contains(res.stdout, "threshold 0.85, skip sequence \"cmt\"") {
		t.Fatalf("footer missing:\n%s", res.stdout)
	}
}

func TestExplainJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeJava(t, dir, "A.java", sampleJava)

	res := runCLI(t, "", "explain", "--format", "json", "--all", path)
	if res.err != nil {
		t.Fatalf("explain: %v", res.err)
	}
	var doc explainOutputJSON
	if err := json.Unmarshal([]byte(res.stdout), &doc); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, res.stdout)
	}
	if len(doc.Comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(doc.Comments))
	}
	c := doc.Comments[0]
	if !c.IsCode || c.StartLine != 2 || c.Reason != "scored" || len(c.Lines) != 1 {
		t.Fatalf("unexpected first comment %+v", c)
	}
	if c.Lines[0].Counts["terminator"] != 1 || !c.Lines[0].Triggered {
		t.Fatalf("unexpected evidence %+v", c.Lines[0])
	}
	if doc.Comments[1].IsCode || doc.Comments[1].Reason != "below-threshold" {
		t.Fatalf("unexpected second comment %+v", doc.Comments[1])
	}

	res = runCLI(t, "", "explain", "--format", "json", "--line", "3", path)
	if err := json.Unmarshal([]byte(res.stdout), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Comments) != 1 || doc.Comments[0].StartLine != 3 {
		t.Fatalf("--line 3 picked %+v", doc.Comments)
	}
}

func TestExplainUnterminated(t *testing.T) {
	res := runCLI(t, "class A { /* int x = 5;", "explain", "-")
	if res.err == nil || !strings.Contains(res.err.Error(), "stdin:1:11: unterminated block comment") {
		t.Fatalf("err = %v", res.err)
	}
}

func TestCommentsJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeJava(t, dir, "A.java", sampleJava)

	res := runCLI(t, "", "comments", "--format", "json", path)
	if res.err != nil {
		t.Fatalf("comments: %v", res.err)
	}
	var list []commentJSON
	if err := json.Unmarshal([]byte(res.stdout), &list); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(list) != 2 || !list[0].IsCode || list[1].IsCode {
		t.Fatalf("unexpected comments %+v", list)
	}
	if list[0].Text != "// int x = 5;" || list[0].Kind != "line" {
		t.Fatalf("unexpected first comment %+v", list[0])
	}

	res = runCLI(t, "", "comments", "--code-only", path)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if lines := strings.Split(strings.TrimSpace(res.stdout), "\n"); len(lines) != 1 || !strings.Contains(lines[0], "code 0.9") {
		t.Fatalf("unexpected listing:\n%s", res.stdout)
	}
}

func TestFixAll(t *testing.T) {
	dir := t.TempDir()
	path := writeJava(t, dir, "A.java", sampleJava)

	res := runCLI(t, "", "fix", "--all", dir)
	if res.err != nil {
		t.Fatalf("fix: %v", res.err)
	}
	got, _ := os.ReadFile(path)
	want := "class A {\n    // This is a great helper method.\n    int y = 1;\n}\n"
	if string(got) != want {
		t.Fatalf("file after fix:\n%q\nwant\n%q", got, want)
	}
	if !strings.Contains(res.stdout, "Applied 1 fix(es)") {
		t.Fatalf("unexpected output:\n%s", res.stdout)
	}

	res = runCLI(t, "", "fix", "--all", dir)
	if res.err != nil || !strings.Contains(res.stdout, "No applicable fixes found.") {
		t.Fatalf("second run: err=%v\n%s", res.err, res.stdout)
	}
}

func TestFixKeepByID(t *testing.T) {
	dir := t.TempDir()
	path := writeJava(t, dir, "A.java", sampleJava)

	res := runCLI(t, "", "fix", "--id", "A.java:2#keep", path)
	if res.err != nil {
		t.Fatalf("fix: %v\n%s", res.err, res.stdout)
	}
	got, _ := os.ReadFile(path)
	if !strings.Contains(string(got), "    // cmt int x = 5;\n") {
		t.Fatalf("marker not inserted:\n%s", got)
	}

	// помеченный комментарий больше не находится
	check := runCLI(t, "", "check", "--format", "short", path)
	if check.stdout != "" {
		t.Fatalf("marked comment still reported:\n%s", check.stdout)
	}
}

func TestFixDryRunAndBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeJava(t, dir, "A.java", sampleJava)

	res := runCLI(t, "", "fix", "--dry-run", path)
	if res.err != nil {
		t.Fatalf("fix: %v", res.err)
	}
	if got, _ := os.ReadFile(path); string(got) != sampleJava {
		t.Fatal("dry run modified the file")
	}
	if !strings.Contains(res.stdout, "    - "+"    // int x = 5;") {
		t.Fatalf("dry run diff missing:\n%s", res.stdout)
	}

	res = runCLI(t, "", "fix", "--backup", path)
	if res.err != nil {
		t.Fatalf("fix: %v", res.err)
	}
	if bak, err := os.ReadFile(path + ".bak"); err != nil || string(bak) != sampleJava {
		t.Fatalf("backup = %q, %v", bak, err)
	}
}

func TestFixFlagConflicts(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"fix", "--all", "--once", dir},
		{"fix", "--id", "x", "--all", dir},
	} {
		if res := runCLI(t, "", args...); res.err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")

	res := runCLI(t, "", "init", dir)
	if res.err != nil {
		t.Fatalf("init: %v", res.err)
	}
	if _, err := os.Stat(filepath.Join(dir, config.ManifestName)); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if !strings.Contains(res.stdout, "Wrote ") {
		t.Fatalf("unexpected output %q", res.stdout)
	}

	if res := runCLI(t, "", "init", dir); res.err == nil || !strings.Contains(res.err.Error(), "--force") {
		t.Fatalf("second init: %v", res.err)
	}
	if res := runCLI(t, "", "init", "--force", dir); res.err != nil {
		t.Fatalf("forced init: %v", res.err)
	}
}

func TestVersionJSON(t *testing.T) {
	res := runCLI(t, "", "version", "--format", "json", "--full")
	if res.err != nil {
		t.Fatalf("version: %v", res.err)
	}
	var p versionPayload
	if err := json.Unmarshal([]byte(res.stdout), &p); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if p.Tool != "cmtcode" || p.Version == "" {
		t.Fatalf("unexpected payload %+v", p)
	}

	if res := runCLI(t, "", "version", "--format", "yaml"); res.err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"yes", uiModeAuto, true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %s, %v", tt.in, got, err)
		}
	}
	if shouldUseTUI(uiModeAuto, "json") {
		t.Error("auto mode must stay off for machine-readable output")
	}
	if !shouldUseTUI(uiModeOn, "json") || shouldUseTUI(uiModeOff, "pretty") {
		t.Error("explicit modes must win")
	}
}

func TestWriteChangedLines(t *testing.T) {
	var b bytes.Buffer
	writeChangedLines(&b, []byte("a\nb\nc\n"), []byte("a\nc\n"))
	if got := b.String(); got != "    - b\n" {
		t.Fatalf("got %q", got)
	}

	b.Reset()
	writeChangedLines(&b, []byte("x\n"), []byte("y\n"))
	if got := b.String(); got != "    - x\n    + y\n" {
		t.Fatalf("got %q", got)
	}
}

func TestExitCodeOf(t *testing.T) {
	if got := exitCodeOf(silentExit(3)); got != 3 {
		t.Fatalf("exitCodeOf = %d", got)
	}
	if got := exitCodeOf(errors.New("boom")); got != 1 {
		t.Fatalf("exitCodeOf = %d", got)
	}
}

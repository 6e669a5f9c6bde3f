package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"cmtcode/internal/classify"
	"cmtcode/internal/diag"
)

// Settings is the fully resolved configuration of a check run.
type Settings struct {
	Classify          classify.Config
	Message           string
	Severity          diag.Severity
	MergeLineComments bool
	Extensions        []string
	Exclude           []string

	// Root is the directory Exclude patterns are relative to.
	Root string
	// Source names where the settings came from: a manifest path or "defaults".
	Source string
}

// Defaults returns the built-in settings used when no manifest exists.
func Defaults() Settings {
	return Settings{
		Classify:   classify.DefaultConfig(),
		Message:    classify.DefaultRuleMessage,
		Severity:   diag.SevWarning,
		Extensions: []string{".java"},
		Exclude:    nil,
		Source:     "defaults",
	}
}

// Load resolves settings for startDir: defaults, then the nearest
// cmtcode.toml, then CMTCODE_* environment variables. The result is validated.
// startDir may also be a file; the search then starts from its directory.
func Load(startDir string) (Settings, error) {
	m, err := LoadManifest(startDir)
	switch {
	case errors.Is(err, ErrManifestNotFound):
		s := Defaults()
		if abs, absErr := filepath.Abs(startDir); absErr == nil {
			if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
				abs = filepath.Dir(abs)
			}
			s.Root = abs
		}
		return finish(s)
	case err != nil:
		return Settings{}, err
	}
	return fromManifest(m)
}

// LoadFile is Load with an explicit manifest path instead of discovery.
func LoadFile(path string) (Settings, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return Settings{}, err
	}
	return fromManifest(m)
}

func fromManifest(m *Manifest) (Settings, error) {
	s := Defaults()
	if err := m.apply(&s); err != nil {
		return Settings{}, err
	}
	return finish(s)
}

// finish layers the environment and validates.
func finish(s Settings) (Settings, error) {
	env, err := FromEnv()
	if err != nil {
		return Settings{}, fmt.Errorf("environment: %w", err)
	}
	if err := s.Apply(env); err != nil {
		return Settings{}, fmt.Errorf("environment: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", s.Source, err)
	}
	return s, nil
}

// Apply layers non-nil overrides on top of s.
func (s *Settings) Apply(o Overrides) error {
	if o.Threshold != nil {
		s.Classify.Threshold = *o.Threshold
	}
	if o.SkipSequence != nil {
		s.Classify.SkipSequence = *o.SkipSequence
	}
	if o.SkipJavaDocs != nil {
		s.Classify.SkipJavaDocs = *o.SkipJavaDocs
	}
	if o.Message != nil {
		s.Message = *o.Message
	}
	if o.Severity != nil {
		if err := s.setSeverity(*o.Severity); err != nil {
			return err
		}
	}
	if o.MergeLineComments != nil {
		s.MergeLineComments = *o.MergeLineComments
	}
	return nil
}

func (s *Settings) setSeverity(v string) error {
	sev, ok := diag.ParseSeverity(v)
	if !ok {
		return fmt.Errorf("unknown severity %q", v)
	}
	s.Severity = sev
	return nil
}

// Validate checks the classifier settings and the file filters.
func (s Settings) Validate() error {
	if err := s.Classify.Validate(); err != nil {
		return err
	}
	if len(s.Extensions) == 0 {
		return errors.New("[files].extensions must not be empty")
	}
	for _, pat := range s.Exclude {
		if _, err := filepath.Match(strings.TrimSuffix(pat, "/"), ""); err != nil {
			return fmt.Errorf("bad exclude pattern %q: %w", pat, err)
		}
	}
	return nil
}

// Includes reports whether path should be checked during a directory walk.
func (s Settings) Includes(path string) bool {
	if !slices.Contains(s.Extensions, strings.ToLower(filepath.Ext(path))) {
		return false
	}
	return !s.Excluded(path)
}

// Excluded reports whether path matches one of the exclude patterns. A
// pattern ending in "/" excludes a directory at any depth; any other pattern
// is matched against the base name and against the root-relative path.
func (s Settings) Excluded(path string) bool {
	rel := filepath.ToSlash(path)
	if s.Root != "" {
		if r, err := filepath.Rel(s.Root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = filepath.ToSlash(r)
		}
	}
	base := filepath.Base(path)
	segments := strings.Split(rel, "/")
	for _, pat := range s.Exclude {
		if dir, ok := strings.CutSuffix(pat, "/"); ok {
			for _, seg := range segments[:len(segments)-1] {
				if matched, _ := filepath.Match(dir, seg); matched {
					return true
				}
			}
			continue
		}
		if matched, _ := filepath.Match(pat, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pat, rel); matched {
			return true
		}
	}
	return false
}

// Fingerprint identifies everything that can change a file's findings.
// Cached results are only reused under the same fingerprint.
func (s Settings) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "threshold=%s\n", strconv.FormatFloat(s.Classify.Threshold, 'g', -1, 64))
	fmt.Fprintf(h, "skip=%q\n", s.Classify.SkipSequence)
	fmt.Fprintf(h, "javadocs=%t\n", s.Classify.SkipJavaDocs)
	fmt.Fprintf(h, "message=%q\n", s.Message)
	fmt.Fprintf(h, "severity=%d\n", s.Severity)
	fmt.Fprintf(h, "merge=%t\n", s.MergeLineComments)
	return hex.EncodeToString(h.Sum(nil))
}

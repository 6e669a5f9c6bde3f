package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file looked up from the working directory upwards.
const ManifestName = "cmtcode.toml"

// ErrManifestNotFound is returned by LoadManifest when no cmtcode.toml exists
// in the start directory or any of its parents.
var ErrManifestNotFound = errors.New("no " + ManifestName + " found")

// Manifest is a parsed cmtcode.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config FileConfig
	meta   toml.MetaData
}

// FileConfig mirrors the layout of cmtcode.toml.
type FileConfig struct {
	Check CheckConfig `toml:"check"`
	Files FilesConfig `toml:"files"`
}

type CheckConfig struct {
	ClassificationThreshold float64 `toml:"classificationThreshold"`
	SkipCheckSequence       string  `toml:"skipCheckSequence"`
	SkipJavaDocs            bool    `toml:"skipJavaDocs"`
	Message                 string  `toml:"message"`
	Severity                string  `toml:"severity"`
	MergeLineComments       bool    `toml:"mergeLineComments"`
}

type FilesConfig struct {
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`
}

// FindManifest walks from startDir up to the filesystem root.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and parses the nearest cmtcode.toml.
func LoadManifest(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrManifestNotFound
	}
	return ReadManifest(path)
}

// ReadManifest parses the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
		meta:   meta,
	}, nil
}

// apply copies every key present in the manifest onto s. Absent keys keep
// whatever s already holds.
func (m *Manifest) apply(s *Settings) error {
	c := m.Config.Check
	if m.meta.IsDefined("check", "classificationThreshold") {
		s.Classify.Threshold = c.ClassificationThreshold
	}
	if m.meta.IsDefined("check", "skipCheckSequence") {
		s.Classify.SkipSequence = c.SkipCheckSequence
	}
	if m.meta.IsDefined("check", "skipJavaDocs") {
		s.Classify.SkipJavaDocs = c.SkipJavaDocs
	}
	if m.meta.IsDefined("check", "message") {
		s.Message = c.Message
	}
	if m.meta.IsDefined("check", "severity") {
		if err := s.setSeverity(c.Severity); err != nil {
			return fmt.Errorf("%s: [check].severity: %w", m.Path, err)
		}
	}
	if m.meta.IsDefined("check", "mergeLineComments") {
		s.MergeLineComments = c.MergeLineComments
	}
	if m.meta.IsDefined("files", "extensions") {
		s.Extensions = normalizeExtensions(m.Config.Files.Extensions)
	}
	if m.meta.IsDefined("files", "exclude") {
		s.Exclude = append([]string(nil), m.Config.Files.Exclude...)
	}
	s.Root = m.Root
	s.Source = m.Path
	return nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, strings.ToLower(e))
	}
	return out
}

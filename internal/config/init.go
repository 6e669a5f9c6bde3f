package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrManifestExists is returned by WriteDefault when the target already has
// a manifest and force is false.
var ErrManifestExists = errors.New(ManifestName + " already exists")

// DefaultFileConfig is the manifest `cmtcode init` writes.
func DefaultFileConfig() FileConfig {
	d := Defaults()
	return FileConfig{
		Check: CheckConfig{
			ClassificationThreshold: d.Classify.Threshold,
			SkipCheckSequence:       d.Classify.SkipSequence,
			SkipJavaDocs:            d.Classify.SkipJavaDocs,
			Message:                 d.Message,
			Severity:                strings.ToLower(d.Severity.String()),
			MergeLineComments:       d.MergeLineComments,
		},
		Files: FilesConfig{
			Extensions: d.Extensions,
			Exclude:    []string{"build/", "target/", "out/"},
		},
	}
}

// WriteDefault creates dir/cmtcode.toml and returns its path.
func WriteDefault(dir string, force bool) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, ManifestName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, ErrManifestExists
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", path, err)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# cmtcode configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(DefaultFileConfig()); err != nil {
		return "", fmt.Errorf("encode %s: %w", ManifestName, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %q: %w", dir, err)
	}
	// #nosec G306 -- manifest is meant to be shared with the project
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %q: %w", path, err)
	}
	return path, nil
}

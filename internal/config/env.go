package config

import (
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment override, e.g. CMTCODE_THRESHOLD.
const EnvPrefix = "CMTCODE"

// Overrides carries optional values layered over the manifest. Nil means
// "not set". The same struct is filled from the environment and from flags.
type Overrides struct {
	Threshold         *float64 `envconfig:"THRESHOLD"`
	SkipSequence      *string  `envconfig:"SKIP_SEQUENCE"`
	SkipJavaDocs      *bool    `envconfig:"SKIP_JAVADOCS"`
	Message           *string  `envconfig:"MESSAGE"`
	Severity          *string  `envconfig:"SEVERITY"`
	MergeLineComments *bool    `envconfig:"MERGE_LINE_COMMENTS"`
}

// FromEnv reads CMTCODE_* variables.
func FromEnv() (Overrides, error) {
	var o Overrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return Overrides{}, err
	}
	return o, nil
}

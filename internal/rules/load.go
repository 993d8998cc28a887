package rules

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for rule files that are neither CUE nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported rules format")

// overlay is the on-disk shape of a rules file. Nil fields keep the default.
type overlay struct {
	LineTolerance   *float64           `yaml:"line_tolerance" json:"line_tolerance"`
	DateMarker      *string            `yaml:"date_marker" json:"date_marker"`
	NoiseMarkers    *[]string          `yaml:"noise_markers" json:"noise_markers"`
	IgnoreIDs       *[]string          `yaml:"ignore_ids" json:"ignore_ids"`
	Renames         *map[string]string `yaml:"renames" json:"renames"`
	ExcludeKeywords *[]string          `yaml:"exclude_keywords" json:"exclude_keywords"`
	UnknownName     *string            `yaml:"unknown_name" json:"unknown_name"`
}

type yamlFile struct {
	Rules *overlay `yaml:"rules"`
}

// Load reads a rules file and overlays it on Default.
// The format is chosen by extension: .cue, .yaml or .yml.
// The result is validated; all validation errors are joined.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	r, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	if verrs := Validate(r); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, fmt.Errorf("invalid rules %s: %w", path, errors.Join(errs...))
	}
	return r, nil
}

// Parse overlays the rules document data on Default without validating
// the result. The format is chosen by the extension of name.
func Parse(name string, data []byte) (*Rules, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cue":
		return ParseCUE(name, data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// ParseYAML overlays a YAML rules document on Default.
// Unknown fields are rejected to catch typos.
func ParseYAML(data []byte) (*Rules, error) {
	var f yamlFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if f.Rules == nil {
		return nil, fmt.Errorf("failed to parse YAML: missing top-level \"rules\" key")
	}
	return f.Rules.apply(Default()), nil
}

func (o *overlay) apply(base *Rules) *Rules {
	r := base.Clone()
	if o.LineTolerance != nil {
		r.LineTolerance = *o.LineTolerance
	}
	if o.DateMarker != nil {
		r.DateMarker = *o.DateMarker
	}
	if o.NoiseMarkers != nil {
		r.NoiseMarkers = copyStrings(*o.NoiseMarkers)
	}
	if o.IgnoreIDs != nil {
		r.IgnoreIDs = copyStrings(*o.IgnoreIDs)
	}
	if o.Renames != nil {
		r.Renames = make(map[string]string, len(*o.Renames))
		for k, v := range *o.Renames {
			r.Renames[k] = v
		}
	}
	if o.ExcludeKeywords != nil {
		r.ExcludeKeywords = copyStrings(*o.ExcludeKeywords)
	}
	if o.UnknownName != nil {
		r.UnknownName = *o.UnknownName
	}
	return r
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Package config loads the optional benchmark-sweep file named in
// SPEC_FULL.md's AMBIENT STACK section: a yaml.v3 document of the same
// shape as the CLI flags. The satswarm command uses the file's default
// entry in place of the flag defaults; flags set on the command line
// override file values.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Sweep is one parameter combination to run the benchmark harness over.
type Sweep struct {
	NumNodes      int    `yaml:"num_nodes"`
	Topology      string `yaml:"topology"`
	TestPath      string `yaml:"test_path"`
	NodeBandwidth int    `yaml:"node_bandwidth"`
	NumVars       int    `yaml:"num_vars"`
}

// File is the top-level sweep-config document: a default Sweep plus any
// number of named Sweeps. Load parses both; the satswarm command runs only
// Default and does not run the named Sweeps.
type File struct {
	Default  Sweep            `yaml:"default"`
	Sweeps   map[string]Sweep `yaml:"sweeps"`
}

// Load reads and parses a sweep-config file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: reading sweep file")
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "config: parsing sweep file")
	}
	return &f, nil
}

// Merge overlays non-zero fields of override onto a copy of base, giving
// flags (passed as override) precedence over a loaded config file.
func Merge(base, override Sweep) Sweep {
	out := base
	if override.NumNodes != 0 {
		out.NumNodes = override.NumNodes
	}
	if override.Topology != "" {
		out.Topology = override.Topology
	}
	if override.TestPath != "" {
		out.TestPath = override.TestPath
	}
	if override.NodeBandwidth != 0 {
		out.NodeBandwidth = override.NodeBandwidth
	}
	if override.NumVars != 0 {
		out.NumVars = override.NumVars
	}
	return out
}

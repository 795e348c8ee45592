package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RunProfile is the optional `.kclvm.yaml` run profile the demonstration
// CLI loads (spec §1 excludes config/file I/O from the engine itself;
// this is ambient CLI convenience only, using the teacher's yaml.v3
// config-loading library).
type RunProfile struct {
	TraceLevel  string   `yaml:"trace_level"` // "" | "step"
	ImportRoots []string `yaml:"import_roots"`
	NoColor     bool     `yaml:"no_color"`
	Locale      string   `yaml:"locale"` // diagnostic message locale, default "en"
}

func loadRunProfile(path string) (*RunProfile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &RunProfile{}, nil
	}
	if err != nil {
		return nil, err
	}
	var p RunProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"careassign/internal/opt"
)

// LoadTuning reads the optimizer tuning file. An empty path yields the
// defaults; a partially specified file is filled from the defaults.
func LoadTuning(path string) (opt.Tuning, error) {
	if path == "" {
		return opt.DefaultTuning(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return opt.Tuning{}, err
	}
	var tn opt.Tuning
	if err := yaml.Unmarshal(b, &tn); err != nil {
		return opt.Tuning{}, err
	}
	return tn.Normalize(), nil
}

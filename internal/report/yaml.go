package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig is the configuration section of a run record
type RunConfig struct {
	Strategy string `yaml:"strategy"`
	Metric   string `yaml:"metric"`
	Workers  int    `yaml:"workers"`
	Left     string `yaml:"left"`
	Right    string `yaml:"right"`
	Output   string `yaml:"output,omitempty"`
}

// Run is a complete run record
type Run struct {
	ID        string    `yaml:"id,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
	Config    RunConfig `yaml:"config"`
	Summary   *Summary  `yaml:"summary"`
}

// SaveYAML writes run to dir as booklink-<timestamp>.yaml and returns the
// absolute path of the file
func SaveYAML(dir string, run Run) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	filename := filepath.Join(dir, fmt.Sprintf("booklink-%s.yaml", run.Timestamp.Format("2006-01-02_15-04-05")))

	data, err := yaml.Marshal(&run)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return filename, nil
	}
	return absPath, nil
}

// LoadYAML reads a run record written by SaveYAML
func LoadYAML(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}
	var run Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run record: %w", err)
	}
	return &run, nil
}

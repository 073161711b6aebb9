// Package config loads matching settings from YAML or TOML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/booklink/internal/blocking"
	"github.com/lehigh-university-libraries/booklink/internal/matching"
	"github.com/lehigh-university-libraries/booklink/internal/similarity"
)

// Strategy names
const (
	StrategyWeighted = "weighted"
	StrategyLinkage  = "linkage"
)

// FieldWeight assigns a weight to a column in weighted mode
type FieldWeight struct {
	Field  string  `yaml:"field" toml:"field"`
	Weight float64 `yaml:"weight" toml:"weight"`
}

// Weighted configures the blocked, weighted-vote strategy
type Weighted struct {
	Fields          []FieldWeight `yaml:"fields" toml:"fields"`
	FieldThreshold  float64       `yaml:"field_threshold" toml:"field_threshold"`
	AcceptThreshold float64       `yaml:"accept_threshold" toml:"accept_threshold"`
	BlockingFields  []string      `yaml:"blocking_fields" toml:"blocking_fields"`
	PrefixLength    int           `yaml:"prefix_length" toml:"prefix_length"`
}

// Linkage configures the ISBN/title/author/year strategy
type Linkage struct {
	TitleThreshold  float64 `yaml:"title_threshold" toml:"title_threshold"`
	AuthorThreshold float64 `yaml:"author_threshold" toml:"author_threshold"`
	YearTolerance   int     `yaml:"year_tolerance" toml:"year_tolerance"`
}

// Config holds everything needed to run a match.
//
//   - Strategy: weighted or linkage
//   - Metric: string similarity metric shared by both strategies
//   - Workers: concurrent scoring goroutines, 1 for sequential
//   - HistoryDB: SQLite path for run history, empty to disable
type Config struct {
	Strategy  string   `yaml:"strategy" toml:"strategy"`
	Metric    string   `yaml:"metric" toml:"metric"`
	Workers   int      `yaml:"workers" toml:"workers"`
	HistoryDB string   `yaml:"history_db" toml:"history_db"`
	Weighted  Weighted `yaml:"weighted" toml:"weighted"`
	Linkage   Linkage  `yaml:"linkage" toml:"linkage"`
}

// Default returns the built-in configuration
func Default() Config {
	fields := make([]FieldWeight, len(matching.DefaultFieldWeights))
	for i, fw := range matching.DefaultFieldWeights {
		fields[i] = FieldWeight{Field: fw.Field, Weight: fw.Weight}
	}
	return Config{
		Strategy: StrategyWeighted,
		Metric:   string(similarity.RatcliffObershelp),
		Workers:  1,
		Weighted: Weighted{
			Fields:          fields,
			FieldThreshold:  similarity.DefaultFieldThreshold,
			AcceptThreshold: matching.DefaultAcceptThreshold,
			BlockingFields:  append([]string(nil), blocking.DefaultFields...),
			PrefixLength:    blocking.DefaultPrefixLength,
		},
		Linkage: Linkage{
			TitleThreshold:  similarity.DefaultTitleThreshold,
			AuthorThreshold: similarity.DefaultAuthorThreshold,
			YearTolerance:   similarity.DefaultYearTolerance,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case ".toml":
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported config format: %q (supported: .yaml, .yml, .toml)", ext)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Strategy = strings.ToLower(strings.TrimSpace(c.Strategy))
	c.Metric = strings.ToLower(strings.TrimSpace(c.Metric))
	if c.Metric == "" {
		c.Metric = string(similarity.RatcliffObershelp)
	}

	var err error
	if c.HistoryDB, err = expandPath(c.HistoryDB); err != nil {
		return fmt.Errorf("history_db: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = filepath.Join(home, strings.TrimPrefix(pathValue[1:], "/"))
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

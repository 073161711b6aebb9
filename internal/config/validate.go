package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/booklink/internal/similarity"
)

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategyWeighted, StrategyLinkage:
	default:
		return fmt.Errorf("strategy must be %q or %q, got %q", StrategyWeighted, StrategyLinkage, c.Strategy)
	}
	if _, err := similarity.ParseMetric(c.Metric); err != nil {
		return err
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if err := c.validateWeighted(); err != nil {
		return err
	}
	return c.validateLinkage()
}

func (c *Config) validateWeighted() error {
	w := c.Weighted
	if len(w.Fields) == 0 {
		return errors.New("weighted.fields must name at least one field")
	}
	for _, fw := range w.Fields {
		if strings.TrimSpace(fw.Field) == "" {
			return errors.New("weighted.fields entries must name a field")
		}
		if fw.Weight <= 0 {
			return fmt.Errorf("weighted.fields weight for %q must be positive", fw.Field)
		}
	}
	if err := unitInterval("weighted.field_threshold", w.FieldThreshold); err != nil {
		return err
	}
	if err := unitInterval("weighted.accept_threshold", w.AcceptThreshold); err != nil {
		return err
	}
	if len(w.BlockingFields) == 0 {
		return errors.New("weighted.blocking_fields must name at least one field")
	}
	if w.PrefixLength < 1 {
		return errors.New("weighted.prefix_length must be at least 1")
	}
	return nil
}

func (c *Config) validateLinkage() error {
	if err := unitInterval("linkage.title_threshold", c.Linkage.TitleThreshold); err != nil {
		return err
	}
	if err := unitInterval("linkage.author_threshold", c.Linkage.AuthorThreshold); err != nil {
		return err
	}
	if c.Linkage.YearTolerance < 0 {
		return errors.New("linkage.year_tolerance must not be negative")
	}
	return nil
}

func unitInterval(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1", name)
	}
	return nil
}

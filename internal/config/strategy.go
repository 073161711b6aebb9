package config

import (
	"github.com/lehigh-university-libraries/booklink/internal/matching"
	"github.com/lehigh-university-libraries/booklink/internal/similarity"
)

// NewStrategy builds the configured matching strategy. The config must have
// passed Validate.
func (c *Config) NewStrategy() (matching.Strategy, error) {
	metric, err := similarity.ParseMetric(c.Metric)
	if err != nil {
		return nil, err
	}
	cmp := similarity.Comparator{Metric: metric}

	if c.Strategy == StrategyLinkage {
		s := matching.NewLinkageStrategy()
		s.TitleThreshold = c.Linkage.TitleThreshold
		s.AuthorThreshold = c.Linkage.AuthorThreshold
		s.YearTolerance = c.Linkage.YearTolerance
		s.Comparator = cmp
		return s, nil
	}

	s := matching.NewWeightedStrategy()
	s.Weights = make([]matching.FieldWeight, len(c.Weighted.Fields))
	for i, fw := range c.Weighted.Fields {
		s.Weights[i] = matching.FieldWeight{Field: fw.Field, Weight: fw.Weight}
	}
	s.FieldThreshold = c.Weighted.FieldThreshold
	s.AcceptThreshold = c.Weighted.AcceptThreshold
	s.BlockingFields = c.Weighted.BlockingFields
	s.PrefixLength = c.Weighted.PrefixLength
	s.Comparator = cmp
	return s, nil
}

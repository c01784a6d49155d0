package config

import (
	"fmt"

	"github.com/glossarch/stratigraphy/internal/domain"
)

// Validate checks cross-field constraints that tag-level validation cannot
// express. It fills zero-value resolver weights with the defaults first, so a
// YAML file may omit the weights block entirely.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns %d exceeds max_conns %d",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if err := c.Resolver.validate(); err != nil {
		return err
	}

	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("ingest.batch_size %d must be positive", c.Ingest.BatchSize)
	}
	if c.Ingest.MaxEntries < 0 {
		return fmt.Errorf("ingest.max_entries %d must not be negative", c.Ingest.MaxEntries)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q unknown", c.Log.Format)
	}

	return nil
}

func (r *ResolverConfig) validate() error {
	if r.Weights == (domain.SimilarityWeights{}) {
		r.Weights = domain.DefaultSimilarityWeights()
	}

	for name, t := range map[string]float64{
		"auto_merge_threshold":      r.AutoMergeThreshold,
		"merge_with_flag_threshold": r.MergeWithFlagThreshold,
		"review_threshold":          r.ReviewThreshold,
	} {
		if t < 0 || t > 1 {
			return fmt.Errorf("resolver.%s %v out of [0,1]", name, t)
		}
	}

	if r.AutoMergeThreshold < r.MergeWithFlagThreshold {
		return fmt.Errorf("resolver.auto_merge_threshold %v below merge_with_flag_threshold %v",
			r.AutoMergeThreshold, r.MergeWithFlagThreshold)
	}
	if r.MergeWithFlagThreshold < r.ReviewThreshold {
		return fmt.Errorf("resolver.merge_with_flag_threshold %v below review_threshold %v",
			r.MergeWithFlagThreshold, r.ReviewThreshold)
	}

	for name, w := range map[string]float64{
		"form_exact":       r.Weights.FormExact,
		"form_fuzzy":       r.Weights.FormFuzzy,
		"semantic":         r.Weights.Semantic,
		"date_overlap":     r.Weights.DateOverlap,
		"source_agreement": r.Weights.SourceAgreement,
	} {
		if w < 0 {
			return fmt.Errorf("resolver.weights.%s %v must not be negative", name, w)
		}
	}

	return nil
}

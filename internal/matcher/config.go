// Package matcher decides which billing-provider customer a ledger record
// refers to, via a strict three-tier cascade: exact tax id, exact email,
// then fuzzy name constrained by tax-id prefix.
package matcher

import "fmt"

// Config holds the matching thresholds. These are business thresholds, not
// derived values; they live here as named, overridable settings so a run can
// be tightened or relaxed without touching the cascade.
type Config struct {
	// NameSimilarityThreshold is the minimum name score (exclusive) for a
	// customer to be considered at the fuzzy tier.
	NameSimilarityThreshold float64 `json:"name_similarity_threshold"`

	// MinFuzzyConfidence is the minimum combined score (exclusive) for a
	// fuzzy candidate to be accepted.
	MinFuzzyConfidence float64 `json:"min_fuzzy_confidence"`

	// TaxIDPrefixLen is how many leading digits two tax ids must share for a
	// fuzzy candidate to qualify at all.
	TaxIDPrefixLen int `json:"tax_id_prefix_len"`

	// NameWeight and TaxIDWeight combine the two fuzzy-tier scores.
	NameWeight  float64 `json:"name_weight"`
	TaxIDWeight float64 `json:"tax_id_weight"`

	// TaxIDPrefixScore is the tax-id score granted for a prefix-only match
	// at the fuzzy tier (exact match scores 1.0).
	TaxIDPrefixScore float64 `json:"tax_id_prefix_score"`

	// Email-tier confidences, by how the tax ids relate: both equal, billing
	// side has none to compare, or they actively disagree.
	EmailConfidenceTaxIDAgrees   float64 `json:"email_confidence_tax_id_agrees"`
	EmailConfidenceNoTaxID       float64 `json:"email_confidence_no_tax_id"`
	EmailConfidenceTaxIDConflict float64 `json:"email_confidence_tax_id_conflict"`
}

// DefaultConfig returns the thresholds the reconciliation currently runs
// with. Values came from the business, not from tuning.
func DefaultConfig() *Config {
	return &Config{
		NameSimilarityThreshold:      0.70,
		MinFuzzyConfidence:           0.5,
		TaxIDPrefixLen:               6,
		NameWeight:                   0.6,
		TaxIDWeight:                  0.4,
		TaxIDPrefixScore:             0.6,
		EmailConfidenceTaxIDAgrees:   1.0,
		EmailConfidenceNoTaxID:       0.8,
		EmailConfidenceTaxIDConflict: 0.7,
	}
}

// Validate checks that the thresholds are internally coherent.
func (c *Config) Validate() error {
	if c.NameSimilarityThreshold < 0 || c.NameSimilarityThreshold > 1 {
		return fmt.Errorf("name_similarity_threshold must be in [0,1], got %v", c.NameSimilarityThreshold)
	}
	if c.MinFuzzyConfidence < 0 || c.MinFuzzyConfidence > 1 {
		return fmt.Errorf("min_fuzzy_confidence must be in [0,1], got %v", c.MinFuzzyConfidence)
	}
	if c.TaxIDPrefixLen < 1 {
		return fmt.Errorf("tax_id_prefix_len must be positive, got %d", c.TaxIDPrefixLen)
	}
	if c.NameWeight < 0 || c.TaxIDWeight < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	return nil
}

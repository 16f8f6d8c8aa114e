// Package consolidate folds all ledger rows, match results and billing
// documents into one reconciled record per customer.
package consolidate

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config holds the consolidation thresholds and the line-item classification
// table. Keywords are data, not code: the business adjusts them without a
// change to the classifier.
type Config struct {
	// SettlementTolerance is the band, in monetary units, within which
	// expected and collected are considered settled. Discrepancies at or
	// below -SettlementTolerance classify as overpaid.
	SettlementTolerance decimal.Decimal `json:"settlement_tolerance"`

	// BillingPeriodDays is the length of one recurring billing period, used
	// to count missed payments behind next_billing_at.
	BillingPeriodDays int `json:"billing_period_days"`

	// MediumChurnDiscrepancyPct pushes a customer to MEDIUM churn risk when
	// their discrepancy percentage exceeds it.
	MediumChurnDiscrepancyPct float64 `json:"medium_churn_discrepancy_pct"`

	// HighChurnMissingPayments pushes a customer to HIGH churn risk when
	// more than this many billing periods were missed.
	HighChurnMissingPayments int `json:"high_churn_missing_payments"`

	// ProductKeywords and ServiceKeywords classify invoice line items by
	// substring match against the normalized description. Hits on both (or
	// neither) sides classify as MIXED.
	ProductKeywords []string `json:"product_keywords"`
	ServiceKeywords []string `json:"service_keywords"`
}

// DefaultConfig returns the thresholds and keyword tables currently in use.
func DefaultConfig() *Config {
	return &Config{
		SettlementTolerance:       decimal.NewFromInt(50),
		BillingPeriodDays:         30,
		MediumChurnDiscrepancyPct: 50,
		HighChurnMissingPayments:  2,
		ProductKeywords: []string{
			"curso", "produto", "livro", "material", "kit", "imersao", "treinamento",
		},
		ServiceKeywords: []string{
			"mentoria", "consultoria", "assinatura", "servico", "suporte",
			"acompanhamento", "sessao",
		},
	}
}

// Validate checks the configuration is internally coherent.
func (c *Config) Validate() error {
	if c.SettlementTolerance.IsNegative() {
		return fmt.Errorf("settlement_tolerance must be non-negative, got %s", c.SettlementTolerance)
	}
	if c.BillingPeriodDays < 1 {
		return fmt.Errorf("billing_period_days must be positive, got %d", c.BillingPeriodDays)
	}
	if c.HighChurnMissingPayments < 0 {
		return fmt.Errorf("high_churn_missing_payments must be non-negative, got %d", c.HighChurnMissingPayments)
	}
	return nil
}

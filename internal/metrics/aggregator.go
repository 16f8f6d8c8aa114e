// Package metrics reduces a reconciled customer set to the run summary.
package metrics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"billing-reconciliation/internal/domain"
)

// Config holds the reporting thresholds.
type Config struct {
	// HighDiscrepancyAmount is the absolute discrepancy, in monetary units,
	// above which a customer counts as a high-discrepancy case.
	HighDiscrepancyAmount decimal.Decimal `json:"high_discrepancy_amount"`
}

// DefaultConfig returns the reporting thresholds currently in use.
func DefaultConfig() *Config {
	return &Config{HighDiscrepancyAmount: decimal.NewFromInt(1000)}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.HighDiscrepancyAmount.IsNegative() {
		return fmt.Errorf("high_discrepancy_amount must be non-negative, got %s", c.HighDiscrepancyAmount)
	}
	return nil
}

// Aggregator computes the run summary in a single pass.
type Aggregator struct {
	cfg *Config
}

// New creates an Aggregator. A nil config uses the defaults.
func New(cfg *Config) *Aggregator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Aggregator{cfg: cfg}
}

// Aggregate reduces the customer set to a Summary. Averages that would
// divide by zero (no customers with expected amounts, no renewing customers)
// are reported as zero.
func (a *Aggregator) Aggregate(customers []domain.ReconciledCustomer) domain.Summary {
	summary := domain.Summary{
		TotalCustomers: len(customers),
		StatusCounts:   make(map[domain.ReconciliationStatus]int),
		PaymentMethods: make(map[string]domain.PaymentMethodStats),
	}

	pctSum := 0.0
	pctCount := 0

	for _, customer := range customers {
		switch customer.SubscriptionStatus {
		case domain.SubscriptionActive:
			summary.ActiveCustomers++
		case domain.SubscriptionCanceled:
			summary.CancelledCustomers++
		}
		if customer.Recurring {
			summary.RecurringCustomers++
			if customer.PaymentOK {
				summary.CompliantRecurring++
			} else {
				summary.NonCompliantRecurring++
			}
		} else {
			summary.OneTimeCustomers++
		}

		summary.ExpectedTotal = summary.ExpectedTotal.Add(customer.ExpectedTotal)
		summary.ExpectedProduct = summary.ExpectedProduct.Add(customer.ExpectedProduct)
		summary.ExpectedService = summary.ExpectedService.Add(customer.ExpectedService)
		summary.CollectedTotal = summary.CollectedTotal.Add(customer.CollectedTotal)
		summary.CollectedProduct = summary.CollectedProduct.Add(customer.CollectedProduct)
		summary.CollectedService = summary.CollectedService.Add(customer.CollectedService)
		summary.PendingTotal = summary.PendingTotal.Add(customer.PendingTotal)
		summary.OverdueTotal = summary.OverdueTotal.Add(customer.OverdueTotal)

		summary.StatusCounts[customer.Status]++

		summary.TotalDiscrepancy = summary.TotalDiscrepancy.Add(customer.Discrepancy)
		if customer.Discrepancy.Abs().GreaterThan(a.cfg.HighDiscrepancyAmount) {
			summary.HighDiscrepancyCount++
		}
		if customer.ExpectedTotal.IsPositive() {
			pctSum += customer.DiscrepancyPercentage
			pctCount++
		}

		summary.TotalRenewals += customer.RenewalCount
		if customer.RenewalCount > 0 {
			summary.CustomersWithRenewals++
		}

		a.countPaymentMethod(&summary, customer)
	}

	if pctCount > 0 {
		summary.AvgDiscrepancyPercentage = pctSum / float64(pctCount)
	}
	if summary.CustomersWithRenewals > 0 {
		summary.AvgRenewals = float64(summary.TotalRenewals) / float64(summary.CustomersWithRenewals)
	}
	for method, stats := range summary.PaymentMethods {
		stats.Percentage = float64(stats.Count) / float64(summary.TotalCustomers) * 100
		summary.PaymentMethods[method] = stats
	}
	return summary
}

// countPaymentMethod buckets the customer under the billing-side method when
// one is known, otherwise under the ledger's payment form.
func (a *Aggregator) countPaymentMethod(summary *domain.Summary, customer domain.ReconciledCustomer) {
	method := ""
	for _, payment := range customer.Payments {
		if payment.Method != "" {
			method = payment.Method
			break
		}
	}
	if method == "" {
		method = customer.PaymentForm
	}
	if method == "" {
		method = "unknown"
	}

	stats := summary.PaymentMethods[method]
	stats.Count++
	stats.Total = stats.Total.Add(customer.ExpectedTotal)
	summary.PaymentMethods[method] = stats
}

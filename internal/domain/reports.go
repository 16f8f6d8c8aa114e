package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethodStats is one bucket of the payment-method histogram.
type PaymentMethodStats struct {
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
	Percentage float64         `json:"percentage"` // of all customers
}

// Summary provides high-level statistics over one reconciliation run.
type Summary struct {
	TotalCustomers     int `json:"total_customers"`
	ActiveCustomers    int `json:"active_customers"`
	CancelledCustomers int `json:"cancelled_customers"`
	RecurringCustomers int `json:"recurring_customers"`
	OneTimeCustomers   int `json:"one_time_customers"`

	ExpectedTotal   decimal.Decimal `json:"expected_total"`
	ExpectedProduct decimal.Decimal `json:"expected_product"`
	ExpectedService decimal.Decimal `json:"expected_service"`

	CollectedTotal   decimal.Decimal `json:"collected_total"`
	CollectedProduct decimal.Decimal `json:"collected_product"`
	CollectedService decimal.Decimal `json:"collected_service"`
	PendingTotal     decimal.Decimal `json:"pending_total"`
	OverdueTotal     decimal.Decimal `json:"overdue_total"`

	StatusCounts map[ReconciliationStatus]int `json:"status_counts"`

	CompliantRecurring    int `json:"compliant_recurring"`
	NonCompliantRecurring int `json:"non_compliant_recurring"`

	TotalDiscrepancy         decimal.Decimal `json:"total_discrepancy"`
	AvgDiscrepancyPercentage float64         `json:"avg_discrepancy_percentage"`
	HighDiscrepancyCount     int             `json:"high_discrepancy_count"`

	TotalRenewals         int     `json:"total_renewals"`
	CustomersWithRenewals int     `json:"customers_with_renewals"`
	AvgRenewals           float64 `json:"avg_renewals"` // over customers with >=1 renewal

	PaymentMethods map[string]PaymentMethodStats `json:"payment_methods"`
}

// Report is the top-level structure for a reconciliation run's output: the
// audit-grade match set, the consolidated customers, and the summary.
type Report struct {
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Matches     MatchSet             `json:"matches"`
	Customers   []ReconciledCustomer `json:"customers"`
	Summary     Summary              `json:"summary"`
}

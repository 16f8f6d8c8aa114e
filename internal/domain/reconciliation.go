package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchType records which tier of the matching cascade produced a match.
type MatchType string

const (
	MatchTaxIDExact MatchType = "TAX_ID_EXACT"
	MatchEmailExact MatchType = "EMAIL_EXACT"
	MatchNameFuzzy  MatchType = "NAME_FUZZY"
)

// Match binds one ledger tax id to a billing customer with a confidence
// score in [0,1].
type Match struct {
	Customer   Customer  `json:"customer"`
	Confidence float64   `json:"confidence"`
	Type       MatchType `json:"type"`
}

// MatchSet holds at most one match per normalized tax id. Absence of a key
// means no billing-side identity was found for that customer.
type MatchSet map[string]Match

// PaymentStatus classifies a derived payment record.
type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "PAID"
	PaymentPending   PaymentStatus = "PENDING"
	PaymentOverdue   PaymentStatus = "OVERDUE"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// PaymentType says which side of the sale a payment settles. MIXED means the
// invoice text did not resolve to one side and the amount is split
// proportionally against the ledger's own product/service ratio.
type PaymentType string

const (
	PaymentProduct PaymentType = "PRODUCT"
	PaymentService PaymentType = "SERVICE"
	PaymentMixed   PaymentType = "MIXED"
)

// PaymentRecord is one payment attempt flattened out of the billing data:
// one per charge, or one per invoice when the invoice carries no charges.
type PaymentRecord struct {
	Date           *time.Time      `json:"date,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Status         PaymentStatus   `json:"status"`
	Method         string          `json:"method"`
	Type           PaymentType     `json:"type"`
	InvoiceID      int64           `json:"invoice_id"`
	SubscriptionID *int64          `json:"subscription_id,omitempty"`
}

// ReconciliationStatus is the settlement classification of one customer.
type ReconciliationStatus string

const (
	// StatusMissingVindi: no billing-provider identity could be matched.
	StatusMissingVindi  ReconciliationStatus = "MISSING_VINDI"
	StatusOverpaid      ReconciliationStatus = "OVERPAID"
	StatusFullyPaid     ReconciliationStatus = "FULLY_PAID"
	StatusPartiallyPaid ReconciliationStatus = "PARTIALLY_PAID"
	StatusNoPayment     ReconciliationStatus = "NO_PAYMENT"
)

// ChurnRisk is a coarse attrition tier from missed payments and discrepancy.
type ChurnRisk string

const (
	ChurnLow    ChurnRisk = "LOW"
	ChurnMedium ChurnRisk = "MEDIUM"
	ChurnHigh   ChurnRisk = "HIGH"
)

// ReconciledCustomer is the consolidated view of one real-world customer:
// everything the ledger expected, everything the provider collected, and the
// classification of the difference.
type ReconciledCustomer struct {
	TaxID        string `json:"tax_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Product      string `json:"product"`
	Seller       string `json:"seller"`
	Channel      string `json:"channel"`
	PaymentForm  string `json:"payment_form"`
	Installments int    `json:"installments"`
	RenewalCount int    `json:"renewal_count"`

	BillingCustomerID *int64    `json:"billing_customer_id,omitempty"`
	MatchType         MatchType `json:"match_type,omitempty"`
	MatchConfidence   float64   `json:"match_confidence"`

	ExpectedTotal   decimal.Decimal `json:"expected_total"`
	ExpectedProduct decimal.Decimal `json:"expected_product"`
	ExpectedService decimal.Decimal `json:"expected_service"`

	CollectedTotal   decimal.Decimal `json:"collected_total"`
	CollectedProduct decimal.Decimal `json:"collected_product"`
	CollectedService decimal.Decimal `json:"collected_service"`
	PendingTotal     decimal.Decimal `json:"pending_total"`
	OverdueTotal     decimal.Decimal `json:"overdue_total"`

	Payments []PaymentRecord `json:"payments"` // most recent first

	Status                ReconciliationStatus `json:"status"`
	Discrepancy           decimal.Decimal      `json:"discrepancy"` // expected - collected
	DiscrepancyPercentage float64              `json:"discrepancy_percentage"`

	Recurring          bool               `json:"recurring"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status,omitempty"`
	NextBillingAt      *time.Time         `json:"next_billing_at,omitempty"`
	PaymentOK          bool               `json:"payment_ok"`
	MissingPayments    int                `json:"missing_payments"`

	ChurnRisk ChurnRisk `json:"churn_risk"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerStatus is the billing provider's own lifecycle state for a customer.
type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
	CustomerArchived CustomerStatus = "archived"
)

// Customer is a billing-provider identity. Read-only here: the provider owns
// the record, this engine only matches against it.
type Customer struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	RegistryCode string         `json:"registry_code"` // CPF/CNPJ as stored upstream, any formatting
	Status       CustomerStatus `json:"status"`
}

// InvoiceStatus is the provider-side lifecycle of a bill.
type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "pending"
	InvoicePaid     InvoiceStatus = "paid"
	InvoiceOverdue  InvoiceStatus = "overdue"
	InvoiceCanceled InvoiceStatus = "canceled"
)

// LineItem is one product/service line on an invoice. Description text is
// the only type signal the provider gives us.
type LineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Charge is an individual payment attempt against an invoice, with its own
// status, timestamp and method.
type Charge struct {
	ID            int64           `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        InvoiceStatus   `json:"status"`
	DueAt         *time.Time      `json:"due_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod string          `json:"payment_method"`
}

// Invoice is a provider bill: an amount owed with zero or more charges.
type Invoice struct {
	ID             int64           `json:"id"`
	CustomerID     int64           `json:"customer_id"`
	SubscriptionID *int64          `json:"subscription_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Status         InvoiceStatus   `json:"status"`
	DueAt          *time.Time      `json:"due_at,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod  string          `json:"payment_method"`
	Items          []LineItem      `json:"items"`
	Charges        []Charge        `json:"charges"`
}

// SubscriptionStatus is the provider-side state of a recurring arrangement.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionCanceled  SubscriptionStatus = "canceled"
	SubscriptionFuture    SubscriptionStatus = "future"
)

// Subscription ties a customer to a recurring billing plan.
type Subscription struct {
	ID            int64              `json:"id"`
	CustomerID    int64              `json:"customer_id"`
	Status        SubscriptionStatus `json:"status"`
	PlanName      string             `json:"plan_name"`
	NextBillingAt *time.Time         `json:"next_billing_at,omitempty"`
}

// BillingSnapshot is the full, already-fetched state of the billing provider
// for one reconciliation run. The engine never fetches incrementally;
// correctness depends on reprocessing complete snapshots.
type BillingSnapshot struct {
	Customers     []Customer     `json:"customers"`
	Invoices      []Invoice      `json:"invoices"`
	Subscriptions []Subscription `json:"subscriptions"`
}

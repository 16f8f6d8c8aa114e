package consolidate_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-reconciliation/internal/consolidate"
	"billing-reconciliation/internal/domain"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newConsolidator() *consolidate.Consolidator {
	return consolidate.New(nil, func() time.Time { return testNow })
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func matchFor(taxID string, customer domain.Customer) domain.MatchSet {
	return domain.MatchSet{
		taxID: {Customer: customer, Confidence: 1.0, Type: domain.MatchTaxIDExact},
	}
}

func paidInvoice(id, customerID int64, amount string, description string) domain.Invoice {
	paidAt := testNow.AddDate(0, -1, 0)
	return domain.Invoice{
		ID:            id,
		CustomerID:    customerID,
		Amount:        dec(amount),
		Status:        domain.InvoicePaid,
		PaidAt:        &paidAt,
		PaymentMethod: "credit_card",
		Items:         []domain.LineItem{{Description: description, Amount: dec(amount)}},
	}
}

func TestConsolidate_ExpectedSumsAreAdditiveOverRenewals(t *testing.T) {
	c := newConsolidator()

	records := []domain.SourceRecord{
		{TaxID: "30426864859", Name: "Maria", ExpectedTotal: dec("100")},
		{TaxID: "30426864859", Name: "Maria", ExpectedTotal: dec("200"), Renewal: true},
	}

	customers := c.Consolidate(records, nil, &domain.BillingSnapshot{})
	require.Len(t, customers, 1)
	assert.True(t, dec("300").Equal(customers[0].ExpectedTotal))
	assert.Equal(t, 1, customers[0].RenewalCount)
}

func TestConsolidate_RenewalCountFallsBackToRowMultiplicity(t *testing.T) {
	c := newConsolidator()

	records := []domain.SourceRecord{
		{TaxID: "30426864859", ExpectedTotal: dec("100")},
		{TaxID: "30426864859", ExpectedTotal: dec("100")},
		{TaxID: "30426864859", ExpectedTotal: dec("100")},
	}

	customers := c.Consolidate(records, nil, &domain.BillingSnapshot{})
	require.Len(t, customers, 1)
	assert.Equal(t, 2, customers[0].RenewalCount)
}

func TestConsolidate_PrimaryRecordIsMostRecentSale(t *testing.T) {
	c := newConsolidator()
	older := testNow.AddDate(-1, 0, 0)
	newer := testNow.AddDate(0, -1, 0)

	records := []domain.SourceRecord{
		{TaxID: "30426864859", Seller: "Ana", Product: "Curso A", SaleDate: &older},
		{TaxID: "30426864859", Seller: "Bruno", Product: "Curso B", SaleDate: &newer},
	}

	customers := c.Consolidate(records, nil, &domain.BillingSnapshot{})
	require.Len(t, customers, 1)
	assert.Equal(t, "Bruno", customers[0].Seller)
	assert.Equal(t, "Curso B", customers[0].Product)
}

func TestConsolidate_StatusClassification(t *testing.T) {
	customer := domain.Customer{ID: 10, RegistryCode: "30426864859"}

	tests := []struct {
		name      string
		expected  string
		collected string
		want      domain.ReconciliationStatus
	}{
		{name: "exact settlement", expected: "1000", collected: "1000", want: domain.StatusFullyPaid},
		{name: "overpaid beyond tolerance", expected: "1000", collected: "1200", want: domain.StatusOverpaid},
		{name: "short but within tolerance", expected: "1000", collected: "960", want: domain.StatusFullyPaid},
		{name: "partial payment", expected: "1000", collected: "500", want: domain.StatusPartiallyPaid},
		{name: "no payment", expected: "1000", collected: "0", want: domain.StatusNoPayment},
		{name: "overpaid exactly at tolerance boundary", expected: "1000", collected: "1050", want: domain.StatusOverpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConsolidator()
			records := []domain.SourceRecord{
				{TaxID: "30426864859", ExpectedTotal: dec(tt.expected)},
			}
			snapshot := &domain.BillingSnapshot{}
			if tt.collected != "0" {
				snapshot.Invoices = []domain.Invoice{paidInvoice(1, 10, tt.collected, "Curso de Vendas")}
			}

			customers := c.Consolidate(records, matchFor("30426864859", customer), snapshot)
			require.Len(t, customers, 1)
			assert.Equal(t, tt.want, customers[0].Status)
		})
	}
}

func TestConsolidate_NoMatchIsMissingVindi(t *testing.T) {
	c := newConsolidator()
	records := []domain.SourceRecord{
		{TaxID: "30426864859", ExpectedTotal: dec("1000")},
	}

	customers := c.Consolidate(records, domain.MatchSet{}, &domain.BillingSnapshot{})
	require.Len(t, customers, 1)
	assert.Equal(t, domain.StatusMissingVindi, customers[0].Status)
	assert.Nil(t, customers[0].BillingCustomerID)
	assert.True(t, dec("1000").Equal(customers[0].Discrepancy))
}

func TestConsolidate_EndToEndPaidInvoice(t *testing.T) {
	c := newConsolidator()
	customer := domain.Customer{ID: 10, Name: "Maria Souza", RegistryCode: "12345678900"}

	records := []domain.SourceRecord{
		{TaxID: "12345678900", Name: "Maria", ExpectedTotal: dec("1500.00")},
	}
	snapshot := &domain.BillingSnapshot{
		Invoices: []domain.Invoice{paidInvoice(1, 10, "1500.00", "Curso Completo")},
	}

	customers := c.Consolidate(records, matchFor("12345678900", customer), snapshot)
	require.Len(t, customers, 1)

	got := customers[0]
	assert.True(t, dec("1500").Equal(got.CollectedTotal))
	assert.True(t, got.Discrepancy.IsZero())
	assert.Equal(t, domain.StatusFullyPaid, got.Status)
	assert.Equal(t, "Maria Souza", got.Name, "billing-side name wins when present")
	require.Len(t, got.Payments, 1)
	assert.Equal(t, domain.PaymentPaid, got.Payments[0].Status)
	assert.Equal(t, domain.PaymentProduct, got.Payments[0].Type)
}

func TestConsolidate_ChargesProducePaymentRecords(t *testing.T) {
	c := newConsolidator()
	customer := domain.Customer{ID: 10, RegistryCode: "30426864859"}

	first := testNow.AddDate(0, -2, 0)
	second := testNow.AddDate(0, -1, 0)
	invoice := domain.Invoice{
		ID:         1,
		CustomerID: 10,
		Amount:     dec("600"),
		Status:     domain.InvoicePending,
		Items:      []domain.LineItem{{Description: "Mentoria Individual", Amount: dec("600")}},
		Charges: []domain.Charge{
			{ID: 1, Amount: dec("300"), Status: domain.InvoicePaid, PaidAt: &first, PaymentMethod: "pix"},
			{ID: 2, Amount: dec("300"), Status: domain.InvoiceOverdue, DueAt: &second, PaymentMethod: "bank_slip"},
		},
	}
	records := []domain.SourceRecord{
		{TaxID: "30426864859", ExpectedTotal: dec("600")},
	}

	customers := c.Consolidate(records, matchFor("30426864859", customer), &domain.BillingSnapshot{Invoices: []domain.Invoice{invoice}})
	require.Len(t, customers, 1)
	got := customers[0]

	require.Len(t, got.Payments, 2)
	// most recent first
	assert.Equal(t, domain.PaymentOverdue, got.Payments[0].Status)
	assert.Equal(t, domain.PaymentPaid, got.Payments[1].Status)
	assert.Equal(t, domain.PaymentService, got.Payments[0].Type)

	assert.True(t, dec("300").Equal(got.CollectedTotal))
	assert.True(t, dec("300").Equal(got.OverdueTotal))
	assert.True(t, dec("300").Equal(got.CollectedService))
	assert.Equal(t, domain.StatusPartiallyPaid, got.Status)
}

func TestConsolidate_MixedSplitsProportionally(t *testing.T) {
	c := newConsolidator()
	customer := domain.Customer{ID: 10, RegistryCode: "30426864859"}

	records := []domain.SourceRecord{
		{
			TaxID:         "30426864859",
			ExpectedTotal: dec("1000"),
			ProductAmount: dec("750"),
			ServiceAmount: dec("250"),
		},
	}
	// Line items name both a product and a service: MIXED.
	invoice := paidInvoice(1, 10, "1000", "Curso de Vendas com Mentoria")

	customers := c.Consolidate(records, matchFor("30426864859", customer), &domain.BillingSnapshot{Invoices: []domain.Invoice{invoice}})
	require.Len(t, customers, 1)
	got := customers[0]

	require.Len(t, got.Payments, 1)
	assert.Equal(t, domain.PaymentMixed, got.Payments[0].Type)
	assert.True(t, dec("750").Equal(got.CollectedProduct), "got %s", got.CollectedProduct)
	assert.True(t, dec("250").Equal(got.CollectedService), "got %s", got.CollectedService)
}

func TestConsolidate_MixedSplitsFiftyFiftyWhenRatioUndefined(t *testing.T) {
	c := newConsolidator()
	customer := domain.Customer{ID: 10, RegistryCode: "30426864859"}

	records := []domain.SourceRecord{
		{TaxID: "30426864859", ExpectedTotal: dec("1000")},
	}
	invoice := paidInvoice(1, 10, "1000", "Pedido 4412") // no keyword on either side

	customers := c.Consolidate(records, matchFor("30426864859", customer), &domain.BillingSnapshot{Invoices: []domain.Invoice{invoice}})
	require.Len(t, customers, 1)
	got := customers[0]
	assert.True(t, dec("500").Equal(got.CollectedProduct))
	assert.True(t, dec("500").Equal(got.CollectedService))
}

func TestConsolidate_SubscriptionLinkageAndCompliance(t *testing.T) {
	c := newConsolidator()
	customer := domain.Customer{ID: 10, RegistryCode: "30426864859"}
	records := []domain.SourceRecord{
		{TaxID: "30426864859", ExpectedTotal: dec("100")},
	}

	t.Run("on schedule", func(t *testing.T) {
		next := testNow.AddDate(0, 1, 0)
		snapshot := &domain.BillingSnapshot{
			Invoices: []domain.Invoice{paidInvoice(1, 10, "100", "Assinatura Mensal")},
			Subscriptions: []domain.Subscription{
				{ID: 1, CustomerID: 10, Status: domain.SubscriptionActive, NextBillingAt: &next},
			},
		}

		got := c.Consolidate(records, matchFor("30426864859", customer), snapshot)[0]
		assert.True(t, got.Recurring)
		assert.Equal(t, domain.SubscriptionActive, got.SubscriptionStatus)
		assert.True(t, got.PaymentOK)
		assert.Equal(t, 0, got.MissingPayments)
		assert.Equal(t, domain.ChurnLow, got.ChurnRisk)
	})

	t.Run("two periods behind", func(t *testing.T) {
		next := testNow.AddDate(0, 0, -65) // two full 30-day periods elapsed
		snapshot := &domain.BillingSnapshot{
			Invoices: []domain.Invoice{paidInvoice(1, 10, "100", "Assinatura Mensal")},
			Subscriptions: []domain.Subscription{
				{ID: 1, CustomerID: 10, Status: domain.SubscriptionActive, NextBillingAt: &next},
			},
		}

		got := c.Consolidate(records, matchFor("30426864859", customer), snapshot)[0]
		assert.Equal(t, 2, got.MissingPayments)
		assert.False(t, got.PaymentOK)
		assert.Equal(t, domain.ChurnMedium, got.ChurnRisk)
	})

	t.Run("three periods behind is high churn", func(t *testing.T) {
		next := testNow.AddDate(0, 0, -95)
		snapshot := &domain.BillingSnapshot{
			Invoices: []domain.Invoice{paidInvoice(1, 10, "100", "Assinatura Mensal")},
			Subscriptions: []domain.Subscription{
				{ID: 1, CustomerID: 10, Status: domain.SubscriptionActive, NextBillingAt: &next},
			},
		}

		got := c.Consolidate(records, matchFor("30426864859", customer), snapshot)[0]
		assert.Equal(t, 3, got.MissingPayments)
		assert.Equal(t, domain.ChurnHigh, got.ChurnRisk)
	})

	t.Run("suspended subscription not held to schedule", func(t *testing.T) {
		next := testNow.AddDate(0, 0, -95)
		snapshot := &domain.BillingSnapshot{
			Invoices: []domain.Invoice{paidInvoice(1, 10, "100", "Assinatura Mensal")},
			Subscriptions: []domain.Subscription{
				{ID: 1, CustomerID: 10, Status: domain.SubscriptionSuspended, NextBillingAt: &next},
			},
		}

		got := c.Consolidate(records, matchFor("30426864859", customer), snapshot)[0]
		assert.True(t, got.Recurring)
		assert.Equal(t, 0, got.MissingPayments)
		assert.False(t, got.PaymentOK)
	})

	t.Run("active subscription preferred over first", func(t *testing.T) {
		next := testNow.AddDate(0, 1, 0)
		snapshot := &domain.BillingSnapshot{
			Subscriptions: []domain.Subscription{
				{ID: 1, CustomerID: 10, Status: domain.SubscriptionCanceled},
				{ID: 2, CustomerID: 10, Status: domain.SubscriptionActive, NextBillingAt: &next},
			},
		}

		got := c.Consolidate(records, matchFor("30426864859", customer), snapshot)[0]
		assert.Equal(t, domain.SubscriptionActive, got.SubscriptionStatus)
		require.NotNil(t, got.NextBillingAt)
		assert.True(t, next.Equal(*got.NextBillingAt))
	})
}

func TestConsolidate_CancelledPaymentsCountNowhere(t *testing.T) {
	c := newConsolidator()
	customer := domain.Customer{ID: 10, RegistryCode: "30426864859"}
	invoice := domain.Invoice{
		ID:         1,
		CustomerID: 10,
		Amount:     dec("400"),
		Status:     domain.InvoiceCanceled,
		Items:      []domain.LineItem{{Description: "Curso", Amount: dec("400")}},
	}
	records := []domain.SourceRecord{
		{TaxID: "30426864859", ExpectedTotal: dec("400")},
	}

	got := c.Consolidate(records, matchFor("30426864859", customer), &domain.BillingSnapshot{Invoices: []domain.Invoice{invoice}})[0]
	assert.True(t, got.CollectedTotal.IsZero())
	assert.True(t, got.PendingTotal.IsZero())
	assert.True(t, got.OverdueTotal.IsZero())
	assert.Equal(t, domain.StatusNoPayment, got.Status)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, domain.PaymentCancelled, got.Payments[0].Status)
}

func TestConsolidate_EmptyInputsYieldEmptyOutput(t *testing.T) {
	c := newConsolidator()
	assert.Empty(t, c.Consolidate(nil, nil, nil))
}

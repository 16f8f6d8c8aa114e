package consolidate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"billing-reconciliation/internal/domain"
)

// Consolidator reduces ledger rows, match results and the billing snapshot
// to one ReconciledCustomer per tax id. It is pure over its inputs; the
// clock is injected so missed-payment arithmetic stays testable.
type Consolidator struct {
	cfg *Config
	now func() time.Time
}

// New creates a Consolidator. A nil now defaults to time.Now.
func New(cfg *Config, now func() time.Time) *Consolidator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if now == nil {
		now = time.Now
	}
	return &Consolidator{cfg: cfg, now: now}
}

// Consolidate produces the reconciled customer set. Customers appear in
// first-seen ledger order; every run recomputes the full set from complete
// snapshots, there is no incremental path.
func (c *Consolidator) Consolidate(
	records []domain.SourceRecord,
	matches domain.MatchSet,
	billing *domain.BillingSnapshot,
) []domain.ReconciledCustomer {
	groups := make(map[string][]domain.SourceRecord)
	var order []string
	for _, record := range records {
		if !record.Usable() {
			continue
		}
		if _, seen := groups[record.TaxID]; !seen {
			order = append(order, record.TaxID)
		}
		groups[record.TaxID] = append(groups[record.TaxID], record)
	}

	invoicesByCustomer := make(map[int64][]domain.Invoice)
	subsByCustomer := make(map[int64][]domain.Subscription)
	if billing != nil {
		for _, invoice := range billing.Invoices {
			invoicesByCustomer[invoice.CustomerID] = append(invoicesByCustomer[invoice.CustomerID], invoice)
		}
		for _, sub := range billing.Subscriptions {
			subsByCustomer[sub.CustomerID] = append(subsByCustomer[sub.CustomerID], sub)
		}
	}

	customers := make([]domain.ReconciledCustomer, 0, len(order))
	for _, taxID := range order {
		group := groups[taxID]
		match, matched := matches[taxID]

		var invoices []domain.Invoice
		var subs []domain.Subscription
		if matched {
			invoices = invoicesByCustomer[match.Customer.ID]
			subs = subsByCustomer[match.Customer.ID]
		}

		customers = append(customers, c.consolidateOne(taxID, group, match, matched, invoices, subs))
	}
	return customers
}

func (c *Consolidator) consolidateOne(
	taxID string,
	group []domain.SourceRecord,
	match domain.Match,
	matched bool,
	invoices []domain.Invoice,
	subs []domain.Subscription,
) domain.ReconciledCustomer {
	primary := primaryRecord(group)

	out := domain.ReconciledCustomer{
		TaxID:        taxID,
		Name:         primary.Name,
		Email:        primary.Email,
		Product:      primary.Product,
		Seller:       primary.Seller,
		Channel:      primary.Channel,
		PaymentForm:  primary.PaymentForm,
		Installments: primary.Installments,
		RenewalCount: renewalCount(group),
	}

	for _, record := range group {
		out.ExpectedTotal = out.ExpectedTotal.Add(record.ExpectedTotal)
		out.ExpectedProduct = out.ExpectedProduct.Add(record.ProductAmount)
		out.ExpectedService = out.ExpectedService.Add(record.ServiceAmount)
	}

	if matched {
		id := match.Customer.ID
		out.BillingCustomerID = &id
		out.MatchType = match.Type
		out.MatchConfidence = match.Confidence
		// The billing side is authoritative for identity fields when it has them.
		if match.Customer.Name != "" {
			out.Name = match.Customer.Name
		}
		if match.Customer.Email != "" {
			out.Email = match.Customer.Email
		}

		out.Payments = c.paymentRecords(invoices)
		c.accumulate(&out)
		c.linkSubscriptions(&out, subs)
	}

	out.Discrepancy = out.ExpectedTotal.Sub(out.CollectedTotal)
	if out.ExpectedTotal.IsPositive() {
		pct, _ := out.Discrepancy.Abs().Div(out.ExpectedTotal).Mul(decimal.NewFromInt(100)).Float64()
		out.DiscrepancyPercentage = pct
	}

	out.Status = c.classifyStatus(&out, matched)
	c.scoreCompliance(&out)
	out.ChurnRisk = c.churnRisk(&out)
	return out
}

// primaryRecord picks the row that sources display fields: the most recent
// sale, or the first row when dates are absent or tied.
func primaryRecord(group []domain.SourceRecord) domain.SourceRecord {
	primary := group[0]
	for _, record := range group[1:] {
		if record.SaleDate == nil {
			continue
		}
		if primary.SaleDate == nil || record.SaleDate.After(*primary.SaleDate) {
			primary = record
		}
	}
	return primary
}

// renewalCount prefers the ledger's own renewal flag, falling back to row
// multiplicity when no row carries the flag.
func renewalCount(group []domain.SourceRecord) int {
	flagged := 0
	for _, record := range group {
		if record.Renewal {
			flagged++
		}
	}
	if flagged == 0 && len(group) > 1 {
		return len(group) - 1
	}
	return flagged
}

// paymentRecords flattens invoices into payment records: one per charge, or
// one for the invoice itself when the provider recorded no charges.
func (c *Consolidator) paymentRecords(invoices []domain.Invoice) []domain.PaymentRecord {
	var payments []domain.PaymentRecord
	for _, invoice := range invoices {
		paymentType := c.classifyInvoice(invoice)

		if len(invoice.Charges) == 0 {
			payments = append(payments, domain.PaymentRecord{
				Date:           coalesceTime(invoice.PaidAt, invoice.DueAt),
				Amount:         invoice.Amount,
				Status:         paymentStatus(invoice.Status),
				Method:         invoice.PaymentMethod,
				Type:           paymentType,
				InvoiceID:      invoice.ID,
				SubscriptionID: invoice.SubscriptionID,
			})
			continue
		}

		for _, charge := range invoice.Charges {
			amount := charge.Amount
			if amount.IsZero() {
				amount = invoice.Amount
			}
			method := charge.PaymentMethod
			if method == "" {
				method = invoice.PaymentMethod
			}
			payments = append(payments, domain.PaymentRecord{
				Date:           coalesceTime(charge.PaidAt, charge.DueAt),
				Amount:         amount,
				Status:         paymentStatus(charge.Status),
				Method:         method,
				Type:           paymentType,
				InvoiceID:      invoice.ID,
				SubscriptionID: invoice.SubscriptionID,
			})
		}
	}

	// most recent first, undated last
	sort.SliceStable(payments, func(i, j int) bool {
		a, b := payments[i].Date, payments[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return payments
}

// accumulate sums the payment records into the collected/pending/overdue
// totals, splitting MIXED paid amounts against the ledger's own
// product/service ratio (50/50 when that ratio is undefined).
func (c *Consolidator) accumulate(out *domain.ReconciledCustomer) {
	half := decimal.NewFromFloat(0.5)
	expectedSplit := out.ExpectedProduct.Add(out.ExpectedService)

	for _, payment := range out.Payments {
		switch payment.Status {
		case domain.PaymentPaid:
			out.CollectedTotal = out.CollectedTotal.Add(payment.Amount)
			switch payment.Type {
			case domain.PaymentProduct:
				out.CollectedProduct = out.CollectedProduct.Add(payment.Amount)
			case domain.PaymentService:
				out.CollectedService = out.CollectedService.Add(payment.Amount)
			default:
				ratio := half
				if expectedSplit.IsPositive() {
					ratio = out.ExpectedProduct.Div(expectedSplit)
				}
				productShare := payment.Amount.Mul(ratio)
				out.CollectedProduct = out.CollectedProduct.Add(productShare)
				out.CollectedService = out.CollectedService.Add(payment.Amount.Sub(productShare))
			}
		case domain.PaymentPending:
			out.PendingTotal = out.PendingTotal.Add(payment.Amount)
		case domain.PaymentOverdue:
			out.OverdueTotal = out.OverdueTotal.Add(payment.Amount)
		}
		// cancelled payments count toward no total
	}
}

func (c *Consolidator) linkSubscriptions(out *domain.ReconciledCustomer, subs []domain.Subscription) {
	if len(subs) == 0 {
		return
	}
	out.Recurring = true
	chosen := subs[0]
	for _, sub := range subs {
		if sub.Status == domain.SubscriptionActive {
			chosen = sub
			break
		}
	}
	out.SubscriptionStatus = chosen.Status
	out.NextBillingAt = chosen.NextBillingAt
}

// classifyStatus is the settlement decision table, evaluated in order.
func (c *Consolidator) classifyStatus(out *domain.ReconciledCustomer, matched bool) domain.ReconciliationStatus {
	if !matched {
		return domain.StatusMissingVindi
	}
	tolerance := c.cfg.SettlementTolerance
	switch {
	case out.Discrepancy.LessThanOrEqual(tolerance.Neg()):
		return domain.StatusOverpaid
	case out.Discrepancy.Abs().LessThanOrEqual(tolerance):
		return domain.StatusFullyPaid
	case out.CollectedTotal.IsPositive():
		return domain.StatusPartiallyPaid
	default:
		return domain.StatusNoPayment
	}
}

// scoreCompliance counts billing periods missed behind next_billing_at and
// derives the recurring payment-ok flag. Only active subscriptions are held
// to the schedule.
func (c *Consolidator) scoreCompliance(out *domain.ReconciledCustomer) {
	if !out.Recurring || out.SubscriptionStatus != domain.SubscriptionActive {
		return
	}
	if out.NextBillingAt != nil {
		if elapsed := c.now().Sub(*out.NextBillingAt); elapsed > 0 {
			period := time.Duration(c.cfg.BillingPeriodDays) * 24 * time.Hour
			out.MissingPayments = int(elapsed / period)
		}
	}
	out.PaymentOK = out.OverdueTotal.IsZero() && out.MissingPayments == 0
}

func (c *Consolidator) churnRisk(out *domain.ReconciledCustomer) domain.ChurnRisk {
	switch {
	case out.MissingPayments > c.cfg.HighChurnMissingPayments:
		return domain.ChurnHigh
	case out.MissingPayments > 0 || out.DiscrepancyPercentage > c.cfg.MediumChurnDiscrepancyPct:
		return domain.ChurnMedium
	default:
		return domain.ChurnLow
	}
}

func coalesceTime(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}

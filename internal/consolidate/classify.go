package consolidate

import (
	"strings"

	"billing-reconciliation/internal/domain"
	"billing-reconciliation/internal/normalize"
)

// classifyInvoice tags an invoice as product or service by scanning its line
// item descriptions against the keyword tables. Evidence on both sides, or
// on neither, yields MIXED, which downstream splits proportionally.
func (c *Consolidator) classifyInvoice(invoice domain.Invoice) domain.PaymentType {
	product := false
	service := false
	for _, item := range invoice.Items {
		description := normalize.Name(item.Description)
		if containsAny(description, c.cfg.ProductKeywords) {
			product = true
		}
		if containsAny(description, c.cfg.ServiceKeywords) {
			service = true
		}
	}
	switch {
	case product && !service:
		return domain.PaymentProduct
	case service && !product:
		return domain.PaymentService
	default:
		return domain.PaymentMixed
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// paymentStatus maps a provider-side invoice/charge status onto the derived
// payment classification.
func paymentStatus(status domain.InvoiceStatus) domain.PaymentStatus {
	switch status {
	case domain.InvoicePaid:
		return domain.PaymentPaid
	case domain.InvoiceOverdue:
		return domain.PaymentOverdue
	case domain.InvoiceCanceled:
		return domain.PaymentCancelled
	default:
		return domain.PaymentPending
	}
}

package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"billing-reconciliation/internal/domain"
)

// renewalMarkers are the values ledger exports use for "this row is a
// renewal of an earlier sale".
var renewalMarkers = map[string]bool{
	"sim": true, "s": true, "yes": true, "y": true,
	"true": true, "1": true, "x": true,
}

// SourceRecordFromRow resolves a raw header-keyed ledger row into a
// normalized SourceRecord. It fails only when no column matches any alias of
// the tax-id field — the one field a row cannot reconcile without. A column
// that matches but holds an invalid value produces a record with an empty
// TaxID, which callers skip rather than fail.
func SourceRecordFromRow(row map[string]string, schema domain.FieldSchema) (domain.SourceRecord, error) {
	rawTaxID, err := schema.MustResolve(row, domain.FieldTaxID)
	if err != nil {
		return domain.SourceRecord{}, fmt.Errorf("unusable ledger row: %w", err)
	}

	get := func(field domain.Field) string {
		value, _ := schema.Resolve(row, field)
		return value
	}

	record := domain.SourceRecord{
		TaxID:         TaxID(rawTaxID),
		Name:          strings.TrimSpace(get(domain.FieldName)),
		Email:         Email(get(domain.FieldEmail)),
		ExpectedTotal: Money(get(domain.FieldTotalAmount)),
		ProductAmount: Money(get(domain.FieldProductAmount)),
		ServiceAmount: Money(get(domain.FieldServiceAmount)),
		SaleDate:      Date(get(domain.FieldSaleDate)),
		PaymentForm:   strings.TrimSpace(get(domain.FieldPaymentForm)),
		Installments:  parseInstallments(get(domain.FieldInstallments)),
		Renewal:       renewalMarkers[strings.ToLower(strings.TrimSpace(get(domain.FieldRenewal)))],
		Product:       strings.TrimSpace(get(domain.FieldProduct)),
		Seller:        strings.TrimSpace(get(domain.FieldSeller)),
		Channel:       strings.TrimSpace(get(domain.FieldChannel)),
	}
	return record, nil
}

func parseInstallments(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field is a logical column of the sales ledger. The export's header text
// varies between spreadsheets, so each field resolves through an ordered alias
// list instead of a fixed header name.
type Field string

const (
	FieldTaxID         Field = "tax_id"
	FieldName          Field = "name"
	FieldEmail         Field = "email"
	FieldTotalAmount   Field = "total_amount"
	FieldProductAmount Field = "product_amount"
	FieldServiceAmount Field = "service_amount"
	FieldSaleDate      Field = "sale_date"
	FieldPaymentForm   Field = "payment_form"
	FieldInstallments  Field = "installments"
	FieldRenewal       Field = "renewal"
	FieldProduct       Field = "product"
	FieldSeller        Field = "seller"
	FieldChannel       Field = "channel"
)

// FieldSchema maps each logical field to the header names that may carry it,
// in priority order. The first alias present in a row wins.
type FieldSchema map[Field][]string

// DefaultFieldSchema covers the header variants observed across ledger exports.
func DefaultFieldSchema() FieldSchema {
	return FieldSchema{
		FieldTaxID:         {"CPF/CNPJ", "CPF", "CNPJ", "Documento", "Doc"},
		FieldName:          {"Nome", "Cliente", "Nome do Cliente", "Razão Social"},
		FieldEmail:         {"Email", "E-mail", "Contato", "Email do Cliente"},
		FieldTotalAmount:   {"Valor", "Valor Total", "Valor da Venda", "Total"},
		FieldProductAmount: {"Valor Produto", "Produto (R$)", "Valor Curso"},
		FieldServiceAmount: {"Valor Serviço", "Valor Servico", "Serviço (R$)", "Valor Mentoria"},
		FieldSaleDate:      {"Data", "Data da Venda", "Data Venda", "Data de Início"},
		FieldPaymentForm:   {"Forma de Pagamento", "Pagamento", "Forma Pgto"},
		FieldInstallments:  {"Parcelas", "Qtd Parcelas", "Parcelamento"},
		FieldRenewal:       {"Renovação", "Renovacao", "Renovou"},
		FieldProduct:       {"Produto", "Curso", "Serviço Contratado"},
		FieldSeller:        {"Vendedor", "Closer", "Responsável"},
		FieldChannel:       {"Origem", "Canal", "Fonte"},
	}
}

// Resolve returns the raw value of a logical field in a header-keyed row.
// Header comparison is case-insensitive and ignores surrounding whitespace.
// The second return reports whether any alias matched a column at all, which
// is distinct from the column being present but empty.
func (s FieldSchema) Resolve(row map[string]string, field Field) (string, bool) {
	aliases, ok := s[field]
	if !ok {
		return "", false
	}
	for _, alias := range aliases {
		for header, value := range row {
			if strings.EqualFold(strings.TrimSpace(header), alias) {
				return strings.TrimSpace(value), true
			}
		}
	}
	return "", false
}

// MustResolve is Resolve for fields the ledger cannot omit.
func (s FieldSchema) MustResolve(row map[string]string, field Field) (string, error) {
	value, ok := s.Resolve(row, field)
	if !ok {
		return "", fmt.Errorf("no column matches any alias of required field %q", field)
	}
	return value, nil
}

// SourceRecord is one row of the sales ledger with its fields already
// resolved and normalized. Several records may share a TaxID: a customer who
// renewed appears once per sale, and their expected amounts are additive.
type SourceRecord struct {
	TaxID         string          `json:"tax_id"` // digits only, 11 or 14
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
	ProductAmount decimal.Decimal `json:"product_amount"`
	ServiceAmount decimal.Decimal `json:"service_amount"`
	SaleDate      *time.Time      `json:"sale_date,omitempty"`
	PaymentForm   string          `json:"payment_form"`
	Installments  int             `json:"installments"`
	Renewal       bool            `json:"renewal"`
	Product       string          `json:"product"`
	Seller        string          `json:"seller"`
	Channel       string          `json:"channel"`
}

// Usable reports whether the record can participate in matching. A record
// without a valid tax id has no join key and is skipped, not failed.
func (r SourceRecord) Usable() bool {
	return r.TaxID != ""
}

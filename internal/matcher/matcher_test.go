package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-reconciliation/internal/domain"
	"billing-reconciliation/internal/matcher"
)

func record(taxID, name, email string) domain.SourceRecord {
	return domain.SourceRecord{TaxID: taxID, Name: name, Email: email}
}

func TestMatch_TaxIDExact(t *testing.T) {
	customers := []domain.Customer{
		{ID: 1, Name: "Completely Different Name", Email: "other@example.com", RegistryCode: "304.268.648-59"},
	}
	m := matcher.New(nil, customers)

	// Tax-id agreement wins regardless of email/name disagreement.
	match, ok := m.Match(record("30426864859", "Maria Souza", "maria@example.com"))
	require.True(t, ok)
	assert.Equal(t, domain.MatchTaxIDExact, match.Type)
	assert.Equal(t, 1.0, match.Confidence)
	assert.Equal(t, int64(1), match.Customer.ID)
}

func TestMatch_TaxIDExact_FirstFoundAmongDuplicates(t *testing.T) {
	customers := []domain.Customer{
		{ID: 1, RegistryCode: "30426864859"},
		{ID: 2, RegistryCode: "304.268.648-59"},
	}
	m := matcher.New(nil, customers)

	match, ok := m.Match(record("30426864859", "", ""))
	require.True(t, ok)
	assert.Equal(t, int64(1), match.Customer.ID, "input order decides among duplicate tax ids")
}

func TestMatch_EmailTier(t *testing.T) {
	// Email match where the billing side has no tax id at all.
	m := matcher.New(nil, []domain.Customer{
		{ID: 7, Name: "Maria", Email: "Maria@Example.com", RegistryCode: ""},
	})
	match, ok := m.Match(record("30426864859", "Maria", "maria@example.com"))
	require.True(t, ok)
	assert.Equal(t, domain.MatchEmailExact, match.Type)
	assert.Equal(t, 0.8, match.Confidence)
	assert.Equal(t, int64(7), match.Customer.ID)

	// Email match where tax ids actively disagree: accepted, weighted down.
	m = matcher.New(nil, []domain.Customer{
		{ID: 8, Name: "Maria", Email: "maria@example.com", RegistryCode: "98765432100"},
	})
	match, ok = m.Match(record("30426864859", "Maria", "maria@example.com"))
	require.True(t, ok)
	assert.Equal(t, domain.MatchEmailExact, match.Type)
	assert.Equal(t, 0.7, match.Confidence)
}

func TestMatch_EmailTier_PicksHighestConfidence(t *testing.T) {
	m := matcher.New(nil, []domain.Customer{
		{ID: 1, Email: "shared@example.com", RegistryCode: "98765432100"}, // conflict, 0.7
		{ID: 2, Email: "shared@example.com", RegistryCode: ""},            // no tax id, 0.8
	})

	match, ok := m.Match(record("30426864859", "", "shared@example.com"))
	require.True(t, ok)
	assert.Equal(t, int64(2), match.Customer.ID)
	assert.Equal(t, 0.8, match.Confidence)
}

func TestMatch_EmailTier_RequiresAtSign(t *testing.T) {
	m := matcher.New(nil, []domain.Customer{
		{ID: 1, Email: "whatsapp 11 99999-0000", RegistryCode: ""},
	})

	// The contact column sometimes carries a phone number; that must not
	// reach the email tier.
	_, ok := m.Match(record("30426864859", "", "whatsapp 11 99999-0000"))
	assert.False(t, ok)
}

func TestMatch_FuzzyNameTier(t *testing.T) {
	m := matcher.New(nil, []domain.Customer{
		// Same 6-digit prefix, different suffix: prefix score 0.6.
		{ID: 3, Name: "Maria Souza Lima", RegistryCode: "30426899999"},
	})

	match, ok := m.Match(record("30426864859", "Maria Souza Lima", ""))
	require.True(t, ok)
	assert.Equal(t, domain.MatchNameFuzzy, match.Type)
	// 0.6*1.0 + 0.4*0.6
	assert.InDelta(t, 0.84, match.Confidence, 0.0001)
}

func TestMatch_FuzzyNameTier_RejectsWithoutPrefix(t *testing.T) {
	m := matcher.New(nil, []domain.Customer{
		{ID: 3, Name: "Maria Souza Lima", RegistryCode: "98765432100"},
	})

	// Perfect name similarity is not enough when the tax ids share no prefix.
	_, ok := m.Match(record("30426864859", "Maria Souza Lima", ""))
	assert.False(t, ok)
}

func TestMatch_FuzzyNameTier_RejectsLowSimilarity(t *testing.T) {
	m := matcher.New(nil, []domain.Customer{
		{ID: 3, Name: "Maria Souza Lima Pereira Alves", RegistryCode: "30426899999"},
	})

	// 2 of 5 tokens overlap: similarity 0.4, below the 0.70 gate.
	_, ok := m.Match(record("30426864859", "Maria Souza", ""))
	assert.False(t, ok)
}

func TestMatch_CascadeOrder(t *testing.T) {
	m := matcher.New(nil, []domain.Customer{
		{ID: 1, Name: "Maria Souza", Email: "maria@example.com", RegistryCode: "98765432100"},
		{ID: 2, Name: "Outro Nome", Email: "outro@example.com", RegistryCode: "30426864859"},
	})

	// Customer 2 wins on tax id even though customer 1 wins on email and name.
	match, ok := m.Match(record("30426864859", "Maria Souza", "maria@example.com"))
	require.True(t, ok)
	assert.Equal(t, int64(2), match.Customer.ID)
	assert.Equal(t, domain.MatchTaxIDExact, match.Type)
}

func TestMatch_NoUsableTaxID(t *testing.T) {
	m := matcher.New(nil, []domain.Customer{
		{ID: 1, Email: "maria@example.com"},
	})

	_, ok := m.Match(record("", "Maria", "maria@example.com"))
	assert.False(t, ok)
}

func TestMatchAll(t *testing.T) {
	m := matcher.New(nil, []domain.Customer{
		{ID: 1, RegistryCode: "30426864859"},
		{ID: 2, RegistryCode: "29188305000150"},
	})

	records := []domain.SourceRecord{
		record("30426864859", "Maria", ""),
		record("30426864859", "Maria", ""), // renewal, same customer
		record("29188305000150", "Empresa X", ""),
		record("11122233344", "Sem Vindi", ""),
		{}, // unusable, skipped
	}

	results := m.MatchAll(records)
	assert.Len(t, results, 2)
	assert.Equal(t, int64(1), results["30426864859"].Customer.ID)
	assert.Equal(t, int64(2), results["29188305000150"].Customer.ID)
	_, found := results["11122233344"]
	assert.False(t, found, "no billing identity means absence, not an error")
}

func TestConfigValidate(t *testing.T) {
	cfg := matcher.DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.NameSimilarityThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = matcher.DefaultConfig()
	cfg.TaxIDPrefixLen = 0
	assert.Error(t, cfg.Validate())
}

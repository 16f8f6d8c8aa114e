package matcher

import (
	"strings"

	"billing-reconciliation/internal/domain"
	"billing-reconciliation/internal/normalize"
)

// Matcher holds the billing customer set, indexed once, and matches ledger
// records against it. It is immutable after New: matching different records
// concurrently is safe because each call only reads the indexes.
type Matcher struct {
	cfg       *Config
	customers []domain.Customer

	// byTaxID keeps the first customer seen per normalized registry id.
	// Duplicate tax ids upstream make tier 1 order-dependent; that ordering
	// follows the provider's listing order on purpose (flagged to the
	// business, not silently resolved here).
	byTaxID map[string]int
	byEmail map[string][]int
}

// New indexes the billing customers for matching.
func New(cfg *Config, customers []domain.Customer) *Matcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := &Matcher{
		cfg:       cfg,
		customers: customers,
		byTaxID:   make(map[string]int, len(customers)),
		byEmail:   make(map[string][]int),
	}
	for i, c := range customers {
		if taxID := normalize.TaxID(c.RegistryCode); taxID != "" {
			if _, seen := m.byTaxID[taxID]; !seen {
				m.byTaxID[taxID] = i
			}
		}
		if email := normalize.Email(c.Email); email != "" {
			m.byEmail[email] = append(m.byEmail[email], i)
		}
	}
	return m
}

// Match runs the cascade for one ledger record and returns at most one
// match. Tiers are strictly ordered: a tax-id hit is never second-guessed by
// email or name evidence.
func (m *Matcher) Match(record domain.SourceRecord) (domain.Match, bool) {
	if record.TaxID == "" {
		return domain.Match{}, false
	}

	if idx, ok := m.byTaxID[record.TaxID]; ok {
		return domain.Match{
			Customer:   m.customers[idx],
			Confidence: 1.0,
			Type:       domain.MatchTaxIDExact,
		}, true
	}

	if match, ok := m.matchByEmail(record); ok {
		return match, true
	}

	return m.matchByName(record)
}

// MatchAll matches every usable record, keyed by tax id. Records sharing a
// tax id (renewals) resolve to the same customer; a lower-confidence result
// never replaces one already recorded for the same key.
func (m *Matcher) MatchAll(records []domain.SourceRecord) domain.MatchSet {
	results := make(domain.MatchSet)
	for _, record := range records {
		if !record.Usable() {
			continue
		}
		if existing, seen := results[record.TaxID]; seen {
			if match, ok := m.Match(record); ok && match.Confidence > existing.Confidence {
				results[record.TaxID] = match
			}
			continue
		}
		if match, ok := m.Match(record); ok {
			results[record.TaxID] = match
		}
	}
	return results
}

func (m *Matcher) matchByEmail(record domain.SourceRecord) (domain.Match, bool) {
	email := normalize.Email(record.Email)
	if !strings.Contains(email, "@") {
		return domain.Match{}, false
	}

	best := domain.Match{Confidence: -1}
	for _, idx := range m.byEmail[email] {
		customer := m.customers[idx]
		confidence := m.cfg.EmailConfidenceTaxIDConflict
		switch customerTaxID := normalize.TaxID(customer.RegistryCode); customerTaxID {
		case record.TaxID:
			confidence = m.cfg.EmailConfidenceTaxIDAgrees
		case "":
			confidence = m.cfg.EmailConfidenceNoTaxID
		}
		// first-seen wins on equal confidence
		if confidence > best.Confidence {
			best = domain.Match{
				Customer:   customer,
				Confidence: confidence,
				Type:       domain.MatchEmailExact,
			}
		}
	}
	if best.Confidence < 0 {
		return domain.Match{}, false
	}
	return best, true
}

func (m *Matcher) matchByName(record domain.SourceRecord) (domain.Match, bool) {
	if strings.TrimSpace(record.Name) == "" {
		return domain.Match{}, false
	}

	best := domain.Match{Confidence: -1}
	for _, customer := range m.customers {
		taxIDScore, ok := m.taxIDScore(record.TaxID, normalize.TaxID(customer.RegistryCode))
		if !ok {
			continue
		}
		similarity := normalize.NameSimilarity(record.Name, customer.Name)
		if similarity <= m.cfg.NameSimilarityThreshold {
			continue
		}
		confidence := m.cfg.NameWeight*similarity + m.cfg.TaxIDWeight*taxIDScore
		if confidence <= m.cfg.MinFuzzyConfidence {
			continue
		}
		if confidence > best.Confidence {
			best = domain.Match{
				Customer:   customer,
				Confidence: confidence,
				Type:       domain.MatchNameFuzzy,
			}
		}
	}
	if best.Confidence < 0 {
		return domain.Match{}, false
	}
	return best, true
}

// taxIDScore scores how the two tax ids relate at the fuzzy tier. Anything
// short of a shared prefix disqualifies the candidate outright.
func (m *Matcher) taxIDScore(source, candidate string) (float64, bool) {
	if source == "" || candidate == "" {
		return 0, false
	}
	if source == candidate {
		return 1.0, true
	}
	n := m.cfg.TaxIDPrefixLen
	if len(source) >= n && len(candidate) >= n && source[:n] == candidate[:n] {
		return m.cfg.TaxIDPrefixScore, true
	}
	return 0, false
}

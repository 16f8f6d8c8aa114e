package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"billing-reconciliation/internal/domain"
)

// JSONBillingRepository implements the BillingRepository interface for a
// billing-provider snapshot exported as a single JSON document. The export
// job owns pagination and retries; this reader assumes the snapshot is
// complete.
type JSONBillingRepository struct{}

// NewJSONBillingRepository creates a new repository instance.
func NewJSONBillingRepository() *JSONBillingRepository {
	return &JSONBillingRepository{}
}

// GetBillingSnapshot reads and parses the billing snapshot file.
func (r *JSONBillingRepository) GetBillingSnapshot(ctx context.Context, path string) (*domain.BillingSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open billing snapshot %s: %w", path, err)
	}

	var snapshot domain.BillingSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse billing snapshot %s: %w", path, err)
	}
	return &snapshot, nil
}

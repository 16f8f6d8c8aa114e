package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"billing-reconciliation/internal/consolidate"
	"billing-reconciliation/internal/domain"
	"billing-reconciliation/internal/matcher"
	"billing-reconciliation/internal/metrics"
	"billing-reconciliation/internal/normalize"
)

// ReconciliationUseCase orchestrates one reconciliation run: fetch both
// sources, normalize, match, consolidate, aggregate.
type ReconciliationUseCase struct {
	ledger  LedgerRepository
	billing BillingRepository

	schema         domain.FieldSchema
	matcherCfg     *matcher.Config
	consolidateCfg *consolidate.Config
	metricsCfg     *metrics.Config

	logger *zap.Logger
	now    func() time.Time
}

// Option customizes a ReconciliationUseCase.
type Option func(*ReconciliationUseCase)

// WithSchema overrides the ledger header alias table.
func WithSchema(schema domain.FieldSchema) Option {
	return func(uc *ReconciliationUseCase) { uc.schema = schema }
}

// WithMatcherConfig overrides the matching thresholds.
func WithMatcherConfig(cfg *matcher.Config) Option {
	return func(uc *ReconciliationUseCase) { uc.matcherCfg = cfg }
}

// WithConsolidateConfig overrides the consolidation thresholds.
func WithConsolidateConfig(cfg *consolidate.Config) Option {
	return func(uc *ReconciliationUseCase) { uc.consolidateCfg = cfg }
}

// WithMetricsConfig overrides the reporting thresholds.
func WithMetricsConfig(cfg *metrics.Config) Option {
	return func(uc *ReconciliationUseCase) { uc.metricsCfg = cfg }
}

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(uc *ReconciliationUseCase) { uc.logger = logger }
}

// WithClock overrides the clock used for run timestamps and missed-payment
// arithmetic.
func WithClock(now func() time.Time) Option {
	return func(uc *ReconciliationUseCase) { uc.now = now }
}

// NewReconciliationUseCase creates a new instance of the usecase.
func NewReconciliationUseCase(ledger LedgerRepository, billing BillingRepository, opts ...Option) *ReconciliationUseCase {
	uc := &ReconciliationUseCase{
		ledger:         ledger,
		billing:        billing,
		schema:         domain.DefaultFieldSchema(),
		matcherCfg:     matcher.DefaultConfig(),
		consolidateCfg: consolidate.DefaultConfig(),
		metricsCfg:     metrics.DefaultConfig(),
		logger:         zap.NewNop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Reconcile performs one full run over complete snapshots of both sources.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, ledgerPath, billingPath string) (*domain.Report, error) {
	if err := uc.validateConfigs(); err != nil {
		return nil, err
	}

	// The two sources are independent and I/O-bound: fetch them concurrently.
	var rows []map[string]string
	var snapshot *domain.BillingSnapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = uc.ledger.GetLedgerRows(gctx, ledgerPath)
		if err != nil {
			return fmt.Errorf("could not get ledger rows: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snapshot, err = uc.billing.GetBillingSnapshot(gctx, billingPath)
		if err != nil {
			return fmt.Errorf("could not get billing snapshot: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := uc.normalizeRows(rows)

	m := matcher.New(uc.matcherCfg, snapshot.Customers)
	matchSet := m.MatchAll(records)

	consolidator := consolidate.New(uc.consolidateCfg, uc.now)
	customers := consolidator.Consolidate(records, matchSet, snapshot)

	summary := metrics.New(uc.metricsCfg).Aggregate(customers)

	uc.logger.Info("reconciliation run complete",
		zap.Int("ledger_rows", len(rows)),
		zap.Int("usable_records", len(records)),
		zap.Int("billing_customers", len(snapshot.Customers)),
		zap.Int("matched", len(matchSet)),
		zap.Int("reconciled", len(customers)),
	)

	return &domain.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: uc.now(),
		Matches:     matchSet,
		Customers:   customers,
		Summary:     summary,
	}, nil
}

// normalizeRows resolves raw rows into source records, dropping rows that
// carry no usable tax id. Malformed values never fail the run.
func (uc *ReconciliationUseCase) normalizeRows(rows []map[string]string) []domain.SourceRecord {
	records := make([]domain.SourceRecord, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		record, err := normalize.SourceRecordFromRow(row, uc.schema)
		if err != nil {
			uc.logger.Warn("ledger row skipped", zap.Int("row", i), zap.Error(err))
			skipped++
			continue
		}
		if !record.Usable() {
			uc.logger.Debug("ledger row has no valid tax id", zap.Int("row", i))
			skipped++
			continue
		}
		records = append(records, record)
	}
	if skipped > 0 {
		uc.logger.Info("ledger rows skipped", zap.Int("skipped", skipped), zap.Int("total", len(rows)))
	}
	return records
}

func (uc *ReconciliationUseCase) validateConfigs() error {
	if err := uc.matcherCfg.Validate(); err != nil {
		return fmt.Errorf("invalid matcher config: %w", err)
	}
	if err := uc.consolidateCfg.Validate(); err != nil {
		return fmt.Errorf("invalid consolidation config: %w", err)
	}
	if err := uc.metricsCfg.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}
	return nil
}

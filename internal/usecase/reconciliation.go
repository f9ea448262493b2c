package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ledger-reconciliation/internal/domain"
	"ledger-reconciliation/internal/engine"
)

// Refs locates the three input tables for a TableRepository.
type Refs struct {
	Order   string
	Gateway string
	Vault   string
}

// ReconciliationUseCase orchestrates the reconciliation process.
type ReconciliationUseCase struct {
	repo   TableRepository
	engine *engine.Engine
	logger *zap.Logger
}

// NewReconciliationUseCase creates a new instance of the usecase.
func NewReconciliationUseCase(repo TableRepository, eng *engine.Engine, logger *zap.Logger) *ReconciliationUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationUseCase{repo: repo, engine: eng, logger: logger}
}

// Reconcile loads the three tables and runs the engine over them. Load
// failures surface as *domain.MalformedInputError, missing key columns as
// *domain.ValidationError; either way no partial report is returned.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, refs Refs) (*domain.ReconciliationReport, error) {
	runID := uuid.NewString()
	log := uc.logger.With(zap.String("run_id", runID))

	// Step 1: Data Ingestion
	in, err := uc.load(ctx, refs)
	if err != nil {
		log.Warn("could not load input tables", zap.Error(err))
		return nil, fmt.Errorf("could not load input tables: %w", err)
	}
	log.Debug("input tables loaded",
		zap.Int("order_rows", len(in.Order.Rows)),
		zap.Int("gateway_rows", len(in.Gateway.Rows)),
		zap.Int("vault_rows", len(in.Vault.Rows)))

	// Step 2: Validation, linkage, classification, aggregation
	report, err := uc.engine.Run(in)
	if err != nil {
		log.Warn("reconciliation rejected", zap.Error(err))
		return nil, fmt.Errorf("reconciliation rejected: %w", err)
	}
	report.RunID = runID

	s := report.Aggregation.Summary
	log.Info("reconciliation completed",
		zap.Int("total_orders", s.TotalOrders),
		zap.Int("fully_reconciled", s.FullyReconciled),
		zap.Int("needs_review", s.NeedsReview),
		zap.Int("alarmed", s.Alarmed),
		zap.Int("status_combinations", len(report.Aggregation.ComboGroups)))
	return report, nil
}

// load fetches the three tables concurrently; each goroutine owns its slot.
func (uc *ReconciliationUseCase) load(ctx context.Context, refs Refs) (engine.Inputs, error) {
	var in engine.Inputs
	g, gctx := errgroup.WithContext(ctx)

	fetch := func(source domain.Source, ref string, dst **domain.Table) {
		g.Go(func() error {
			t, err := uc.repo.GetTable(gctx, ref)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return &domain.MalformedInputError{Source: source, Ref: ref, Err: err}
			}
			if t == nil {
				return &domain.MalformedInputError{Source: source, Ref: ref, Err: errors.New("repository returned no table")}
			}
			*dst = t
			return nil
		})
	}
	fetch(domain.SourceOrder, refs.Order, &in.Order)
	fetch(domain.SourceGateway, refs.Gateway, &in.Gateway)
	fetch(domain.SourceVault, refs.Vault, &in.Vault)

	if err := g.Wait(); err != nil {
		return engine.Inputs{}, err
	}
	return in, nil
}

package inventory

import (
	"context"
	"strings"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StocktakingService runs inventory counts: snapshot system quantities, record
// counted quantities, and finalize the variances into the ledger
type StocktakingService struct {
	runner
	counts inventory.InventoryCountRepository
}

// NewStocktakingService creates a StocktakingService. counts serves reads
// outside of transactions.
func NewStocktakingService(scope TransactionScope, counts inventory.InventoryCountRepository, opts Options) *StocktakingService {
	return &StocktakingService{runner: newRunner(scope, opts), counts: counts}
}

// StartCount opens an in-progress count owned by req.UserID
func (s *StocktakingService) StartCount(ctx context.Context, req StartCountRequest) (*InventoryCountResponse, error) {
	count, err := inventory.NewInventoryCount(req.UserID, strings.TrimSpace(req.Note))
	if err != nil {
		return nil, err
	}
	if err := s.counts.Save(ctx, count); err != nil {
		return nil, err
	}
	resp := ToInventoryCountResponse(count)
	return &resp, nil
}

// GetCount returns a count with its lines and variances
func (s *StocktakingService) GetCount(ctx context.Context, id uuid.UUID) (*InventoryCountResponse, error) {
	count, err := s.counts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInventoryCountResponse(count)
	return &resp, nil
}

// ListCounts lists counts, optionally by status
func (s *StocktakingService) ListCounts(ctx context.Context, filter ListFilter) ([]InventoryCountResponse, int64, error) {
	status := inventory.CountStatus(strings.ToUpper(filter.Status))
	if status != "" && !status.IsValid() {
		return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown count status: "+filter.Status)
	}
	counts, total, err := s.counts.FindAll(ctx, status, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]InventoryCountResponse, len(counts))
	for i := range counts {
		out[i] = ToInventoryCountResponse(&counts[i])
	}
	return out, total, nil
}

// AddCountLine records the counted quantity of a stock item. The first line
// for an item snapshots its current total as the system quantity; later calls
// only replace the counted quantity.
func (s *StocktakingService) AddCountLine(ctx context.Context, countID uuid.UUID, ref inventory.ItemRef, actual decimal.Decimal) (*InventoryCountItemResponse, error) {
	if ref.IsPackage() {
		return nil, shared.NewDomainError("INVALID_ITEM_KIND", "Counts are recorded on stock items, not packages")
	}
	var line inventory.InventoryCountItem
	err := s.execute(ctx, "count.add_line", func(repos TransactionalRepositories, _ *eventSink) error {
		count, err := repos.CountRepo().FindByIDForUpdate(ctx, countID)
		if err != nil {
			return err
		}
		resolved, err := resolveRef(ctx, repos.StockItemRepo(), repos.PackageRepo(), ref)
		if err != nil {
			return err
		}
		l, _, err := count.AddOrUpdateLine(resolved.Item, actual)
		if err != nil {
			return err
		}
		line = *l
		return repos.CountRepo().Save(ctx, count)
	})
	if err != nil {
		return nil, err
	}
	return &InventoryCountItemResponse{
		ID:             line.ID,
		ItemID:         line.ItemID,
		ItemKind:       line.ItemKind.String(),
		SystemQuantity: line.SystemQuantity,
		ActualQuantity: line.ActualQuantity,
		Variance:       line.Variance(),
	}, nil
}

// CompleteCount closes an in-progress count for edits
func (s *StocktakingService) CompleteCount(ctx context.Context, id uuid.UUID) (*InventoryCountResponse, error) {
	var count *inventory.InventoryCount
	err := s.execute(ctx, "count.complete", func(repos TransactionalRepositories, _ *eventSink) error {
		var err error
		count, err = repos.CountRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := count.Complete(); err != nil {
			return err
		}
		return repos.CountRepo().Save(ctx, count)
	})
	if err != nil {
		return nil, err
	}
	resp := ToInventoryCountResponse(count)
	return &resp, nil
}

// FinalizeCount applies every non-zero variance of a completed count as an
// ADJUSTMENT entry by the count's owner and marks it reconciled. If any
// adjustment would take an item below zero, nothing is applied.
func (s *StocktakingService) FinalizeCount(ctx context.Context, id uuid.UUID) (*InventoryCountResponse, error) {
	var (
		count   *inventory.InventoryCount
		applied int
	)
	err := s.execute(ctx, "count.finalize", func(repos TransactionalRepositories, events *eventSink) error {
		var err error
		count, err = repos.CountRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := count.CanFinalize(); err != nil {
			return err
		}
		ids := count.ItemIDs()
		items, err := repos.StockItemRepo().FindByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		entries, err := count.Finalize(items)
		if err != nil {
			return err
		}
		applied = len(entries)
		if err := saveItemsAndEntries(ctx, repos, items, entries); err != nil {
			return err
		}
		if err := repos.CountRepo().Save(ctx, count); err != nil {
			return err
		}
		events.collect(count)
		collectItems(events, ids, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("Inventory count reconciled",
		zap.String("count_id", id.String()),
		zap.Int("adjustments", applied),
	)
	resp := ToInventoryCountResponse(count)
	return &resp, nil
}

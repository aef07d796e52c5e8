package inventory

import (
	"context"
	"iter"
	"strings"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultHistoryPageSize is the number of entries fetched per query by History
const DefaultHistoryPageSize = 100

// LedgerService posts quantity changes and reads the audit trail
type LedgerService struct {
	runner
	ledger   inventory.LedgerRepository
	pageSize int
}

// NewLedgerService creates a LedgerService. ledger serves history reads
// outside of transactions.
func NewLedgerService(scope TransactionScope, ledger inventory.LedgerRepository, pageSize int, opts Options) *LedgerService {
	if pageSize <= 0 {
		pageSize = DefaultHistoryPageSize
	}
	return &LedgerService{
		runner:   newRunner(scope, opts),
		ledger:   ledger,
		pageSize: pageSize,
	}
}

// Apply locks the item, changes its total by req.Delta and appends the
// matching ledger entry, all in one transaction. A change that would take the
// total below zero fails with *inventory.InsufficientStockError.
func (s *LedgerService) Apply(ctx context.Context, req ApplyRequest) (*LedgerEntryResponse, error) {
	op := inventory.Operation(strings.ToUpper(strings.TrimSpace(req.Operation)))
	if err := op.ValidateDelta(req.Delta); err != nil {
		return nil, err
	}

	var entry *inventory.LedgerEntry
	err := s.execute(ctx, "ledger.apply", func(repos TransactionalRepositories, events *eventSink) error {
		item, err := repos.StockItemRepo().FindByIDForUpdate(ctx, req.ItemID)
		if err != nil {
			return err
		}
		entry, err = item.ApplyDelta(op, req.Delta, req.ActorID, req.Reason, req.ShipmentItemID)
		if err != nil {
			return err
		}
		if err := repos.StockItemRepo().Save(ctx, item); err != nil {
			return err
		}
		if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return err
		}
		events.collect(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// History returns the item's entries newest first, at most limit of them
// (limit <= 0 means all). Pages are fetched lazily by keyset on the entry ID,
// and each range over the sequence starts again from the newest entry.
// A query error is yielded once and ends the sequence.
func (s *LedgerService) History(ctx context.Context, itemID uuid.UUID, limit int) iter.Seq2[inventory.LedgerEntry, error] {
	return func(yield func(inventory.LedgerEntry, error) bool) {
		var beforeID int64
		emitted := 0
		for {
			size := s.pageSize
			if limit > 0 && limit-emitted < size {
				size = limit - emitted
			}
			if size <= 0 {
				return
			}
			page, err := s.ledger.ListByItem(ctx, itemID, beforeID, size)
			if err != nil {
				yield(inventory.LedgerEntry{}, err)
				return
			}
			for _, entry := range page {
				if !yield(entry, nil) {
					return
				}
				emitted++
				beforeID = entry.ID
			}
			if len(page) < size {
				return
			}
		}
	}
}

// PageSize is the largest page ListHistory returns
func (s *LedgerService) PageSize() int {
	return s.pageSize
}

// ListHistory collects one page of History for API responses. Pass the last
// returned ID as beforeID to continue.
func (s *LedgerService) ListHistory(ctx context.Context, itemID uuid.UUID, beforeID int64, limit int) ([]LedgerEntryResponse, error) {
	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}
	if beforeID < 0 {
		return nil, shared.NewDomainError("INVALID_CURSOR", "before_id cannot be negative")
	}
	entries, err := s.ledger.ListByItem(ctx, itemID, beforeID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLedgerEntryResponse(&entries[i])
	}
	return out, nil
}

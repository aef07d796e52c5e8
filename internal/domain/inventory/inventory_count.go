package inventory

import (
	"fmt"
	"time"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeInventoryCount is the aggregate type name used in events
const AggregateTypeInventoryCount = "InventoryCount"

// CountStatus is the lifecycle state of a stocktaking session
type CountStatus string

const (
	CountStatusInProgress CountStatus = "IN_PROGRESS"
	CountStatusCompleted  CountStatus = "COMPLETED"
	CountStatusReconciled CountStatus = "RECONCILED"
)

func (s CountStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is known
func (s CountStatus) IsValid() bool {
	switch s {
	case CountStatusInProgress, CountStatusCompleted, CountStatusReconciled:
		return true
	}
	return false
}

// CanTransitionTo returns true if the count may move to target
func (s CountStatus) CanTransitionTo(target CountStatus) bool {
	switch s {
	case CountStatusInProgress:
		return target == CountStatusCompleted
	case CountStatusCompleted:
		return target == CountStatusReconciled
	}
	return false
}

// InventoryCountItem is one counted stock item. SystemQuantity is frozen when the
// line is created; ActualQuantity stays editable while the count is in progress.
type InventoryCountItem struct {
	ID             uuid.UUID
	CountID        uuid.UUID
	ItemID         uuid.UUID
	ItemKind       ItemKind
	SystemQuantity decimal.Decimal
	ActualQuantity decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Variance returns actual minus system quantity
func (i *InventoryCountItem) Variance() decimal.Decimal {
	return i.ActualQuantity.Sub(i.SystemQuantity)
}

// InventoryCount is a stocktaking session owned by one user
type InventoryCount struct {
	shared.BaseAggregateRoot
	UserID       uuid.UUID
	Note         string
	Status       CountStatus
	Items        []InventoryCountItem
	CompletedAt  *time.Time
	ReconciledAt *time.Time
}

// NewInventoryCount opens a new session
func NewInventoryCount(userID uuid.UUID, note string) (*InventoryCount, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Inventory count must have an owner")
	}
	return &InventoryCount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Note:              note,
		Status:            CountStatusInProgress,
		Items:             make([]InventoryCountItem, 0),
	}, nil
}

// FindLine returns the line for itemID, or nil
func (c *InventoryCount) FindLine(itemID uuid.UUID) *InventoryCountItem {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddOrUpdateLine records the counted quantity for item. A new line snapshots the
// item's current total quantity; an existing line only gets its actual quantity updated.
// The returned bool is true when a line was created.
func (c *InventoryCount) AddOrUpdateLine(item *StockItem, actual decimal.Decimal) (*InventoryCountItem, bool, error) {
	if c.Status != CountStatusInProgress {
		return nil, false, shared.NewIllegalStateTransitionError(AggregateTypeInventoryCount, string(c.Status), "edit lines of")
	}
	if item == nil {
		return nil, false, shared.NewDomainError("INVALID_ITEM", "Count line must reference a stock item")
	}
	if actual.IsNegative() {
		return nil, false, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	if err := shared.CheckScale("INVALID_QUANTITY", "Counted quantity", actual); err != nil {
		return nil, false, err
	}

	now := time.Now()
	if line := c.FindLine(item.ID); line != nil {
		line.ActualQuantity = actual
		line.UpdatedAt = now
		c.Touch()
		return line, false, nil
	}

	c.Items = append(c.Items, InventoryCountItem{
		ID:             uuid.New(),
		CountID:        c.ID,
		ItemID:         item.ID,
		ItemKind:       item.Kind,
		SystemQuantity: item.TotalQuantity,
		ActualQuantity: actual,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	c.Touch()
	return &c.Items[len(c.Items)-1], true, nil
}

// Complete closes the count for line edits
func (c *InventoryCount) Complete() error {
	if !c.Status.CanTransitionTo(CountStatusCompleted) {
		return shared.NewIllegalStateTransitionError(AggregateTypeInventoryCount, string(c.Status), "complete")
	}
	if len(c.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot complete an inventory count without lines")
	}
	now := time.Now()
	c.Status = CountStatusCompleted
	c.CompletedAt = &now
	c.Touch()
	c.IncrementVersion()
	return nil
}

// CanFinalize reports whether Finalize may run
func (c *InventoryCount) CanFinalize() error {
	switch c.Status {
	case CountStatusReconciled:
		return &AlreadyFinalizedError{CountID: c.ID}
	case CountStatusCompleted:
		return nil
	}
	return shared.NewIllegalStateTransitionError(AggregateTypeInventoryCount, string(c.Status), "finalize")
}

// Reason returns the ledger reason used for this count's adjustments
func (c *InventoryCount) Reason() string {
	return fmt.Sprintf("stocktake #%s", c.ID)
}

// Finalize applies every non-zero variance to its stock item as an adjustment
// and marks the count reconciled. items must contain every line's stock item.
// On error nothing on the count changes; the caller discards item mutations by
// rolling back.
func (c *InventoryCount) Finalize(items map[uuid.UUID]*StockItem) ([]*LedgerEntry, error) {
	if err := c.CanFinalize(); err != nil {
		return nil, err
	}

	actor := c.UserID
	entries := make([]*LedgerEntry, 0, len(c.Items))
	for i := range c.Items {
		line := &c.Items[i]
		variance := line.Variance()
		if variance.IsZero() {
			continue
		}
		item, ok := items[line.ItemID]
		if !ok {
			return nil, fmt.Errorf("stock item %s of count line %s: %w", line.ItemID, line.ID, shared.ErrNotFound)
		}
		entry, err := item.ApplyDelta(OperationAdjustment, variance, &actor, c.Reason(), nil)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	now := time.Now()
	c.Status = CountStatusReconciled
	c.ReconciledAt = &now
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewInventoryCountReconciledEvent(c, len(entries)))
	return entries, nil
}

// ItemIDs returns the stock item IDs of the lines in lock order
func (c *InventoryCount) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, line := range c.Items {
		ids = append(ids, line.ItemID)
	}
	return shared.UniqueSortedIDs(ids)
}

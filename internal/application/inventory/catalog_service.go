package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// CatalogService manages stock items and packages and resolves item references
type CatalogService struct {
	runner
	repos Repositories
}

// NewCatalogService creates a CatalogService. repos serve reads outside of transactions.
func NewCatalogService(scope TransactionScope, repos Repositories, opts Options) *CatalogService {
	return &CatalogService{runner: newRunner(scope, opts), repos: repos}
}

// CreateStockItem adds a material or product with zero quantities
func (s *CatalogService) CreateStockItem(ctx context.Context, req CreateStockItemRequest) (*StockItemResponse, error) {
	kind, err := inventory.ParseItemKind(req.Kind)
	if err != nil {
		return nil, err
	}
	item, err := inventory.NewStockItem(kind, req.Code, req.Name, req.Unit, req.Price)
	if err != nil {
		return nil, err
	}
	if req.Barcode != "" {
		item.SetBarcode(req.Barcode)
	}
	if err := s.repos.StockItems.Create(ctx, item); err != nil {
		return nil, err
	}
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// GetStockItem returns an item with its current quantities
func (s *CatalogService) GetStockItem(ctx context.Context, id uuid.UUID) (*StockItemResponse, error) {
	item, err := s.repos.StockItems.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// ListStockItems lists items, optionally of one kind
func (s *CatalogService) ListStockItems(ctx context.Context, filter ListFilter) ([]StockItemResponse, int64, error) {
	var kind inventory.ItemKind
	if filter.Kind != "" {
		k, err := inventory.ParseItemKind(filter.Kind)
		if err != nil {
			return nil, 0, err
		}
		if !k.IsStocked() {
			return nil, 0, shared.NewDomainError("INVALID_ITEM_KIND", "Stock items are MATERIAL or PRODUCT")
		}
		kind = k
	}
	items, total, err := s.repos.StockItems.FindAll(ctx, kind, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]StockItemResponse, len(items))
	for i := range items {
		out[i] = ToStockItemResponse(&items[i])
	}
	return out, total, nil
}

// UpdatePrice changes the catalog price of an item
func (s *CatalogService) UpdatePrice(ctx context.Context, id uuid.UUID, req UpdatePriceRequest) (*StockItemResponse, error) {
	var item *inventory.StockItem
	err := s.execute(ctx, "catalog.update_price", func(repos TransactionalRepositories, _ *eventSink) error {
		var err error
		item, err = repos.StockItemRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := item.UpdatePrice(req.Price); err != nil {
			return err
		}
		return repos.StockItemRepo().Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// DeleteStockItem removes an item and its packages. Items with ledger history
// cannot be deleted, nor can items still named by count, production or
// shipment lines.
func (s *CatalogService) DeleteStockItem(ctx context.Context, id uuid.UUID) error {
	return s.execute(ctx, "catalog.delete_item", func(repos TransactionalRepositories, _ *eventSink) error {
		item, err := repos.StockItemRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		n, err := repos.LedgerRepo().CountByItem(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return shared.NewIllegalStateTransitionError(inventory.AggregateTypeStockItem, "with ledger history", "delete")
		}
		if !item.ReservedQuantity.IsZero() {
			return shared.NewIllegalStateTransitionError(inventory.AggregateTypeStockItem, "with reservations", "delete")
		}
		pkgs, err := repos.PackageRepo().FindByItem(ctx, id)
		if err != nil {
			return err
		}
		for i := range pkgs {
			if err := repos.PackageRepo().Delete(ctx, pkgs[i].ID); err != nil {
				return err
			}
		}
		return repos.StockItemRepo().Delete(ctx, id)
	})
}

// CreatePackage defines a bundle of an existing item
func (s *CatalogService) CreatePackage(ctx context.Context, req CreatePackageRequest) (*PackageResponse, error) {
	item, err := s.repos.StockItems.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	pkg, err := inventory.NewPackage(item, req.Name, req.BundleSize, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Packages.Create(ctx, pkg); err != nil {
		return nil, err
	}
	resp := ToPackageResponse(pkg, item)
	return &resp, nil
}

// ListPackages lists the bundles of an item with current bundle counts
func (s *CatalogService) ListPackages(ctx context.Context, itemID uuid.UUID) ([]PackageResponse, error) {
	item, err := s.repos.StockItems.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	pkgs, err := s.repos.Packages.FindByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := make([]PackageResponse, len(pkgs))
	for i := range pkgs {
		out[i] = ToPackageResponse(&pkgs[i], item)
	}
	return out, nil
}

// GetPackageAvailability reads the package and its item fresh and derives
// the bundle counts from the item's current quantities
func (s *CatalogService) GetPackageAvailability(ctx context.Context, packageID uuid.UUID) (*PackageResponse, error) {
	pkg, err := s.repos.Packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	item, err := s.repos.StockItems.FindByID(ctx, pkg.ItemID)
	if err != nil {
		return nil, err
	}
	resp := ToPackageResponse(pkg, item)
	return &resp, nil
}

// Lookup resolves a scanned or typed code to an item reference. The value is
// matched against item codes first, then barcodes.
func (s *CatalogService) Lookup(ctx context.Context, code string) (*ItemRefResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Lookup code cannot be empty")
	}
	item, err := s.repos.StockItems.FindByCode(ctx, code)
	if errors.Is(err, shared.ErrNotFound) {
		item, err = s.repos.StockItems.FindByBarcode(ctx, code)
	}
	if err != nil {
		return nil, err
	}
	return &ItemRefResponse{Kind: item.Kind.String(), ID: item.ID}, nil
}

// ResolvedItem is what an ItemRef points at: the stock item whose quantities
// move, and the package when the reference was a bundle
type ResolvedItem struct {
	Item    *inventory.StockItem
	Package *inventory.Package
}

// Resolve loads the objects behind ref without locking
func (s *CatalogService) Resolve(ctx context.Context, ref inventory.ItemRef) (*ResolvedItem, error) {
	return resolveRef(ctx, s.repos.StockItems, s.repos.Packages, ref)
}

// resolveRef loads the stock item (and package) behind ref and checks that a
// stock item reference names the right kind
func resolveRef(ctx context.Context, items inventory.StockItemRepository, pkgs inventory.PackageRepository, ref inventory.ItemRef) (*ResolvedItem, error) {
	if ref.IsPackage() {
		pkg, err := pkgs.FindByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		item, err := items.FindByID(ctx, pkg.ItemID)
		if err != nil {
			return nil, err
		}
		return &ResolvedItem{Item: item, Package: pkg}, nil
	}
	item, err := items.FindByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	if item.Kind != ref.Kind {
		return nil, shared.NewDomainError("INVALID_ITEM_KIND", "Item "+ref.ID.String()+" is a "+item.Kind.String()+", not a "+ref.Kind.String())
	}
	return &ResolvedItem{Item: item}, nil
}

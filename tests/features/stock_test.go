package features

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	appinv "github.com/erp/stockcore/internal/application/inventory"
	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/infrastructure/persistence"
	"github.com/erp/stockcore/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// stockWorld holds the services and the state shared by the steps of one scenario
type stockWorld struct {
	t *testing.T

	catalog     *appinv.CatalogService
	ledger      *appinv.LedgerService
	fulfillment *appinv.FulfillmentService
	stocktaking *appinv.StocktakingService
	production  *appinv.ProductionService

	actor    uuid.UUID
	items    map[string]uuid.UUID
	packages map[string]uuid.UUID
	shipment uuid.UUID
	count    uuid.UUID
	order    uuid.UUID
	line     uuid.UUID
	work     uuid.UUID
	lastErr  error
}

func (w *stockWorld) reset(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db, 0)
	repos := persistence.NewRepositories(db)
	opts := appinv.Options{
		Publisher: &testutil.RecordingPublisher{},
		Retry:     appinv.RetryPolicy{Attempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}

	*w = stockWorld{
		t:           t,
		catalog:     appinv.NewCatalogService(scope, repos, opts),
		ledger:      appinv.NewLedgerService(scope, repos.Ledger, 50, opts),
		fulfillment: appinv.NewFulfillmentService(scope, repos.Shipments, appinv.NewReservationManager(nil, nil), opts),
		stocktaking: appinv.NewStocktakingService(scope, repos.Counts, opts),
		production:  appinv.NewProductionService(scope, repos.Orders, repos.WorkOrders, opts),
		actor:       testutil.TestUserID(),
		items:       make(map[string]uuid.UUID),
		packages:    make(map[string]uuid.UUID),
	}
}

func quantity(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func (w *stockWorld) itemID(code string) (uuid.UUID, error) {
	id, ok := w.items[code]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown item %q", code)
	}
	return id, nil
}

// record keeps the error of a When step for a later Then step
func (w *stockWorld) record(err error) error {
	w.lastErr = err
	return nil
}

func (w *stockWorld) aProductWithUnitsInStock(code string, units int) error {
	item, err := w.catalog.CreateStockItem(context.Background(), appinv.CreateStockItemRequest{
		Kind:  "PRODUCT",
		Code:  code,
		Name:  code,
		Unit:  "pcs",
		Price: decimal.RequireFromString("2.50"),
	})
	if err != nil {
		return err
	}
	w.items[code] = item.ID
	_, err = w.ledger.Apply(context.Background(), appinv.ApplyRequest{
		ItemID:    item.ID,
		Operation: "INCOMING",
		Delta:     quantity(units),
		ActorID:   &w.actor,
		Reason:    "opening balance",
	})
	return err
}

func (w *stockWorld) aPackageOfHolding(name, code string, size int) error {
	itemID, err := w.itemID(code)
	if err != nil {
		return err
	}
	pkg, err := w.catalog.CreatePackage(context.Background(), appinv.CreatePackageRequest{
		ItemID:     itemID,
		Name:       name,
		BundleSize: quantity(size),
		Price:      decimal.RequireFromString("27"),
	})
	if err != nil {
		return err
	}
	w.packages[name] = pkg.ID
	return nil
}

func (w *stockWorld) newShipment() (uuid.UUID, error) {
	s, err := w.fulfillment.CreateShipment(context.Background(), appinv.CreateShipmentRequest{
		Sender:      "Main warehouse",
		Destination: "Customer depot",
		Recipient:   "ACME",
		CreatedBy:   w.actor,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return s.ID, nil
}

func (w *stockWorld) aPendingShipment() error {
	id, err := w.newShipment()
	w.shipment = id
	return err
}

func (w *stockWorld) reserve(shipmentID uuid.UUID, kind inventory.ItemKind, id uuid.UUID, units int) error {
	ref, err := inventory.NewItemRef(kind, id)
	if err != nil {
		return err
	}
	_, err = w.fulfillment.ReserveLine(context.Background(), shipmentID, ref, quantity(units))
	return w.record(err)
}

func (w *stockWorld) iReserveUnitsOf(units int, code string) error {
	id, err := w.itemID(code)
	if err != nil {
		return err
	}
	if err := w.reserve(w.shipment, inventory.ItemKindProduct, id, units); err != nil {
		return err
	}
	return w.lastErr
}

func (w *stockWorld) iReserveUnitsOfOnAnotherShipment(units int, code string) error {
	id, err := w.itemID(code)
	if err != nil {
		return err
	}
	other, err := w.newShipment()
	if err != nil {
		return err
	}
	return w.reserve(other, inventory.ItemKindProduct, id, units)
}

func (w *stockWorld) iReserveBundlesOf(bundles int, name string) error {
	id, ok := w.packages[name]
	if !ok {
		return fmt.Errorf("unknown package %q", name)
	}
	if err := w.reserve(w.shipment, inventory.ItemKindPackage, id, bundles); err != nil {
		return err
	}
	return w.lastErr
}

func (w *stockWorld) iPackageTheShipment() error {
	_, err := w.fulfillment.PackageShipment(context.Background(), w.shipment)
	return err
}

func (w *stockWorld) iShipTheShipment() error {
	_, err := w.fulfillment.ShipShipment(context.Background(), w.shipment, w.actor)
	return w.record(err)
}

func (w *stockWorld) iReturnTheShipment() error {
	_, err := w.fulfillment.ReturnShipment(context.Background(), w.shipment, w.actor, "")
	return err
}

func (w *stockWorld) iDeleteTheShipment() error {
	return w.fulfillment.DeleteShipment(context.Background(), w.shipment)
}

func (w *stockWorld) theShipmentIs(status string) error {
	s, err := w.fulfillment.GetShipment(context.Background(), w.shipment)
	if err != nil {
		return err
	}
	if s.Status != status {
		return fmt.Errorf("shipment status: got %s want %s", s.Status, status)
	}
	return nil
}

func (w *stockWorld) theOperationFailsWith(code string) error {
	if w.lastErr == nil {
		return fmt.Errorf("expected %s, the operation succeeded", code)
	}
	var domainErr *shared.DomainError
	if !errors.As(w.lastErr, &domainErr) {
		return fmt.Errorf("expected %s, got %v", code, w.lastErr)
	}
	if domainErr.Code != code {
		return fmt.Errorf("error code: got %s want %s (%v)", domainErr.Code, code, w.lastErr)
	}
	return nil
}

func (w *stockWorld) itemHasTotalsOf(code string, total, reserved, available int) error {
	id, err := w.itemID(code)
	if err != nil {
		return err
	}
	item, err := w.catalog.GetStockItem(context.Background(), id)
	if err != nil {
		return err
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want int
	}{
		{"total", item.TotalQuantity, total},
		{"reserved", item.ReservedQuantity, reserved},
		{"available", item.AvailableQuantity, available},
	}
	for _, c := range checks {
		if !c.got.Equal(quantity(c.want)) {
			return fmt.Errorf("%s of %s: got %s want %d", c.name, code, c.got, c.want)
		}
	}
	return nil
}

func (w *stockWorld) packageHasBundlesAvailable(name string, bundles int) error {
	id, ok := w.packages[name]
	if !ok {
		return fmt.Errorf("unknown package %q", name)
	}
	pkg, err := w.catalog.GetPackageAvailability(context.Background(), id)
	if err != nil {
		return err
	}
	if !pkg.AvailableBundles.Equal(quantity(bundles)) {
		return fmt.Errorf("available bundles of %s: got %s want %d", name, pkg.AvailableBundles, bundles)
	}
	return nil
}

func (w *stockWorld) theLatestLedgerEntryIs(code, operation string, delta, balance int) error {
	id, err := w.itemID(code)
	if err != nil {
		return err
	}
	entries, err := w.ledger.ListHistory(context.Background(), id, 0, 1)
	if err != nil {
		return err
	}
	if len(entries) != 1 {
		return fmt.Errorf("%s has no ledger entries", code)
	}
	e := entries[0]
	if e.Operation != operation {
		return fmt.Errorf("operation: got %s want %s", e.Operation, operation)
	}
	if !e.Delta.Equal(quantity(delta)) {
		return fmt.Errorf("delta: got %s want %d", e.Delta, delta)
	}
	if !e.BalanceAfter.Equal(quantity(balance)) {
		return fmt.Errorf("balance after: got %s want %d", e.BalanceAfter, balance)
	}
	return nil
}

func (w *stockWorld) anInventoryCount() error {
	c, err := w.stocktaking.StartCount(context.Background(), appinv.StartCountRequest{
		Note:   "cycle count",
		UserID: w.actor,
	})
	if err != nil {
		return err
	}
	w.count = c.ID
	return nil
}

func (w *stockWorld) iCountUnitsOf(units int, code string) error {
	id, err := w.itemID(code)
	if err != nil {
		return err
	}
	ref, err := inventory.NewItemRef(inventory.ItemKindProduct, id)
	if err != nil {
		return err
	}
	_, err = w.stocktaking.AddCountLine(context.Background(), w.count, ref, quantity(units))
	return err
}

func (w *stockWorld) iCompleteTheCount() error {
	_, err := w.stocktaking.CompleteCount(context.Background(), w.count)
	return err
}

func (w *stockWorld) iFinalizeTheCount() error {
	_, err := w.stocktaking.FinalizeCount(context.Background(), w.count)
	return w.record(err)
}

func (w *stockWorld) theCountIs(status string) error {
	c, err := w.stocktaking.GetCount(context.Background(), w.count)
	if err != nil {
		return err
	}
	if c.Status != status {
		return fmt.Errorf("count status: got %s want %s", c.Status, status)
	}
	return nil
}

func (w *stockWorld) aProductionOrderRequesting(units int, code string) error {
	id, err := w.itemID(code)
	if err != nil {
		return err
	}
	ctx := context.Background()
	order, err := w.production.CreateOrder(ctx, appinv.CreateOrderRequest{Note: "restock", CreatedBy: w.actor})
	if err != nil {
		return err
	}
	order, err = w.production.AddOrderItem(ctx, order.ID, appinv.AddOrderItemRequest{
		StockItemID: id,
		Requested:   quantity(units),
	})
	if err != nil {
		return err
	}
	w.order = order.ID
	w.line = order.Items[0].ID
	return nil
}

func (w *stockWorld) aWorkOrderTargeting(units int) error {
	wo, err := w.production.PlanWorkOrder(context.Background(), w.order, appinv.PlanWorkOrderRequest{
		OrderItemID: w.line,
		Target:      quantity(units),
		ShiftDate:   time.Now().UTC().Truncate(24 * time.Hour),
	})
	if err != nil {
		return err
	}
	w.work = wo.ID
	return nil
}

func (w *stockWorld) theWorkOrderIsCompletedWith(units int) error {
	_, err := w.production.CompleteWorkOrder(context.Background(), w.work, quantity(units), w.actor)
	return err
}

func (w *stockWorld) theProductionOrderIs(status string) error {
	order, err := w.production.GetOrder(context.Background(), w.order)
	if err != nil {
		return err
	}
	if order.Status != status {
		return fmt.Errorf("order status: got %s want %s", order.Status, status)
	}
	return nil
}

func initializeScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		w := &stockWorld{}

		ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
			w.reset(t)
			return ctx, nil
		})

		ctx.Step(`^a product "([^"]*)" with (\d+) units in stock$`, w.aProductWithUnitsInStock)
		ctx.Step(`^a package "([^"]*)" of "([^"]*)" holding (\d+) units$`, w.aPackageOfHolding)
		ctx.Step(`^a pending shipment$`, w.aPendingShipment)
		ctx.Step(`^I reserve (\d+) units of "([^"]*)"$`, w.iReserveUnitsOf)
		ctx.Step(`^I reserve (\d+) units of "([^"]*)" on another shipment$`, w.iReserveUnitsOfOnAnotherShipment)
		ctx.Step(`^I reserve (\d+) bundles of "([^"]*)"$`, w.iReserveBundlesOf)
		ctx.Step(`^I package the shipment$`, w.iPackageTheShipment)
		ctx.Step(`^I ship the shipment$`, w.iShipTheShipment)
		ctx.Step(`^I return the shipment$`, w.iReturnTheShipment)
		ctx.Step(`^I delete the shipment$`, w.iDeleteTheShipment)
		ctx.Step(`^the shipment is "([^"]*)"$`, w.theShipmentIs)
		ctx.Step(`^the operation fails with "([^"]*)"$`, w.theOperationFailsWith)
		ctx.Step(`^"([^"]*)" has (\d+) total, (\d+) reserved and (-?\d+) available$`, w.itemHasTotalsOf)
		ctx.Step(`^"([^"]*)" has (\d+) bundles available$`, w.packageHasBundlesAvailable)
		ctx.Step(`^the latest ledger entry of "([^"]*)" is ([A-Z]+) (-?\d+) leaving (-?\d+)$`, w.theLatestLedgerEntryIs)
		ctx.Step(`^an inventory count$`, w.anInventoryCount)
		ctx.Step(`^I count (\d+) units of "([^"]*)"$`, w.iCountUnitsOf)
		ctx.Step(`^I complete the count$`, w.iCompleteTheCount)
		ctx.Step(`^I finalize the count$`, w.iFinalizeTheCount)
		ctx.Step(`^the count is "([^"]*)"$`, w.theCountIs)
		ctx.Step(`^a production order requesting (\d+) units of "([^"]*)"$`, w.aProductionOrderRequesting)
		ctx.Step(`^a work order targeting (\d+) units$`, w.aWorkOrderTargeting)
		ctx.Step(`^the work order is completed with (\d+) units$`, w.theWorkOrderIsCompletedWith)
		ctx.Step(`^the production order is "([^"]*)"$`, w.theProductionOrderIs)
	}
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "stock",
		ScenarioInitializer: initializeScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"stock.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

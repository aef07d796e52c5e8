// Package models contains GORM persistence models that map to database tables.
// Domain types carry no ORM tags; each model converts with ToDomain/FromDomain.
//
// Files:
//   - base.go: shared ID/timestamp/version columns
//   - stock.go: stock items, packages and ledger entries
//   - shipment.go: shipments and shipment lines
//   - inventory_count.go: stocktaking sessions and lines
//   - production.go: production orders, order items and work orders
package models

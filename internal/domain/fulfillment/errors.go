package fulfillment

import (
	"fmt"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// MutualExclusivityError is returned when a line references both or neither of
// a stock item and a package
type MutualExclusivityError struct {
	HasItem    bool
	HasPackage bool
}

func (e *MutualExclusivityError) Error() string {
	if e.HasItem && e.HasPackage {
		return "shipment line must reference either a stock item or a package, not both"
	}
	return "shipment line must reference a stock item or a package"
}

func (e *MutualExclusivityError) Unwrap() error {
	return shared.ErrInvalidInput
}

// AlreadyShippedError is returned when shipping a shipment that is already shipped
type AlreadyShippedError struct {
	ShipmentID uuid.UUID
}

func (e *AlreadyShippedError) Error() string {
	return fmt.Sprintf("shipment %s is already shipped", e.ShipmentID)
}

func (e *AlreadyShippedError) Unwrap() error {
	return shared.ErrInvalidState
}

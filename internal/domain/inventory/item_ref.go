package inventory

import (
	"fmt"
	"strings"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemKind tags what an ItemRef points at
type ItemKind string

const (
	ItemKindMaterial ItemKind = "MATERIAL"
	ItemKindProduct  ItemKind = "PRODUCT"
	ItemKindPackage  ItemKind = "PACKAGE"
)

// IsValid returns true for a known kind
func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindMaterial, ItemKindProduct, ItemKindPackage:
		return true
	}
	return false
}

// IsStocked returns true for kinds that own a quantity pool
func (k ItemKind) IsStocked() bool {
	return k == ItemKindMaterial || k == ItemKindProduct
}

func (k ItemKind) String() string {
	return string(k)
}

// ParseItemKind parses a kind case-insensitively
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", shared.NewDomainError("INVALID_ITEM_KIND", fmt.Sprintf("unknown item kind %q", s))
	}
	return k, nil
}

// ItemRef identifies a material, a product or a package
type ItemRef struct {
	Kind ItemKind  `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// NewItemRef validates and builds an ItemRef
func NewItemRef(kind ItemKind, id uuid.UUID) (ItemRef, error) {
	if !kind.IsValid() {
		return ItemRef{}, shared.NewDomainError("INVALID_ITEM_KIND", fmt.Sprintf("unknown item kind %q", kind))
	}
	if id == uuid.Nil {
		return ItemRef{}, shared.NewDomainError("INVALID_ITEM_REF", "Item reference ID cannot be empty")
	}
	return ItemRef{Kind: kind, ID: id}, nil
}

// IsPackage returns true if the reference points at a bundle
func (r ItemRef) IsPackage() bool {
	return r.Kind == ItemKindPackage
}

func (r ItemRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}

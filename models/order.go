package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
)

func (s OrderStatus) IsValid() bool {
	return s == StatusPending || s == StatusOutForDelivery || s == StatusDelivered
}

func (s OrderStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusOutForDelivery:
		return 1
	case StatusDelivered:
		return 2
	}
	return -1
}

// ValidStatusTransition reports whether an order may move from one status to
// another. Orders only move forward; re-setting the current status is a no-op
// and allowed.
func ValidStatusTransition(from, to OrderStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	return to.rank() >= from.rank()
}

type CartLine struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"-"`
	MenuItemID uuid.UUID `db:"menu_item_id" json:"menu_item_id"`
	Title      string    `db:"title" json:"title"`
	Quantity   int       `db:"quantity" json:"quantity"`
	UnitPrice  float64   `db:"unit_price" json:"unit_price"`
}

func (l CartLine) LineTotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// MergeCartLine applies the merge policy for repeated adds of one menu item:
// quantities sum, the unit price captured at first add is kept, and the
// merged quantity must fit the item's inventory.
func MergeCartLine(existing CartLine, added int, item MenuItem) (CartLine, error) {
	merged := existing
	if merged.Quantity == 0 {
		merged.MenuItemID = item.ID
		merged.Title = item.Title
		merged.UnitPrice = item.Price
	}
	merged.Quantity += added
	if merged.Quantity > item.Inventory {
		return CartLine{}, fmt.Errorf("%w: requested %d of %q, only %d available",
			ErrInsufficientInventory, merged.Quantity, item.Title, item.Inventory)
	}
	return merged, nil
}

// CartTotal sums line totals; this is the amount a checkout snapshots.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}

type Cart struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

type Order struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	UserID         uuid.UUID   `db:"user_id" json:"user_id"`
	DeliveryCrewID *uuid.UUID  `db:"delivery_crew_id" json:"delivery_crew_id,omitempty"`
	Status         OrderStatus `db:"status" json:"status"`
	Total          float64     `db:"total" json:"total"`
	PlacedAt       time.Time   `db:"placed_at" json:"placed_at"`
	Items          []OrderItem `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrderID    uuid.UUID `db:"order_id" json:"-"`
	MenuItemID uuid.UUID `db:"menu_item_id" json:"menu_item_id"`
	Title      string    `db:"title" json:"title"`
	Quantity   int       `db:"quantity" json:"quantity"`
	UnitPrice  float64   `db:"unit_price" json:"unit_price"`
}

// CartAddInput is the body for adding a menu item to the cart.
type CartAddInput struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
}

func (in *CartAddInput) Validate() error {
	if in.MenuItemID == uuid.Nil {
		return fmt.Errorf("%w: menu_item_id is required", ErrValidation)
	}
	if in.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	return nil
}

// OrderScope describes which orders a caller may see.
type OrderScope int

const (
	ScopeOwn OrderScope = iota
	ScopeAssigned
	ScopeAll
)

// ScopeForRoles resolves listing visibility: managers see everything,
// delivery crew see orders assigned to them, everyone else sees their own.
func ScopeForRoles(roles []Role) OrderScope {
	if HasRole(roles, RoleManager) {
		return ScopeAll
	}
	if HasRole(roles, RoleDeliveryCrew) {
		return ScopeAssigned
	}
	return ScopeOwn
}

// CanEditOrder decides the order-update permission matrix. A manager may
// change anything; the assigned crew member may change status but not
// reassign the order; everyone else is denied.
func CanEditOrder(isManager, isAssignedCrew, reassignsCrew bool) error {
	if isManager {
		return nil
	}
	if isAssignedCrew {
		if reassignsCrew {
			return fmt.Errorf("%w: delivery crew cannot reassign orders", ErrPermissionDenied)
		}
		return nil
	}
	return ErrPermissionDenied
}

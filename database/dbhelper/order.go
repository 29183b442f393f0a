package dbhelper

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ray-remotestate/bistro/database"
	"github.com/ray-remotestate/bistro/models"
)

// PlaceOrder snapshots the user's cart into an order and empties the cart,
// all inside one transaction: a failure anywhere leaves the cart untouched.
func PlaceOrder(userID uuid.UUID) (models.Order, error) {
	var order models.Order

	txErr := database.Tx(func(tx *sql.Tx) error {
		rows, err := tx.Query(`
			SELECT c.menu_item_id, m.title, c.quantity, c.unit_price
			FROM cart_items c
			JOIN menu_items m ON m.id = c.menu_item_id
			WHERE c.user_id = $1
			ORDER BY c.created_at ASC
			FOR UPDATE OF c`, userID)
		if err != nil {
			return err
		}

		var lines []models.CartLine
		for rows.Next() {
			var l models.CartLine
			if err := rows.Scan(&l.MenuItemID, &l.Title, &l.Quantity, &l.UnitPrice); err != nil {
				rows.Close()
				return err
			}
			lines = append(lines, l)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		if len(lines) == 0 {
			return models.ErrEmptyCart
		}

		order.UserID = userID
		order.Status = models.StatusPending
		order.Total = models.CartTotal(lines)

		err = tx.QueryRow(`
			INSERT INTO orders (user_id, status, total)
			VALUES ($1, $2, $3)
			RETURNING id, placed_at`, userID, order.Status, order.Total).
			Scan(&order.ID, &order.PlacedAt)
		if err != nil {
			return err
		}

		for _, l := range lines {
			var item models.OrderItem
			err := tx.QueryRow(`
				INSERT INTO order_items (order_id, menu_item_id, title, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				order.ID, l.MenuItemID, l.Title, l.Quantity, l.UnitPrice).Scan(&item.ID)
			if err != nil {
				return err
			}
			item.OrderID = order.ID
			item.MenuItemID = l.MenuItemID
			item.Title = l.Title
			item.Quantity = l.Quantity
			item.UnitPrice = l.UnitPrice
			order.Items = append(order.Items, item)
		}

		_, err = tx.Exec(`DELETE FROM cart_items WHERE user_id = $1`, userID)
		return err
	})
	if txErr != nil {
		return models.Order{}, txErr
	}

	return order, nil
}

// ListOrders returns orders visible to the caller under the given scope.
func ListOrders(scope models.OrderScope, callerID uuid.UUID) ([]models.Order, error) {
	query := `
		SELECT id, user_id, delivery_crew_id, status, total, placed_at
		FROM orders`
	var args []interface{}

	switch scope {
	case models.ScopeAll:
	case models.ScopeAssigned:
		query += ` WHERE delivery_crew_id = $1`
		args = append(args, callerID)
	default:
		query += ` WHERE user_id = $1`
		args = append(args, callerID)
	}
	query += ` ORDER BY placed_at DESC`

	rows, err := database.Bistro.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.DeliveryCrewID, &o.Status, &o.Total, &o.PlacedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// GetOrder fetches one order with its items, without scope checks; callers
// decide visibility.
func GetOrder(id uuid.UUID) (models.Order, error) {
	var o models.Order
	err := database.Bistro.QueryRow(`
		SELECT id, user_id, delivery_crew_id, status, total, placed_at
		FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &o.DeliveryCrewID, &o.Status, &o.Total, &o.PlacedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, fmt.Errorf("%w: order %s", models.ErrNotFound, id)
	}
	if err != nil {
		return models.Order{}, err
	}

	rows, err := database.Bistro.Query(`
		SELECT id, order_id, menu_item_id, title, quantity, unit_price
		FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return models.Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Title, &item.Quantity, &item.UnitPrice); err != nil {
			return models.Order{}, err
		}
		o.Items = append(o.Items, item)
	}

	return o, rows.Err()
}

// UpdateOrder applies a status change and/or a delivery crew assignment. Nil
// arguments leave the field unchanged. Assigning a crew to a pending order
// sends it out for delivery.
func UpdateOrder(id uuid.UUID, status *models.OrderStatus, crewID *uuid.UUID) (models.Order, error) {
	var updated models.Order

	txErr := database.Tx(func(tx *sql.Tx) error {
		var current models.Order
		err := tx.QueryRow(`
			SELECT id, user_id, delivery_crew_id, status, total, placed_at
			FROM orders WHERE id = $1
			FOR UPDATE`, id).
			Scan(&current.ID, &current.UserID, &current.DeliveryCrewID, &current.Status, &current.Total, &current.PlacedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: order %s", models.ErrNotFound, id)
		}
		if err != nil {
			return err
		}

		newStatus := current.Status
		if status != nil {
			if !models.ValidStatusTransition(current.Status, *status) {
				return fmt.Errorf("%w: cannot move order from %s to %s",
					models.ErrValidation, current.Status, *status)
			}
			newStatus = *status
		}

		newCrew := current.DeliveryCrewID
		if crewID != nil {
			var isCrew bool
			err := tx.QueryRow(`
				SELECT EXISTS (
					SELECT 1 FROM user_roles
					WHERE user_id = $1 AND role = $2
				)`, *crewID, models.RoleDeliveryCrew).Scan(&isCrew)
			if err != nil {
				return err
			}
			if !isCrew {
				return fmt.Errorf("%w: user %s is not delivery crew", models.ErrValidation, *crewID)
			}
			newCrew = crewID
			if status == nil && newStatus == models.StatusPending {
				newStatus = models.StatusOutForDelivery
			}
		}

		err = tx.QueryRow(`
			UPDATE orders SET status = $1, delivery_crew_id = $2
			WHERE id = $3
			RETURNING id, user_id, delivery_crew_id, status, total, placed_at`,
			newStatus, newCrew, id).
			Scan(&updated.ID, &updated.UserID, &updated.DeliveryCrewID, &updated.Status, &updated.Total, &updated.PlacedAt)
		return err
	})
	if txErr != nil {
		return models.Order{}, txErr
	}

	return updated, nil
}

func DeleteOrder(id uuid.UUID) error {
	res, err := database.Bistro.Exec(`DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, id)
	}
	return nil
}

package dbhelper

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ray-remotestate/bistro/database"
	"github.com/ray-remotestate/bistro/models"
)

func GetCartLines(userID uuid.UUID) ([]models.CartLine, error) {
	rows, err := database.Bistro.Query(`
		SELECT c.id, c.user_id, c.menu_item_id, m.title, c.quantity, c.unit_price
		FROM cart_items c
		JOIN menu_items m ON m.id = c.menu_item_id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var l models.CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.MenuItemID, &l.Title, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

// AddCartItem merges quantity into an existing line for the same menu item,
// keeping the unit price captured when the line was first added. The merge
// happens inside the upsert so concurrent first adds of the same item sum
// instead of overwriting each other.
func AddCartItem(userID, menuItemID uuid.UUID, quantity int) (models.CartLine, error) {
	var line models.CartLine

	txErr := database.Tx(func(tx *sql.Tx) error {
		var item models.MenuItem
		err := tx.QueryRow(`
			SELECT id, title, price, inventory FROM menu_items
			WHERE id = $1`, menuItemID).
			Scan(&item.ID, &item.Title, &item.Price, &item.Inventory)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: menu item %s does not exist", models.ErrValidation, menuItemID)
		}
		if err != nil {
			return err
		}

		var id uuid.UUID
		var mergedQty int
		var unitPrice float64
		err = tx.QueryRow(`
			INSERT INTO cart_items (user_id, menu_item_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, menu_item_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			RETURNING id, quantity, unit_price`,
			userID, menuItemID, quantity, item.Price).
			Scan(&id, &mergedQty, &unitPrice)
		if err != nil {
			return err
		}

		// The cap is enforced on the post-merge quantity; failing here
		// rolls the whole add back.
		prior := models.CartLine{
			MenuItemID: item.ID,
			Title:      item.Title,
			Quantity:   mergedQty - quantity,
			UnitPrice:  unitPrice,
		}
		line, err = models.MergeCartLine(prior, quantity, item)
		if err != nil {
			return err
		}

		line.ID = id
		line.UserID = userID
		return nil
	})
	if txErr != nil {
		return models.CartLine{}, txErr
	}

	return line, nil
}

// ClearCart empties the user's cart; clearing an empty cart succeeds.
func ClearCart(userID uuid.UUID) error {
	_, err := database.Bistro.Exec(`DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

package dbhelper

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ray-remotestate/bistro/database"
	"github.com/ray-remotestate/bistro/models"
)

// Postgres error codes we translate into the error taxonomy.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isPQError(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

func ListCategories() ([]models.Category, error) {
	rows, err := database.Bistro.Query(`
		SELECT id, title, created_at
		FROM categories
		ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func CreateCategory(title string) (models.Category, error) {
	var c models.Category
	c.Title = title

	err := database.Bistro.QueryRow(`
		INSERT INTO categories (title)
		VALUES ($1)
		RETURNING id, created_at`, title).Scan(&c.ID, &c.CreatedAt)
	if isPQError(err, pqUniqueViolation) {
		return models.Category{}, fmt.Errorf("%w: category %q already exists", models.ErrValidation, title)
	}
	if err != nil {
		return models.Category{}, err
	}

	return c, nil
}

func UpdateCategory(id uuid.UUID, title string) (models.Category, error) {
	var c models.Category
	c.ID = id
	c.Title = title

	err := database.Bistro.QueryRow(`
		UPDATE categories SET title = $1
		WHERE id = $2
		RETURNING created_at`, title, id).Scan(&c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, fmt.Errorf("%w: category %s", models.ErrNotFound, id)
	}
	if isPQError(err, pqUniqueViolation) {
		return models.Category{}, fmt.Errorf("%w: category %q already exists", models.ErrValidation, title)
	}
	if err != nil {
		return models.Category{}, err
	}

	return c, nil
}

// DeleteCategory refuses to delete a category still referenced by menu items.
func DeleteCategory(id uuid.UUID) error {
	res, err := database.Bistro.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if isPQError(err, pqForeignKeyViolation) {
		return fmt.Errorf("%w: category %s still has menu items", models.ErrConflict, id)
	}
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %s", models.ErrNotFound, id)
	}
	return nil
}

func ListMenuItems(filter models.MenuItemFilter) ([]models.MenuItem, error) {
	query := `
		SELECT id, title, price, inventory, category_id, created_at
		FROM menu_items
		WHERE ($1::uuid IS NULL OR category_id = $1)
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%')
		ORDER BY title ASC`

	var categoryID interface{}
	if filter.CategoryID != uuid.Nil {
		categoryID = filter.CategoryID
	}

	rows, err := database.Bistro.Query(query, categoryID, filter.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.Title, &m.Price, &m.Inventory, &m.CategoryID, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}

	return items, rows.Err()
}

func GetMenuItem(id uuid.UUID) (models.MenuItem, error) {
	var m models.MenuItem
	err := database.Bistro.QueryRow(`
		SELECT id, title, price, inventory, category_id, created_at
		FROM menu_items WHERE id = $1`, id).
		Scan(&m.ID, &m.Title, &m.Price, &m.Inventory, &m.CategoryID, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MenuItem{}, fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
	}
	return m, err
}

func CreateMenuItem(in models.MenuItemInput) (models.MenuItem, error) {
	m := models.MenuItem{
		Title:      in.Title,
		Price:      in.Price,
		Inventory:  in.Inventory,
		CategoryID: in.CategoryID,
	}

	err := database.Bistro.QueryRow(`
		INSERT INTO menu_items (title, price, inventory, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		in.Title, in.Price, in.Inventory, in.CategoryID).Scan(&m.ID, &m.CreatedAt)
	if isPQError(err, pqForeignKeyViolation) {
		return models.MenuItem{}, fmt.Errorf("%w: category %s does not exist", models.ErrValidation, in.CategoryID)
	}
	if err != nil {
		return models.MenuItem{}, err
	}

	return m, nil
}

func UpdateMenuItem(id uuid.UUID, in models.MenuItemInput) (models.MenuItem, error) {
	m := models.MenuItem{
		ID:         id,
		Title:      in.Title,
		Price:      in.Price,
		Inventory:  in.Inventory,
		CategoryID: in.CategoryID,
	}

	err := database.Bistro.QueryRow(`
		UPDATE menu_items
		SET title = $1, price = $2, inventory = $3, category_id = $4
		WHERE id = $5
		RETURNING created_at`,
		in.Title, in.Price, in.Inventory, in.CategoryID, id).Scan(&m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MenuItem{}, fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
	}
	if isPQError(err, pqForeignKeyViolation) {
		return models.MenuItem{}, fmt.Errorf("%w: category %s does not exist", models.ErrValidation, in.CategoryID)
	}
	if err != nil {
		return models.MenuItem{}, err
	}

	return m, nil
}

func DeleteMenuItem(id uuid.UUID) error {
	res, err := database.Bistro.Exec(`DELETE FROM menu_items WHERE id = $1`, id)
	if isPQError(err, pqForeignKeyViolation) {
		return fmt.Errorf("%w: menu item %s is still referenced by carts or orders", models.ErrConflict, id)
	}
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
	}
	return nil
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type MenuItem struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Price      float64   `db:"price" json:"price"`
	Inventory  int       `db:"inventory" json:"inventory"`
	CategoryID uuid.UUID `db:"category_id" json:"category_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CategoryInput is the body for creating or updating a category.
type CategoryInput struct {
	Title string `json:"title"`
}

func (in *CategoryInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}

// MenuItemInput is the body for creating or updating a menu item.
type MenuItemInput struct {
	Title      string    `json:"title"`
	Price      float64   `json:"price"`
	Inventory  int       `json:"inventory"`
	CategoryID uuid.UUID `json:"category_id"`
}

// Validate collects every failing field so the caller gets one complete
// answer instead of fixing fields one request at a time.
func (in *MenuItemInput) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(in.Title) == "" {
		result = multierror.Append(result, fmt.Errorf("title is required"))
	}
	if in.Price <= 0 {
		result = multierror.Append(result, fmt.Errorf("price must be positive"))
	}
	if in.Inventory < 0 {
		result = multierror.Append(result, fmt.Errorf("inventory must not be negative"))
	}
	if in.CategoryID == uuid.Nil {
		result = multierror.Append(result, fmt.Errorf("category_id is required"))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// MenuItemFilter narrows menu item listings; zero values mean no filter.
type MenuItemFilter struct {
	CategoryID uuid.UUID
	Search     string
}

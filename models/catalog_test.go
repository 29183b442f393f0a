package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCategoryInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"valid", "Desserts", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := CategoryInput{Title: tt.title}
			err := in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestMenuItemInputValidate(t *testing.T) {
	catID := uuid.New()

	valid := MenuItemInput{Title: "margherita", Price: 10, Inventory: 5, CategoryID: catID}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid input = %v", err)
	}

	tests := []struct {
		name    string
		in      MenuItemInput
		wantMsg string
	}{
		{"empty title", MenuItemInput{Price: 10, Inventory: 5, CategoryID: catID}, "title is required"},
		{"zero price", MenuItemInput{Title: "x", Inventory: 5, CategoryID: catID}, "price must be positive"},
		{"negative price", MenuItemInput{Title: "x", Price: -1, Inventory: 5, CategoryID: catID}, "price must be positive"},
		{"negative inventory", MenuItemInput{Title: "x", Price: 1, Inventory: -1, CategoryID: catID}, "inventory must not be negative"},
		{"missing category", MenuItemInput{Title: "x", Price: 1, Inventory: 5}, "category_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v, want ErrValidation", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantMsg)
			}
		})
	}

	// every failing field shows up in one pass
	bad := MenuItemInput{}
	err := bad.Validate()
	if err == nil {
		t.Fatal("Validate() on zero input = nil, want error")
	}
	for _, msg := range []string{"title is required", "price must be positive", "category_id is required"} {
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("Validate() error %q missing %q", err, msg)
		}
	}
}

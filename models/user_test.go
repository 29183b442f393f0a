package models

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Role
		wantKnow bool
	}{
		{"manager", "manager", RoleManager, true},
		{"manager capitalized", "Manager", RoleManager, true},
		{"delivery_crew", "delivery_crew", RoleDeliveryCrew, true},
		{"delivery-crew", "delivery-crew", RoleDeliveryCrew, true},
		{"display name", "Delivery Crew", RoleDeliveryCrew, true},
		{"unknown", "admin", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRole(tt.input)
			if ok != tt.wantKnow || got != tt.want {
				t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantKnow)
			}
		})
	}
}

func TestHasRole(t *testing.T) {
	roles := []Role{RoleDeliveryCrew}
	if !HasRole(roles, RoleDeliveryCrew) {
		t.Error("HasRole should find delivery_crew")
	}
	if HasRole(roles, RoleManager) {
		t.Error("HasRole should not find manager")
	}
	if HasRole(nil, RoleManager) {
		t.Error("HasRole on empty set should be false")
	}
}

func TestRoleIsValid(t *testing.T) {
	if !RoleManager.IsValid() || !RoleDeliveryCrew.IsValid() {
		t.Error("known roles should be valid")
	}
	if Role("admin").IsValid() {
		t.Error("unknown role should be invalid")
	}
}

package dbhelper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsPQError(t *testing.T) {
	unique := &pq.Error{Code: pq.ErrorCode(pqUniqueViolation)}
	fk := &pq.Error{Code: pq.ErrorCode(pqForeignKeyViolation)}

	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{"unique violation", unique, pqUniqueViolation, true},
		{"foreign key violation", fk, pqForeignKeyViolation, true},
		{"wrapped pq error still matches", fmt.Errorf("insert user: %w", unique), pqUniqueViolation, true},
		{"wrong code", unique, pqForeignKeyViolation, false},
		{"plain error", errors.New("boom"), pqUniqueViolation, false},
		{"nil error", nil, pqUniqueViolation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPQError(tt.err, tt.code); got != tt.want {
				t.Errorf("isPQError(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

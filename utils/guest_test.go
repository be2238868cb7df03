package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewGuestIDIsUUID(t *testing.T) {
	id := NewGuestID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a uuid, got %q: %v", id, err)
	}
}

func TestNewGuestIDIsUnique(t *testing.T) {
	if NewGuestID() == NewGuestID() {
		t.Fatal("two minted guest ids should never collide")
	}
}

func TestIsValidGuestID(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{uuid.New().String(), true},
		{"", false},
		{"not-a-uuid", false},
		{"12345", false},
		{"'; DROP TABLE carts; --", false},
	}

	for _, tc := range cases {
		if got := IsValidGuestID(tc.id); got != tc.valid {
			t.Errorf("IsValidGuestID(%q) = %v, want %v", tc.id, got, tc.valid)
		}
	}
}

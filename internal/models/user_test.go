package models

import (
	"encoding/json"
	"testing"
)

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{"both names", User{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"first only", User{FirstName: "Ada"}, "Ada"},
		{"last only", User{LastName: "Lovelace"}, "Lovelace"},
		{"neither", User{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.FullName(); got != tt.expected {
				t.Errorf("FullName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	user := User{Email: "owner@example.com", PasswordHash: "secret-hash"}
	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := out["password_hash"]; ok {
		t.Error("password hash leaked into JSON")
	}
	if _, ok := out["PasswordHash"]; ok {
		t.Error("password hash leaked into JSON")
	}
	if out["email"] != "owner@example.com" {
		t.Errorf("expected email in JSON, got %v", out["email"])
	}
}

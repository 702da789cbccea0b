package domain

import (
	"testing"
	"time"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"ok", User{Email: " admin@example.com ", PasswordHash: "$2a$10$x"}, false},
		{"empty email", User{PasswordHash: "$2a$10$x"}, true},
		{"no at", User{Email: "admin", PasswordHash: "$2a$10$x"}, true},
		{"no hash", User{Email: "admin@example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_RecoveryExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	exp := now

	u := &User{ResetTokenHash: "h", ResetExpires: &exp}
	if !u.RecoveryExpired(now) {
		t.Error("token whose expiry equals now must be expired")
	}
	if u.RecoveryExpired(now.Add(-time.Nanosecond)) {
		t.Error("token must be valid strictly before expiry")
	}
	u.ResetExpires = nil
	if !u.RecoveryExpired(now) {
		t.Error("missing expiry must count as expired")
	}
}

func TestUser_HasRecoveryToken(t *testing.T) {
	if (&User{}).HasRecoveryToken() {
		t.Error("no token issued")
	}
	if !(&User{ResetTokenHash: "h"}).HasRecoveryToken() {
		t.Error("issued token should be outstanding")
	}
	if (&User{ResetTokenHash: "h", ResetUsed: true}).HasRecoveryToken() {
		t.Error("used token is not outstanding")
	}
}

// Package domain defines the core domain models for keyden.
package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewDatabase(t *testing.T) {
	db, err := NewDatabase("orders")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}

	if db.Name != "orders" {
		t.Errorf("Name = %q, want %q", db.Name, "orders")
	}
	if db.RequireAuth {
		t.Error("RequireAuth should be false for an open database")
	}
	if db.CreatedAt == 0 {
		t.Error("CreatedAt should be set")
	}
	if db.UpdatedAt != db.CreatedAt {
		t.Errorf("UpdatedAt = %d, want %d", db.UpdatedAt, db.CreatedAt)
	}
}

func TestNewProtectedDatabase(t *testing.T) {
	db, err := NewProtectedDatabase("orders", "admin", "s3cret")
	if err != nil {
		t.Fatalf("NewProtectedDatabase() error = %v", err)
	}

	if !db.RequireAuth {
		t.Error("RequireAuth should be true")
	}
	if db.Username != "admin" {
		t.Errorf("Username = %q, want %q", db.Username, "admin")
	}
	if db.PasswordHash == "" {
		t.Fatal("PasswordHash should be set")
	}
	if !strings.HasPrefix(db.PasswordHash, "$argon2id$v=19$") {
		t.Errorf("PasswordHash = %q, want argon2id PHC format", db.PasswordHash)
	}
	if strings.Contains(db.PasswordHash, "s3cret") {
		t.Error("PasswordHash must not contain the plaintext password")
	}
}

func TestNewProtectedDatabase_Validation(t *testing.T) {
	tests := []struct {
		name     string
		dbName   string
		username string
		password string
	}{
		{"empty username", "orders", "", "s3cret"},
		{"empty password", "orders", "admin", ""},
		{"long username", "orders", strings.Repeat("u", MaxUsernameLength+1), "s3cret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProtectedDatabase(tt.dbName, tt.username, tt.password)
			if !errors.Is(err, ErrDatabaseValidation) {
				t.Errorf("error = %v, want ErrDatabaseValidation", err)
			}
		})
	}
}

func TestValidateDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		dbName  string
		wantErr bool
	}{
		{"simple name", "orders", false},
		{"with digits", "orders2", false},
		{"with punctuation", "orders-v2.prod", false},
		{"unicode letters", "заказы", false},
		{"max length", strings.Repeat("a", MaxDatabaseNameLength), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxDatabaseNameLength+1), true},
		{"embedded space", "my orders", true},
		{"embedded tab", "my\torders", true},
		{"embedded newline", "my\norders", true},
		{"control character", "orders\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseName(tt.dbName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDatabaseName(%q) error = %v, wantErr %v", tt.dbName, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrDatabaseValidation) {
				t.Errorf("error = %v, want ErrDatabaseValidation", err)
			}
		})
	}
}

func TestDatabase_VerifyCredentials_Open(t *testing.T) {
	db, err := NewDatabase("open")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}

	// Open databases accept anything, including nothing at all.
	if !db.VerifyCredentials("", "") {
		t.Error("open database should accept empty credentials")
	}
	if !db.VerifyCredentials("anyone", "anything") {
		t.Error("open database should accept arbitrary credentials")
	}
}

func TestDatabase_VerifyCredentials_Protected(t *testing.T) {
	db, err := NewProtectedDatabase("locked", "admin", "s3cret")
	if err != nil {
		t.Fatalf("NewProtectedDatabase() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"correct pair", "admin", "s3cret", true},
		{"wrong password", "admin", "wrong", false},
		{"wrong username", "nobody", "s3cret", false},
		{"both wrong", "nobody", "wrong", false},
		{"empty pair", "", "", false},
		{"username case sensitive", "Admin", "s3cret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := db.VerifyCredentials(tt.username, tt.password); got != tt.want {
				t.Errorf("VerifyCredentials(%q, %q) = %v, want %v", tt.username, tt.password, got, tt.want)
			}
		})
	}
}

func TestVerifyArgon2Hash_Malformed(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"wrong algorithm", "$argon2i$v=19$m=16384,t=2,p=2$c2FsdA$aGFzaA"},
		{"too few parts", "$argon2id$v=19$m=16384,t=2,p=2$c2FsdA"},
		{"bad salt encoding", "$argon2id$v=19$m=16384,t=2,p=2$!!!$aGFzaA"},
		{"bad hash encoding", "$argon2id$v=19$m=16384,t=2,p=2$c2FsdA$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if verifyArgon2Hash("password", tt.hash) {
				t.Errorf("verifyArgon2Hash(%q) = true, want false", tt.hash)
			}
		})
	}
}

func TestHashPassword_Unique(t *testing.T) {
	h1, err := hashPassword("same")
	if err != nil {
		t.Fatalf("hashPassword() error = %v", err)
	}
	h2, err := hashPassword("same")
	if err != nil {
		t.Fatalf("hashPassword() error = %v", err)
	}

	// Random salts make identical passwords hash differently.
	if h1 == h2 {
		t.Error("hashes of the same password should differ")
	}

	if !verifyArgon2Hash("same", h1) || !verifyArgon2Hash("same", h2) {
		t.Error("both hashes should verify the original password")
	}
}

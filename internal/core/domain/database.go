// Package domain defines the core domain models for keyden.
package domain

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// Database name constraints.
const (
	MaxDatabaseNameLength = 128
	MaxUsernameLength     = 128
)

// Argon2 parameters for password hashing.
const (
	// Argon2Memory is the memory parameter in KB (16 MB).
	Argon2Memory uint32 = 16384

	// Argon2Time is the iteration count.
	Argon2Time uint32 = 2

	// Argon2Parallelism is the parallelism factor.
	Argon2Parallelism uint8 = 2

	// Argon2KeyLen is the output hash length in bytes.
	Argon2KeyLen uint32 = 32

	// Argon2SaltLen is the salt length in bytes.
	Argon2SaltLen = 16
)

// Database is a named record owning one keyspace. Names are case-sensitive
// and unique across the registry. A database either is open (RequireAuth
// false) or demands an exact username+password match on every use and drop.
type Database struct {
	// Name is the unique, case-sensitive identifier.
	Name string `json:"name"`

	// RequireAuth marks the database as credential-protected.
	RequireAuth bool `json:"require_auth"`

	// Username is the expected login name (empty when open).
	Username string `json:"username,omitempty"`

	// PasswordHash is the Argon2id hash of the password (never the plaintext).
	PasswordHash string `json:"password_hash,omitempty"`

	// CreatedAt is the creation timestamp (Unix MS).
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the last metadata change timestamp (Unix MS).
	UpdatedAt int64 `json:"updated_at"`
}

// NewDatabase creates an open database record.
func NewDatabase(name string) (Database, error) {
	if err := ValidateDatabaseName(name); err != nil {
		return Database{}, err
	}
	now := time.Now().UnixMilli()
	return Database{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewProtectedDatabase creates a database record guarded by the given
// credentials. The password is hashed immediately; the plaintext is not
// retained.
func NewProtectedDatabase(name, username, password string) (Database, error) {
	if err := ValidateDatabaseName(name); err != nil {
		return Database{}, err
	}
	if username == "" {
		return Database{}, ErrDatabaseValidation.WithDetails("username is required")
	}
	if len(username) > MaxUsernameLength {
		return Database{}, ErrDatabaseValidation.WithDetails("username exceeds 128 bytes")
	}
	if password == "" {
		return Database{}, ErrDatabaseValidation.WithDetails("password is required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return Database{}, ErrDatabaseValidation.WithCause(err)
	}

	now := time.Now().UnixMilli()
	return Database{
		Name:         name,
		RequireAuth:  true,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateDatabaseName checks a database name against the naming rules:
// non-empty, at most 128 bytes, no whitespace or control characters.
func ValidateDatabaseName(name string) error {
	if name == "" {
		return ErrDatabaseValidation.WithDetails("name is required")
	}
	if len(name) > MaxDatabaseNameLength {
		return ErrDatabaseValidation.WithDetails("name exceeds 128 bytes")
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ErrDatabaseValidation.WithDetails("name contains whitespace or control characters")
		}
	}
	return nil
}

// VerifyCredentials reports whether the supplied pair grants access.
//
// Open databases accept anything, including no credentials at all. A
// protected database requires an exact username match and a password that
// verifies against the stored Argon2id hash. Both comparisons are
// constant-time, and a wrong username fails exactly like a wrong password.
func (d *Database) VerifyCredentials(username, password string) bool {
	if !d.RequireAuth {
		return true
	}

	userOK := subtle.ConstantTimeCompare([]byte(d.Username), []byte(username)) == 1
	passOK := verifyArgon2Hash(password, d.PasswordHash)
	return userOK && passOK
}

// CreatedAtTime returns CreatedAt as time.Time.
func (d *Database) CreatedAtTime() time.Time {
	return time.UnixMilli(d.CreatedAt)
}

// hashPassword computes an Argon2id hash of the password.
// Returns the hash in the format: $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>
func hashPassword(password string) (string, error) {
	salt := make([]byte, Argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)

	saltB64 := base64.RawStdEncoding.EncodeToString(salt)
	hashB64 := base64.RawStdEncoding.EncodeToString(hash)

	return "$argon2id$v=19$m=16384,t=2,p=2$" + saltB64 + "$" + hashB64, nil
}

// verifyArgon2Hash verifies a password against an Argon2id hash.
// Hash format: $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>
func verifyArgon2Hash(password, hash string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return false
	}
	if parts[1] != "argon2id" {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

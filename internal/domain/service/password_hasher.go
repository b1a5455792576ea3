// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (argon2id), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password. The work
	// parameters are embedded in the output so future verifies tolerate
	// parameter migration.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with an encoded hash.
	// A malformed hash and a wrong password are indistinguishable: both
	// return false.
	Verify(password, encodedHash string) bool
}

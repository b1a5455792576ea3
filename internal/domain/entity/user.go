// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing one registered account.
// The hashed password travels with the entity for internal consumers only;
// anything that leaves the service goes through PublicUser instead.
type User struct {
	ID             uuid.UUID // The unique identifier for the account, also the subject of issued tokens.
	Email          string    // The login identifier. Unique across all accounts, max 320 characters per RFC 3696.
	HashedPassword string    // PHC-encoded argon2id hash. Never the plaintext, never serialized outward.
	CreatedAt      time.Time // Server-assigned at insertion, immutable afterwards.
}

// PublicUser is the read-only projection of a User that is safe to hand to
// external consumers: same account, minus the credential material.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the external projection of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

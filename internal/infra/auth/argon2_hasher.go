// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"passport/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// argon2id parameters per OWASP password storage guidance (Sep 2024):
// the low-memory/2-iteration profile with hybrid salting.
const (
	argon2Time    = 2         // iterations
	argon2Memory  = 19 * 1024 // 19 MiB
	argon2Threads = 1         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// argon2idHasher is a concrete implementation of the PasswordHasher interface using argon2id.
// The parameters are process-wide constants, but every hash embeds its own
// parameters in the PHC output, so verification survives future migrations.
type argon2idHasher struct{}

// NewArgon2idHasher is the constructor for argon2idHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewArgon2idHasher() service.PasswordHasher {
	return &argon2idHasher{}
}

// Hash generates a salted argon2id hash from a plaintext password and encodes
// it as a PHC string: $argon2id$v=19$m=19456,t=2,p=1$<salt>$<digest>.
func (h *argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "failed to generate salt")
	}

	digest := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// Verify compares a plaintext password with a PHC-encoded argon2id hash.
// A malformed hash yields false exactly like a wrong password does, so the
// two cases cannot be told apart by the caller.
func (h *argon2idHasher) Verify(password, encodedHash string) bool {
	memory, time, threads, salt, expected, ok := decodeHash(encodedHash)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// decodeHash parses a PHC argon2id string into its parameters, salt and digest.
func decodeHash(encodedHash string) (memory, time uint32, threads uint8, salt, digest []byte, ok bool) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, false
	}

	var parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &parallelism); err != nil {
		return 0, 0, 0, nil, nil, false
	}
	if parallelism == 0 || parallelism > 255 {
		return 0, 0, 0, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, false
	}

	digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return 0, 0, 0, nil, nil, false
	}

	return memory, time, uint8(parallelism), salt, digest, true
}

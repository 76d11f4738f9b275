// Package cryptox derives and checks password verifiers for locally stored
// accounts.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const SaltSize = 16

// argon2id parameters. Changing them invalidates every stored verifier.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// PasswordVerifier returns the value persisted for password under salt: the
// SHA-256 of the argon2id key, so the key itself never reaches the store.
func PasswordVerifier(password string, salt []byte) []byte {
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	sum := sha256.Sum256(key)
	return sum[:]
}

// CheckPassword reports whether password matches verifier, in constant time.
func CheckPassword(password string, salt, verifier []byte) bool {
	got := PasswordVerifier(password, salt)
	return subtle.ConstantTimeCompare(got, verifier) == 1
}

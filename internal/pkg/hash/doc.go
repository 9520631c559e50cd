// Package hash provides one-way hashing of short secrets such as passwords
// and one-time codes.
//
// Only the digest is persisted; verification recomputes it from the submitted
// plaintext. bcrypt is the default, argon2id and a keyed HMAC-SHA256 are
// available through NewFromDriver.
package hash

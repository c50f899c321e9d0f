// Package identity computes roster keys.
//
// Two addressing schemes exist. SchemeDerived keys a client by a truncated
// SHA-256 of the normalized name, so re-importing the same person updates the
// existing record even if their phone number changed. SchemePhone is the legacy
// scheme where the phone number is the key.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// IDLength is the number of hex characters kept from the digest (40 bits).
const IDLength = 10

// Scheme selects how client IDs are formed.
type Scheme string

const (
	SchemeDerived Scheme = "derived"
	SchemePhone   Scheme = "phone"
)

// ParseScheme validates a configured scheme name. Empty means SchemeDerived.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeDerived:
		return SchemeDerived, nil
	case SchemePhone:
		return SchemePhone, nil
	}
	return "", fmt.Errorf("unknown addressing scheme %q", s)
}

// Derive returns the stable ID for a person. Names are trimmed and lowercased
// before hashing. Collisions in the truncated space are not detected.
func Derive(firstName, lastName string) string {
	key := normalize(firstName) + "_" + normalize(lastName)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:IDLength]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// KeyFunc computes a record ID from name and phone.
type KeyFunc func(firstName, lastName, phoneNumber string) string

// KeyFunc returns the key function for the scheme.
func (s Scheme) KeyFunc() KeyFunc {
	if s == SchemePhone {
		return func(_, _, phoneNumber string) string {
			return strings.TrimSpace(phoneNumber)
		}
	}
	return func(firstName, lastName, _ string) string {
		return Derive(firstName, lastName)
	}
}

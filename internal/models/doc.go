// Package models defines the core domain models for the blast relay.
//
// # Models
//
//   - Client: one entry in the roster (contact fields plus opt-in status)
//   - OptIn: the Y/N consent flag owned by the opt-in workflow
//
// # Identity
//
// A client's ID is either derived from its normalized name (see package identity)
// or, in the legacy addressing scheme, the raw phone number. A roster only ever
// holds IDs from one scheme.
//
// # Ownership
//
// Contact fields are overwritten by every roster import. OptIn is written once on
// creation (always "N") and afterwards only by SetOptIn.
package models

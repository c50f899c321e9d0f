package models

import (
	"errors"
	"fmt"
	"strings"
)

// OptIn is a client's consent to receive broadcasts.
type OptIn string

const (
	OptInYes OptIn = "Y"
	OptInNo  OptIn = "N"
)

// ErrInvalidOptIn is returned for opt-in values other than Y or N.
var ErrInvalidOptIn = errors.New("opt_in must be Y or N")

// ParseOptIn accepts "Y" or "N" in either case, ignoring surrounding spaces.
func ParseOptIn(s string) (OptIn, error) {
	switch OptIn(strings.ToUpper(strings.TrimSpace(s))) {
	case OptInYes:
		return OptInYes, nil
	case OptInNo:
		return OptInNo, nil
	}
	return "", fmt.Errorf("%w, got %q", ErrInvalidOptIn, s)
}

// Client represents one record in the roster.
type Client struct {
	// ID is the record key: a derived identity hash or, in the legacy
	// scheme, the phone number itself.
	ID string `json:"id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// PhoneNumber is opaque to the relay; callers are expected to supply
	// something the SMS transport accepts.
	PhoneNumber string `json:"phone_number"`

	Email                    string `json:"email"`
	Notes                    string `json:"notes"`
	DaysSinceLastAppointment string `json:"days_since_last_appointment"`

	// OptIn is never touched by imports once the record exists.
	OptIn OptIn `json:"opt_in"`
}

// ContactFields are the columns an import is allowed to overwrite.
type ContactFields struct {
	FirstName                string
	LastName                 string
	PhoneNumber              string
	Email                    string
	Notes                    string
	DaysSinceLastAppointment string
}

// Contact returns the import-owned fields of c.
func (c *Client) Contact() ContactFields {
	return ContactFields{
		FirstName:                c.FirstName,
		LastName:                 c.LastName,
		PhoneNumber:              c.PhoneNumber,
		Email:                    c.Email,
		Notes:                    c.Notes,
		DaysSinceLastAppointment: c.DaysSinceLastAppointment,
	}
}

// Apply overwrites the contact fields of c, leaving ID and OptIn alone.
func (c *Client) Apply(f ContactFields) {
	c.FirstName = f.FirstName
	c.LastName = f.LastName
	c.PhoneNumber = f.PhoneNumber
	c.Email = f.Email
	c.Notes = f.Notes
	c.DaysSinceLastAppointment = f.DaysSinceLastAppointment
}

// Recipient is a resolved broadcast target.
type Recipient struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
}

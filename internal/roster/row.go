// Package roster reconciles imported client rows with the roster store and
// resolves broadcast targets against it.
package roster

import (
	"errors"
	"sort"
	"strings"

	"github.com/mmynk/blast/internal/models"
)

// ErrInvalidRow is returned for rows missing a first name or phone number.
var ErrInvalidRow = errors.New("row requires first_name and phone_number")

// RawRow is one imported row keyed by its (unnormalized) column header.
type RawRow map[string]string

// Row is a validated import row.
type Row struct {
	FirstName                string `json:"first_name"`
	LastName                 string `json:"last_name"`
	PhoneNumber              string `json:"phone_number"`
	Email                    string `json:"email,omitempty"`
	Notes                    string `json:"notes,omitempty"`
	DaysSinceLastAppointment string `json:"days_since_last_appointment,omitempty"`
}

// Contact converts the row to the fields an import writes.
func (r Row) Contact() models.ContactFields {
	return models.ContactFields{
		FirstName:                r.FirstName,
		LastName:                 r.LastName,
		PhoneNumber:              r.PhoneNumber,
		Email:                    r.Email,
		Notes:                    r.Notes,
		DaysSinceLastAppointment: r.DaysSinceLastAppointment,
	}
}

// Accepted header aliases, first match wins.
var (
	firstNameKeys = []string{"first_name", "firstname", "first", "name"}
	lastNameKeys  = []string{"last_name", "lastname", "last", "surname"}
	phoneKeys     = []string{"phone_number", "phone", "mobile", "number"}
	emailKeys     = []string{"email", "e_mail"}
	notesKeys     = []string{"notes", "note"}
	daysKeys      = []string{"days_since_last_appointment", "days_since_last_visit"}
)

// NormalizeHeader lowercases a column name and joins words with underscores,
// so "First Name" and "first-name" both become "first_name".
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}

// ParseRow extracts the known columns from raw and validates that the
// required ones are present. When several headers normalize to the same
// column, the first non-empty value in sorted header order wins.
func ParseRow(raw RawRow) (Row, error) {
	headers := make([]string, 0, len(raw))
	for k := range raw {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	norm := make(map[string]string, len(raw))
	for _, k := range headers {
		key := NormalizeHeader(k)
		if norm[key] != "" {
			continue
		}
		norm[key] = strings.TrimSpace(raw[k])
	}

	pick := func(keys []string) string {
		for _, k := range keys {
			if v := norm[k]; v != "" {
				return v
			}
		}
		return ""
	}

	row := Row{
		FirstName:                pick(firstNameKeys),
		LastName:                 pick(lastNameKeys),
		PhoneNumber:              pick(phoneKeys),
		Email:                    pick(emailKeys),
		Notes:                    pick(notesKeys),
		DaysSinceLastAppointment: pick(daysKeys),
	}
	if row.FirstName == "" || row.PhoneNumber == "" {
		return row, ErrInvalidRow
	}
	return row, nil
}

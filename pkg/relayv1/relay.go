// Package relayv1 holds the request and response messages of the
// blast.v1.RelayService API. Messages travel as JSON.
package relayv1

type Client struct {
	Id                       string `json:"id"`
	FirstName                string `json:"first_name"`
	LastName                 string `json:"last_name"`
	PhoneNumber              string `json:"phone_number"`
	Email                    string `json:"email,omitempty"`
	Notes                    string `json:"notes,omitempty"`
	DaysSinceLastAppointment string `json:"days_since_last_appointment,omitempty"`
	OptIn                    string `json:"opt_in"`
}

type LoginRequest struct {
	// Operator is optional; it only labels the session.
	Operator string `json:"operator,omitempty"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ListClientsRequest struct{}

type ListClientsResponse struct {
	Clients []*Client `json:"clients"`
}

// UpsertClientsRequest carries one batch in exactly one of three forms.
type UpsertClientsRequest struct {
	Rows []map[string]string `json:"rows,omitempty"`
	Csv  string              `json:"csv,omitempty"`
	// Xlsx is the raw workbook; JSON encodes it as base64.
	Xlsx []byte `json:"xlsx,omitempty"`
}

type RowError struct {
	Row   int    `json:"row"`
	Id    string `json:"id,omitempty"`
	Error string `json:"error"`
}

type UpsertClientsResponse struct {
	ProcessedCount int         `json:"processed_count"`
	SkippedCount   int         `json:"skipped_count"`
	CreatedCount   int         `json:"created_count"`
	UpdatedCount   int         `json:"updated_count"`
	FailedCount    int         `json:"failed_count"`
	Errors         []*RowError `json:"errors,omitempty"`
}

type SetOptInRequest struct {
	Id    string `json:"id"`
	OptIn string `json:"opt_in"`
}

type SetOptInResponse struct {
	Client *Client `json:"client"`
}

type BroadcastRequest struct {
	Message string   `json:"message"`
	All     bool     `json:"all,omitempty"`
	Ids     []string `json:"ids,omitempty"`
	Preview bool     `json:"preview,omitempty"`
}

type Delivery struct {
	Id          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Sent        bool   `json:"sent"`
	Error       string `json:"error,omitempty"`
}

type BroadcastResponse struct {
	BroadcastId      string      `json:"broadcast_id"`
	Status           string      `json:"status"`
	AttemptedCount   int         `json:"attempted_count"`
	SuccessCount     int         `json:"success_count"`
	FailureCount     int         `json:"failure_count"`
	LookupErrorCount int         `json:"lookup_error_count"`
	Recipients       []*Delivery `json:"recipients,omitempty"`
	MissingIds       []string    `json:"missing_ids,omitempty"`
}

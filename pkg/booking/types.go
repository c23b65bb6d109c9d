package booking

import (
	"strconv"
	"time"
)

// Service tag sent with every notification.
const ServiceTableBooking = "table_booking"

// Persistence outcomes reported to the webhook.
const (
	StatusSaved  = "saved"
	StatusFailed = "failed"
)

// Request is one book_table invocation as supplied by the caller.
type Request struct {
	CustomerName    string
	Date            string // YYYY-MM-DD or M/D/YYYY
	Time            string // HH:MM, 24-hour
	Guests          int    // documented 1-20, not enforced
	SpecialRequests string
}

// Caller is the per-call identity the booking is made on behalf of.
type Caller struct {
	Phone    string
	Language Language
}

// Reservation is the record written to the store.
type Reservation struct {
	ReservationID   string
	CustomerName    string
	ReservationDate string // MM/DD/YYYY
	ReservationTime string // HH:MM as given
	Summary         string
}

// Notification is the document posted to the automation webhook.
// Field names match what the downstream workflow expects.
type Notification struct {
	CustomerName    string  `json:"customerName"`
	CustomerPhone   string  `json:"customerPhone"`
	ReservationID   string  `json:"reservationId"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	Guests          int     `json:"guests"`
	DisplayDate     string  `json:"airtableDate"`
	StartTime       string  `json:"startTime"`
	SpecialRequests string  `json:"specialRequests"`
	Service         string  `json:"service"`
	StoreStatus     string  `json:"airtableStatus"`
	StoreError      *string `json:"airtableError"`
	Language        string  `json:"language"`
}

// Outcome classifies how a booking invocation ended.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomePersistFailed Outcome = "persist_failed"
	OutcomeParseFailed   Outcome = "parse_failed"
	OutcomeUnexpected    Outcome = "unexpected"
)

// Result is what Book hands back to the tool layer.
type Result struct {
	Outcome Outcome

	// Message is the sentence to speak.
	Message string

	// ReservationID is set only when the record was stored.
	ReservationID string

	// StoreRecordID is the identifier the store assigned, if any.
	StoreRecordID string

	// StartTime is the parsed instant; zero on parse failure.
	StartTime time.Time
}

// Confirmed reports whether the reservation was persisted.
func (r Result) Confirmed() bool {
	return r.Outcome == OutcomeSuccess
}

// summarize builds the free-text summary column.
func summarize(guests int, special string) string {
	if special != "" {
		return strconv.Itoa(guests) + " guests. " + special
	}
	return strconv.Itoa(guests) + " guests"
}

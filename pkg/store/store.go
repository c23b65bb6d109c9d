// Package store persists reservations to a hosted system of record.
//
// Two backends are bundled: Airtable (REST, personal access token) and
// Google Sheets (values.append with a service account). Both implement
// Store and make exactly one write attempt per call; retries are the
// caller's decision and the booking flow never retries.
//
// Example usage:
//
//	s, _ := store.NewAirtable(
//	    store.WithAPIKey(os.Getenv("AIRTABLE_API_TOKEN")),
//	    store.WithBase("app7SapLnw8VfBDjQ"),
//	    store.WithTable("Order Summary"),
//	)
//
//	id, err := s.Persist(ctx, reservation)
package store

import (
	"context"

	"github.com/teslashibe/restaurantia/pkg/booking"
)

// Column names in the reservations table.
const (
	FieldReservationID   = "Reservation ID"
	FieldCustomerName    = "Customer Name"
	FieldReservationTime = "Reservation Time"
	FieldReservationDate = "Reservation Date"
	FieldSummary         = "Reservation Summary"
)

// Columns is the column order used by row-based backends.
var Columns = []string{
	FieldReservationID,
	FieldCustomerName,
	FieldReservationTime,
	FieldReservationDate,
	FieldSummary,
}

// Store writes one reservation and returns the backend's record identifier.
// It satisfies booking.Persister.
type Store interface {
	Persist(ctx context.Context, r booking.Reservation) (string, error)
}

// Fields maps a reservation to its column values.
func Fields(r booking.Reservation) map[string]any {
	return map[string]any{
		FieldReservationID:   r.ReservationID,
		FieldCustomerName:    r.CustomerName,
		FieldReservationTime: r.ReservationTime,
		FieldReservationDate: r.ReservationDate,
		FieldSummary:         r.Summary,
	}
}

// Row returns the reservation as a row in Columns order.
func Row(r booking.Reservation) []any {
	f := Fields(r)
	row := make([]any, len(Columns))
	for i, c := range Columns {
		row[i] = f[c]
	}
	return row
}

var _ booking.Persister = Store(nil)

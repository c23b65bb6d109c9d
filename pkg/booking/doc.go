// Package booking runs the table-reservation transaction behind the
// book_table tool.
//
// A booking turns the loosely typed arguments extracted by the speech
// pipeline into a validated Reservation, writes it once to the record
// store, forwards the attempt to the automation webhook, and renders the
// sentence the caller hears in the caller's language.
//
// # Flow
//
//	Received → Parsing → ParseFailed
//	                   → Parsed → IdAssigned → Persisting → Persisted | PersistFailed
//	                                                      → Notifying → Responding → Done
//
// Persistence is required: when it fails the caller is told to phone the
// restaurant directly and no reservation ID is spoken. Notification is
// best effort: it always fires after the write attempt, carries the write
// outcome, and its own failure is only logged.
//
// # Usage
//
//	svc := booking.NewService(airtable, webhook,
//	    booking.WithLogger(logger),
//	    booking.WithMetrics(booking.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//
//	res := svc.Book(ctx, booking.Request{
//	    CustomerName: "Jane Doe",
//	    Date:         "2025-10-15",
//	    Time:         "19:00",
//	    Guests:       4,
//	}, booking.Caller{Phone: "+4915112345678", Language: booking.German})
//
//	speak(res.Message)
//
// Book never returns an error. Every path, including a panic inside a
// collaborator, ends in a spoken sentence.
package booking

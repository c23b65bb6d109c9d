package booking_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/teslashibe/restaurantia/internal/log"
	"github.com/teslashibe/restaurantia/pkg/booking"
	"github.com/teslashibe/restaurantia/pkg/notify"
	"github.com/teslashibe/restaurantia/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fixedID(id string) booking.IDGenerator {
	return func() string { return id }
}

func newService(s booking.Persister, n booking.Notifier, opts ...booking.Option) *booking.Service {
	opts = append([]booking.Option{
		booking.WithLogger(log.Discard()),
		booking.WithIDGenerator(fixedID("AB12C")),
	}, opts...)
	return booking.NewService(s, n, opts...)
}

var aliceRequest = booking.Request{
	CustomerName:    "Alice",
	Date:            "2025-10-15",
	Time:            "19:30",
	Guests:          4,
	SpecialRequests: "window seat",
}

var englishCaller = booking.Caller{Phone: "+15550100", Language: booking.English}

func TestBookSuccess(t *testing.T) {
	st := store.NewMock()
	nt := notify.NewMock()
	svc := newService(st, nt)

	res := svc.Book(context.Background(), aliceRequest, englishCaller)

	if res.Outcome != booking.OutcomeSuccess || !res.Confirmed() {
		t.Fatalf("expected success, got %s", res.Outcome)
	}
	want := "Perfect! Your reservation is confirmed for Alice on 10/15/2025 at 19:30 for 4 guests. " +
		"Your reservation ID is AB12C. We look forward to seeing you! Note: window seat"
	if res.Message != want {
		t.Errorf("unexpected message:\n got %q\nwant %q", res.Message, want)
	}
	if res.ReservationID != "AB12C" {
		t.Errorf("expected ID AB12C, got %q", res.ReservationID)
	}
	if res.StoreRecordID != "rec0001" {
		t.Errorf("expected store record rec0001, got %q", res.StoreRecordID)
	}

	t.Run("one store write", func(t *testing.T) {
		calls := st.Calls()
		if len(calls) != 1 {
			t.Fatalf("expected 1 write, got %d", len(calls))
		}
		want := booking.Reservation{
			ReservationID:   "AB12C",
			CustomerName:    "Alice",
			ReservationDate: "10/15/2025",
			ReservationTime: "19:30",
			Summary:         "4 guests. window seat",
		}
		if calls[0] != want {
			t.Errorf("unexpected reservation %+v", calls[0])
		}
	})

	t.Run("one notification", func(t *testing.T) {
		calls := nt.Calls()
		if len(calls) != 1 {
			t.Fatalf("expected 1 notification, got %d", len(calls))
		}
		n := calls[0]
		if n.StoreStatus != booking.StatusSaved || n.StoreError != nil {
			t.Errorf("expected saved with nil error, got %q %v", n.StoreStatus, n.StoreError)
		}
		if n.StartTime != "2025-10-15T19:30:00" {
			t.Errorf("unexpected start time %q", n.StartTime)
		}
		if n.DisplayDate != "10/15/2025" || n.Date != "2025-10-15" {
			t.Errorf("unexpected dates %q %q", n.DisplayDate, n.Date)
		}
		if n.CustomerPhone != "+15550100" || n.Language != "en" || n.Service != "table_booking" {
			t.Errorf("unexpected caller fields %+v", n)
		}
	})
}

func TestBookWithoutSpecialRequests(t *testing.T) {
	st := store.NewMock()
	svc := newService(st, nil)

	req := aliceRequest
	req.SpecialRequests = ""
	res := svc.Book(context.Background(), req, englishCaller)

	if strings.Contains(res.Message, "Note:") {
		t.Errorf("unexpected note in %q", res.Message)
	}
	if got := st.Calls()[0].Summary; got != "4 guests" {
		t.Errorf("expected summary %q, got %q", "4 guests", got)
	}
}

func TestBookPersistFailed(t *testing.T) {
	st := store.WithError(errors.New("store [airtable]: API error 422: bad date"))
	nt := notify.NewMock()
	svc := newService(st, nt)

	res := svc.Book(context.Background(), aliceRequest, englishCaller)

	if res.Outcome != booking.OutcomePersistFailed {
		t.Fatalf("expected persist_failed, got %s", res.Outcome)
	}
	want := "I'm sorry, there was a technical issue saving your reservation. Please call us directly at our phone number to book."
	if res.Message != want {
		t.Errorf("unexpected message %q", res.Message)
	}
	if strings.Contains(res.Message, "AB12C") || res.ReservationID != "" {
		t.Error("reservation ID must not be spoken when the write failed")
	}

	calls := nt.Calls()
	if len(calls) != 1 {
		t.Fatalf("notification must still fire, got %d", len(calls))
	}
	if calls[0].StoreStatus != booking.StatusFailed {
		t.Errorf("expected failed status, got %q", calls[0].StoreStatus)
	}
	if calls[0].StoreError == nil || !strings.Contains(*calls[0].StoreError, "bad date") {
		t.Errorf("expected store error text, got %v", calls[0].StoreError)
	}
	if calls[0].ReservationID != "AB12C" {
		t.Errorf("webhook still gets the generated ID, got %q", calls[0].ReservationID)
	}
}

func TestBookParseFailed(t *testing.T) {
	for _, tc := range []struct{ date, clock string }{
		{"15-10-2025", "19:30"},
		{"2025-10-15", "7pm"},
		{"2025-02-30", "19:30"},
	} {
		t.Run(tc.date+" "+tc.clock, func(t *testing.T) {
			st := store.NewMock()
			nt := notify.NewMock()
			generated := 0
			svc := newService(st, nt, booking.WithIDGenerator(func() string {
				generated++
				return "ZZZZZ"
			}))

			req := aliceRequest
			req.Date, req.Time = tc.date, tc.clock
			res := svc.Book(context.Background(), req, englishCaller)

			if res.Outcome != booking.OutcomeParseFailed {
				t.Fatalf("expected parse_failed, got %s", res.Outcome)
			}
			if !strings.HasPrefix(res.Message, "I had trouble understanding the date or time format.") {
				t.Errorf("unexpected message %q", res.Message)
			}
			if generated != 0 || st.CallCount() != 0 || nt.CallCount() != 0 {
				t.Errorf("no ID, write or notification expected; got %d/%d/%d",
					generated, st.CallCount(), nt.CallCount())
			}
		})
	}
}

func TestBookNotifyFailureIgnored(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := booking.NewMetrics(reg)
	svc := newService(store.NewMock(), notify.WithError(errors.New("connection refused")), booking.WithMetrics(m))

	res := svc.Book(context.Background(), aliceRequest, englishCaller)
	if res.Outcome != booking.OutcomeSuccess {
		t.Fatalf("webhook failure must not change outcome, got %s", res.Outcome)
	}
	if got := testutil.ToFloat64(m.Notifications.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed notification, got %v", got)
	}
}

func TestBookGerman(t *testing.T) {
	svc := newService(store.NewMock(), notify.NewMock())
	res := svc.Book(context.Background(), aliceRequest, booking.Caller{Language: booking.German})

	want := "Perfekt! Deine Reservierung ist bestätigt für Alice am 10/15/2025 um 19:30 Uhr für 4 Personen. " +
		"Deine Reservierungs-ID ist AB12C. Wir freuen uns auf dich! Hinweis: window seat"
	if res.Message != want {
		t.Errorf("unexpected message:\n got %q\nwant %q", res.Message, want)
	}

	failed := newService(store.WithError(errors.New("down")), nil).
		Book(context.Background(), aliceRequest, booking.Caller{Language: booking.German})
	if !strings.HasPrefix(failed.Message, "Entschuldigung") {
		t.Errorf("expected German failure message, got %q", failed.Message)
	}

	st := store.NewMock()
	bad := aliceRequest
	bad.Time = "7pm"
	parse := newService(st, nil).Book(context.Background(), bad, booking.Caller{Language: booking.German})
	if parse.Outcome != booking.OutcomeParseFailed {
		t.Fatalf("expected parse_failed, got %s", parse.Outcome)
	}
	if !strings.HasPrefix(parse.Message, "Ich hatte Schwierigkeiten") {
		t.Errorf("expected German parse-failure message, got %q", parse.Message)
	}
	if st.CallCount() != 0 {
		t.Error("parse failure must not write to the store")
	}
}

func TestBookMissingName(t *testing.T) {
	st := store.NewMock()
	nt := notify.NewMock()
	svc := newService(st, nt)

	req := aliceRequest
	req.CustomerName = "  "
	res := svc.Book(context.Background(), req, englishCaller)

	if res.Outcome != booking.OutcomeUnexpected {
		t.Fatalf("expected unexpected, got %s", res.Outcome)
	}
	if st.CallCount() != 0 || nt.CallCount() != 0 {
		t.Error("no external call expected")
	}
}

func TestBookRecoversPanic(t *testing.T) {
	nt := &notify.Mock{
		NotifyFunc: func(ctx context.Context, n booking.Notification) error {
			panic("nil map write")
		},
	}
	reg := prometheus.NewRegistry()
	m := booking.NewMetrics(reg)
	svc := newService(store.NewMock(), nt, booking.WithMetrics(m))

	res := svc.Book(context.Background(), aliceRequest, englishCaller)

	if res.Outcome != booking.OutcomeUnexpected {
		t.Fatalf("expected unexpected, got %s", res.Outcome)
	}
	if res.Message != "I encountered an error while making the reservation. Please try again or call us directly." {
		t.Errorf("unexpected message %q", res.Message)
	}
	if got := testutil.ToFloat64(m.Bookings.WithLabelValues("unexpected")); got != 1 {
		t.Errorf("expected unexpected counter 1, got %v", got)
	}
}

func TestBookStorePanicIsPersistFailure(t *testing.T) {
	st := &store.Mock{
		PersistFunc: func(ctx context.Context, r booking.Reservation) (string, error) {
			panic("nil map write")
		},
	}
	nt := notify.NewMock()
	svc := newService(st, nt)

	res := svc.Book(context.Background(), aliceRequest, englishCaller)

	if res.Outcome != booking.OutcomePersistFailed {
		t.Fatalf("expected persist_failed, got %s", res.Outcome)
	}
	if strings.Contains(res.Message, "AB12C") {
		t.Errorf("reservation ID must not be spoken: %q", res.Message)
	}

	calls := nt.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(calls))
	}
	n := calls[0]
	if n.StoreStatus != booking.StatusFailed {
		t.Errorf("airtableStatus = %q, want failed", n.StoreStatus)
	}
	if n.StoreError == nil || !strings.Contains(*n.StoreError, "nil map write") {
		t.Errorf("airtableError = %v", n.StoreError)
	}
}

func TestBookSurvivesCancelledContext(t *testing.T) {
	var persistCtxErr, notifyCtxErr error
	st := &store.Mock{
		PersistFunc: func(ctx context.Context, r booking.Reservation) (string, error) {
			persistCtxErr = ctx.Err()
			return "rec1", nil
		},
	}
	nt := &notify.Mock{
		NotifyFunc: func(ctx context.Context, n booking.Notification) error {
			notifyCtxErr = ctx.Err()
			return nil
		},
	}
	svc := newService(st, nt)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := svc.Book(ctx, aliceRequest, englishCaller)
	if res.Outcome != booking.OutcomeSuccess {
		t.Fatalf("expected success, got %s", res.Outcome)
	}
	if persistCtxErr != nil || notifyCtxErr != nil {
		t.Errorf("writes must not see caller cancellation: %v / %v", persistCtxErr, notifyCtxErr)
	}
}

func TestBookStoreTimeout(t *testing.T) {
	st := &store.Mock{
		PersistFunc: func(ctx context.Context, r booking.Reservation) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	nt := notify.NewMock()
	svc := newService(st, nt, booking.WithStoreTimeout(20*time.Millisecond))

	res := svc.Book(context.Background(), aliceRequest, englishCaller)
	if res.Outcome != booking.OutcomePersistFailed {
		t.Fatalf("expected persist_failed, got %s", res.Outcome)
	}
	if nt.CallCount() != 1 || nt.Calls()[0].StoreStatus != booking.StatusFailed {
		t.Error("expected failed notification after timeout")
	}
}

func TestBookRepeatedIDsDiffer(t *testing.T) {
	st := store.NewMock()
	svc := booking.NewService(st, nil, booking.WithLogger(log.Discard()))

	first := svc.Book(context.Background(), aliceRequest, englishCaller)
	second := svc.Book(context.Background(), aliceRequest, englishCaller)

	if first.ReservationID == second.ReservationID {
		t.Errorf("expected distinct IDs, both %q", first.ReservationID)
	}
	if st.CallCount() != 2 {
		t.Errorf("each attempt writes once, got %d", st.CallCount())
	}
}

func TestBookGuestsOutsideRange(t *testing.T) {
	svc := newService(store.NewMock(), nil)

	req := aliceRequest
	req.Guests = 25
	res := svc.Book(context.Background(), req, englishCaller)
	if res.Outcome != booking.OutcomeSuccess {
		t.Errorf("guest count is advisory, got %s", res.Outcome)
	}
}

func TestBookMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := booking.NewMetrics(reg)
	svc := newService(store.NewMock(), notify.NewMock(), booking.WithMetrics(m))

	svc.Book(context.Background(), aliceRequest, englishCaller)
	bad := aliceRequest
	bad.Time = "7pm"
	svc.Book(context.Background(), bad, englishCaller)

	if got := testutil.ToFloat64(m.Bookings.WithLabelValues("success")); got != 1 {
		t.Errorf("success = %v", got)
	}
	if got := testutil.ToFloat64(m.Bookings.WithLabelValues("parse_failed")); got != 1 {
		t.Errorf("parse_failed = %v", got)
	}
	if got := testutil.ToFloat64(m.Notifications.WithLabelValues("ok")); got != 1 {
		t.Errorf("notifications ok = %v", got)
	}
	if n := testutil.CollectAndCount(m.StoreWrite); n != 1 {
		t.Errorf("expected store histogram to be collected once, got %d", n)
	}
}

func TestClosingAndNotBooked(t *testing.T) {
	svc := newService(store.NewMock(), nil)
	if got := svc.Closing(booking.German); got != "Danke für deinen Anruf! Wir freuen uns auf dich. Auf Wiedersehen!" {
		t.Errorf("unexpected closing %q", got)
	}
	if got := svc.NotBooked(booking.English); !strings.HasPrefix(got, "Before we say goodbye") {
		t.Errorf("unexpected not-booked line %q", got)
	}
}

package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teslashibe/restaurantia/pkg/booking"
	"github.com/teslashibe/restaurantia/pkg/notify"
)

func sampleNotification() booking.Notification {
	errText := "store [airtable]: API error 422: bad date"
	return booking.Notification{
		CustomerName:    "Alice",
		CustomerPhone:   "+15550100",
		ReservationID:   "AB12C",
		Date:            "2025-10-15",
		Time:            "19:30",
		Guests:          4,
		DisplayDate:     "10/15/2025",
		StartTime:       "2025-10-15T19:30:00",
		SpecialRequests: "window seat",
		Service:         booking.ServiceTableBooking,
		StoreStatus:     booking.StatusFailed,
		StoreError:      &errText,
		Language:        "en",
	}
}

func TestWebhookPayload(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wh := notify.NewWebhook(server.URL)
	if err := wh.Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	want := map[string]any{
		"customerName":    "Alice",
		"customerPhone":   "+15550100",
		"reservationId":   "AB12C",
		"date":            "2025-10-15",
		"time":            "19:30",
		"guests":          float64(4),
		"airtableDate":    "10/15/2025",
		"startTime":       "2025-10-15T19:30:00",
		"specialRequests": "window seat",
		"service":         "table_booking",
		"airtableStatus":  "failed",
		"airtableError":   "store [airtable]: API error 422: bad date",
		"language":        "en",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, got[k])
		}
	}
}

func TestWebhookNullError(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	n := sampleNotification()
	n.StoreStatus = booking.StatusSaved
	n.StoreError = nil

	if err := notify.NewWebhook(server.URL).Notify(context.Background(), n); err != nil {
		t.Fatalf("201 should count as delivered: %v", err)
	}
	if string(raw["airtableError"]) != "null" {
		t.Errorf("expected airtableError null, got %s", raw["airtableError"])
	}
}

func TestWebhookStatus(t *testing.T) {
	tests := []struct {
		status  int
		wantErr bool
	}{
		{http.StatusOK, false},
		{http.StatusCreated, false},
		{http.StatusAccepted, true},
		{http.StatusNoContent, true},
		{http.StatusBadRequest, true},
		{http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := notify.NewWebhook(server.URL).Notify(context.Background(), sampleNotification())
			if (err != nil) != tt.wantErr {
				t.Fatalf("status %d: wantErr=%v, got %v", tt.status, tt.wantErr, err)
			}
			if tt.wantErr {
				var se *notify.StatusError
				if !errors.As(err, &se) {
					t.Fatalf("expected *StatusError, got %T", err)
				}
				if se.StatusCode != tt.status {
					t.Errorf("expected status %d, got %d", tt.status, se.StatusCode)
				}
			}
		})
	}
}

func TestWebhookTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	wh := notify.NewWebhook(server.URL, notify.WithTimeout(50*time.Millisecond))

	start := time.Now()
	err := wh.Notify(context.Background(), sampleNotification())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout not enforced, took %v", time.Since(start))
	}
}

func TestWebhookDisabled(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	wh := notify.NewWebhook("  ")
	if wh.Enabled() {
		t.Error("blank URL should disable the webhook")
	}
	if err := wh.Notify(context.Background(), sampleNotification()); err != nil {
		t.Errorf("disabled webhook should not fail: %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no requests, got %d", hits.Load())
	}
}

func TestMock(t *testing.T) {
	m := notify.NewMock()
	if err := m.Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.CallCount() != 1 || m.Calls()[0].ReservationID != "AB12C" {
		t.Errorf("call not recorded: %+v", m.Calls())
	}

	failing := notify.WithError(errors.New("down"))
	if err := failing.Notify(context.Background(), sampleNotification()); err == nil {
		t.Error("expected error")
	}
}

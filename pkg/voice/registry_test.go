package voice

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func echoTool(name string) Tool {
	return Tool{
		Name: name,
		Handler: func(args map[string]any) (string, error) {
			return name + ":" + String(args, "text"), nil
		},
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(echoTool("book_table"), echoTool("end_call")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	t.Run("duplicate", func(t *testing.T) {
		err := r.Register(echoTool("book_table"))
		if !errors.Is(err, ErrDuplicateTool) {
			t.Errorf("expected ErrDuplicateTool, got %v", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if err := r.Register(Tool{Name: "x"}); !errors.Is(err, ErrInvalidTool) {
			t.Errorf("expected ErrInvalidTool for missing handler, got %v", err)
		}
		if err := r.Register(Tool{Handler: echoTool("y").Handler}); !errors.Is(err, ErrInvalidTool) {
			t.Errorf("expected ErrInvalidTool for missing name, got %v", err)
		}
	})

	t.Run("order preserved", func(t *testing.T) {
		tools := r.Tools()
		if len(tools) != 2 || tools[0].Name != "book_table" || tools[1].Name != "end_call" {
			t.Errorf("unexpected tools %v", tools)
		}
	})
}

func TestRegistryDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := NewRegistry(WithMetrics(m))
	r.Register(echoTool("book_table"))
	r.Register(Tool{
		Name:    "explode",
		Handler: func(map[string]any) (string, error) { panic("boom") },
	})
	r.Register(Tool{
		Name:    "fail",
		Handler: func(map[string]any) (string, error) { return "", errors.New("nope") },
	})

	t.Run("runs handler", func(t *testing.T) {
		res := r.Dispatch(ToolCall{ID: "c1", Name: "book_table", Arguments: map[string]any{"text": "hi"}})
		if res.Error != nil {
			t.Fatalf("unexpected error: %v", res.Error)
		}
		if res.CallID != "c1" || res.Result != "book_table:hi" {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("nil arguments", func(t *testing.T) {
		res := r.Dispatch(ToolCall{ID: "c2", Name: "book_table"})
		if res.Result != "book_table:" {
			t.Errorf("unexpected result %q", res.Result)
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		res := r.Dispatch(ToolCall{ID: "c3", Name: "order_pizza"})
		if !errors.Is(res.Error, ErrToolNotFound) {
			t.Errorf("expected ErrToolNotFound, got %v", res.Error)
		}
		if res.CallID != "c3" {
			t.Errorf("call ID not echoed: %q", res.CallID)
		}
	})

	t.Run("panic recovered", func(t *testing.T) {
		res := r.Dispatch(ToolCall{ID: "c4", Name: "explode"})
		if res.Error == nil {
			t.Error("expected error from panicking tool")
		}
	})

	t.Run("metrics", func(t *testing.T) {
		r.Dispatch(ToolCall{ID: "c5", Name: "fail"})

		if got := testutil.ToFloat64(m.Calls.WithLabelValues("book_table", "ok")); got != 2 {
			t.Errorf("book_table ok = %v", got)
		}
		if got := testutil.ToFloat64(m.Calls.WithLabelValues("unknown", "not_found")); got != 1 {
			t.Errorf("not_found = %v", got)
		}
		if got := testutil.ToFloat64(m.Calls.WithLabelValues("explode", "error")); got != 1 {
			t.Errorf("explode error = %v", got)
		}
		if got := testutil.ToFloat64(m.Calls.WithLabelValues("fail", "error")); got != 1 {
			t.Errorf("fail error = %v", got)
		}
	})
}

func TestArgs(t *testing.T) {
	args := map[string]any{
		"name":   "  Alice ",
		"guests": float64(4),
		"half":   2.5,
		"text":   "6",
		"bad":    "six",
		"count":  7,
		"huge":   1e300,
		"neg":    float64(-1),
		"number": json.Number("12"),
		"big":    json.Number("9999999999"),
		"digits": "99999999999",
		"wide":   int64(1) << 40,
	}

	if got := String(args, "name"); got != "Alice" {
		t.Errorf("String(name) = %q", got)
	}
	if got := String(args, "guests"); got != "" {
		t.Errorf("non-string should be empty, got %q", got)
	}
	if got := String(args, "missing"); got != "" {
		t.Errorf("missing should be empty, got %q", got)
	}

	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"guests", 4, true},
		{"half", 0, false},
		{"text", 6, true},
		{"bad", 0, false},
		{"count", 7, true},
		{"missing", 0, false},
		{"huge", 0, false},
		{"neg", -1, true},
		{"number", 12, true},
		{"big", 0, false},
		{"digits", 0, false},
		{"wide", 0, false},
	}
	for _, tt := range tests {
		got, ok := Int(args, tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Int(%s) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestObjectSchema(t *testing.T) {
	s := ObjectSchema(map[string]any{"date": Property("string", "YYYY-MM-DD")}, "date")
	if s["type"] != "object" {
		t.Errorf("unexpected type %v", s["type"])
	}
	req, ok := s["required"].([]string)
	if !ok || len(req) != 1 || req[0] != "date" {
		t.Errorf("unexpected required %v", s["required"])
	}
	if _, ok := ObjectSchema(nil)["required"]; ok {
		t.Error("required should be omitted when empty")
	}
}

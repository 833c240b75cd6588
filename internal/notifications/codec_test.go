package notifications

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecode_OrderPlaced(t *testing.T) {
	ev := OrderPlaced{
		UserID:    "u1",
		OrderID:   "o1",
		Email:     "ada@example.com",
		Total:     12.5,
		ItemCount: 3,
		PlacedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	b, err := EncodeOrderPlaced(ev)
	if err != nil {
		t.Fatalf("EncodeOrderPlaced error: %v", err)
	}

	got, err := DecodeOrderPlaced(b)
	if err != nil {
		t.Fatalf("DecodeOrderPlaced error: %v", err)
	}
	if got != ev {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, ev)
	}
}

func TestDecodeOrderPlaced_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "not json", data: "{"},
		{name: "missing order id", data: `{"userId":"u1"}`},
		{name: "negative total", data: `{"userId":"u1","orderId":"o1","total":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOrderPlaced([]byte(tt.data))
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("expected ErrInvalidPayload, got %v", err)
			}
		})
	}
}

func TestEncodeOrderPlaced_RejectsMissingIDs(t *testing.T) {
	if _, err := EncodeOrderPlaced(OrderPlaced{OrderID: "o1"}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

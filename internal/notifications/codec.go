package notifications

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPayload = errors.New("invalid order event payload")

// EncodeOrderPlaced validates ev and marshals it for the wire.
func EncodeOrderPlaced(ev OrderPlaced) ([]byte, error) {
	if err := ValidateOrderPlaced(ev); err != nil {
		return nil, err
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return b, nil
}

// DecodeOrderPlaced unmarshals and validates one message body.
func DecodeOrderPlaced(data []byte) (OrderPlaced, error) {
	if len(data) == 0 {
		return OrderPlaced{}, ErrInvalidPayload
	}

	var ev OrderPlaced
	if err := json.Unmarshal(data, &ev); err != nil {
		return OrderPlaced{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := ValidateOrderPlaced(ev); err != nil {
		return OrderPlaced{}, err
	}
	return ev, nil
}

func ValidateOrderPlaced(ev OrderPlaced) error {
	trim := strings.TrimSpace

	if trim(ev.OrderID) == "" || trim(ev.UserID) == "" {
		return fmt.Errorf("%w: orderId and userId are required", ErrInvalidPayload)
	}
	if ev.Total < 0 || ev.ItemCount < 0 {
		return fmt.Errorf("%w: negative total or item count", ErrInvalidPayload)
	}
	return nil
}

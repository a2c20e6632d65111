package models

import "fmt"

// Status is an order's lifecycle state. The original dashboard stored status
// as free text; it is a closed set here so the charge on reaching StatusReady
// fires on a real transition rather than on any write that carries the value.
type Status string

const (
	StatusReceived Status = "received"
	StatusCutting  Status = "cutting"
	StatusSewing   Status = "sewing"
	StatusFitting  Status = "fitting"
	// StatusReady is terminal: the transition into it posts a charge to the
	// client's ledger.
	StatusReady Status = "ready"
)

// ParseStatus validates a raw status value from a request.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusReceived, StatusCutting, StatusSewing, StatusFitting, StatusReady:
		return s, nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// Valid reports whether s is one of the defined lifecycle states.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

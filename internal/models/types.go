package models

// DateLayout is the calendar-date format used everywhere a date is persisted.
// Times of day are never stored.
const DateLayout = "2006-01-02"

// Client is a customer of the atelier.
type Client struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Seamstress is a worker orders can be assigned to.
type Seamstress struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Order is a garment-production request tracked through a status lifecycle.
// Price is nullable until the price-aware update sets it. ClientName and
// SeamstressName are joined in by list/get queries.
type Order struct {
	ID             int64    `json:"id"`
	ClientID       int64    `json:"client_id"`
	SeamstressID   int64    `json:"seamstress_id"`
	Status         Status   `json:"status"`
	Price          *float64 `json:"price"`
	Date           string   `json:"date"`
	FabricPhoto    string   `json:"fabric_photo"`
	StylePhoto     string   `json:"style_photo"`
	ClientName     string   `json:"client_name,omitempty"`
	SeamstressName string   `json:"seamstress_name,omitempty"`
}

// LedgerEntry is one signed monetary record attributed to a client.
// Positive amounts are payments received, negative amounts are charges.
// Entries are append-only; they are never mutated or deleted.
type LedgerEntry struct {
	ID          int64   `json:"id"`
	ClientID    int64   `json:"client_id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// OrderImage is an uploaded reference photo attached to an order.
type OrderImage struct {
	ID       int64  `json:"id"`
	OrderID  int64  `json:"order_id"`
	Filename string `json:"filename"`
	Date     string `json:"date"`
}

// StatusHistoryEntry is one row of the append-only status audit trail.
type StatusHistoryEntry struct {
	ID      int64  `json:"id"`
	OrderID int64  `json:"order_id"`
	Status  Status `json:"status"`
	Date    string `json:"date"`
}

// ClientWithLedger is the GET /client/{id} response shape: the client record
// merged with its full ledger, ordered by ascending date.
type ClientWithLedger struct {
	Client
	Ledger []LedgerEntry `json:"ledger"`
}

// CreateClientRequest is the payload for POST /clients.
type CreateClientRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CreateSeamstressRequest is the payload for POST /seamstresses.
type CreateSeamstressRequest struct {
	Name string `json:"name"`
}

// PaymentRequest is the payload for POST /client/{id}/payment.
type PaymentRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Method      string  `json:"method"`
}

// UpdateStatusRequest is the payload for POST /orders/{id}/status.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// UpdateOrderRequest is the payload for POST /orders/{id}/update.
type UpdateOrderRequest struct {
	Status Status  `json:"status"`
	Price  float64 `json:"price"`
}

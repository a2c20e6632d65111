package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avitans/atelier/internal/models"
	"github.com/avitans/atelier/internal/store"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrInvalidReference = errors.New("unknown client or seamstress")
	ErrInvalidStatus    = errors.New("invalid order status")
)

// ReadyCharge is the flat amount billed when an order reaches the ready state
// through a path that carries no price (order creation, plain status update).
// The price-aware update bills the supplied price instead; both behaviors come
// from the dashboard this service replaces and are kept until the owner picks
// one.
const ReadyCharge = 100.0

// OrderService owns the order lifecycle and the ledger entries it produces.
// Every multi-row write runs in one transaction: either the order change and
// its ledger/history rows all land, or none do.
type OrderService struct {
	db store.DB
}

func NewOrderService(db store.DB) *OrderService {
	return &OrderService{db: db}
}

// CreateOrderParams carries the fields of an order submission. Photo refs are
// stored filenames, empty when the client uploaded nothing.
type CreateOrderParams struct {
	ClientID     int64
	SeamstressID int64
	FabricPhoto  string
	StylePhoto   string
	Status       models.Status
}

// CreateOrder inserts a new order dated today with an initial history row.
// An order born in the ready state is billed the flat charge immediately.
func (s *OrderService) CreateOrder(ctx context.Context, p CreateOrderParams) (int64, error) {
	if !p.Status.Valid() {
		return 0, ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	today := time.Now().Format(models.DateLayout)

	var orderID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (client_id, seamstress_id, status, date, fabric_photo, style_photo)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.ClientID, p.SeamstressID, p.Status, today, p.FabricPhoto, p.StylePhoto,
	).Scan(&orderID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, ErrInvalidReference
		}
		return 0, fmt.Errorf("order insert failed: %w", err)
	}

	if err := insertHistory(ctx, tx, orderID, p.Status, today); err != nil {
		return 0, err
	}

	if p.Status == models.StatusReady {
		if err := insertLedger(ctx, tx, p.ClientID, today,
			fmt.Sprintf("Charge for order #%d", orderID), -ReadyCharge); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("tx commit failed: %w", err)
	}
	return orderID, nil
}

// UpdateStatus moves an order to a new status and records it in the history.
// The transition into ready bills the flat charge, once: an order already in
// the ready state is not billed again.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus models.Status) error {
	return s.transition(ctx, orderID, newStatus, nil)
}

// UpdateOrder sets status and price together. The transition into ready bills
// the supplied price rather than the flat charge.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID int64, newStatus models.Status, price float64) error {
	return s.transition(ctx, orderID, newStatus, &price)
}

func (s *OrderService) transition(ctx context.Context, orderID int64, newStatus models.Status, price *float64) error {
	if !newStatus.Valid() {
		return ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var clientID int64
	var current models.Status
	err = tx.QueryRow(ctx,
		"SELECT client_id, status FROM orders WHERE id = $1 FOR UPDATE", orderID).
		Scan(&clientID, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("order lookup failed: %w", err)
	}

	today := time.Now().Format(models.DateLayout)

	if price != nil {
		_, err = tx.Exec(ctx, "UPDATE orders SET status = $1, price = $2 WHERE id = $3",
			newStatus, *price, orderID)
	} else {
		_, err = tx.Exec(ctx, "UPDATE orders SET status = $1 WHERE id = $2",
			newStatus, orderID)
	}
	if err != nil {
		return fmt.Errorf("order update failed: %w", err)
	}

	if err := insertHistory(ctx, tx, orderID, newStatus, today); err != nil {
		return err
	}

	if newStatus == models.StatusReady && current != models.StatusReady {
		amount := -ReadyCharge
		if price != nil {
			amount = -*price
		}
		if err := insertLedger(ctx, tx, clientID, today,
			fmt.Sprintf("Charge for order #%d", orderID), amount); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx commit failed: %w", err)
	}
	return nil
}

// PostPayment appends one signed ledger entry for the client. The payment
// method, when given, is folded into the stored description.
func (s *OrderService) PostPayment(ctx context.Context, clientID int64, amount float64, description, method string) error {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1)", clientID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("client lookup failed: %w", err)
	}
	if !exists {
		return ErrClientNotFound
	}

	if method != "" {
		description = fmt.Sprintf("%s (%s)", description, method)
	}
	_, err = s.db.Exec(ctx,
		"INSERT INTO ledger (client_id, date, description, amount) VALUES ($1, $2, $3, $4)",
		clientID, time.Now().Format(models.DateLayout), description, amount)
	if err != nil {
		return fmt.Errorf("ledger insert failed: %w", err)
	}
	return nil
}

// AttachImage records an uploaded file against an order.
func (s *OrderService) AttachImage(ctx context.Context, orderID int64, filename string) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO order_images (order_id, filename, date) VALUES ($1, $2, $3)",
		orderID, filename, time.Now().Format(models.DateLayout))
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("image insert failed: %w", err)
	}
	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, orderID int64, status models.Status, date string) error {
	_, err := tx.Exec(ctx,
		"INSERT INTO order_status_history (order_id, status, date) VALUES ($1, $2, $3)",
		orderID, status, date)
	if err != nil {
		return fmt.Errorf("history insert failed: %w", err)
	}
	return nil
}

func insertLedger(ctx context.Context, tx pgx.Tx, clientID int64, date, description string, amount float64) error {
	_, err := tx.Exec(ctx,
		"INSERT INTO ledger (client_id, date, description, amount) VALUES ($1, $2, $3, $4)",
		clientID, date, description, amount)
	if err != nil {
		return fmt.Errorf("ledger insert failed: %w", err)
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

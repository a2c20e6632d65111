package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avitans/atelier/internal/models"
)

// ErrNotFound is returned when a referenced client, seamstress or order does
// not exist.
var ErrNotFound = errors.New("record not found")

// DB is the subset of pgxpool.Pool the store and service layers use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return pool, nil
}

// CreateClient registers a new client and returns its id.
func (s *Store) CreateClient(ctx context.Context, name, phone string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		"INSERT INTO clients (name, phone) VALUES ($1, $2) RETURNING id",
		name, phone).Scan(&id)
	return id, err
}

// ListClients returns all clients ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name, phone FROM clients ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// GetClientWithLedger fetches a client merged with its full ledger, entries
// ordered by ascending date.
func (s *Store) GetClientWithLedger(ctx context.Context, id int64) (*models.ClientWithLedger, error) {
	var c models.ClientWithLedger
	err := s.db.QueryRow(ctx,
		"SELECT id, name, phone FROM clients WHERE id = $1", id).
		Scan(&c.ID, &c.Name, &c.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		"SELECT id, client_id, date, description, amount FROM ledger WHERE client_id = $1 ORDER BY date, id",
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Date, &e.Description, &e.Amount); err != nil {
			return nil, err
		}
		c.Ledger = append(c.Ledger, e)
	}
	return &c, rows.Err()
}

// CreateSeamstress registers a new seamstress and returns its id.
func (s *Store) CreateSeamstress(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		"INSERT INTO seamstresses (name) VALUES ($1) RETURNING id", name).Scan(&id)
	return id, err
}

// ListSeamstresses returns all seamstresses ordered by name.
func (s *Store) ListSeamstresses(ctx context.Context) ([]models.Seamstress, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name FROM seamstresses ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Seamstress
	for rows.Next() {
		var sm models.Seamstress
		if err := rows.Scan(&sm.ID, &sm.Name); err != nil {
			return nil, err
		}
		list = append(list, sm)
	}
	return list, rows.Err()
}

const orderColumns = `o.id, o.client_id, o.seamstress_id, o.status, o.price, o.date,
	o.fabric_photo, o.style_photo, c.name, s.name`

// ListOrders returns all orders joined with client and seamstress names,
// newest first.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 JOIN clients c ON c.id = o.client_id
		 JOIN seamstresses s ON s.id = o.seamstress_id
		 ORDER BY o.date DESC, o.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.ClientID, &o.SeamstressID, &o.Status, &o.Price,
			&o.Date, &o.FabricPhoto, &o.StylePhoto, &o.ClientName, &o.SeamstressName); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetOrder fetches a single order joined with client and seamstress names.
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := s.db.QueryRow(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 JOIN clients c ON c.id = o.client_id
		 JOIN seamstresses s ON s.id = o.seamstress_id
		 WHERE o.id = $1`, id).
		Scan(&o.ID, &o.ClientID, &o.SeamstressID, &o.Status, &o.Price,
			&o.Date, &o.FabricPhoto, &o.StylePhoto, &o.ClientName, &o.SeamstressName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ListOrderImages returns the images attached to an order.
func (s *Store) ListOrderImages(ctx context.Context, orderID int64) ([]models.OrderImage, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, order_id, filename, date FROM order_images WHERE order_id = $1",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.OrderImage
	for rows.Next() {
		var img models.OrderImage
		if err := rows.Scan(&img.ID, &img.OrderID, &img.Filename, &img.Date); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ListOrderHistory returns an order's status audit trail, newest first.
func (s *Store) ListOrderHistory(ctx context.Context, orderID int64) ([]models.StatusHistoryEntry, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, order_id, status, date FROM order_status_history WHERE order_id = $1 ORDER BY date DESC, id DESC",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.StatusHistoryEntry
	for rows.Next() {
		var h models.StatusHistoryEntry
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Date); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

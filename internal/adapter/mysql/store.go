package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trackseed/internal/domain"
	"trackseed/internal/migrate"
	"trackseed/internal/schema"
)

// Client implements ports.Store with one JSON-document table per collection.
type Client struct {
	db     *sql.DB
	log    *slog.Logger
	tables map[string]bool
	closed atomic.Bool
}

// NewClient opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true
func NewClient(ctx context.Context, dsn string, log *slog.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		log.Error("mysql connection error", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	log.Info("mysql connected")

	tables := make(map[string]bool)
	for _, e := range schema.Default().Entities() {
		tables[e.Collection] = true
	}
	return &Client{db: db, log: log, tables: tables}, nil
}

// Migrate creates the collection tables.
func (c *Client) Migrate(ctx context.Context) error {
	return migrate.Run(ctx, c.db, c.log)
}

func (c *Client) table(collection string) (string, error) {
	if c.closed.Load() {
		return "", domain.ErrNotConnected
	}
	if !c.tables[collection] {
		return "", fmt.Errorf("mysql: unknown collection %q", collection)
	}
	return collection, nil
}

func (c *Client) Insert(ctx context.Context, collection string, doc schema.Document) (primitive.ObjectID, error) {
	table, err := c.table(collection)
	if err != nil {
		return primitive.NilObjectID, err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("mysql: encode %s document: %w", collection, err)
	}
	id := primitive.NewObjectID()
	q := "INSERT INTO " + table + " (id, doc, created_at) VALUES (?, ?, ?)"
	if _, err := c.db.ExecContext(ctx, q, id.Hex(), string(body), time.Now().UTC()); err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

func (c *Client) IDs(ctx context.Context, collection string) ([]primitive.ObjectID, error) {
	table, err := c.table(collection)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, "SELECT id FROM "+table+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []primitive.ObjectID
	for rows.Next() {
		var hex string
		if err := rows.Scan(&hex); err != nil {
			return nil, err
		}
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("mysql: %s row %q: %w", table, hex, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (c *Client) Count(ctx context.Context, collection string) (int64, error) {
	table, err := c.table(collection)
	if err != nil {
		return 0, err
	}
	var n int64
	err = c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	table, err := c.table("users")
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, "SELECT id, doc FROM "+table+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []domain.User
	for rows.Next() {
		var (
			hex  string
			body []byte
		)
		if err := rows.Scan(&hex, &body); err != nil {
			return nil, err
		}
		u, err := decodeUser(hex, body)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func decodeUser(hex string, body []byte) (domain.User, error) {
	var u domain.User
	if err := json.Unmarshal(body, &u); err != nil {
		return u, fmt.Errorf("mysql: decode user %s: %w", hex, err)
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return u, fmt.Errorf("mysql: user id %q: %w", hex, err)
	}
	u.ID = id
	return u, nil
}

// Close closes the underlying DB.
func (c *Client) Close(ctx context.Context) error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}

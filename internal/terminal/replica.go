// Package terminal implements the offline POS terminal: a SQLite catalog
// replica, a durable outbox of locally committed sales and the sync loop
// that reconciles both with the central server.
//
// The terminal never blocks a sale. Connectivity loss only pauses sync;
// sales keep queueing locally and upload when the link returns.
package terminal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stocktrail/internal/domain/snapshot"
	"stocktrail/internal/infrastructure/http/v1/dto"
)

// Replica is the terminal's local store. Products mirror the last pulled
// snapshot; the outbox holds queued sales until the server acknowledges
// them. Outbox rows are never deleted, only flagged, so the terminal keeps
// its own audit trail.
type Replica struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewReplica opens (and if needed creates) the local database. WAL mode
// keeps catalog reads from blocking behind outbox writes.
func NewReplica(path string) (*Replica, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open replica: %w", err)
	}

	r := &Replica{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate replica: %w", err)
	}
	return r, nil
}

// Close closes the database.
func (r *Replica) Close() error {
	return r.db.Close()
}

func (r *Replica) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id         TEXT PRIMARY KEY,
		sku        TEXT NOT NULL,
		name       TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT '',
		price      TEXT NOT NULL,
		stock      INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku);

	CREATE TABLE IF NOT EXISTS outbox (
		local_order_id TEXT PRIMARY KEY,
		payload_json   TEXT NOT NULL,
		created_at     TEXT NOT NULL,
		synced         INTEGER NOT NULL DEFAULT 0,
		synced_at      TEXT,
		order_number   TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(synced, created_at);
	`
	_, err := r.db.Exec(schema)
	return err
}

// CachedProduct is one row of the local catalog mirror.
type CachedProduct struct {
	ID       string
	SKU      string
	Name     string
	Category string
	Price    string
	Stock    int64
}

// ApplySnapshot upserts a freshly pulled snapshot into the catalog mirror,
// last write wins per product. Products absent from the snapshot keep their
// last known row; eviction is a separate policy, not a side effect of sync.
func (r *Replica) ApplySnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, sku, name, category, price, stock, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sku        = excluded.sku,
			name       = excluded.name,
			category   = excluded.category,
			price      = excluded.price,
			stock      = excluded.stock,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	takenAt := snap.TakenAt.UTC().Format(time.RFC3339)
	for _, item := range snap.Items {
		_, err := stmt.ExecContext(ctx,
			item.ProductID.String(), item.SKU, item.Name, item.Category,
			item.Price.StringFixed(2), item.Stock, takenAt,
		)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", item.SKU, err)
		}
	}

	return tx.Commit()
}

// GetProduct returns a cached product by id.
func (r *Replica) GetProduct(ctx context.Context, productID string) (*CachedProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var p CachedProduct
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sku, name, category, price, stock FROM products WHERE id = ?
	`, productID).Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.Stock)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListProducts returns the cached catalog ordered by SKU.
func (r *Replica) ListProducts(ctx context.Context) ([]CachedProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sku, name, category, price, stock FROM products ORDER BY sku
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []CachedProduct
	for rows.Next() {
		var p CachedProduct
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// AdjustCachedStock decrements the displayed stock after a local sale. The
// figure is advisory; the ledger on the server stays authoritative.
func (r *Replica) AdjustCachedStock(ctx context.Context, productID string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
		UPDATE products SET stock = stock + ? WHERE id = ?
	`, delta, productID)
	return err
}

// Enqueue stores a sale in the outbox.
func (r *Replica) Enqueue(ctx context.Context, sale dto.CommitOrderRequest) error {
	payload, err := json.Marshal(sale)
	if err != nil {
		return fmt.Errorf("marshal sale: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO outbox (local_order_id, payload_json, created_at)
		VALUES (?, ?, ?)
	`, sale.ClientOrderID, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("enqueue sale: %w", err)
	}
	return nil
}

// Pending returns queued sales not yet acknowledged by the server, oldest
// first so the server sees them in commit order.
func (r *Replica) Pending(ctx context.Context) ([]dto.CommitOrderRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `
		SELECT payload_json FROM outbox WHERE synced = 0 ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("select pending: %w", err)
	}
	defer rows.Close()

	var sales []dto.CommitOrderRequest
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		var sale dto.CommitOrderRequest
		if err := json.Unmarshal([]byte(payload), &sale); err != nil {
			return nil, fmt.Errorf("unmarshal pending sale: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// PendingCount returns the number of unsynced sales.
func (r *Replica) PendingCount(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM outbox WHERE synced = 0
	`).Scan(&count)
	return count, err
}

// MarkSynced flags an outbox row as acknowledged, recording the order
// number the server assigned.
func (r *Replica) MarkSynced(ctx context.Context, clientOrderID, orderNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
		UPDATE outbox SET synced = 1, synced_at = ?, order_number = ? WHERE local_order_id = ?
	`, time.Now().UTC().Format(time.RFC3339), orderNumber, clientOrderID)
	return err
}

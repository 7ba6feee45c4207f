package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-orders/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	productColumns = `id, name, description, price, stock, current_stock, created_at`

	insertProductSQL = `INSERT INTO products (id, name, description, price, stock, current_stock) VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	selectProductSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	listProductsSQL  = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	// NULL parameters keep the stored value. An omitted current_stock is
	// read from the row being updated, never from an earlier snapshot.
	updateProductSQL = `UPDATE products SET
		name = COALESCE($2::text, name),
		description = COALESCE($3::text, description),
		price = COALESCE($4::numeric, price),
		stock = COALESCE($5::int, stock),
		current_stock = CASE WHEN $6::int IS NULL THEN LEAST(COALESCE($5::int, stock), current_stock) ELSE $6::int END
		WHERE id = $1 RETURNING ` + productColumns

	// Discontinuing takes the row lock that InsertOrders' FOR SHARE waits on,
	// so the pending-order check sees every committed checkout.
	lockProductSQL   = `SELECT id FROM products WHERE id = $1 FOR UPDATE`
	pendingOrdersSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE product_id = $1 AND status = 'pending')`
	deleteProductSQL = `DELETE FROM products WHERE id = $1`
	shareProductSQL  = `SELECT id FROM products WHERE id = $1 FOR SHARE`
)

// pqCheckViolation is the Postgres SQLSTATE for a failed CHECK constraint.
const pqCheckViolation = "23514"

// PostgresStore is a Store backed by Postgres.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// Migrate applies the schema. Statements are idempotent.
func (s *PostgresStore) Migrate(ctx context.Context, schema string) error {
	_, err := s.DB.ExecContext(ctx, schema)
	return err
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (model.Product, error) {
	var p model.Product
	err := r.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CurrentStock, &p.CreatedAt)
	return p, err
}

func classifyWriteErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqCheckViolation {
		return &model.ValidationError{Field: pqErr.Constraint, Reason: "violates stock invariant"}
	}
	return model.Persistence(op, err)
}

// CreateProduct inserts a product with current_stock equal to stock.
func (s *PostgresStore) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CurrentStock = p.Stock
	if err := p.Validate(); err != nil {
		return model.Product{}, err
	}
	err := s.DB.QueryRowContext(ctx, insertProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.CurrentStock,
	).Scan(&p.CreatedAt)
	if err != nil {
		return model.Product{}, classifyWriteErr("insert product", err)
	}
	return p, nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	p, err := scanProduct(s.DB.QueryRowContext(ctx, selectProductSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Product{}, model.Persistence("get product", err)
	}
	return p, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.DB.QueryContext(ctx, listProductsSQL)
	if err != nil {
		return nil, model.Persistence("list products", err)
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, model.Persistence("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Persistence("list products", err)
	}
	return out, nil
}

// UpdateProduct applies u in a single statement. The table's CHECK
// constraint backs the 0 <= current_stock <= stock validation.
func (s *PostgresStore) UpdateProduct(ctx context.Context, id uuid.UUID, u model.ProductUpdate) (model.Product, error) {
	if err := u.Validate(); err != nil {
		return model.Product{}, err
	}
	p, err := scanProduct(s.DB.QueryRowContext(ctx, updateProductSQL,
		id, u.Name, u.Description, u.Price, u.Stock, u.CurrentStock,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Product{}, classifyWriteErr("update product", err)
	}
	return p, nil
}

// DeleteProduct discontinues a product unless a pending order still needs it.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRowContext(ctx, lockProductSQL, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %s: %w", id, model.ErrNotFound)
		}
		if err != nil {
			return err
		}

		var pending bool
		if err := tx.QueryRowContext(ctx, pendingOrdersSQL, id).Scan(&pending); err != nil {
			return err
		}
		if pending {
			return fmt.Errorf("product %s has pending orders: %w", id, model.ErrStateConflict)
		}

		_, err = tx.ExecContext(ctx, deleteProductSQL, id)
		return err
	})
	return model.Persistence("delete product", err)
}

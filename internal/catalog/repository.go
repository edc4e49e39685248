package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrDuplicate = errors.New("product already exists")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, name string) (Product, error)
	Create(ctx context.Context, p Product) error
	// Update replaces the product stored under name. p.Name may differ to rename it.
	Update(ctx context.Context, name string, p Product) error
	Delete(ctx context.Context, name string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `name, price, stock, image_ref, created_at, updated_at`

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Name, &p.Price, &p.Stock, &p.ImageRef, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, name string) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE name=$1`, name).
		Scan(&p.Name, &p.Price, &p.Stock, &p.ImageRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products(name, price, stock, image_ref)
		VALUES($1, $2, $3, $4)
	`, p.Name, p.Price, p.Stock, p.ImageRef)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, name string, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name=$2, price=$3, stock=$4, image_ref=$5, updated_at=now()
		WHERE name=$1
	`, name, p.Name, p.Price, p.Stock, p.ImageRef)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE name=$1`, name)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billforge/internal/domain"
	"billforge/internal/port"
)

type productRepo struct {
	db *sqlx.DB
}

// NewProductRepo creates a new PostgreSQL-backed ProductRepository.
func NewProductRepo(db *sqlx.DB) port.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	product.ID = uuid.New()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `INSERT INTO products (
		id, user_id, name, description, unit_price, tax_rate, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.UserID, product.Name, product.Description,
		product.UnitPrice, product.TaxRate, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("productRepo.Create: %w", err)
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, userID, productID uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 AND user_id = $2", productID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("productRepo.GetByID: %w", err)
	}
	return &product, nil
}

func (r *productRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Product, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM products WHERE user_id = $1", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("productRepo.ListByUser count: %w", err)
	}

	var products []domain.Product
	err = r.db.SelectContext(ctx, &products,
		`SELECT * FROM products WHERE user_id = $1
		 ORDER BY name ASC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("productRepo.ListByUser: %w", err)
	}
	return products, total, nil
}

func (r *productRepo) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET
			name = $1, description = $2, unit_price = $3, tax_rate = $4, updated_at = $5
		 WHERE id = $6 AND user_id = $7`,
		product.Name, product.Description, product.UnitPrice, product.TaxRate,
		product.UpdatedAt, product.ID, product.UserID)
	if err != nil {
		return fmt.Errorf("productRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM products WHERE id = $1 AND user_id = $2", productID, userID)
	if err != nil {
		return fmt.Errorf("productRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

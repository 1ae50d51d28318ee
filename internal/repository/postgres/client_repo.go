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

type clientRepo struct {
	db *sqlx.DB
}

// NewClientRepo creates a new PostgreSQL-backed ClientRepository.
func NewClientRepo(db *sqlx.DB) port.ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *domain.Client) error {
	client.ID = uuid.New()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	query := `INSERT INTO clients (
		id, user_id, name, email, phone, address, tax_id, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		client.ID, client.UserID, client.Name, client.Email, client.Phone,
		client.Address, client.TaxID, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("clientRepo.Create: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, userID, clientID uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.GetContext(ctx, &client,
		"SELECT * FROM clients WHERE id = $1 AND user_id = $2", clientID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByID: %w", err)
	}
	return &client, nil
}

func (r *clientRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Client, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM clients WHERE user_id = $1", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("clientRepo.ListByUser count: %w", err)
	}

	var clients []domain.Client
	err = r.db.SelectContext(ctx, &clients,
		`SELECT * FROM clients WHERE user_id = $1
		 ORDER BY name ASC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("clientRepo.ListByUser: %w", err)
	}
	return clients, total, nil
}

func (r *clientRepo) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE clients SET
			name = $1, email = $2, phone = $3, address = $4, tax_id = $5, updated_at = $6
		 WHERE id = $7 AND user_id = $8`,
		client.Name, client.Email, client.Phone, client.Address, client.TaxID,
		client.UpdatedAt, client.ID, client.UserID)
	if err != nil {
		return fmt.Errorf("clientRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, userID, clientID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM clients WHERE id = $1 AND user_id = $2", clientID, userID)
	if err != nil {
		return fmt.Errorf("clientRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

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

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	doc.ID = uuid.New()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, user_id, type, identifier, status, client_id, client_name, client_email,
		issue_date, due_date, items, discount, subtotal, tax_amount, total, notes,
		needs_clarification, clarification_questions, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8,
		$9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Type, doc.Identifier, doc.Status,
		doc.ClientID, doc.ClientName, doc.ClientEmail,
		doc.IssueDate, doc.DueDate, doc.Items, doc.Discount,
		doc.Subtotal, doc.TaxAmount, doc.Total, doc.Notes,
		doc.NeedsClarification, doc.ClarificationQuestions,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, userID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND user_id = $2", docID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByUser count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT * FROM documents %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByUser: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) ListForExport(ctx context.Context, userID uuid.UUID, filter port.DocumentFilter) ([]domain.Document, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var docs []domain.Document
	query := "SELECT * FROM documents " + where + " ORDER BY created_at DESC"
	err := r.db.SelectContext(ctx, &docs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListForExport: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) LatestIdentifier(ctx context.Context, userID uuid.UUID, docType domain.DocumentType) (string, error) {
	var identifier string
	err := r.db.GetContext(ctx, &identifier,
		`SELECT identifier FROM documents
		 WHERE user_id = $1 AND type = $2
		 ORDER BY created_at DESC LIMIT 1`,
		userID, docType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("documentRepo.LatestIdentifier: %w", err)
	}
	return identifier, nil
}

// Update persists every mutable field of the document. The identifier and
// status are excluded: the identifier is assigned once at creation and
// status transitions go through UpdateStatus.
func (r *documentRepo) Update(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			client_id = $1, client_name = $2, client_email = $3,
			issue_date = $4, due_date = $5, items = $6, discount = $7,
			subtotal = $8, tax_amount = $9, total = $10, notes = $11,
			needs_clarification = $12, clarification_questions = $13, updated_at = $14
		 WHERE id = $15 AND user_id = $16`,
		doc.ClientID, doc.ClientName, doc.ClientEmail,
		doc.IssueDate, doc.DueDate, doc.Items, doc.Discount,
		doc.Subtotal, doc.TaxAmount, doc.Total, doc.Notes,
		doc.NeedsClarification, doc.ClarificationQuestions, doc.UpdatedAt,
		doc.ID, doc.UserID)
	if err != nil {
		return fmt.Errorf("documentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) UpdateStatus(ctx context.Context, userID, docID uuid.UUID, status domain.DocumentStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4",
		status, time.Now().UTC(), docID, userID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = $1 AND user_id = $2", docID, userID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

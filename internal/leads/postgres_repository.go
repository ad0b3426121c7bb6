package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row. The database assigns created_at.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	id := uuid.New()
	query := `
		INSERT INTO leads (
			id, name, email, message, products_interest,
			utm_source, utm_medium, utm_campaign,
			ip_address, user_agent, page_url,
			source, status, priority, gdpr_consent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		lead.Name,
		lead.Email,
		lead.Message,
		lead.ProductsInterest,
		lead.UTMSource,
		lead.UTMMedium,
		lead.UTMCampaign,
		lead.IPAddress,
		lead.UserAgent,
		lead.PageURL,
		lead.Source,
		lead.Status,
		lead.Priority,
		lead.GDPRConsent,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	stored := *lead
	stored.ID = id.String()
	stored.CreatedAt = createdAt
	return &stored, nil
}

const leadColumns = `
	id, name, email, message, products_interest,
	utm_source, utm_medium, utm_campaign,
	ip_address, user_agent, page_url,
	source, status, priority, gdpr_consent, created_at
`

// GetByID fetches a single lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns leads newest first, optionally filtered by status.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var result []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		result = append(result, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return result, nil
}

// UpdateStatus transitions a stored lead to the given status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	tag, err := r.db.Exec(ctx, `UPDATE leads SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("leads: update status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Message,
		&lead.ProductsInterest,
		&lead.UTMSource,
		&lead.UTMMedium,
		&lead.UTMCampaign,
		&lead.IPAddress,
		&lead.UserAgent,
		&lead.PageURL,
		&lead.Source,
		&lead.Status,
		&lead.Priority,
		&lead.GDPRConsent,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}

package source

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// OwnerOf resolves a source's owner transitively through its notebook.
// sql.ErrNoRows means the source (or its notebook) does not exist.
func (r *PostgresRepo) OwnerOf(ctx context.Context, id string) (string, error) {
	var owner string
	query := `SELECT n.user_id FROM sources s JOIN notebooks n ON n.id = s.notebook_id WHERE s.id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&owner)
	if err != nil {
		return "", err
	}
	return owner, nil
}

func (r *PostgresRepo) UpdateProcessingStatus(ctx context.Context, id, status string) error {
	query := `UPDATE sources SET processing_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *PostgresRepo) UpdateProcessingStatusMany(ctx context.Context, ids []string, status string) error {
	query := `UPDATE sources SET processing_status = $1, updated_at = NOW() WHERE id = ANY($2)`
	_, err := r.db.ExecContext(ctx, query, status, pq.Array(ids))
	return err
}

// FirstContentForNotebook returns the stored content of the notebook's
// earliest source, used when a generation request names no file.
func (r *PostgresRepo) FirstContentForNotebook(ctx context.Context, notebookID string) (string, error) {
	var content sql.NullString
	query := `SELECT content FROM sources WHERE notebook_id = $1 ORDER BY created_at ASC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, notebookID).Scan(&content)
	if err != nil {
		return "", err
	}
	return content.String, nil
}

// ApplyCallback records the processor's verdict for a source: its terminal
// status plus any extracted title and content.
func (r *PostgresRepo) ApplyCallback(ctx context.Context, id, status string, title, content *string) error {
	query := `UPDATE sources
		SET processing_status = $1,
		    title = COALESCE($2, title),
		    content = COALESCE($3, content),
		    updated_at = NOW()
		WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, status, title, content, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM sources`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func (r *PostgresRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM sources WHERE processing_status = $1`
	err := r.db.QueryRowContext(ctx, query, status).Scan(&count)
	return count, err
}

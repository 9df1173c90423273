package notebook

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

// OwnerOf resolves the owning user of a notebook. sql.ErrNoRows means the
// notebook does not exist.
func (r *PostgresRepo) OwnerOf(ctx context.Context, id string) (string, error) {
	var owner string
	query := `SELECT user_id FROM notebooks WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&owner)
	if err != nil {
		return "", err
	}
	return owner, nil
}

func (r *PostgresRepo) UpdateGenerationStatus(ctx context.Context, id, status string) error {
	query := `UPDATE notebooks SET generation_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

// ApplyGenerated persists the processor's output and marks generation
// completed in one statement.
func (r *PostgresRepo) ApplyGenerated(ctx context.Context, id string, gen Generated) error {
	query := `UPDATE notebooks
		SET title = $1, description = $2, icon = $3, color = $4, example_questions = $5,
		    generation_status = $6, updated_at = NOW()
		WHERE id = $7`
	_, err := r.db.ExecContext(ctx, query,
		gen.Title, gen.Description, gen.Icon, gen.Color, pq.Array(gen.ExampleQuestions),
		StatusCompleted, id)
	return err
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notebooks`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

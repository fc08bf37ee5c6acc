package postgres

import (
	"context"

	"paraeval/internal/domain"
)

var _ domain.ScoreRepository = (*DB)(nil)

// UpsertScore inserts the row or replaces the one with the same title. The
// replaced row moves to the end of the ledger, as in the CSV backend.
func (d *DB) UpsertScore(ctx context.Context, key domain.LedgerKey, rec domain.ScoreRecord) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO scores (username, model, title, semantic, syntactic, fluency, overall, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (username, model, title) DO UPDATE SET
	semantic = EXCLUDED.semantic,
	syntactic = EXCLUDED.syntactic,
	fluency = EXCLUDED.fluency,
	overall = EXCLUDED.overall,
	seq = nextval(pg_get_serial_sequence('scores', 'seq')),
	updated_at = EXCLUDED.updated_at;`,
		key.Username, key.Model, rec.Title, rec.Semantic, rec.Syntactic, rec.Fluency, rec.Overall, d.now().UTC(),
	)
	return err
}

// ListScores returns the ledger rows in write order.
func (d *DB) ListScores(ctx context.Context, key domain.LedgerKey) ([]domain.ScoreRecord, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT title, semantic, syntactic, fluency, overall FROM scores WHERE username=$1 AND model=$2 ORDER BY seq;",
		key.Username, key.Model)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.ScoreRecord
	for rows.Next() {
		var r domain.ScoreRecord
		if err := rows.Scan(&r.Title, &r.Semantic, &r.Syntactic, &r.Fluency, &r.Overall); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

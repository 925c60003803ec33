package progress

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the progress and attempts tables if absent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS progress (
			uuid            text NOT NULL,
			theme           text NOT NULL,
			category        text NOT NULL,
			subcategory     text NOT NULL,
			total_questions integer NOT NULL,
			answered        integer NOT NULL,
			correct         integer NOT NULL,
			updated_at      timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (uuid, theme, category, subcategory)
		);
		CREATE INDEX IF NOT EXISTS idx_progress_uuid ON progress (uuid);
		CREATE INDEX IF NOT EXISTS idx_progress_uuid_theme ON progress (uuid, theme);

		CREATE TABLE IF NOT EXISTS attempts (
			id              serial PRIMARY KEY,
			uuid            text NOT NULL,
			theme           text NOT NULL,
			category        text NOT NULL,
			subcategory     text NOT NULL,
			total_questions integer NOT NULL,
			answered        integer NOT NULL,
			correct         integer NOT NULL,
			score           integer NOT NULL,
			created_at      timestamptz NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_uuid ON attempts (uuid);
		CREATE INDEX IF NOT EXISTS idx_attempts_uuid_subcat ON attempts (uuid, theme, category, subcategory);
	`)
	if err != nil {
		return fmt.Errorf("ensure progress schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO progress (uuid, theme, category, subcategory, total_questions, answered, correct, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (uuid, theme, category, subcategory)
		 DO UPDATE SET
		   total_questions = EXCLUDED.total_questions,
		   answered        = EXCLUDED.answered,
		   correct         = EXCLUDED.correct,
		   updated_at      = now()`,
		rec.UUID, rec.Theme, rec.Category, rec.Subcategory,
		rec.TotalQuestions, rec.Answered, rec.Correct,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordAttempt(ctx context.Context, att Attempt) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (uuid, theme, category, subcategory, total_questions, answered, correct, score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		att.UUID, att.Theme, att.Category, att.Subcategory,
		att.TotalQuestions, att.Answered, att.Correct, att.Score,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *PostgresStore) Reset(ctx context.Context, uuid, theme string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if theme != "" {
		if _, err := s.pool.Exec(ctx,
			`DELETE FROM progress WHERE uuid = $1 AND theme = $2`, uuid, theme); err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		if _, err := s.pool.Exec(ctx,
			`DELETE FROM attempts WHERE uuid = $1 AND theme = $2`, uuid, theme); err != nil {
			return fmt.Errorf("reset attempts: %w", err)
		}
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM progress WHERE uuid = $1`, uuid); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM attempts WHERE uuid = $1`, uuid); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

func (s *PostgresStore) Aggregates(ctx context.Context, uuid string) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	report := &Report{
		ByTheme:       []ThemeTotals{},
		ByCategory:    []CategoryTotals{},
		BySubcategory: []SubcategoryTotals{},
	}

	rows, err := s.pool.Query(ctx,
		`SELECT theme,
		        COALESCE(SUM(answered), 0),
		        COALESCE(SUM(correct), 0),
		        COALESCE(SUM(total_questions), 0)
		 FROM progress
		 WHERE uuid = $1
		 GROUP BY theme
		 ORDER BY theme`,
		uuid,
	)
	if err != nil {
		return nil, fmt.Errorf("query theme totals: %w", err)
	}
	for rows.Next() {
		var t ThemeTotals
		if err := rows.Scan(&t.Theme, &t.Answered, &t.Correct, &t.TotalQuestions); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan theme totals: %w", err)
		}
		report.ByTheme = append(report.ByTheme, t)
		report.Totals.Answered += t.Answered
		report.Totals.Correct += t.Correct
		report.Totals.TotalQuestions += t.TotalQuestions
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate theme totals: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT theme, category,
		        COALESCE(SUM(answered), 0),
		        COALESCE(SUM(correct), 0),
		        COALESCE(SUM(total_questions), 0)
		 FROM progress
		 WHERE uuid = $1
		 GROUP BY theme, category
		 ORDER BY theme, category`,
		uuid,
	)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	for rows.Next() {
		var c CategoryTotals
		if err := rows.Scan(&c.Theme, &c.Category, &c.Answered, &c.Correct, &c.TotalQuestions); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan category totals: %w", err)
		}
		report.ByCategory = append(report.ByCategory, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT p.theme, p.category, p.subcategory,
		        p.answered, p.correct, p.total_questions,
		        COALESCE(a.attempts, 0), COALESCE(a.avg_score, 0), COALESCE(a.best_score, 0)
		 FROM progress p
		 LEFT JOIN (
		   SELECT theme, category, subcategory,
		          COUNT(*) AS attempts,
		          ROUND(AVG(score)) AS avg_score,
		          MAX(score) AS best_score
		   FROM attempts
		   WHERE uuid = $1
		   GROUP BY theme, category, subcategory
		 ) a USING (theme, category, subcategory)
		 WHERE p.uuid = $1
		 ORDER BY p.theme, p.category, p.subcategory`,
		uuid,
	)
	if err != nil {
		return nil, fmt.Errorf("query subcategory totals: %w", err)
	}
	for rows.Next() {
		var sc SubcategoryTotals
		if err := rows.Scan(
			&sc.Theme, &sc.Category, &sc.Subcategory,
			&sc.Answered, &sc.Correct, &sc.TotalQuestions,
			&sc.Attempts, &sc.AvgScore, &sc.BestScore,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan subcategory totals: %w", err)
		}
		report.BySubcategory = append(report.BySubcategory, sc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subcategory totals: %w", err)
	}

	return report, nil
}

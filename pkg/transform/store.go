package transform

import (
	"context"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists character rows in Postgres.
type Store struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// Open connects to Postgres and returns a Store.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &Store{
		db:     db,
		logger: log.With().Str("component", "store").Logger(),
	}, nil
}

// Close releases the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db.DB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	s.logger.Info().Msg("Schema migrations applied")
	return nil
}

// Save upserts character rows. Re-running an extraction refreshes names,
// portraits and comic counts of known characters.
func (s *Store) Save(ctx context.Context, rows []CharacterRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO characters (id, name, img, comics)
	         VALUES ($1, $2, $3, $4)
	         ON CONFLICT (id) DO UPDATE
	         SET name = EXCLUDED.name, img = EXCLUDED.img, comics = EXCLUDED.comics,
	             updated_at = now()`,
			row.ID,
			row.Name,
			row.Img,
			row.Comics,
		)
		if err != nil {
			return fmt.Errorf("upsert character %d: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info().Int("rows", len(rows)).Msg("Character rows saved")
	return nil
}

// TopByComics returns character rows ordered by comic count, highest first.
// A non-positive limit returns all rows.
func (s *Store) TopByComics(ctx context.Context, limit int) ([]CharacterRow, error) {
	query := `SELECT id, name, img, comics FROM characters ORDER BY comics DESC, name ASC`
	args := []any{}

	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var rows []CharacterRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select characters: %w", err)
	}

	return rows, nil
}

// Count returns the number of stored characters.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM characters`); err != nil {
		return 0, fmt.Errorf("count characters: %w", err)
	}
	return count, nil
}

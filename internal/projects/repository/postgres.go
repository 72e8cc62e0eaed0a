package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
)

const uniqueViolation = "23505"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	doc        JSONB NOT NULL,
	archived   BOOLEAN NOT NULL DEFAULT FALSE,
	seq        BIGSERIAL,
	CONSTRAINT projects_name_key UNIQUE (name)
);
`

// PostgresStore keeps each project as a JSONB document. The name column
// mirrors doc->>'name' so uniqueness is enforced by the database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new project store over db
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the projects table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return wrap("ensure schema", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrap("ping", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	const q = `SELECT doc FROM projects WHERE id = $1;`
	return s.queryOne(ctx, "get project", q, id)
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (*domain.Project, error) {
	const q = `SELECT doc FROM projects WHERE name = $1;`
	return s.queryOne(ctx, "find project by name", q, name)
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Project, error) {
	const q = `SELECT doc FROM projects ORDER BY seq ASC;`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, wrap("list projects", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, wrap("scan project", err)
		}
		var p domain.Project
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode project document: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list projects", err)
	}
	return out, nil
}

func (s *PostgresStore) Insert(ctx context.Context, p *domain.Project) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project document: %w", err)
	}

	const q = `
INSERT INTO projects (id, name, doc, archived)
VALUES ($1, $2, $3, $4);
`
	if _, err := s.db.ExecContext(ctx, q, p.ID, p.Name, doc, p.Archived); err != nil {
		if isUniqueViolation(err) {
			return errNameTaken(p.Name)
		}
		return wrap("insert project", err)
	}
	return nil
}

func (s *PostgresStore) Replace(ctx context.Context, p *domain.Project) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project document: %w", err)
	}

	const q = `
UPDATE projects
SET name = $2, doc = $3, archived = $4
WHERE id = $1;
`
	res, err := s.db.ExecContext(ctx, q, p.ID, p.Name, doc, p.Archived)
	if err != nil {
		if isUniqueViolation(err) {
			return errNameTaken(p.Name)
		}
		return wrap("replace project", err)
	}
	return requireAffected(res, "replace project")
}

func (s *PostgresStore) SetArchived(ctx context.Context, id string, archived bool) error {
	const q = `
UPDATE projects
SET archived = $2, doc = jsonb_set(doc, '{archived}', to_jsonb($2::boolean))
WHERE id = $1;
`
	res, err := s.db.ExecContext(ctx, q, id, archived)
	if err != nil {
		return wrap("set archived", err)
	}
	return requireAffected(res, "set archived")
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM projects WHERE id = $1;`

	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return wrap("delete project", err)
	}
	return requireAffected(res, "delete project")
}

func (s *PostgresStore) queryOne(ctx context.Context, op, q string, arg string) (*domain.Project, error) {
	var raw []byte
	if err := s.db.QueryRowContext(ctx, q, arg).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errProjectNotFound
		}
		return nil, wrap(op, err)
	}

	var p domain.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode project document: %w", err)
	}
	return &p, nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return errProjectNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

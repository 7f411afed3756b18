package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps every document as a JSONB row keyed by (collection, id).
// Merge writes use the || operator; the de-dup append is a
// read-modify-write under a row lock.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres { return &Postgres{db: db} }

// EnsureSchema creates the documents table. Called once at startup.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
    CREATE TABLE IF NOT EXISTS documents (
      collection TEXT NOT NULL,
      id         TEXT NOT NULL,
      fields     JSONB NOT NULL DEFAULT '{}'::jsonb,
      PRIMARY KEY (collection, id)
    )
  `)
	return err
}

func (p *Postgres) GetDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var raw []byte
	err := p.db.QueryRow(ctx, `
    SELECT fields FROM documents WHERE collection=$1 AND id=$2
  `, collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get failed: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("postgres get decode failed: %w", err)
	}
	return fields, nil
}

func (p *Postgres) SetFields(ctx context.Context, collection, id string, fields map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("postgres set encode failed: %w", err)
	}
	_, err = p.db.Exec(ctx, `
    INSERT INTO documents (collection, id, fields) VALUES ($1,$2,$3)
    ON CONFLICT (collection, id) DO UPDATE SET fields = documents.fields || EXCLUDED.fields
  `, collection, id, raw)
	if err != nil {
		return fmt.Errorf("postgres set failed: %w", err)
	}
	return nil
}

func (p *Postgres) AppendToArrayField(ctx context.Context, collection, id, field string, values ...any) error {
	if len(values) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("postgres append failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Materialize the row first: FOR UPDATE cannot lock a row that does
	// not exist, and two concurrent first appends would otherwise both
	// read empty and the second write would clobber the first.
	if _, err := tx.Exec(ctx, `
    INSERT INTO documents (collection, id) VALUES ($1,$2)
    ON CONFLICT (collection, id) DO NOTHING
  `, collection, id); err != nil {
		return fmt.Errorf("postgres append failed: %w", err)
	}

	var raw []byte
	err = tx.QueryRow(ctx, `
    SELECT fields FROM documents WHERE collection=$1 AND id=$2 FOR UPDATE
  `, collection, id).Scan(&raw)
	if err != nil {
		return fmt.Errorf("postgres append failed: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("postgres append decode failed: %w", err)
	}

	existing, _ := fields[field].([]any)
	normalized, err := Encode(map[string]any{field: values})
	if err != nil {
		return err
	}
	incoming, _ := normalized[field].([]any)
	fields[field] = appendUnique(existing, incoming)

	out, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("postgres append encode failed: %w", err)
	}
	if _, err := tx.Exec(ctx, `
    INSERT INTO documents (collection, id, fields) VALUES ($1,$2,$3)
    ON CONFLICT (collection, id) DO UPDATE SET fields = EXCLUDED.fields
  `, collection, id, out); err != nil {
		return fmt.Errorf("postgres append failed: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *Postgres) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := p.db.Query(ctx, `
    SELECT id, fields FROM documents WHERE collection=$1 ORDER BY id
  `, collection)
	if err != nil {
		return nil, fmt.Errorf("postgres list failed: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("postgres list failed: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("postgres list decode failed: %w", err)
		}
		out = append(out, Document{ID: id, Fields: fields})
	}
	return out, rows.Err()
}

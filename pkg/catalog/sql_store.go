package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"content-curator/pkg/db"
	"content-curator/pkg/domain"
)

//go:embed schema.sql
var schemaSQL string

const recordColumns = `id, type, title, source_url, embed_url, level, duration, transcript, tags, channel, created_at`

// SQLConn is a connected SQL client that the store takes ownership of.
type SQLConn interface {
	db.DBProvider
	Close() error
}

// SQLStore is the catalog over SQLite or Postgres.
type SQLStore struct {
	conn SQLConn
	db   *sqlx.DB
	// substring is the dialect's case-sensitive position function.
	substring string
}

type recordRow struct {
	ID         string         `db:"id"`
	Type       string         `db:"type"`
	Title      string         `db:"title"`
	SourceURL  string         `db:"source_url"`
	EmbedURL   sql.NullString `db:"embed_url"`
	Level      string         `db:"level"`
	Duration   sql.NullInt64  `db:"duration"`
	Transcript sql.NullString `db:"transcript"`
	Tags       sql.NullString `db:"tags"`
	Channel    sql.NullString `db:"channel"`
	CreatedAt  string         `db:"created_at"`
}

type statsRow struct {
	Total         int64 `db:"total"`
	Videos        int64 `db:"videos"`
	Text          int64 `db:"texts"`
	TotalDuration int64 `db:"total_duration"`
}

// NewSQLStore applies the schema and returns a store that owns conn.
func NewSQLStore(ctx context.Context, conn SQLConn) (*SQLStore, error) {
	handle := conn.DB()
	if handle == nil {
		return nil, fmt.Errorf("sql catalog: database not connected")
	}

	store := &SQLStore{conn: conn, db: handle, substring: "instr"}
	if sqlx.BindType(handle.DriverName()) == sqlx.DOLLAR {
		store.substring = "strpos"
	}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init catalog schema: %w", err)
		}
	}
	return nil
}

// Insert relies on the primary key so the existence check and the write are one statement.
func (s *SQLStore) Insert(ctx context.Context, rec *domain.ContentRecord) (InsertResult, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	q := s.db.Rebind(`
		INSERT INTO content (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	row := toRow(rec)
	res, err := s.db.ExecContext(ctx, q,
		row.ID, row.Type, row.Title, row.SourceURL, row.EmbedURL, row.Level,
		row.Duration, row.Transcript, row.Tags, row.Channel, row.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("catalog insert %s: %w", rec.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("catalog insert %s: rows affected: %w", rec.ID, err)
	}
	if affected == 0 {
		return AlreadyExists, nil
	}
	return Inserted, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*domain.ContentRecord, error) {
	q := s.db.Rebind(`SELECT ` + recordColumns + ` FROM content WHERE id = ?`)

	var row recordRow
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog get %s: %w", id, err)
	}

	rec, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLStore) ListAll(ctx context.Context) ([]domain.ContentRecord, error) {
	return s.query(ctx, "list all", "")
}

func (s *SQLStore) ListByLevel(ctx context.Context, level domain.Level) ([]domain.ContentRecord, error) {
	return s.query(ctx, "list by level", "WHERE level = ?", string(level))
}

func (s *SQLStore) ListByType(ctx context.Context, t domain.ContentType) ([]domain.ContentRecord, error) {
	return s.query(ctx, "list by type", "WHERE type = ?", string(t))
}

func (s *SQLStore) Search(ctx context.Context, query string) ([]domain.ContentRecord, error) {
	if query == "" {
		return s.ListAll(ctx)
	}
	where := fmt.Sprintf("WHERE %[1]s(title, ?) > 0 OR %[1]s(COALESCE(tags, ''), ?) > 0", s.substring)
	return s.query(ctx, "search", where, query, query)
}

func (s *SQLStore) Stats(ctx context.Context) (domain.Stats, error) {
	const q = `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN type = 'video_link' THEN 1 ELSE 0 END), 0) AS videos,
			COALESCE(SUM(CASE WHEN type = 'text' THEN 1 ELSE 0 END), 0) AS texts,
			COALESCE(SUM(duration), 0) AS total_duration
		FROM content
	`

	var row statsRow
	if err := s.db.GetContext(ctx, &row, q); err != nil {
		return domain.Stats{}, fmt.Errorf("catalog stats: %w", err)
	}
	return domain.Stats(row), nil
}

// Close releases the underlying connection.
func (s *SQLStore) Close() error {
	return s.conn.Close()
}

func (s *SQLStore) query(ctx context.Context, op, where string, args ...any) ([]domain.ContentRecord, error) {
	q := s.db.Rebind(`SELECT ` + recordColumns + ` FROM content ` + where + ` ORDER BY created_at DESC, id ASC`)

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", op, err)
	}

	out := make([]domain.ContentRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func toRow(rec *domain.ContentRecord) recordRow {
	row := recordRow{
		ID:        rec.ID,
		Type:      string(rec.Type),
		Title:     rec.Title,
		SourceURL: rec.SourceURL,
		Level:     string(rec.Level),
		Tags:      sql.NullString{String: domain.JoinTags(rec.Tags), Valid: true},
		CreatedAt: domain.FormatTimestamp(rec.CreatedAt),
	}
	if rec.EmbedURL != nil {
		row.EmbedURL = sql.NullString{String: *rec.EmbedURL, Valid: true}
	}
	if rec.Duration != nil {
		row.Duration = sql.NullInt64{Int64: int64(*rec.Duration), Valid: true}
	}
	if rec.Transcript != nil {
		row.Transcript = sql.NullString{String: *rec.Transcript, Valid: true}
	}
	if rec.Channel != nil {
		row.Channel = sql.NullString{String: *rec.Channel, Valid: true}
	}
	return row
}

func (r recordRow) toRecord() (domain.ContentRecord, error) {
	createdAt, err := domain.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("content %s: %w", r.ID, err)
	}

	rec := domain.ContentRecord{
		ID:        r.ID,
		Type:      domain.ContentType(r.Type),
		Title:     r.Title,
		SourceURL: r.SourceURL,
		Level:     domain.Level(r.Level),
		Tags:      domain.SplitTags(r.Tags.String),
		CreatedAt: createdAt,
	}
	if r.EmbedURL.Valid {
		rec.EmbedURL = domain.StringPtr(r.EmbedURL.String)
	}
	if r.Duration.Valid {
		rec.Duration = domain.IntPtr(int(r.Duration.Int64))
	}
	if r.Transcript.Valid {
		rec.Transcript = domain.StringPtr(r.Transcript.String)
	}
	if r.Channel.Valid {
		rec.Channel = domain.StringPtr(r.Channel.String)
	}
	return rec, nil
}

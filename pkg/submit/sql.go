package submit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vango-dev/choicegroup/pkg/features/form"
)

// Dialect names a supported database/sql driver.
type Dialect string

const (
	Postgres Dialect = "postgres" // github.com/lib/pq
	PGX      Dialect = "pgx"      // github.com/jackc/pgx/v5/stdlib
	SQLite   Dialect = "sqlite3"  // github.com/mattn/go-sqlite3
)

// ErrUnknownDialect is returned by OpenSQL for drivers it doesn't know.
var ErrUnknownDialect = errors.New("submit: unknown sql dialect")

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLSink stores submissions as rows.
//
// submitted_at is kept as unix milliseconds so the schema is identical
// across dialects.
type SQLSink struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// SQLOption configures an SQLSink.
type SQLOption func(*SQLSink)

// WithTable overrides the default table name "choice_submissions".
func WithTable(name string) SQLOption {
	return func(s *SQLSink) { s.table = name }
}

// OpenSQL opens dsn with the driver for dialect and wraps it in a sink.
func OpenSQL(dialect Dialect, dsn string, opts ...SQLOption) (*SQLSink, error) {
	switch dialect {
	case Postgres, PGX, SQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		// In-memory databases are per connection.
		db.SetMaxOpenConns(1)
	}
	s, err := NewSQLSink(db, dialect, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLSink wraps an open database.
func NewSQLSink(db *sql.DB, dialect Dialect, opts ...SQLOption) (*SQLSink, error) {
	s := &SQLSink{db: db, dialect: dialect, table: "choice_submissions"}
	for _, opt := range opts {
		opt(s)
	}
	if !tableName.MatchString(s.table) {
		return nil, fmt.Errorf("submit: invalid table name %q", s.table)
	}
	return s, nil
}

// DB returns the underlying database.
func (s *SQLSink) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLSink) Close() error { return s.db.Close() }

// bind rewrites ? placeholders for dialects that number them.
func (s *SQLSink) bind(query string) string {
	if s.dialect == SQLite {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate creates the table and its form index.
func (s *SQLSink) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
	id TEXT PRIMARY KEY,
	form TEXT NOT NULL,
	submitted_at BIGINT NOT NULL,
	values_json TEXT NOT NULL,
	client_json TEXT
)`,
		`CREATE INDEX IF NOT EXISTS ` + s.table + `_form_idx ON ` + s.table + ` (form, submitted_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("submit: migrate: %w", err)
		}
	}
	return nil
}

// Save implements form.Sink.
func (s *SQLSink) Save(ctx context.Context, sub form.Submission) error {
	values, err := json.Marshal(sub.Values)
	if err != nil {
		return err
	}
	var client sql.NullString
	if sub.Client != nil {
		data, err := json.Marshal(sub.Client)
		if err != nil {
			return err
		}
		client = sql.NullString{String: string(data), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, s.bind(`INSERT INTO `+s.table+
		` (id, form, submitted_at, values_json, client_json) VALUES (?, ?, ?, ?, ?)`),
		sub.ID.String(), sub.Form, sub.SubmittedAt.UnixMilli(), string(values), client)
	if err != nil {
		return fmt.Errorf("submit: insert %s: %w", sub.ID, err)
	}
	return nil
}

// Load implements Store.
func (s *SQLSink) Load(ctx context.Context, id uuid.UUID) (form.Submission, error) {
	row := s.db.QueryRowContext(ctx, s.bind(`SELECT id, form, submitted_at, values_json, client_json FROM `+
		s.table+` WHERE id = ?`), id.String())
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return form.Submission{}, ErrNotFound
	}
	return sub, err
}

// List returns the submissions for a form, oldest first.
func (s *SQLSink) List(ctx context.Context, formName string) ([]form.Submission, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT id, form, submitted_at, values_json, client_json FROM `+
		s.table+` WHERE form = ? ORDER BY submitted_at, id`), formName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []form.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (form.Submission, error) {
	var (
		id, formName, values string
		at                   int64
		client               sql.NullString
	)
	if err := row.Scan(&id, &formName, &at, &values, &client); err != nil {
		return form.Submission{}, err
	}
	sub := form.Submission{
		Form:        formName,
		SubmittedAt: time.UnixMilli(at).UTC(),
	}
	var err error
	if sub.ID, err = uuid.Parse(id); err != nil {
		return form.Submission{}, fmt.Errorf("submit: bad id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(values), &sub.Values); err != nil {
		return form.Submission{}, fmt.Errorf("submit: decode values of %s: %w", id, err)
	}
	if client.Valid {
		sub.Client = &form.Client{}
		if err := json.Unmarshal([]byte(client.String), sub.Client); err != nil {
			return form.Submission{}, fmt.Errorf("submit: decode client of %s: %w", id, err)
		}
	}
	return sub, nil
}

package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)

	SaveRun(ctx context.Context, userID int, name string, samples int, payload []byte) (string, error)
	ListRuns(ctx context.Context, userID int) ([]Run, error)
	GetRun(ctx context.Context, userID int, id string) (Run, error)
	DeleteRun(ctx context.Context, userID int, id string) error
}

// Run is a saved norm result. Payload is the JSON encoded result and is
// left out of listings.
type Run struct {
	ID        string          `json:"id"`
	UserID    int             `json:"user_id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Samples   int             `json:"samples"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type dialect int

const (
	postgres dialect = iota
	sqlite
)

// SQLRepository implements Repository over database/sql. Queries are written
// with ? placeholders and rebound for Postgres.
type SQLRepository struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func NewPostgresUserDB(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, dialect: postgres, now: time.Now}
}

func NewSQLiteDB(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, dialect: sqlite, now: time.Now}
}

func (r *SQLRepository) DB() *sql.DB { return r.db }

func (r *SQLRepository) bind(query string) string {
	if r.dialect != postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *SQLRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := r.bind("INSERT INTO users (login, email, password) VALUES (?, ?, ?) RETURNING id")
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *SQLRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := r.bind("SELECT id, password FROM users WHERE login=?")

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *SQLRepository) SaveRun(ctx context.Context, userID int, name string, samples int, payload []byte) (string, error) {
	id := uuid.NewString()
	query := r.bind("INSERT INTO norm_runs (id, user_id, name, created_at, samples, payload) VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := r.db.ExecContext(ctx, query, id, userID, name, r.now().Unix(), samples, payload); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) ListRuns(ctx context.Context, userID int) ([]Run, error) {
	query := r.bind("SELECT id, user_id, name, created_at, samples FROM norm_runs WHERE user_id=? ORDER BY created_at DESC, id")
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []Run{}
	for rows.Next() {
		var (
			run     Run
			created int64
		)
		if err := rows.Scan(&run.ID, &run.UserID, &run.Name, &created, &run.Samples); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(created, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLRepository) GetRun(ctx context.Context, userID int, id string) (Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Run{}, ErrNotFound
	}
	var (
		run     Run
		created int64
		payload []byte
	)
	query := r.bind("SELECT id, user_id, name, created_at, samples, payload FROM norm_runs WHERE id=? AND user_id=?")
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&run.ID, &run.UserID, &run.Name, &created, &run.Samples, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("select run: %w", err)
	}
	run.CreatedAt = time.Unix(created, 0).UTC()
	run.Payload = payload
	return run, nil
}

func (r *SQLRepository) DeleteRun(ctx context.Context, userID int, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, r.bind("DELETE FROM norm_runs WHERE id=? AND user_id=?"), id, userID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/sandeepkv93/daybook/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

const (
	// DriverCGO is the mattn/go-sqlite3 driver.
	DriverCGO = "sqlite3"
	// DriverPure is the modernc.org/sqlite driver.
	DriverPure = "sqlite"
)

const taskColumns = `id, name, list, type, due_at, due_date, done, remarks, repeat, ref_task_id, detail, created_at`

type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

type Option func(*SQLiteRepository)

// WithLocation sets the zone due times are returned in. Day keys are written
// by the caller and are not recomputed on read.
func WithLocation(loc *time.Location) Option {
	return func(r *SQLiteRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewSQLiteRepository(db *sql.DB, opts ...Option) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	r := &SQLiteRepository{db: db, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Open opens path with the named driver, applies migrations and returns a
// ready repository.
func Open(driver, path string, opts ...Option) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage: db path is empty")
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := path
	switch driver {
	case DriverCGO, "":
		driver = DriverCGO
	case DriverPure:
		dsn = sqliteDSN(path)
	default:
		return nil, fmt.Errorf("storage: unknown sqlite driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) (model.Task, error) {
	detail, err := encodeDetail(in.Detail)
	if err != nil {
		return model.Task{}, failure("create task", err)
	}
	created := in.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (name, list, type, due_at, due_date, done, remarks, repeat, ref_task_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.List, string(in.Type), mustTime(in.DueAt), int(in.DueDate), boolInt(in.Done),
		in.Remarks, in.RepeatString(), in.RefTaskID, detail, mustTime(created),
	)
	if err != nil {
		return model.Task{}, failure("create task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, failure("create task", err)
	}
	out := in.Clone()
	out.ID = id
	out.CreatedAt = created
	return out, nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := r.scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, failure("get task", err)
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	detail, err := encodeDetail(in.Detail)
	if err != nil {
		return failure("update task", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, list = ?, type = ?, due_at = ?, due_date = ?, done = ?, remarks = ?, repeat = ?, ref_task_id = ?, detail = ?
		WHERE id = ?`,
		in.Name, in.List, string(in.Type), mustTime(in.DueAt), int(in.DueDate), boolInt(in.Done),
		in.Remarks, in.RepeatString(), in.RefTaskID, detail, in.ID,
	)
	if err != nil {
		return failure("update task", err)
	}
	return failure("update task", checkRowsAffected(res))
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return failure("delete task", err)
	}
	return failure("delete task", checkRowsAffected(res))
}

func (r *SQLiteRepository) ListTasksByDate(ctx context.Context, day model.DayKey) ([]model.Task, error) {
	return r.listTasks(ctx, "list tasks by date",
		`SELECT `+taskColumns+` FROM tasks WHERE due_date = ? ORDER BY due_at ASC, id ASC`, int(day))
}

// ListPendingTasks returns unfinished tasks due strictly before the given day.
func (r *SQLiteRepository) ListPendingTasks(ctx context.Context, before model.DayKey) ([]model.Task, error) {
	return r.listTasks(ctx, "list pending tasks",
		`SELECT `+taskColumns+` FROM tasks WHERE done = 0 AND due_date < ? ORDER BY due_at ASC, id ASC`, int(before))
}

func (r *SQLiteRepository) ListRepeatingTasks(ctx context.Context) ([]model.Task, error) {
	return r.listTasks(ctx, "list repeating tasks",
		`SELECT `+taskColumns+` FROM tasks WHERE repeat <> ? ORDER BY id ASC`, model.NoRepeat)
}

func (r *SQLiteRepository) listTasks(ctx context.Context, op, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, failure(op, err)
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := r.scanTask(rows)
		if scanErr != nil {
			return nil, failure(op, scanErr)
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, failure(op, err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, name string) (model.Setting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, value FROM settings WHERE name = ?`, name)
	var out model.Setting
	if err := row.Scan(&out.ID, &out.Name, &out.Value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Setting{}, ErrNotFound
		}
		return model.Setting{}, failure("get setting", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateSetting(ctx context.Context, in model.Setting) (model.Setting, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO settings (name, value) VALUES (?, ?)`, in.Name, in.Value)
	if err != nil {
		return model.Setting{}, failure("create setting", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Setting{}, failure("create setting", err)
	}
	in.ID = id
	return in, nil
}

// UpdateSetting writes by name so a caller holding a stale id still lands on
// the right row.
func (r *SQLiteRepository) UpdateSetting(ctx context.Context, in model.Setting) error {
	res, err := r.db.ExecContext(ctx, `UPDATE settings SET value = ? WHERE name = ?`, in.Value, in.Name)
	if err != nil {
		return failure("update setting", err)
	}
	return failure("update setting", checkRowsAffected(res))
}

func (r *SQLiteRepository) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, value FROM settings ORDER BY id ASC`)
	if err != nil {
		return nil, failure("list settings", err)
	}
	defer rows.Close()

	out := make([]model.Setting, 0)
	for rows.Next() {
		var item model.Setting
		if err := rows.Scan(&item.ID, &item.Name, &item.Value); err != nil {
			return nil, failure("list settings", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, failure("list settings", err)
	}
	return out, nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func encodeDetail(detail map[string]string) (string, error) {
	if len(detail) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		return "", fmt.Errorf("encode detail: %w", err)
	}
	return string(raw), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanTask(s scanner) (model.Task, error) {
	var (
		out       model.Task
		taskType  string
		dueAt     string
		dueDate   int
		done      int
		repeat    string
		detail    string
		createdAt string
	)
	if err := s.Scan(&out.ID, &out.Name, &out.List, &taskType, &dueAt, &dueDate, &done, &out.Remarks, &repeat, &out.RefTaskID, &detail, &createdAt); err != nil {
		return model.Task{}, err
	}
	due, err := parseRequiredTime(dueAt)
	if err != nil {
		return model.Task{}, err
	}
	created, err := parseRequiredTime(createdAt)
	if err != nil {
		return model.Task{}, err
	}
	rule, err := model.ParseRepeat(repeat)
	if err != nil {
		return model.Task{}, err
	}
	out.Detail = map[string]string{}
	if detail != "" {
		if err := json.Unmarshal([]byte(detail), &out.Detail); err != nil {
			return model.Task{}, fmt.Errorf("decode detail: %w", err)
		}
	}
	out.Type = model.TaskType(taskType)
	out.DueAt = due.In(r.loc)
	out.DueDate = model.DayKey(dueDate)
	out.Done = done == 1
	out.Repeat = rule
	out.CreatedAt = created.In(r.loc)
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// sqliteDSN builds the file: DSN modernc.org/sqlite prefers.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") || path == ":memory:" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

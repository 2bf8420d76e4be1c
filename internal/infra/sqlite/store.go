// Package sqlite provides a single-node SQLite entity store.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"trivia-service/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

const personColumns = `id, name, age, gender, avatar, score, created_at, updated_at`

var sortColumns = map[domain.SortField]string{
	domain.SortByName:  "name",
	domain.SortByAge:   "age",
	domain.SortByScore: "score",
}

// Store persists people and questions in SQLite.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database file at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, clock: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) CreatePerson(ctx context.Context, p domain.Person) (domain.Person, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		INSERT INTO people (id, name, age, gender, avatar, score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		RETURNING `+personColumns,
		p.ID, p.Name, p.Age, string(p.Gender), p.Avatar, toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	return personResult("create person", row)
}

func (s *Store) GetPerson(ctx context.Context, id string) (domain.Person, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	return personResult("get person", row)
}

func (s *Store) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (domain.Person, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		UPDATE people SET name = ?, age = ?, gender = ?, avatar = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+personColumns,
		u.Name, u.Age, string(u.Gender), u.Avatar, toMillis(s.clock()), id)
	return personResult("update person", row)
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return domain.Unavailable("delete person", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Unavailable("delete person", err)
	}
	if n == 0 {
		return domain.ErrPersonNotFound
	}
	return nil
}

func (s *Store) IncrementScore(ctx context.Context, id string, delta int) (domain.Person, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		UPDATE people SET score = score + ?, updated_at = ?
		WHERE id = ?
		RETURNING `+personColumns,
		delta, toMillis(s.clock()), id)
	return personResult("increment score", row)
}

func (s *Store) ListPeople(ctx context.Context, filter domain.PeopleFilter, order domain.PeopleSort) ([]domain.Person, error) {
	column, ok := sortColumns[order.Field]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported sort field %q", domain.ErrInvalidRequest, order.Field)
	}
	direction := "DESC"
	if order.Direction == domain.Ascending {
		direction = "ASC"
	}

	query := `SELECT ` + personColumns + ` FROM people`
	var args []any
	if filter.Gender != "" {
		query += ` WHERE gender = ?`
		args = append(args, string(filter.Gender))
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id ASC`, column, direction)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Unavailable("list people", err)
	}
	defer rows.Close()

	var people []domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, domain.Unavailable("list people", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("list people", err)
	}
	return people, nil
}

func (s *Store) GetQuestionByID(ctx context.Context, id string) (domain.Question, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT id, question, options, correct_answer FROM questions WHERE id = ?`, id)
	return questionResult("get question", row)
}

func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT count(*) FROM questions`).Scan(&n); err != nil {
		return 0, domain.Unavailable("count questions", err)
	}
	return n, nil
}

func (s *Store) GetQuestionAtOffset(ctx context.Context, offset int) (domain.Question, error) {
	if offset < 0 {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT id, question, options, correct_answer FROM questions
		ORDER BY id ASC LIMIT 1 OFFSET ?`, offset)
	return questionResult("question at offset", row)
}

func (s *Store) ReplaceQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO questions (id, question, options, correct_answer) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}
	defer stmt.Close()

	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return 0, fmt.Errorf("encode options for %s: %w", q.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, q.ID, q.Question, string(options), q.CorrectAnswer); err != nil {
			return 0, domain.Unavailable("replace questions", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}
	return len(questions), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func personResult(op string, row scanner) (domain.Person, error) {
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Person{}, domain.ErrPersonNotFound
	}
	if isConstraintViolation(err) {
		return domain.Person{}, fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidPerson, err)
	}
	if err != nil {
		return domain.Person{}, domain.Unavailable(op, err)
	}
	return p, nil
}

// isConstraintViolation reports primary key, CHECK and NOT NULL failures. They are
// caller errors, not outages.
func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3lib.SQLITE_CONSTRAINT
}

func questionResult(op string, row scanner) (domain.Question, error) {
	var q domain.Question
	var options string
	err := row.Scan(&q.ID, &q.Question, &options, &q.CorrectAnswer)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, domain.Unavailable(op, err)
	}
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return domain.Question{}, fmt.Errorf("decode options for %s: %w", q.ID, err)
	}
	return q, nil
}

func scanPerson(row scanner) (domain.Person, error) {
	var p domain.Person
	var gender string
	var createdAt, updatedAt int64
	if err := row.Scan(&p.ID, &p.Name, &p.Age, &gender, &p.Avatar, &p.Score, &createdAt, &updatedAt); err != nil {
		return domain.Person{}, err
	}
	p.Gender = domain.Gender(gender)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

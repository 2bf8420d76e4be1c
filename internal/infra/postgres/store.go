package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-service/internal/domain"
)

const personColumns = `id, name, age, gender, avatar, score, created_at, updated_at`

// sortColumns is the allow-list of ORDER BY targets.
var sortColumns = map[domain.SortField]string{
	domain.SortByName:  "name",
	domain.SortByAge:   "age",
	domain.SortByScore: "score",
}

// Store is a Postgres-backed app.Store. Score increments are single UPDATE statements.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects a pool to url.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewStore(pool), nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) CreatePerson(ctx context.Context, p domain.Person) (domain.Person, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO people (id, name, age, gender, avatar, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
		RETURNING `+personColumns,
		p.ID, p.Name, p.Age, string(p.Gender), p.Avatar, p.CreatedAt, p.UpdatedAt)
	return personResult("create person", row)
}

func (s *Store) GetPerson(ctx context.Context, id string) (domain.Person, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+personColumns+` FROM people WHERE id = $1`, id)
	return personResult("get person", row)
}

func (s *Store) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (domain.Person, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE people SET name = $2, age = $3, gender = $4, avatar = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+personColumns,
		id, u.Name, u.Age, string(u.Gender), u.Avatar)
	return personResult("update person", row)
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return domain.Unavailable("delete person", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPersonNotFound
	}
	return nil
}

func (s *Store) IncrementScore(ctx context.Context, id string, delta int) (domain.Person, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE people SET score = score + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+personColumns,
		id, delta)
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
	var args []interface{}
	if filter.Gender != "" {
		query += ` WHERE gender = $1`
		args = append(args, string(filter.Gender))
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id ASC`, column, direction)

	rows, err := s.pool.Query(ctx, query, args...)
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
	row := s.pool.QueryRow(ctx, `SELECT id, question, options, correct_answer FROM questions WHERE id = $1`, id)
	return questionResult("get question", row)
}

func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&n); err != nil {
		return 0, domain.Unavailable("count questions", err)
	}
	return n, nil
}

func (s *Store) GetQuestionAtOffset(ctx context.Context, offset int) (domain.Question, error) {
	if offset < 0 {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	row := s.pool.QueryRow(ctx, `
		SELECT id, question, options, correct_answer FROM questions
		ORDER BY id ASC OFFSET $1 LIMIT 1`, offset)
	return questionResult("question at offset", row)
}

// ReplaceQuestions swaps the whole bank inside one transaction.
func (s *Store) ReplaceQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}

	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(`INSERT INTO questions (id, question, options, correct_answer) VALUES ($1, $2, $3, $4)`,
			q.ID, q.Question, q.Options, q.CorrectAnswer)
	}
	results := tx.SendBatch(ctx, batch)
	for range questions {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return 0, domain.Unavailable("replace questions", err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}
	return len(questions), nil
}

func personResult(op string, row pgx.Row) (domain.Person, error) {
	p, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
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

// isConstraintViolation matches SQLSTATE class 23 (integrity constraint violation).
func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == "23"
}

func questionResult(op string, row pgx.Row) (domain.Question, error) {
	var q domain.Question
	err := row.Scan(&q.ID, &q.Question, &q.Options, &q.CorrectAnswer)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, domain.Unavailable(op, err)
	}
	return q, nil
}

func scanPerson(row pgx.Row) (domain.Person, error) {
	var p domain.Person
	var gender string
	err := row.Scan(&p.ID, &p.Name, &p.Age, &gender, &p.Avatar, &p.Score, &p.CreatedAt, &p.UpdatedAt)
	p.Gender = domain.Gender(gender)
	return p, err
}

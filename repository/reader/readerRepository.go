package readerrepo

import (
	"context"
	"errors"

	"librarium/model"
	"librarium/util/database"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repo interface {
	// Add inserts the reader unless one with the same natural key exists.
	Add(ctx context.Context, tx database.Tx, rd model.Reader) (id int64, added bool, err error)

	// ResolveOrCreate returns the reader's id, inserting first when absent.
	ResolveOrCreate(ctx context.Context, tx database.Tx, rd model.Reader) (int64, error)

	ExistsByKey(ctx context.Context, tx database.Tx, rd model.Reader) (id int64, ok bool, err error)
	GetAll(ctx context.Context) ([]model.Reader, error)
	GetByLastName(ctx context.Context, lastName string) ([]model.Reader, error)
	RemoveByKey(ctx context.Context, tx database.Tx, rd model.Reader) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Add(ctx context.Context, tx database.Tx, rd model.Reader) (int64, bool, error) {
	if _, ok, err := findIDByKey(ctx, tx, rd); err != nil {
		return 0, false, err
	} else if ok {
		return 0, false, nil
	}
	id, err := insert(ctx, tx, rd)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (r *repo) ResolveOrCreate(ctx context.Context, tx database.Tx, rd model.Reader) (int64, error) {
	id, ok, err := findIDByKey(ctx, tx, rd)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	return insert(ctx, tx, rd)
}

func (r *repo) ExistsByKey(ctx context.Context, tx database.Tx, rd model.Reader) (int64, bool, error) {
	return findIDByKey(ctx, tx, rd)
}

func (r *repo) GetAll(ctx context.Context) ([]model.Reader, error) {
	const q = `
SELECT id, first_name, last_name, date_of_birth
FROM readers
ORDER BY last_name, first_name`
	return r.list(ctx, q)
}

func (r *repo) GetByLastName(ctx context.Context, lastName string) ([]model.Reader, error) {
	const q = `
SELECT id, first_name, last_name, date_of_birth
FROM readers
WHERE LOWER(last_name) = LOWER($1)
ORDER BY last_name, first_name`
	return r.list(ctx, q, lastName)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Reader, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reader
	for rows.Next() {
		var rd model.Reader
		if err := rows.Scan(&rd.ID, &rd.FirstName, &rd.LastName, &rd.DateOfBirth); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *repo) RemoveByKey(ctx context.Context, tx database.Tx, rd model.Reader) (bool, error) {
	id, ok, err := findIDByKey(ctx, tx, rd)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM readers WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func findIDByKey(ctx context.Context, q database.Querier, rd model.Reader) (int64, bool, error) {
	const sql = `
SELECT id FROM readers
WHERE LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2) AND date_of_birth = $3`
	var id int64
	err := q.QueryRow(ctx, sql, rd.FirstName, rd.LastName, rd.DateOfBirth).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func insert(ctx context.Context, tx database.Tx, rd model.Reader) (int64, error) {
	const q = `INSERT INTO readers (first_name, last_name, date_of_birth) VALUES ($1,$2,$3) RETURNING id`
	var id int64
	if err := tx.QueryRow(ctx, q, rd.FirstName, rd.LastName, rd.DateOfBirth).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

package locationrepo

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
	// Add inserts the location unless its (section, shelf) key is taken.
	Add(ctx context.Context, tx database.Tx, loc model.BookLocation) (id int64, added bool, err error)

	// ResolveOrCreate returns the id for the key, inserting it first when
	// absent. Idempotent within the transaction.
	ResolveOrCreate(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, error)

	ExistsByKey(ctx context.Context, section string, shelf int) (id int64, ok bool, err error)
	GetAll(ctx context.Context) ([]model.BookLocation, error)
	HasAnyBookAssigned(ctx context.Context, tx database.Tx, section string, shelf int) (bool, error)
	Remove(ctx context.Context, tx database.Tx, section string, shelf int) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Add(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, bool, error) {
	if _, ok, err := findIDByKey(ctx, tx, loc.Section, loc.Shelf); err != nil {
		return 0, false, err
	} else if ok {
		return 0, false, nil
	}
	id, err := insert(ctx, tx, loc)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (r *repo) ResolveOrCreate(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, error) {
	id, ok, err := findIDByKey(ctx, tx, loc.Section, loc.Shelf)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	return insert(ctx, tx, loc)
}

func (r *repo) ExistsByKey(ctx context.Context, section string, shelf int) (int64, bool, error) {
	return findIDByKey(ctx, r.db.Pool, section, shelf)
}

func (r *repo) GetAll(ctx context.Context) ([]model.BookLocation, error) {
	const q = `SELECT id, section, shelf FROM book_shelf_location ORDER BY section, shelf`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookLocation
	for rows.Next() {
		var l model.BookLocation
		if err := rows.Scan(&l.ID, &l.Section, &l.Shelf); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) HasAnyBookAssigned(ctx context.Context, tx database.Tx, section string, shelf int) (bool, error) {
	const q = `
SELECT COUNT(*) FROM books
WHERE shelf_location_id = (SELECT id FROM book_shelf_location WHERE section = $1 AND shelf = $2)`
	var n int64
	if err := tx.QueryRow(ctx, q, section, shelf).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) Remove(ctx context.Context, tx database.Tx, section string, shelf int) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM book_shelf_location WHERE section = $1 AND shelf = $2`, section, shelf)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func findIDByKey(ctx context.Context, q database.Querier, section string, shelf int) (int64, bool, error) {
	const sql = `SELECT id FROM book_shelf_location WHERE section = $1 AND shelf = $2`
	var id int64
	err := q.QueryRow(ctx, sql, section, shelf).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func insert(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, error) {
	const q = `INSERT INTO book_shelf_location (section, shelf) VALUES ($1,$2) RETURNING id`
	var id int64
	if err := tx.QueryRow(ctx, q, loc.Section, loc.Shelf).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

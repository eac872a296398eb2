package bookrepo

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
	// Add inserts the book and returns its generated id. When a book with
	// the same (title, author, year) already exists it reports added=false
	// and leaves the store untouched.
	Add(ctx context.Context, tx database.Tx, b model.Book) (id int64, added bool, err error)

	// IncreaseQuantity / DecreaseQuantity apply quantity ± n atomically.
	// They report false when the book does not exist. Bounds checking is a
	// service-layer concern.
	IncreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error)
	DecreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error)

	GetAll(ctx context.Context) ([]model.Book, error)
	GetByTitle(ctx context.Context, title string) ([]model.Book, error)
	GetByAuthor(ctx context.Context, author string) ([]model.Book, error)
	FindByDetails(ctx context.Context, title, author string, year int) (*model.Book, error)

	RemoveByDetails(ctx context.Context, tx database.Tx, title, author string, year int) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

const selectBooks = `
SELECT b.id, b.title, b.author, b.year_of_publication, b.quantity,
       b.shelf_location_id, l.section, l.shelf
FROM books b
JOIN book_shelf_location l ON b.shelf_location_id = l.id`

func (r *repo) Add(ctx context.Context, tx database.Tx, b model.Book) (int64, bool, error) {
	if _, ok, err := findIDByDetails(ctx, tx, b.Title, b.Author, b.YearOfPublication); err != nil {
		return 0, false, err
	} else if ok {
		return 0, false, nil
	}

	const q = `
INSERT INTO books (title, author, year_of_publication, quantity, shelf_location_id)
VALUES ($1,$2,$3,$4,$5)
RETURNING id`
	var id int64
	err := tx.QueryRow(ctx, q, b.Title, b.Author, b.YearOfPublication, b.Quantity, b.Location.ID).Scan(&id)
	if err != nil {
		// Lost race on the natural-key unique index: same outcome as the
		// existence check above.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (r *repo) IncreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error) {
	return r.adjustQuantity(ctx, tx, b, +n)
}

func (r *repo) DecreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error) {
	return r.adjustQuantity(ctx, tx, b, -n)
}

func (r *repo) adjustQuantity(ctx context.Context, tx database.Tx, b model.Book, delta int) (bool, error) {
	id, ok, err := findIDByDetails(ctx, tx, b.Title, b.Author, b.YearOfPublication)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	const q = `UPDATE books SET quantity = quantity + $1 WHERE id = $2`
	tag, err := tx.Exec(ctx, q, delta, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) GetAll(ctx context.Context) ([]model.Book, error) {
	return r.list(ctx, selectBooks+` ORDER BY b.title, b.author`)
}

func (r *repo) GetByTitle(ctx context.Context, title string) ([]model.Book, error) {
	return r.list(ctx, selectBooks+` WHERE LOWER(b.title) = LOWER($1) ORDER BY b.title, b.author`, title)
}

func (r *repo) GetByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	return r.list(ctx, selectBooks+` WHERE LOWER(b.author) = LOWER($1) ORDER BY b.title, b.author`, author)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) FindByDetails(ctx context.Context, title, author string, year int) (*model.Book, error) {
	const q = selectBooks + `
WHERE LOWER(b.title) = LOWER($1) AND LOWER(b.author) = LOWER($2) AND b.year_of_publication = $3`
	row := r.db.Pool.QueryRow(ctx, q, title, author, year)
	b, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repo) RemoveByDetails(ctx context.Context, tx database.Tx, title, author string, year int) (bool, error) {
	id, ok, err := findIDByDetails(ctx, tx, title, author, year)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func findIDByDetails(ctx context.Context, q database.Querier, title, author string, year int) (int64, bool, error) {
	const sql = `
SELECT id FROM books
WHERE LOWER(title) = LOWER($1) AND LOWER(author) = LOWER($2) AND year_of_publication = $3`
	var id int64
	err := q.QueryRow(ctx, sql, title, author, year).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func scanBook(row pgx.Row) (model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.YearOfPublication, &b.Quantity,
		&b.Location.ID, &b.Location.Section, &b.Location.Shelf,
	)
	return b, err
}

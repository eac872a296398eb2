package loanrepo

import (
	"context"
	"errors"
	"time"

	"librarium/model"
	"librarium/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	// Add creates an active loan with borrow date = today and return due
	// date = today + the loan period. Reports added=false when the pair
	// already has an active loan.
	Add(ctx context.Context, tx database.Tx, readerID, bookID int64) (loan model.Loan, added bool, err error)

	IsBorrowed(ctx context.Context, tx database.Tx, bookID int64) (bool, error)
	FindID(ctx context.Context, tx database.Tx, rd model.Reader, b model.Book) (int64, bool, error)

	ListByReaderWithDates(ctx context.Context, rd model.Reader) ([]model.BorrowedBookRow, error)
	ListOverdue(ctx context.Context) ([]model.OverdueLoanRow, error)
	CountOverdue(ctx context.Context) (int64, error)
	HasOverdue(ctx context.Context, tx database.Tx, readerID int64) (bool, error)
	HasOverdueByKey(ctx context.Context, rd model.Reader) (bool, error)

	Remove(ctx context.Context, tx database.Tx, rd model.Reader, b model.Book) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Add(ctx context.Context, tx database.Tx, readerID, bookID int64) (model.Loan, bool, error) {
	const existsQ = `SELECT id FROM borrowed_books WHERE reader_id = $1 AND book_id = $2`
	var existing int64
	err := tx.QueryRow(ctx, existsQ, readerID, bookID).Scan(&existing)
	if err == nil {
		return model.Loan{}, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Loan{}, false, err
	}

	loan := model.Loan{ReaderID: readerID, BookID: bookID}
	loan.BorrowDate = time.Now()
	loan.ReturnDueDate = loan.BorrowDate.AddDate(0, 0, model.LoanPeriodDays)

	const q = `
INSERT INTO borrowed_books (reader_id, book_id, borrow_date, return_due_date)
VALUES ($1,$2,$3,$4)
RETURNING id`
	if err := tx.QueryRow(ctx, q, readerID, bookID, loan.BorrowDate, loan.ReturnDueDate).Scan(&loan.ID); err != nil {
		return model.Loan{}, false, err
	}
	return loan, true, nil
}

func (r *repo) IsBorrowed(ctx context.Context, tx database.Tx, bookID int64) (bool, error) {
	const q = `SELECT COUNT(*) FROM borrowed_books WHERE book_id = $1`
	var n int64
	if err := tx.QueryRow(ctx, q, bookID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) FindID(ctx context.Context, tx database.Tx, rd model.Reader, b model.Book) (int64, bool, error) {
	const q = `
SELECT bb.id FROM borrowed_books bb
JOIN readers r ON bb.reader_id = r.id
JOIN books b ON bb.book_id = b.id
WHERE LOWER(r.first_name) = LOWER($1) AND LOWER(r.last_name) = LOWER($2) AND r.date_of_birth = $3
  AND LOWER(b.title) = LOWER($4) AND LOWER(b.author) = LOWER($5) AND b.year_of_publication = $6`
	var id int64
	err := tx.QueryRow(ctx, q,
		rd.FirstName, rd.LastName, rd.DateOfBirth,
		b.Title, b.Author, b.YearOfPublication,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (r *repo) ListByReaderWithDates(ctx context.Context, rd model.Reader) ([]model.BorrowedBookRow, error) {
	const q = `
SELECT b.title, b.author, b.year_of_publication, bb.borrow_date, bb.return_due_date
FROM borrowed_books bb
JOIN books b ON bb.book_id = b.id
JOIN readers r ON bb.reader_id = r.id
WHERE LOWER(r.first_name) = LOWER($1) AND LOWER(r.last_name) = LOWER($2) AND r.date_of_birth = $3`
	rows, err := r.db.Pool.Query(ctx, q, rd.FirstName, rd.LastName, rd.DateOfBirth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BorrowedBookRow
	for rows.Next() {
		var row model.BorrowedBookRow
		if err := rows.Scan(&row.Title, &row.Author, &row.YearOfPublication, &row.BorrowDate, &row.ReturnDueDate); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) ListOverdue(ctx context.Context) ([]model.OverdueLoanRow, error) {
	const q = `
SELECT r.first_name, r.last_name, r.date_of_birth, bb.borrow_date, bb.return_due_date
FROM borrowed_books bb
JOIN readers r ON bb.reader_id = r.id
WHERE bb.return_due_date < CURRENT_DATE`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OverdueLoanRow
	for rows.Next() {
		var row model.OverdueLoanRow
		if err := rows.Scan(&row.FirstName, &row.LastName, &row.DateOfBirth, &row.BorrowDate, &row.ReturnDueDate); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) CountOverdue(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM borrowed_books WHERE return_due_date < CURRENT_DATE`
	var n int64
	err := r.db.Pool.QueryRow(ctx, q).Scan(&n)
	return n, err
}

func (r *repo) HasOverdue(ctx context.Context, tx database.Tx, readerID int64) (bool, error) {
	const q = `
SELECT bb.id FROM borrowed_books bb
WHERE bb.reader_id = $1 AND bb.return_due_date < CURRENT_DATE
LIMIT 1`
	var id int64
	err := tx.QueryRow(ctx, q, readerID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) HasOverdueByKey(ctx context.Context, rd model.Reader) (bool, error) {
	const q = `
SELECT bb.id FROM borrowed_books bb
JOIN readers r ON bb.reader_id = r.id
WHERE LOWER(r.first_name) = LOWER($1) AND LOWER(r.last_name) = LOWER($2) AND r.date_of_birth = $3
  AND bb.return_due_date < CURRENT_DATE
LIMIT 1`
	var id int64
	err := r.db.Pool.QueryRow(ctx, q, rd.FirstName, rd.LastName, rd.DateOfBirth).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) Remove(ctx context.Context, tx database.Tx, rd model.Reader, b model.Book) (bool, error) {
	id, ok, err := r.FindID(ctx, tx, rd, b)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM borrowed_books WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

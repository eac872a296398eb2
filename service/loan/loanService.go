package loansvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"librarium/model"
	"librarium/util/apperr"
	"librarium/util/database"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrNoCopies       ErrCode = "NOT_ENOUGH_COPIES"
	ErrReaderOverdue  ErrCode = "READER_OVERDUE"
	ErrReaderNotFound ErrCode = "READER_NOT_FOUND"
	ErrLoanNotFound   ErrCode = "LOAN_NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the business error code, or "" for other errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type TxBeginner interface {
	Begin(ctx context.Context) (database.Tx, error)
}

type BookRepo interface {
	FindByDetails(ctx context.Context, title, author string, year int) (*model.Book, error)
	IncreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error)
	DecreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error)
}

type ReaderRepo interface {
	ResolveOrCreate(ctx context.Context, tx database.Tx, rd model.Reader) (int64, error)
	ExistsByKey(ctx context.Context, tx database.Tx, rd model.Reader) (int64, bool, error)
}

type LoanRepo interface {
	Add(ctx context.Context, tx database.Tx, readerID, bookID int64) (model.Loan, bool, error)
	FindID(ctx context.Context, tx database.Tx, rd model.Reader, b model.Book) (int64, bool, error)
	Remove(ctx context.Context, tx database.Tx, rd model.Reader, b model.Book) (bool, error)
	ListByReaderWithDates(ctx context.Context, rd model.Reader) ([]model.BorrowedBookRow, error)
	ListOverdue(ctx context.Context) ([]model.OverdueLoanRow, error)
	HasOverdue(ctx context.Context, tx database.Tx, readerID int64) (bool, error)
	HasOverdueByKey(ctx context.Context, rd model.Reader) (bool, error)
}

type Service interface {
	// BorrowBook creates an active loan and decrements the book's
	// available quantity in one transaction. The reader is registered on
	// the fly when unknown. borrowed=false means the reader already holds
	// this title; nothing is changed in that case.
	BorrowBook(ctx context.Context, rd model.Reader, b model.Book) (loan model.Loan, borrowed bool, err error)

	// ReturnBook deletes the active loan for the (reader, book) pair and
	// increments the book's available quantity in one transaction.
	ReturnBook(ctx context.Context, rd model.Reader, b model.Book) (bool, error)

	ListByReaderWithDates(ctx context.Context, rd model.Reader) ([]model.BorrowedBookRow, error)
	ListOverdue(ctx context.Context) ([]model.OverdueLoanRow, error)
	HasOverdue(ctx context.Context, rd model.Reader) (bool, error)
}

type service struct {
	db TxBeginner
	br BookRepo
	rr ReaderRepo
	bb LoanRepo
}

func New(db TxBeginner, br BookRepo, rr ReaderRepo, bb LoanRepo) Service {
	return &service{db: db, br: br, rr: rr, bb: bb}
}

func (s *service) BorrowBook(ctx context.Context, rd model.Reader, b model.Book) (_ model.Loan, _ bool, err error) {
	var none model.Loan
	if err := validateReader(rd); err != nil {
		return none, false, err
	}
	if err := validateBookKey(b.Title, b.Author, b.YearOfPublication); err != nil {
		return none, false, err
	}

	existing, err := s.br.FindByDetails(ctx, b.Title, b.Author, b.YearOfPublication)
	if err != nil {
		return none, false, apperr.Op("find book", err)
	}
	if existing == nil {
		return none, false, makeErr(ErrBookNotFound)
	}
	if existing.Quantity <= 0 {
		return none, false, makeErr(ErrNoCopies)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return none, false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	readerID, err := s.rr.ResolveOrCreate(ctx, tx, rd)
	if err != nil {
		return none, false, apperr.Op("resolve reader", err)
	}

	overdue, err := s.bb.HasOverdue(ctx, tx, readerID)
	if err != nil {
		return none, false, apperr.Op("check overdue", err)
	}
	if overdue {
		return none, false, makeErr(ErrReaderOverdue)
	}

	loan, added, err := s.bb.Add(ctx, tx, readerID, existing.ID)
	if err != nil {
		return none, false, apperr.Op("add loan", err)
	}
	if !added {
		// The reader already holds this title; discard the scope so a
		// reader registered above is not kept either. A failing rollback
		// still surfaces.
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return none, false, apperr.Op("rollback", rbErr)
		}
		return none, false, nil
	}

	// Quantity > 0 was verified above; the loan insert and this decrement
	// must land together or not at all.
	applied, err := s.br.DecreaseQuantity(ctx, tx, *existing, 1)
	if err != nil {
		return none, false, apperr.Op("decrease quantity", err)
	}
	if !applied {
		return none, false, apperr.Op("decrease quantity", errors.New("book vanished during borrow"))
	}

	if err = tx.Commit(ctx); err != nil {
		return none, false, apperr.Op("commit", err)
	}
	return loan, true, nil
}

func (s *service) ReturnBook(ctx context.Context, rd model.Reader, b model.Book) (_ bool, err error) {
	if err := validateReader(rd); err != nil {
		return false, err
	}
	if err := validateBookKey(b.Title, b.Author, b.YearOfPublication); err != nil {
		return false, err
	}

	existing, err := s.br.FindByDetails(ctx, b.Title, b.Author, b.YearOfPublication)
	if err != nil {
		return false, apperr.Op("find book", err)
	}
	if existing == nil {
		return false, makeErr(ErrBookNotFound)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	if _, ok, err2 := s.rr.ExistsByKey(ctx, tx, rd); err2 != nil {
		return false, apperr.Op("check reader", err2)
	} else if !ok {
		return false, makeErr(ErrReaderNotFound)
	}

	if _, ok, err2 := s.bb.FindID(ctx, tx, rd, *existing); err2 != nil {
		return false, apperr.Op("find loan", err2)
	} else if !ok {
		return false, makeErr(ErrLoanNotFound)
	}

	removed, err := s.bb.Remove(ctx, tx, rd, *existing)
	if err != nil {
		return false, apperr.Op("remove loan", err)
	}
	if !removed {
		return false, makeErr(ErrLoanNotFound)
	}

	// The loan delete and this increment must land together or not at all.
	applied, err := s.br.IncreaseQuantity(ctx, tx, *existing, 1)
	if err != nil {
		return false, apperr.Op("increase quantity", err)
	}
	if !applied {
		return false, apperr.Op("increase quantity", errors.New("book vanished during return"))
	}

	if err = tx.Commit(ctx); err != nil {
		return false, apperr.Op("commit", err)
	}
	return true, nil
}

func (s *service) ListByReaderWithDates(ctx context.Context, rd model.Reader) ([]model.BorrowedBookRow, error) {
	if err := validateReader(rd); err != nil {
		return nil, err
	}
	out, err := s.bb.ListByReaderWithDates(ctx, rd)
	if err != nil {
		return nil, apperr.Op("list borrowed books", err)
	}
	return out, nil
}

func (s *service) ListOverdue(ctx context.Context) ([]model.OverdueLoanRow, error) {
	out, err := s.bb.ListOverdue(ctx)
	if err != nil {
		return nil, apperr.Op("list overdue loans", err)
	}
	return out, nil
}

func (s *service) HasOverdue(ctx context.Context, rd model.Reader) (bool, error) {
	if err := validateReader(rd); err != nil {
		return false, err
	}
	overdue, err := s.bb.HasOverdueByKey(ctx, rd)
	if err != nil {
		return false, apperr.Op("check overdue", err)
	}
	return overdue, nil
}

func validateReader(rd model.Reader) error {
	if strings.TrimSpace(rd.FirstName) == "" {
		return apperr.Invalid("first name cannot be empty")
	}
	if strings.TrimSpace(rd.LastName) == "" {
		return apperr.Invalid("last name cannot be empty")
	}
	if rd.DateOfBirth.IsZero() || rd.DateOfBirth.After(time.Now()) {
		return apperr.Invalid("invalid date of birth")
	}
	return nil
}

func validateBookKey(title, author string, year int) error {
	if strings.TrimSpace(title) == "" {
		return apperr.Invalid("title cannot be empty")
	}
	if strings.TrimSpace(author) == "" {
		return apperr.Invalid("author cannot be empty")
	}
	if year < 0 || year > time.Now().Year() {
		return apperr.Invalid("invalid year of publication")
	}
	return nil
}

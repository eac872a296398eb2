package booksvc

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
	ErrBookBorrowed ErrCode = "BOOK_BORROWED"
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
	Add(ctx context.Context, tx database.Tx, b model.Book) (int64, bool, error)
	IncreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error)
	DecreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error)
	GetAll(ctx context.Context) ([]model.Book, error)
	GetByTitle(ctx context.Context, title string) ([]model.Book, error)
	GetByAuthor(ctx context.Context, author string) ([]model.Book, error)
	FindByDetails(ctx context.Context, title, author string, year int) (*model.Book, error)
	RemoveByDetails(ctx context.Context, tx database.Tx, title, author string, year int) (bool, error)
}

type LocationRepo interface {
	ResolveOrCreate(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, error)
}

type LoanRepo interface {
	IsBorrowed(ctx context.Context, tx database.Tx, bookID int64) (bool, error)
}

type Service interface {
	// AddBook inserts a new title at the given shelf location, creating
	// the location first when it does not exist yet. Both inserts share one
	// transaction: when the book turns out to already exist the whole
	// scope, including a freshly created location, rolls back and
	// added=false is reported.
	AddBook(ctx context.Context, title, author string, year, quantity int, loc model.BookLocation) (id int64, added bool, err error)

	IncreaseBookQuantity(ctx context.Context, b model.Book, n int) (bool, error)
	DecreaseBookQuantity(ctx context.Context, b model.Book, n int) (bool, error)

	GetAllBooks(ctx context.Context) ([]model.Book, error)
	GetBooksByTitle(ctx context.Context, title string) ([]model.Book, error)
	GetBooksByAuthor(ctx context.Context, author string) ([]model.Book, error)
	FindBookByDetails(ctx context.Context, title, author string, year int) (*model.Book, error)

	// RemoveBookByDetails deletes by natural key. Fails with
	// ErrBookBorrowed while any loan still references the book.
	RemoveBookByDetails(ctx context.Context, title, author string, year int) (bool, error)
}

type service struct {
	db TxBeginner
	br BookRepo
	lr LocationRepo
	bb LoanRepo
}

func New(db TxBeginner, br BookRepo, lr LocationRepo, bb LoanRepo) Service {
	return &service{db: db, br: br, lr: lr, bb: bb}
}

func (s *service) AddBook(ctx context.Context, title, author string, year, quantity int, loc model.BookLocation) (_ int64, _ bool, err error) {
	if err := validateBookKey(title, author, year); err != nil {
		return 0, false, err
	}
	if quantity < 0 {
		return 0, false, apperr.Invalid("quantity cannot be negative")
	}
	if err := validateLocation(loc.Section, loc.Shelf); err != nil {
		return 0, false, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	locID, err := s.lr.ResolveOrCreate(ctx, tx, loc)
	if err != nil {
		return 0, false, apperr.Op("resolve location", err)
	}

	b := model.Book{
		Title:             title,
		Author:            author,
		YearOfPublication: year,
		Quantity:          quantity,
		Location:          model.BookLocation{ID: locID, Section: loc.Section, Shelf: loc.Shelf},
	}
	id, added, err := s.br.Add(ctx, tx, b)
	if err != nil {
		return 0, false, apperr.Op("add book", err)
	}
	if !added {
		// Book already exists: discard the whole scope, a location created
		// above included. A failing rollback still surfaces.
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return 0, false, apperr.Op("rollback", rbErr)
		}
		return 0, false, nil
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, false, apperr.Op("commit", err)
	}
	return id, true, nil
}

func (s *service) IncreaseBookQuantity(ctx context.Context, b model.Book, n int) (_ bool, err error) {
	if err := validateBookKey(b.Title, b.Author, b.YearOfPublication); err != nil {
		return false, err
	}
	if n <= 0 {
		return false, apperr.Invalid("quantity to add must be positive")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	applied, err := s.br.IncreaseQuantity(ctx, tx, b, n)
	if err != nil {
		return false, apperr.Op("increase quantity", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return false, apperr.Op("commit", err)
	}
	return applied, nil
}

func (s *service) DecreaseBookQuantity(ctx context.Context, b model.Book, n int) (_ bool, err error) {
	if err := validateBookKey(b.Title, b.Author, b.YearOfPublication); err != nil {
		return false, err
	}
	if n <= 0 {
		return false, apperr.Invalid("quantity to reduce must be positive")
	}

	existing, err := s.br.FindByDetails(ctx, b.Title, b.Author, b.YearOfPublication)
	if err != nil {
		return false, apperr.Op("find book", err)
	}
	if existing == nil {
		return false, nil
	}
	if existing.Quantity < n {
		return false, apperr.Invalid("cannot reduce quantity below zero: %d in stock", existing.Quantity)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	applied, err := s.br.DecreaseQuantity(ctx, tx, b, n)
	if err != nil {
		return false, apperr.Op("decrease quantity", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return false, apperr.Op("commit", err)
	}
	return applied, nil
}

func (s *service) GetAllBooks(ctx context.Context) ([]model.Book, error) {
	out, err := s.br.GetAll(ctx)
	if err != nil {
		return nil, apperr.Op("list books", err)
	}
	return out, nil
}

func (s *service) GetBooksByTitle(ctx context.Context, title string) ([]model.Book, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Invalid("title cannot be empty")
	}
	out, err := s.br.GetByTitle(ctx, title)
	if err != nil {
		return nil, apperr.Op("list books by title", err)
	}
	return out, nil
}

func (s *service) GetBooksByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	if strings.TrimSpace(author) == "" {
		return nil, apperr.Invalid("author cannot be empty")
	}
	out, err := s.br.GetByAuthor(ctx, author)
	if err != nil {
		return nil, apperr.Op("list books by author", err)
	}
	return out, nil
}

func (s *service) FindBookByDetails(ctx context.Context, title, author string, year int) (*model.Book, error) {
	if err := validateBookKey(title, author, year); err != nil {
		return nil, err
	}
	b, err := s.br.FindByDetails(ctx, title, author, year)
	if err != nil {
		return nil, apperr.Op("find book", err)
	}
	return b, nil
}

func (s *service) RemoveBookByDetails(ctx context.Context, title, author string, year int) (_ bool, err error) {
	if err := validateBookKey(title, author, year); err != nil {
		return false, err
	}

	existing, err := s.br.FindByDetails(ctx, title, author, year)
	if err != nil {
		return false, apperr.Op("find book", err)
	}
	if existing == nil {
		return false, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	borrowed, err := s.bb.IsBorrowed(ctx, tx, existing.ID)
	if err != nil {
		return false, apperr.Op("check borrowed", err)
	}
	if borrowed {
		return false, makeErr(ErrBookBorrowed)
	}

	removed, err := s.br.RemoveByDetails(ctx, tx, title, author, year)
	if err != nil {
		return false, apperr.Op("remove book", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return false, apperr.Op("commit", err)
	}
	return removed, nil
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

func validateLocation(section string, shelf int) error {
	if strings.TrimSpace(section) == "" {
		return apperr.Invalid("section cannot be empty")
	}
	if shelf <= 0 {
		return apperr.Invalid("shelf must be a positive number")
	}
	return nil
}

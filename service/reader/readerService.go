package readersvc

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
	ErrReaderHasLoans ErrCode = "READER_HAS_LOANS"
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

type ReaderRepo interface {
	Add(ctx context.Context, tx database.Tx, rd model.Reader) (int64, bool, error)
	GetAll(ctx context.Context) ([]model.Reader, error)
	GetByLastName(ctx context.Context, lastName string) ([]model.Reader, error)
	RemoveByKey(ctx context.Context, tx database.Tx, rd model.Reader) (bool, error)
}

type LoanRepo interface {
	ListByReaderWithDates(ctx context.Context, rd model.Reader) ([]model.BorrowedBookRow, error)
}

type Service interface {
	// AddReader registers a reader. added=false means a reader with the
	// same (first name, last name, date of birth) key already exists.
	AddReader(ctx context.Context, firstName, lastName string, dob time.Time) (id int64, added bool, err error)

	GetAllReaders(ctx context.Context) ([]model.Reader, error)
	GetReadersByLastName(ctx context.Context, lastName string) ([]model.Reader, error)

	// RemoveReaderByDetails deletes by natural key. Fails with
	// ErrReaderHasLoans while the reader still holds borrowed books.
	RemoveReaderByDetails(ctx context.Context, firstName, lastName string, dob time.Time) (bool, error)
}

type service struct {
	db TxBeginner
	rr ReaderRepo
	bb LoanRepo
}

func New(db TxBeginner, rr ReaderRepo, bb LoanRepo) Service {
	return &service{db: db, rr: rr, bb: bb}
}

func (s *service) AddReader(ctx context.Context, firstName, lastName string, dob time.Time) (_ int64, _ bool, err error) {
	if err := validateReader(firstName, lastName, dob); err != nil {
		return 0, false, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	rd := model.Reader{FirstName: firstName, LastName: lastName, DateOfBirth: dob}
	id, added, err := s.rr.Add(ctx, tx, rd)
	if err != nil {
		return 0, false, apperr.Op("add reader", err)
	}
	if !added {
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

func (s *service) GetAllReaders(ctx context.Context) ([]model.Reader, error) {
	out, err := s.rr.GetAll(ctx)
	if err != nil {
		return nil, apperr.Op("list readers", err)
	}
	return out, nil
}

func (s *service) GetReadersByLastName(ctx context.Context, lastName string) ([]model.Reader, error) {
	if strings.TrimSpace(lastName) == "" {
		return nil, apperr.Invalid("last name cannot be empty")
	}
	out, err := s.rr.GetByLastName(ctx, lastName)
	if err != nil {
		return nil, apperr.Op("list readers by last name", err)
	}
	return out, nil
}

func (s *service) RemoveReaderByDetails(ctx context.Context, firstName, lastName string, dob time.Time) (_ bool, err error) {
	if err := validateReader(firstName, lastName, dob); err != nil {
		return false, err
	}

	rd := model.Reader{FirstName: firstName, LastName: lastName, DateOfBirth: dob}
	borrowed, err := s.bb.ListByReaderWithDates(ctx, rd)
	if err != nil {
		return false, apperr.Op("list borrowed books", err)
	}
	if len(borrowed) > 0 {
		return false, makeErr(ErrReaderHasLoans)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	removed, err := s.rr.RemoveByKey(ctx, tx, rd)
	if err != nil {
		return false, apperr.Op("remove reader", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return false, apperr.Op("commit", err)
	}
	return removed, nil
}

func validateReader(firstName, lastName string, dob time.Time) error {
	if strings.TrimSpace(firstName) == "" {
		return apperr.Invalid("first name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return apperr.Invalid("last name cannot be empty")
	}
	if dob.IsZero() || dob.After(time.Now()) {
		return apperr.Invalid("invalid date of birth")
	}
	return nil
}

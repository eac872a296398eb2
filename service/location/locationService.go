package locationsvc

import (
	"context"
	"errors"
	"strings"

	"librarium/model"
	"librarium/util/apperr"
	"librarium/util/database"
)

// errors used by controllers

type ErrCode string

const (
	ErrLocationInUse ErrCode = "LOCATION_IN_USE"
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

type Repo interface {
	Add(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, bool, error)
	ExistsByKey(ctx context.Context, section string, shelf int) (int64, bool, error)
	GetAll(ctx context.Context) ([]model.BookLocation, error)
	HasAnyBookAssigned(ctx context.Context, tx database.Tx, section string, shelf int) (bool, error)
	Remove(ctx context.Context, tx database.Tx, section string, shelf int) (bool, error)
}

type Service interface {
	// AddLocation inserts a new shelf location. added=false means the
	// (section, shelf) key was already taken.
	AddLocation(ctx context.Context, loc model.BookLocation) (id int64, added bool, err error)

	DoesBookLocationExist(ctx context.Context, section string, shelf int) (int64, bool, error)
	GetAllBookLocations(ctx context.Context) ([]model.BookLocation, error)

	// RemoveBookLocation deletes by natural key. Fails with
	// ErrLocationInUse while any book is assigned to the location.
	RemoveBookLocation(ctx context.Context, section string, shelf int) (bool, error)
}

type service struct {
	db TxBeginner
	r  Repo
}

func New(db TxBeginner, r Repo) Service { return &service{db: db, r: r} }

func (s *service) AddLocation(ctx context.Context, loc model.BookLocation) (_ int64, _ bool, err error) {
	if err := validateLocation(loc.Section, loc.Shelf); err != nil {
		return 0, false, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	id, added, err := s.r.Add(ctx, tx, loc)
	if err != nil {
		return 0, false, apperr.Op("add location", err)
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

func (s *service) DoesBookLocationExist(ctx context.Context, section string, shelf int) (int64, bool, error) {
	if err := validateLocation(section, shelf); err != nil {
		return 0, false, err
	}
	id, ok, err := s.r.ExistsByKey(ctx, section, shelf)
	if err != nil {
		return 0, false, apperr.Op("check location", err)
	}
	return id, ok, nil
}

func (s *service) GetAllBookLocations(ctx context.Context) ([]model.BookLocation, error) {
	out, err := s.r.GetAll(ctx)
	if err != nil {
		return nil, apperr.Op("list locations", err)
	}
	return out, nil
}

func (s *service) RemoveBookLocation(ctx context.Context, section string, shelf int) (_ bool, err error) {
	if err := validateLocation(section, shelf); err != nil {
		return false, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, apperr.Op("begin", err)
	}
	defer func() { err = database.Rollback(ctx, tx, err) }()

	assigned, err := s.r.HasAnyBookAssigned(ctx, tx, section, shelf)
	if err != nil {
		return false, apperr.Op("check assigned books", err)
	}
	if assigned {
		return false, makeErr(ErrLocationInUse)
	}

	removed, err := s.r.Remove(ctx, tx, section, shelf)
	if err != nil {
		return false, apperr.Op("remove location", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return false, apperr.Op("commit", err)
	}
	return removed, nil
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

package readersvc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"librarium/model"
	readersvc "librarium/service/reader"
	"librarium/util/apperr"
	"librarium/util/database"
	"librarium/util/database/txtest"

	"github.com/stretchr/testify/require"
)

type readerRepoMock struct {
	addFn        func(ctx context.Context, tx database.Tx, rd model.Reader) (int64, bool, error)
	getAllFn     func(ctx context.Context) ([]model.Reader, error)
	byLastNameFn func(ctx context.Context, lastName string) ([]model.Reader, error)
	removeFn     func(ctx context.Context, tx database.Tx, rd model.Reader) (bool, error)
}

var _ readersvc.ReaderRepo = (*readerRepoMock)(nil)

func (m *readerRepoMock) Add(ctx context.Context, tx database.Tx, rd model.Reader) (int64, bool, error) {
	return m.addFn(ctx, tx, rd)
}
func (m *readerRepoMock) GetAll(ctx context.Context) ([]model.Reader, error) { return m.getAllFn(ctx) }
func (m *readerRepoMock) GetByLastName(ctx context.Context, lastName string) ([]model.Reader, error) {
	return m.byLastNameFn(ctx, lastName)
}
func (m *readerRepoMock) RemoveByKey(ctx context.Context, tx database.Tx, rd model.Reader) (bool, error) {
	return m.removeFn(ctx, tx, rd)
}

type loanRepoMock struct {
	listFn func(ctx context.Context, rd model.Reader) ([]model.BorrowedBookRow, error)
}

func (m *loanRepoMock) ListByReaderWithDates(ctx context.Context, rd model.Reader) ([]model.BorrowedBookRow, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx, rd)
}

var dob = time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)

func TestAddReader_Validation(t *testing.T) {
	db := &txtest.Beginner{}
	s := readersvc.New(db, &readerRepoMock{}, &loanRepoMock{})
	ctx := context.Background()

	_, _, err := s.AddReader(ctx, "", "Doe", dob)
	require.True(t, apperr.IsInvalid(err))

	_, _, err = s.AddReader(ctx, "Jane", " ", dob)
	require.True(t, apperr.IsInvalid(err))

	_, _, err = s.AddReader(ctx, "Jane", "Doe", time.Time{})
	require.True(t, apperr.IsInvalid(err))

	_, _, err = s.AddReader(ctx, "Jane", "Doe", time.Now().AddDate(1, 0, 0))
	require.True(t, apperr.IsInvalid(err))

	require.Nil(t, db.Tx)
}

func TestAddReader_Success(t *testing.T) {
	db := &txtest.Beginner{}
	m := &readerRepoMock{
		addFn: func(ctx context.Context, tx database.Tx, rd model.Reader) (int64, bool, error) {
			require.Equal(t, "Jane", rd.FirstName)
			return 3, true, nil
		},
	}
	s := readersvc.New(db, m, &loanRepoMock{})

	id, added, err := s.AddReader(context.Background(), "Jane", "Doe", dob)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, int64(3), id)
	require.True(t, db.Tx.Committed)
}

func TestAddReader_Duplicate(t *testing.T) {
	db := &txtest.Beginner{}
	m := &readerRepoMock{
		addFn: func(ctx context.Context, tx database.Tx, rd model.Reader) (int64, bool, error) {
			return 0, false, nil
		},
	}
	s := readersvc.New(db, m, &loanRepoMock{})

	_, added, err := s.AddReader(context.Background(), "Jane", "Doe", dob)
	require.NoError(t, err)
	require.False(t, added)
	require.True(t, db.Tx.RolledBack)
	require.False(t, db.Tx.Committed)
}

func TestAddReader_Duplicate_RollbackFailure(t *testing.T) {
	db := &txtest.Beginner{Tx: &txtest.FakeTx{RollbackErr: errors.New("connection lost")}}
	m := &readerRepoMock{
		addFn: func(ctx context.Context, tx database.Tx, rd model.Reader) (int64, bool, error) {
			return 0, false, nil
		},
	}
	s := readersvc.New(db, m, &loanRepoMock{})

	_, added, err := s.AddReader(context.Background(), "Jane", "Doe", dob)
	require.Error(t, err, "a failing rollback on the duplicate path must surface")
	require.False(t, added)
	require.False(t, db.Tx.Committed)
}

func TestRemoveReaderByDetails_HasLoans(t *testing.T) {
	db := &txtest.Beginner{}
	bb := &loanRepoMock{
		listFn: func(ctx context.Context, rd model.Reader) ([]model.BorrowedBookRow, error) {
			return []model.BorrowedBookRow{{Title: "Emma"}}, nil
		},
	}
	s := readersvc.New(db, &readerRepoMock{}, bb)

	_, err := s.RemoveReaderByDetails(context.Background(), "Jane", "Doe", dob)
	require.Error(t, err)
	require.Equal(t, readersvc.ErrReaderHasLoans, readersvc.Code(err))
	require.Nil(t, db.Tx, "loan check happens before the transaction starts")
}

func TestRemoveReaderByDetails_Success(t *testing.T) {
	db := &txtest.Beginner{}
	m := &readerRepoMock{
		removeFn: func(ctx context.Context, tx database.Tx, rd model.Reader) (bool, error) {
			return true, nil
		},
	}
	s := readersvc.New(db, m, &loanRepoMock{})

	removed, err := s.RemoveReaderByDetails(context.Background(), "Jane", "Doe", dob)
	require.NoError(t, err)
	require.True(t, removed)
	require.True(t, db.Tx.Committed)
}

func TestGetReadersByLastName_Validation(t *testing.T) {
	s := readersvc.New(&txtest.Beginner{}, &readerRepoMock{}, &loanRepoMock{})
	_, err := s.GetReadersByLastName(context.Background(), " ")
	require.True(t, apperr.IsInvalid(err))
}

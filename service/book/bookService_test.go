package booksvc_test

import (
	"context"
	"errors"
	"testing"

	"librarium/model"
	booksvc "librarium/service/book"
	"librarium/util/apperr"
	"librarium/util/database"
	"librarium/util/database/txtest"

	"github.com/stretchr/testify/require"
)

type bookRepoMock struct {
	addFn      func(ctx context.Context, tx database.Tx, b model.Book) (int64, bool, error)
	incFn      func(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error)
	decFn      func(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error)
	getAllFn   func(ctx context.Context) ([]model.Book, error)
	byTitleFn  func(ctx context.Context, title string) ([]model.Book, error)
	byAuthorFn func(ctx context.Context, author string) ([]model.Book, error)
	findFn     func(ctx context.Context, title, author string, year int) (*model.Book, error)
	removeFn   func(ctx context.Context, tx database.Tx, title, author string, year int) (bool, error)
}

var _ booksvc.BookRepo = (*bookRepoMock)(nil)

func (m *bookRepoMock) Add(ctx context.Context, tx database.Tx, b model.Book) (int64, bool, error) {
	return m.addFn(ctx, tx, b)
}
func (m *bookRepoMock) IncreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error) {
	return m.incFn(ctx, tx, b, n)
}
func (m *bookRepoMock) DecreaseQuantity(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error) {
	return m.decFn(ctx, tx, b, n)
}
func (m *bookRepoMock) GetAll(ctx context.Context) ([]model.Book, error) { return m.getAllFn(ctx) }
func (m *bookRepoMock) GetByTitle(ctx context.Context, title string) ([]model.Book, error) {
	return m.byTitleFn(ctx, title)
}
func (m *bookRepoMock) GetByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	return m.byAuthorFn(ctx, author)
}
func (m *bookRepoMock) FindByDetails(ctx context.Context, title, author string, year int) (*model.Book, error) {
	return m.findFn(ctx, title, author, year)
}
func (m *bookRepoMock) RemoveByDetails(ctx context.Context, tx database.Tx, title, author string, year int) (bool, error) {
	return m.removeFn(ctx, tx, title, author, year)
}

type locationRepoMock struct {
	resolveFn func(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, error)
}

func (m *locationRepoMock) ResolveOrCreate(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, error) {
	return m.resolveFn(ctx, tx, loc)
}

type loanRepoMock struct {
	isBorrowedFn func(ctx context.Context, tx database.Tx, bookID int64) (bool, error)
}

func (m *loanRepoMock) IsBorrowed(ctx context.Context, tx database.Tx, bookID int64) (bool, error) {
	return m.isBorrowedFn(ctx, tx, bookID)
}

var testLoc = model.BookLocation{Section: "A", Shelf: 2}

func TestAddBook_Validation(t *testing.T) {
	db := &txtest.Beginner{}
	s := booksvc.New(db, &bookRepoMock{}, &locationRepoMock{}, &loanRepoMock{})
	ctx := context.Background()

	_, _, err := s.AddBook(ctx, "", "Austen", 1813, 3, testLoc)
	require.True(t, apperr.IsInvalid(err))

	_, _, err = s.AddBook(ctx, "Emma", "", 1815, 3, testLoc)
	require.True(t, apperr.IsInvalid(err))

	_, _, err = s.AddBook(ctx, "Emma", "Austen", 4000, 3, testLoc)
	require.True(t, apperr.IsInvalid(err))

	_, _, err = s.AddBook(ctx, "Emma", "Austen", 1815, -1, testLoc)
	require.True(t, apperr.IsInvalid(err))

	_, _, err = s.AddBook(ctx, "Emma", "Austen", 1815, 3, model.BookLocation{Section: "A"})
	require.True(t, apperr.IsInvalid(err))

	require.Nil(t, db.Tx, "no transaction should start on invalid input")
}

func TestAddBook_Success(t *testing.T) {
	db := &txtest.Beginner{}
	br := &bookRepoMock{
		addFn: func(ctx context.Context, tx database.Tx, b model.Book) (int64, bool, error) {
			require.Equal(t, int64(5), b.Location.ID)
			return 42, true, nil
		},
	}
	lr := &locationRepoMock{
		resolveFn: func(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, error) {
			return 5, nil
		},
	}
	s := booksvc.New(db, br, lr, &loanRepoMock{})

	id, added, err := s.AddBook(context.Background(), "Emma", "Austen", 1815, 3, testLoc)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, int64(42), id)
	require.True(t, db.Tx.Committed)
}

func TestAddBook_Duplicate_RollsBackLocation(t *testing.T) {
	db := &txtest.Beginner{}
	br := &bookRepoMock{
		addFn: func(ctx context.Context, tx database.Tx, b model.Book) (int64, bool, error) {
			return 0, false, nil
		},
	}
	lr := &locationRepoMock{
		resolveFn: func(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, error) {
			return 5, nil
		},
	}
	s := booksvc.New(db, br, lr, &loanRepoMock{})

	_, added, err := s.AddBook(context.Background(), "Emma", "Austen", 1815, 3, testLoc)
	require.NoError(t, err)
	require.False(t, added)
	require.True(t, db.Tx.RolledBack, "a location created for the duplicate must be discarded with it")
	require.False(t, db.Tx.Committed)
}

func TestAddBook_Duplicate_RollbackFailure(t *testing.T) {
	db := &txtest.Beginner{Tx: &txtest.FakeTx{RollbackErr: errors.New("connection lost")}}
	br := &bookRepoMock{
		addFn: func(ctx context.Context, tx database.Tx, b model.Book) (int64, bool, error) {
			return 0, false, nil
		},
	}
	lr := &locationRepoMock{
		resolveFn: func(ctx context.Context, tx database.Tx, loc model.BookLocation) (int64, error) {
			return 5, nil
		},
	}
	s := booksvc.New(db, br, lr, &loanRepoMock{})

	_, added, err := s.AddBook(context.Background(), "Emma", "Austen", 1815, 3, testLoc)
	require.Error(t, err, "a failing rollback on the duplicate path must surface")
	require.False(t, added)
	require.False(t, db.Tx.Committed)
}

func TestIncreaseBookQuantity_Validation(t *testing.T) {
	db := &txtest.Beginner{}
	s := booksvc.New(db, &bookRepoMock{}, &locationRepoMock{}, &loanRepoMock{})

	b := model.Book{Title: "Emma", Author: "Austen", YearOfPublication: 1815}
	_, err := s.IncreaseBookQuantity(context.Background(), b, 0)
	require.True(t, apperr.IsInvalid(err))
	require.Nil(t, db.Tx)
}

func TestDecreaseBookQuantity_BelowZero(t *testing.T) {
	db := &txtest.Beginner{}
	br := &bookRepoMock{
		findFn: func(ctx context.Context, title, author string, year int) (*model.Book, error) {
			return &model.Book{ID: 1, Title: title, Author: author, YearOfPublication: year, Quantity: 2}, nil
		},
	}
	s := booksvc.New(db, br, &locationRepoMock{}, &loanRepoMock{})

	b := model.Book{Title: "Emma", Author: "Austen", YearOfPublication: 1815}
	_, err := s.DecreaseBookQuantity(context.Background(), b, 3)
	require.True(t, apperr.IsInvalid(err))
	require.Nil(t, db.Tx, "a rejected decrease must not open a transaction")
}

func TestDecreaseBookQuantity_UnknownBook(t *testing.T) {
	db := &txtest.Beginner{}
	br := &bookRepoMock{
		findFn: func(ctx context.Context, title, author string, year int) (*model.Book, error) {
			return nil, nil
		},
	}
	s := booksvc.New(db, br, &locationRepoMock{}, &loanRepoMock{})

	b := model.Book{Title: "Emma", Author: "Austen", YearOfPublication: 1815}
	applied, err := s.DecreaseBookQuantity(context.Background(), b, 1)
	require.NoError(t, err)
	require.False(t, applied)
	require.Nil(t, db.Tx)
}

func TestDecreaseBookQuantity_Success(t *testing.T) {
	db := &txtest.Beginner{}
	br := &bookRepoMock{
		findFn: func(ctx context.Context, title, author string, year int) (*model.Book, error) {
			return &model.Book{ID: 1, Quantity: 5}, nil
		},
		decFn: func(ctx context.Context, tx database.Tx, b model.Book, n int) (bool, error) {
			require.Equal(t, 2, n)
			return true, nil
		},
	}
	s := booksvc.New(db, br, &locationRepoMock{}, &loanRepoMock{})

	b := model.Book{Title: "Emma", Author: "Austen", YearOfPublication: 1815}
	applied, err := s.DecreaseBookQuantity(context.Background(), b, 2)
	require.NoError(t, err)
	require.True(t, applied)
	require.True(t, db.Tx.Committed)
}

func TestRemoveBookByDetails_Borrowed(t *testing.T) {
	db := &txtest.Beginner{}
	br := &bookRepoMock{
		findFn: func(ctx context.Context, title, author string, year int) (*model.Book, error) {
			return &model.Book{ID: 9, Quantity: 1}, nil
		},
	}
	bb := &loanRepoMock{
		isBorrowedFn: func(ctx context.Context, tx database.Tx, bookID int64) (bool, error) {
			require.Equal(t, int64(9), bookID)
			return true, nil
		},
	}
	s := booksvc.New(db, br, &locationRepoMock{}, bb)

	_, err := s.RemoveBookByDetails(context.Background(), "Emma", "Austen", 1815)
	require.Error(t, err)
	require.Equal(t, booksvc.ErrBookBorrowed, booksvc.Code(err))
	require.True(t, db.Tx.RolledBack)
}

func TestRemoveBookByDetails_Success(t *testing.T) {
	db := &txtest.Beginner{}
	br := &bookRepoMock{
		findFn: func(ctx context.Context, title, author string, year int) (*model.Book, error) {
			return &model.Book{ID: 9}, nil
		},
		removeFn: func(ctx context.Context, tx database.Tx, title, author string, year int) (bool, error) {
			return true, nil
		},
	}
	bb := &loanRepoMock{
		isBorrowedFn: func(ctx context.Context, tx database.Tx, bookID int64) (bool, error) {
			return false, nil
		},
	}
	s := booksvc.New(db, br, &locationRepoMock{}, bb)

	removed, err := s.RemoveBookByDetails(context.Background(), "Emma", "Austen", 1815)
	require.NoError(t, err)
	require.True(t, removed)
	require.True(t, db.Tx.Committed)
}

func TestRemoveBookByDetails_UnknownBook(t *testing.T) {
	db := &txtest.Beginner{}
	br := &bookRepoMock{
		findFn: func(ctx context.Context, title, author string, year int) (*model.Book, error) {
			return nil, nil
		},
	}
	s := booksvc.New(db, br, &locationRepoMock{}, &loanRepoMock{})

	removed, err := s.RemoveBookByDetails(context.Background(), "Emma", "Austen", 1815)
	require.NoError(t, err)
	require.False(t, removed)
	require.Nil(t, db.Tx)
}

func TestGetBooksByTitle_Validation(t *testing.T) {
	s := booksvc.New(&txtest.Beginner{}, &bookRepoMock{}, &locationRepoMock{}, &loanRepoMock{})
	_, err := s.GetBooksByTitle(context.Background(), "  ")
	require.True(t, apperr.IsInvalid(err))
}

func TestGetAllBooks_RepoError(t *testing.T) {
	br := &bookRepoMock{
		getAllFn: func(ctx context.Context) ([]model.Book, error) { return nil, errors.New("db down") },
	}
	s := booksvc.New(&txtest.Beginner{}, br, &locationRepoMock{}, &loanRepoMock{})

	_, err := s.GetAllBooks(context.Background())
	require.Error(t, err)
	require.False(t, apperr.IsInvalid(err))
}

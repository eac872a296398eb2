package librarianrepo

import (
	"context"
	"errors"

	"librarium/model"
	"librarium/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	Create(ctx context.Context, l *model.Librarian) error
	ByEmail(ctx context.Context, email string) (*model.Librarian, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, l *model.Librarian) error {
	const q = `
INSERT INTO librarians (email, username, password_hash)
VALUES ($1,$2,$3)
RETURNING id, created_at`
	return r.db.Pool.QueryRow(ctx, q, l.Email, l.Username, l.PasswordHash).Scan(&l.ID, &l.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.Librarian, error) {
	const q = `
SELECT id, email, username, password_hash, created_at
FROM librarians
WHERE LOWER(email) = LOWER($1)`
	l := &model.Librarian{}
	err := r.db.Pool.QueryRow(ctx, q, email).Scan(&l.ID, &l.Email, &l.Username, &l.PasswordHash, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

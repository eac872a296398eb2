package authsvc

import (
	"context"
	"errors"
	"strings"

	"librarium/model"
	"librarium/util/hash"
	jwtutil "librarium/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrBadInput     = errors.New("bad input")
	ErrInvalidCreds = errors.New("invalid credentials")
)

const tokenTTLHours = 24

type Repo interface {
	Create(ctx context.Context, l *model.Librarian) error
	ByEmail(ctx context.Context, email string) (*model.Librarian, error)
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.Librarian, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.Librarian, string, error)
}

type service struct {
	r      Repo
	secret string
}

func New(r Repo, secret string) Service { return &service{r: r, secret: secret} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.Librarian, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || len(req.Password) < 6 {
		return nil, "", ErrBadInput
	}

	if existing, err := s.r.ByEmail(ctx, email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	l := &model.Librarian{Email: email, Username: username, PasswordHash: hashed}
	if err := s.r.Create(ctx, l); err != nil {
		// Unique-index race on email maps to the same answer as the
		// existence check above.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, l.ID, tokenTTLHours)
	if err != nil {
		return nil, "", err
	}
	return l, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.Librarian, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", ErrBadInput
	}

	l, err := s.r.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if l == nil || !hash.Check(l.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}

	token, err := jwtutil.Issue(s.secret, l.ID, tokenTTLHours)
	if err != nil {
		return nil, "", err
	}
	return l, token, nil
}

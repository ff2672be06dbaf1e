package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"silicorex/models"
	"silicorex/utils"
)

// ErrLoginNotFound is returned when no login exists for a username.
var ErrLoginNotFound = errors.New("login not found")

// ErrLoginExists is returned when registering a username that is taken.
var ErrLoginExists = errors.New("login already exists")

const loginsTable = "user_logins"

const createLoginsTable = `
CREATE TABLE IF NOT EXISTS user_logins (
	username      TEXT PRIMARY KEY,
	user_type     TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_login_at TIMESTAMPTZ
)`

// LoginStore persists portal accounts.
type LoginStore interface {
	Find(ctx context.Context, username string) (*models.Login, error)
	Create(ctx context.Context, login *models.Login) error
	TouchLogin(ctx context.Context, username string, at time.Time) error
}

// PgLoginStore is the Postgres implementation of LoginStore.
type PgLoginStore struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewLoginStore wraps pool.
func NewLoginStore(pool *pgxpool.Pool) *PgLoginStore {
	return &PgLoginStore{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the logins table when missing.
func (s *PgLoginStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createLoginsTable); err != nil {
		return fmt.Errorf("create %s: %w", loginsTable, err)
	}
	return nil
}

// Find loads the login for username.
func (s *PgLoginStore) Find(ctx context.Context, username string) (*models.Login, error) {
	query, args, err := s.sb.
		Select("username", "user_type", "password_hash", "created_at", "last_login_at").
		From(loginsTable).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var l models.Login
	err = s.pool.QueryRow(ctx, query, args...).Scan(&l.Username, &l.UserType, &l.PasswordHash, &l.CreatedAt, &l.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLoginNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find login %s: %w", username, err)
	}
	return &l, nil
}

// Create inserts a new login.
func (s *PgLoginStore) Create(ctx context.Context, login *models.Login) error {
	if login.CreatedAt.IsZero() {
		login.CreatedAt = time.Now().UTC()
	}
	query, args, err := s.sb.
		Insert(loginsTable).
		Columns("username", "user_type", "password_hash", "created_at").
		Values(login.Username, login.UserType, login.PasswordHash, login.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrLoginExists
		}
		return fmt.Errorf("create login %s: %w", login.Username, err)
	}
	return nil
}

// TouchLogin records a successful sign-in.
func (s *PgLoginStore) TouchLogin(ctx context.Context, username string, at time.Time) error {
	query, args, err := s.sb.
		Update(loginsTable).
		Set("last_login_at", at).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("touch login %s: %w", username, err)
	}
	return nil
}

// SeedGov makes sure the government account exists. The username is stored
// normalized so it matches what login looks up. An existing account is left
// untouched.
func SeedGov(ctx context.Context, store LoginStore, username, password string) error {
	username = utils.NormalizeUsername(username)
	if username == "" || password == "" {
		log.Warn("government account not configured, skipping seed")
		return nil
	}
	_, err := store.Find(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrLoginNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash government password: %w", err)
	}
	err = store.Create(ctx, &models.Login{
		Username:     username,
		UserType:     models.UserTypeGov,
		PasswordHash: string(hash),
	})
	if err != nil && !errors.Is(err, ErrLoginExists) {
		return err
	}
	log.WithField("username", username).Info("government account seeded")
	return nil
}

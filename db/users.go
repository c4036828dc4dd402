// ABOUTME: User account database operations
// ABOUTME: Lookups by email, login and id, account creation and password reset keys
package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/whitefoxstudios/onboarding/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateUser = errors.New("user login or email already exists")
	ErrInvalidUser   = errors.New("invalid user")
	ErrUserNotFound  = errors.New("user not found")
)

const (
	passwordLength = 20
	resetKeyLength = 20
	passwordChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// UsersRepository stores identities.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

const userColumns = `id, user_login, user_email, display_name, first_name, last_name, role, registered_at`

func scanUser(row interface{ Scan(...any) error }) (*models.Identity, error) {
	var u models.Identity
	err := row.Scan(&u.ID, &u.Login, &u.Email, &u.DisplayName, &u.FirstName, &u.LastName, &u.Role, &u.RegisteredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail returns the identity with this email, or nil when there is none.
func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_email = ?`, email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return u, nil
}

// FindByLogin returns the identity with this login, or nil when there is none.
func (r *UsersRepository) FindByLogin(ctx context.Context, login string) (*models.Identity, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, nil
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_login = ?`, login))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by login: %w", err)
	}
	return u, nil
}

// GetByID returns the identity with this id, or nil when there is none.
func (r *UsersRepository) GetByID(ctx context.Context, id int64) (*models.Identity, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Create inserts a new identity with a generated one-time password.
// A login or email collision returns an error wrapping ErrDuplicateUser.
func (r *UsersRepository) Create(ctx context.Context, attrs models.NewIdentity) (*models.Identity, error) {
	if strings.TrimSpace(attrs.Login) == "" || !strings.Contains(attrs.Email, "@") {
		return nil, fmt.Errorf("%w: login and a valid email are required", ErrInvalidUser)
	}

	password, err := randomString(passwordLength)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.Identity{
		Login:        attrs.Login,
		Email:        attrs.Email,
		DisplayName:  attrs.DisplayName,
		FirstName:    attrs.FirstName,
		LastName:     attrs.LastName,
		Role:         attrs.Role,
		RegisteredAt: time.Now().UTC(),
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_login, user_email, user_pass, display_name, first_name, last_name, role, registered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.Login, u.Email, string(hash), u.DisplayName, u.FirstName, u.LastName, u.Role, u.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUser, u.Login)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return u, nil
}

// IssueResetKey generates a fresh password reset key for the user, stores its hash and
// returns the plain key. Any earlier key stops being valid.
func (r *UsersRepository) IssueResetKey(ctx context.Context, userID int64) (string, error) {
	key, err := randomString(resetKeyLength)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash reset key: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET activation_key = ?, activation_key_at = ? WHERE id = ?
	`, string(hash), time.Now().UTC(), userID)
	if err != nil {
		return "", fmt.Errorf("failed to store reset key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrUserNotFound
	}
	return key, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func randomString(n int) (string, error) {
	limit := big.NewInt(int64(len(passwordChars)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		b[i] = passwordChars[idx.Int64()]
	}
	return string(b), nil
}

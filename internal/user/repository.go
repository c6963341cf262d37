package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken surfaces the unique constraint on username; the
	// repository never pre-reads to check availability.
	ErrUsernameTaken = errors.New("username already taken")
)

const uniqueViolation = "23505"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, u *User) error {
	query := `INSERT INTO users (username, display_name, bio, profile_picture, password_hash)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		u.Username, u.DisplayName, u.Bio, nullable(u.ProfilePicture), u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	var profile sql.NullString
	query := `SELECT id, username, display_name, bio, profile_picture, password_hash, created_at
	          FROM users WHERE username = $1`

	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.Bio, &profile, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	u.ProfilePicture = profile.String
	return u, nil
}

// ListUsers returns the whole directory; callers filter out whoever is
// asking.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	query := `SELECT id, username, display_name, bio, profile_picture FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var profile sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Bio, &profile); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.ProfilePicture = profile.String
		users = append(users, u)
	}
	return users, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

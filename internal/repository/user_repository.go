package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"eventhub-be/internal/entities"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new Postgres-backed user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, photo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, password_hash, photo_url, created_at, updated_at
	`

	var u entities.User
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.PhotoURL).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.PhotoURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", pgErr(err))
	}

	return &u, nil
}

// FindByEmail finds a user by email, including the password hash
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `
		SELECT id, name, email, password_hash, photo_url, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var u entities.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.PhotoURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", pgErr(err))
	}

	return &u, nil
}

// FindByID finds a user by ID (UUID). The password hash is not selected.
func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	query := `
		SELECT id, name, email, photo_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u entities.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PhotoURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", pgErr(err))
	}

	return &u, nil
}

// FindByIDs loads every existing user among ids in one query
func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, email, photo_url, created_at, updated_at
		FROM users
		WHERE id = ANY($1::uuid[])
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", pgErr(err))
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		var u entities.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", pgErr(err))
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find users: %w", pgErr(err))
	}

	return users, nil
}

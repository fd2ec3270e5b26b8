package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletop-tournaments/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserUsernameConflict = errors.New("username conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type sqlUserRepository struct {
	base
}

func NewUserRepository(db *sql.DB, dialect Dialect) UserRepository {
	return &sqlUserRepository{base{db: db, dialect: dialect}}
}

func (r *sqlUserRepository) Create(ctx context.Context, user *models.User) error {
	query := r.q(`
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID)
	if err != nil {
		if kind, _ := classifyConstraint(err); kind == constraintUnique {
			return ErrUserUsernameConflict
		}
		return fmt.Errorf("failed to insert user %q: %w", user.Username, err)
	}
	return nil
}

func (r *sqlUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := r.q(`SELECT id, username, email, password_hash, role FROM users WHERE id = $1`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqlUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.q(`SELECT id, username, email, password_hash, role FROM users WHERE username = $1`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *sqlUserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

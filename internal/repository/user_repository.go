package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"blogCPT/internal/models"
)

var userColumns = []string{"id", "email", "username", "password_hash", "is_admin"}

type userRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db, sb: builder(db)}
}

// CreateUser hashes the password and inserts the user in its own transaction.
// A taken email or username rolls the transaction back and yields ErrDuplicate.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	query, args, err := r.sb.Insert("users").
		Columns("email", "username", "password_hash", "is_admin").
		Values(user.Email, user.Username, string(hashedPassword), user.IsAdmin).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var id int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to commit user: %w", err)
	}

	user.ID = id
	user.PasswordHash = string(hashedPassword)
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return r.getBy(ctx, sq.Eq{"id": userID})
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, sq.Eq{"email": email})
}

func (r *userRepository) getBy(ctx context.Context, where sq.Eq) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// VerifyPassword returns ErrNotFound for an unknown email and ErrWrongPassword
// for a bad password. Unknown emails still pay for a bcrypt comparison.
func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			bcrypt.CompareHashAndPassword(placeholderHash(), []byte(password))
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	return user, nil
}

func (r *userRepository) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	query, args, err := r.sb.Update("users").
		Set("is_admin", isAdmin).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build admin update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update admin flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

func placeholderHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcrypt.DefaultCost)
	})
	return dummyHash
}

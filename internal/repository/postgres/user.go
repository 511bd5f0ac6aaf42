package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ruanmelo/agenda-api/internal/model"
)

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, name, email, phone, role, active, password_hash,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.Role,
		user.Active,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, name, email, phone, role, active, password_hash,
			   created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetProvider resolves an active provider account for public booking pages.
func (r *userRepository) GetProvider(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, name, email, phone, role, active, password_hash,
			   created_at, updated_at
		FROM users
		WHERE id = $1
		AND role IN ('admin', 'master')
		AND active = true
	`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, phone = $3, role = $4, active = $5, updated_at = $6
		WHERE id = $7
	`
	user.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.Phone,
		user.Role,
		user.Active,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, name, email, phone, role, active, password_hash,
			   created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) ListProviders(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, name, email, phone, role, active, password_hash,
			   created_at, updated_at
		FROM users
		WHERE role IN ('admin', 'master')
		AND active = true
		ORDER BY name ASC
	`
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return users, nil
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE users SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set user status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// DeleteCascade removes the user's notifications, appointments and
// availabilities before the user row, all in one transaction.
func (r *userRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		steps := []string{
			`DELETE FROM notifications WHERE user_id = $1`,
			`DELETE FROM appointments WHERE user_id = $1 OR provider_id = $1`,
			`DELETE FROM availabilities WHERE provider_id = $1`,
		}
		for _, q := range steps {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("failed to delete user records: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("user not found")
		}
		return nil
	})
}

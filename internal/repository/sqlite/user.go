package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

const userCols = `id, username, password_hash, role, created_at`

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	u.ID = newID(u.ID)
	u.CreatedAt = now()
	_, err := r.q.ExecContext(ctx, `INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt)
	return err
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return getOne[models.User](ctx, r.q, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return getOne[models.User](ctx, r.q, `SELECT `+userCols+` FROM users WHERE username = ?`, username)
}

func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	return list[models.User](ctx, r.q, `SELECT `+userCols+` FROM users ORDER BY created_at, rowid`)
}

func (r *SQLiteRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(1) FROM users`)
	return n, err
}

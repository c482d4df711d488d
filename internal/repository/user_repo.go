package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/autobazar/internal/database"
	"github.com/hitoshi/autobazar/internal/model"
)

// SQLUserRepo はdatabase/sqlを使用したユーザーリポジトリ。
type SQLUserRepo struct {
	db      querier
	dialect database.Dialect
}

// NewSQLUserRepo はSQLUserRepoを生成する。
func NewSQLUserRepo(db *sql.DB, dialect database.Dialect) *SQLUserRepo {
	return &SQLUserRepo{db: db, dialect: dialect}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, identity, password_hash, created_at FROM users WHERE id = $1`, id)
}

// FindByIdentity はログインIDでユーザーを検索する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByIdentity(ctx context.Context, identity string) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, identity, password_hash, created_at FROM users WHERE identity = $1`, identity)
}

func (r *SQLUserRepo) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, rebind(r.dialect, query), arg).
		Scan(&user.ID, &user.Identity, &user.PasswordHash, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// Create はユーザーを作成する。ログインIDが重複する場合はErrDuplicateを返す。
func (r *SQLUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		rebind(r.dialect, `INSERT INTO users (id, identity, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)`),
		user.ID, user.Identity, user.PasswordHash, user.CreatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*SQLUserRepo)(nil)

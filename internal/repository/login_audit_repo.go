package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/autobazar/internal/database"
	"github.com/hitoshi/autobazar/internal/model"
)

// SQLLoginAuditRepo はdatabase/sqlを使用したログイン監査リポジトリ。
type SQLLoginAuditRepo struct {
	db      querier
	dialect database.Dialect
}

// NewSQLLoginAuditRepo はSQLLoginAuditRepoを生成する。
func NewSQLLoginAuditRepo(db *sql.DB, dialect database.Dialect) *SQLLoginAuditRepo {
	return &SQLLoginAuditRepo{db: db, dialect: dialect}
}

// Append は監査記録を追加する。
func (r *SQLLoginAuditRepo) Append(ctx context.Context, audit *model.LoginAudit) error {
	_, err := r.db.ExecContext(ctx,
		rebind(r.dialect, `INSERT INTO login_audit (id, user_id, identity, logged_in_at)
		 VALUES ($1, $2, $3, $4)`),
		audit.ID, audit.UserID, audit.Identity, audit.LoggedInAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append login audit: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの監査記録を新しい順に最大limit件返す。
func (r *SQLLoginAuditRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]model.LoginAudit, error) {
	rows, err := r.db.QueryContext(ctx,
		rebind(r.dialect, `SELECT id, user_id, identity, logged_in_at FROM login_audit
		 WHERE user_id = $1
		 ORDER BY logged_in_at DESC
		 LIMIT $2`),
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list login audit: %w", err)
	}
	defer rows.Close()

	var audits []model.LoginAudit
	for rows.Next() {
		var a model.LoginAudit
		if err := rows.Scan(&a.ID, &a.UserID, &a.Identity, &a.LoggedInAt); err != nil {
			return nil, fmt.Errorf("failed to scan login audit: %w", err)
		}
		a.LoggedInAt = a.LoggedInAt.UTC()
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate login audit: %w", err)
	}

	return audits, nil
}

// compile-time interface check
var _ LoginAuditRepository = (*SQLLoginAuditRepo)(nil)

// Package cleanup は期限切れセッションの削除ジョブを提供する。
// cleanupサブコマンドから1回実行する想定で、cronなどから定期的に起動する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionCleaner は期限切れセッションを削除するインターフェース。
type SessionCleaner interface {
	DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error)
}

// CleanupJob は期限切れセッションの削除ジョブ。
// 冪等な削除処理を保証する。
type CleanupJob struct {
	sessions      SessionCleaner
	logger        *slog.Logger
	RetentionDays int // 期限切れ後も保持する日数（デフォルト: 0）
	now           func() time.Time
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(sessions SessionCleaner, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Run は期限切れからRetentionDays日以上経過したセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()
	before := j.now().AddDate(0, 0, -j.RetentionDays)

	deletedCount, err := j.sessions.DeleteExpiredBefore(ctx, before)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionCleaner prunes revoked-session rows whose tokens have expired anyway
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// NotificationPruner removes read notifications older than a cutoff
type NotificationPruner interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupManager periodically removes expired session revocations and stale read notifications
type CleanupManager struct {
	sessions      SessionCleaner
	notifications NotificationPruner
	retention     time.Duration
	logger        *slog.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	sessions SessionCleaner,
	notifications NotificationPruner,
	retention time.Duration,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		sessions:      sessions,
		notifications: notifications,
		retention:     retention,
		logger:        logger,
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

// Start runs cleanup immediately and then every interval until Stop or ctx is done
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sessions, err := cm.sessions.CleanupExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to cleanup expired sessions", slog.Any("error", err))
	} else if sessions > 0 {
		cm.logger.Info("expired session cleanup completed", slog.Int64("rows_deleted", sessions))
	}

	if cm.retention <= 0 {
		return
	}
	cutoff := cm.now().Add(-cm.retention)
	pruned, err := cm.notifications.DeleteReadBefore(cleanupCtx, cutoff)
	if err != nil {
		cm.logger.Error("failed to prune read notifications", slog.Any("error", err))
		return
	}
	if pruned > 0 {
		cm.logger.Info("read notification pruning completed",
			slog.Int64("rows_deleted", pruned),
			slog.Time("cutoff", cutoff),
		)
	}
}

// Stop signals the cleanup manager to stop. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}

package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// AccountPurger removes accounts that never confirmed their email.
type AccountPurger interface {
	DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error)
}

// AccountCleanupWorker periodically deletes unverified accounts older than
// maxAge, which frees their email for a new registration.
type AccountCleanupWorker struct {
	accounts AccountPurger
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

func NewAccountCleanupWorker(accounts AccountPurger, interval, maxAge time.Duration) *AccountCleanupWorker {
	return &AccountCleanupWorker{
		accounts: accounts,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Start blocks until ctx is cancelled. A zero maxAge or interval disables the worker.
func (w *AccountCleanupWorker) Start(ctx context.Context) {
	if w.interval <= 0 || w.maxAge <= 0 {
		logrus.Info("Account cleanup worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Account cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Account cleanup worker stopped")
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

// cleanup удаляет аккаунты без подтверждённого email
func (w *AccountCleanupWorker) cleanup(ctx context.Context) int64 {
	before := w.now().Add(-w.maxAge)

	deleted, err := w.accounts.DeleteUnverifiedBefore(ctx, before)
	if err != nil {
		logrus.Errorf("Failed to delete unverified accounts: %v", err)
		return 0
	}

	if deleted > 0 {
		logrus.WithField("created_before", before.Format(time.RFC3339)).
			Infof("Deleted %d unverified accounts", deleted)
	}
	return deleted
}

package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionJanitor periodically purges expired sessions.
type SessionJanitor struct {
	auth      *AuthService
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	cleanupWg sync.WaitGroup
	stopOnce  sync.Once
}

// NewSessionJanitor starts the cleanup goroutine. Call Stop to end it.
func NewSessionJanitor(auth *AuthService, interval time.Duration, logger *zap.Logger) *SessionJanitor {
	j := &SessionJanitor{
		auth:     auth,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	j.cleanupWg.Add(1)
	go j.cleanupLoop()

	return j
}

func (j *SessionJanitor) cleanupLoop() {
	defer j.cleanupWg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.stopChan:
			return
		}
	}
}

func (j *SessionJanitor) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	n, err := j.auth.CleanupExpired(ctx)
	if err != nil {
		j.logger.Error("Failed to clean up sessions", zap.Error(err))
		return
	}

	if n > 0 {
		j.logger.Debug("Cleaned up expired sessions", zap.Int64("count", n))
	}
}

// Stop stops the cleanup goroutine and waits for it to exit.
func (j *SessionJanitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
	})
	j.cleanupWg.Wait()
	j.logger.Info("Session janitor stopped")
}

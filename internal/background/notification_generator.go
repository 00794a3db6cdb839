package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/conecta/internal/models"
)

// NotificationSource produces one notification per call.
type NotificationSource interface {
	Generate(ctx context.Context) (*models.Notification, error)
}

// NotificationGenerator periodically adds a notification to the feed
type NotificationGenerator struct {
	source   NotificationSource
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationGenerator creates a new notification generator
func NewNotificationGenerator(source NotificationSource, logger *slog.Logger, interval time.Duration) *NotificationGenerator {
	return &NotificationGenerator{
		source:   source,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start generates one notification per interval until ctx is cancelled or
// Stop is called. It blocks; run it in its own goroutine.
func (g *NotificationGenerator) Start(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.runGenerate(ctx)
		case <-g.stopCh:
			g.logger.Info("notification generator stopped")
			return
		case <-ctx.Done():
			g.logger.Info("notification generator context cancelled")
			return
		}
	}
}

func (g *NotificationGenerator) runGenerate(ctx context.Context) {
	genCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	n, err := g.source.Generate(genCtx)
	if err != nil {
		g.logger.Error("failed to generate notification", slog.Any("error", err))
		return
	}
	g.logger.Debug("notification added", slog.String("id", n.ID), slog.String("type", string(n.Type)))
}

// Stop signals the generator to stop. Calling it more than once is safe.
func (g *NotificationGenerator) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopCh)
	})
}

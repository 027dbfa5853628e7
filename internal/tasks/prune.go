package tasks

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mailforge/pkg/logger"
)

// PruneAttachmentsName is the periodic task that clears downloaded
// attachments.
const PruneAttachmentsName = "mailforge:prune_attachments"

type pruner interface {
	Prune(ctx context.Context) (int, error)
}

// PruneAttachments removes stale files from the attachment download
// directory.
type PruneAttachments struct {
	cache    pruner
	logger   *slog.Logger
	schedule string
}

// NewPruneAttachments runs p on schedule, a five-field cron expression.
// An empty schedule means hourly.
func NewPruneAttachments(p pruner, schedule string, log *slog.Logger) *PruneAttachments {
	if schedule == "" {
		schedule = "0 * * * *"
	}
	return &PruneAttachments{cache: p, logger: logger.Or(log), schedule: schedule}
}

func (t *PruneAttachments) Name() string     { return PruneAttachmentsName }
func (t *PruneAttachments) Schedule() string { return t.schedule }

func (t *PruneAttachments) Handle(ctx context.Context) error {
	n, err := t.cache.Prune(ctx)
	if err != nil {
		return err
	}
	t.logger.DebugContext(ctx, "attachment prune finished", slog.Int("removed", n))
	return nil
}

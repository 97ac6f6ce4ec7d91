// Package reminder periodically publishes settlement reminders for every
// group with outstanding balances.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/storage"
)

// runTimeout bounds one pass over all groups.
const runTimeout = 2 * time.Minute

// Store is the subset of storage the job reads.
type Store interface {
	ListGroupIDs(ctx context.Context) ([]string, error)
	GroupLedger(ctx context.Context, groupID string) (*storage.Ledger, error)
}

// Job computes each group's settlement plan and publishes one
// SettlementReminder per suggested transfer.
type Job struct {
	store     Store
	publisher events.Publisher
	opts      calculator.SettleOptions
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a Job. m may be nil.
func New(store Store, publisher events.Publisher, opts calculator.SettleOptions, m *metrics.Metrics, logger *slog.Logger) *Job {
	return &Job{store: store, publisher: publisher, opts: opts, metrics: m, logger: logger}
}

// Result counts what one run did.
type Result struct {
	Groups    int
	Published int
	Skipped   int
}

// RunOnce walks every group. Groups whose ledgers do not net to zero are
// logged and skipped; a publish failure stops the run.
func (j *Job) RunOnce(ctx context.Context) (Result, error) {
	var res Result

	ids, err := j.store.ListGroupIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list groups: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		l, err := j.store.GroupLedger(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted since listing.
			continue
		}
		if err != nil {
			return res, fmt.Errorf("failed to load group %s: %w", id, err)
		}
		res.Groups++

		summary, err := ledger.Summarize(l, j.opts)
		if errors.Is(err, calculator.ErrDataConsistency) {
			j.metrics.Imbalance(j.opts.Policy.String())
			j.logger.ErrorContext(ctx, "Skipping reminders for inconsistent group", "group_id", id, "error", err)
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("failed to settle group %s: %w", id, err)
		}

		for _, s := range summary.Plan.Settlements {
			if s.FromID == calculator.SuspenseID || s.ToID == calculator.SuspenseID {
				continue
			}
			err := j.publisher.Publish(ctx, events.TopicSettlementReminder, events.SettlementReminder{
				GroupID:    l.Group.ID,
				GroupName:  l.Group.Name,
				FromUserID: s.FromID,
				FromName:   s.FromName,
				ToUserID:   s.ToID,
				ToName:     s.ToName,
				Amount:     s.Amount.String(),
			})
			if err != nil {
				j.metrics.PublishFailed(events.TopicSettlementReminder)
				return res, fmt.Errorf("failed to publish reminder for group %s: %w", id, err)
			}
			j.metrics.ReminderPublished()
			res.Published++
		}
	}
	return res, nil
}

// Run is the cron entry point.
func (j *Job) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	res, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("Reminder run failed", "error", err, "published", res.Published)
		return
	}
	j.logger.Info("Reminder run finished",
		"groups", res.Groups,
		"published", res.Published,
		"skipped", res.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Schedule registers the job on a new cron scheduler. The caller starts and
// stops it.
func (j *Job) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cronLogger{j.logger}))
	if _, err := c.AddJob(spec, cron.NewChain(cron.SkipIfStillRunning(cronLogger{j.logger})).Then(j)); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

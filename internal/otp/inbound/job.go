package inbound

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/config"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/shandysiswandi/assetly/internal/pkg/locker"
	"github.com/shandysiswandi/assetly/internal/pkg/uid"
)

const (
	// DefaultCleanupSchedule runs the sweep at the top of every hour.
	DefaultCleanupSchedule = "0 * * * *"

	cleanupLockKey    = "otp:cleanup"
	defaultLockTTL    = 5 * time.Minute
	defaultJobTimeout = 2 * time.Minute
)

type cleanupUC interface {
	CleanupExpired(ctx context.Context) (int64, error)
	CleanupPreview(ctx context.Context, limit int) ([]entity.OTP, error)
}

// CleanupJob sweeps expired codes on a schedule. Only one replica runs a
// given tick: the others fail to take the lock and skip.
type CleanupJob struct {
	uc     cleanupUC
	locker locker.Locker
	cfg    config.Config
	uuid   uid.StringID
}

func NewCleanupJob(uc cleanupUC, lk locker.Locker, cfg config.Config, uuid uid.StringID) *CleanupJob {
	if lk == nil {
		lk = locker.Noop{}
	}
	return &CleanupJob{uc: uc, locker: lk, cfg: cfg, uuid: uuid}
}

// RegisterCronJob schedules job on c using modules.otp.cleanup_schedule.
func RegisterCronJob(c *cron.Cron, job *CleanupJob, cfg config.Config) (cron.EntryID, error) {
	spec := cfg.GetString("modules.otp.cleanup_schedule")
	if spec == "" {
		spec = DefaultCleanupSchedule
	}

	return c.AddFunc(spec, func() {
		if err := job.Run(context.Background()); err != nil {
			slog.Error("otp cleanup job failed", "error", err)
		}
	})
}

// Run performs one sweep. With modules.otp.cleanup_dry_run it only logs
// what would be deleted.
func (j *CleanupJob) Run(ctx context.Context) error {
	if j.uuid != nil {
		ctx = instrument.SetCorrelationID(ctx, j.uuid.Generate())
	}

	timeout := j.cfg.GetSecond("modules.otp.cleanup_timeout_seconds")
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ttl := j.cfg.GetSecond("modules.otp.cleanup_lock_ttl_seconds")
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	lease, err := j.locker.Acquire(ctx, cleanupLockKey, ttl)
	if errors.Is(err, locker.ErrNotAcquired) {
		slog.InfoContext(ctx, "otp cleanup skipped, another instance holds the lock")
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		// the sweep may have used up ctx; release on a fresh deadline.
		rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer rcancel()
		if err := lease.Release(rctx); err != nil && !errors.Is(err, locker.ErrNotHeld) {
			slog.WarnContext(ctx, "failed to release otp cleanup lock", "error", err)
		}
	}()

	if j.cfg.GetBool("modules.otp.cleanup_dry_run") {
		records, err := j.uc.CleanupPreview(ctx, 0)
		if err != nil {
			return err
		}
		ids := lo.Map(records, func(r entity.OTP, _ int) int64 { return r.ID })
		slog.InfoContext(ctx, "otp cleanup dry run", "eligible", len(records), "ids", ids)
		return nil
	}

	_, err = j.uc.CleanupExpired(ctx)
	return err
}

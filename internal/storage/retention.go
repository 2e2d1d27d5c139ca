package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"cortex/internal/core"
)

// RetentionTier classifies which table a retention pass prunes.
type RetentionTier string

const (
	TierCurrent RetentionTier = "current"
	TierShort   RetentionTier = "short"
	TierMedium  RetentionTier = "medium"
	TierLong    RetentionTier = "long"
)

// RunRetention executes all four tiers inside one transaction; on any
// failure nothing is deleted. Current tier removes orphaned causal
// edges (whose source or target memory no longer exists); the short tier
// deletes audit rows, the medium tier version snapshots, and the long
// tier archived memories, each older than its configured horizon.
func (e *Engine) RunRetention(ctx context.Context) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return &core.StorageError{Op: "retention", Reason: "begin tx", Err: err}
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if _, err := tx.Exec(ctx, `DELETE FROM causal_edges ce
			WHERE NOT EXISTS (SELECT 1 FROM memories m WHERE m.id = ce.source_id)
			   OR NOT EXISTS (SELECT 1 FROM memories m WHERE m.id = ce.target_id)`); err != nil {
			return &core.StorageError{Op: "retention", Reason: "current tier", Err: err}
		}

		shortDays := int(e.opts.RetentionShort.Hours() / 24)
		if _, err := tx.Exec(ctx, `DELETE FROM audit_log WHERE recorded_at < now() - ($1 || ' days')::interval`, shortDays); err != nil {
			return &core.StorageError{Op: "retention", Reason: "short tier", Err: err}
		}

		mediumDays := int(e.opts.RetentionMedium.Hours() / 24)
		if _, err := tx.Exec(ctx, `DELETE FROM memory_versions WHERE recorded_at < now() - ($1 || ' days')::interval`, mediumDays); err != nil {
			return &core.StorageError{Op: "retention", Reason: "medium tier", Err: err}
		}

		longDays := int(e.opts.RetentionLong.Hours() / 24)
		if _, err := tx.Exec(ctx, `DELETE FROM memories WHERE archived AND transaction_time < now() - ($1 || ' days')::interval`, longDays); err != nil {
			return &core.StorageError{Op: "retention", Reason: "long tier", Err: err}
		}

		return tx.Commit(ctx)
	})
}

package persistent

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/communitycms/media-service/internal/entity"
	"github.com/communitycms/media-service/pkg/postgres"
	"github.com/google/uuid"
)

const (
	// Table
	mediaEventsTable = "media_events"

	// Columns
	eventIDColumn     = "id"
	aggregateIDColumn = "aggregate_id"
	payloadColumn     = "payload"
	statusColumn      = "status"
	createdAtColumn   = "created_at"
	processedAtColumn = "processed_at"
	retryCountColumn  = "retry_count"
)

type OutboxEventRepo struct {
	*postgres.Postgres
}

func NewOutboxEventRepo(pg *postgres.Postgres) *OutboxEventRepo {
	return &OutboxEventRepo{pg}
}

func (r *OutboxEventRepo) Create(ctx context.Context, event *entity.OutboxEvent) error {
	sql, args, err := r.Builder.
		Insert(mediaEventsTable).
		Columns(
			eventIDColumn,
			aggregateIDColumn,
			payloadColumn,
			statusColumn,
			createdAtColumn,
			retryCountColumn,
		).
		Values(
			event.ID,
			event.AggregateID,
			event.Payload,
			event.Status,
			event.CreatedAt,
			event.RetryCount,
		).ToSql()
	if err != nil {
		return fmt.Errorf("OutboxEventRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxEventRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *OutboxEventRepo) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	sql, args, err := r.Builder.
		Select(
			eventIDColumn,
			aggregateIDColumn,
			payloadColumn,
			statusColumn,
			createdAtColumn,
			processedAtColumn,
			retryCountColumn,
		).
		From(mediaEventsTable).
		Where(squirrel.And{
			squirrel.Eq{statusColumn: string(entity.Pending)},
			squirrel.Lt{retryCountColumn: maxRetries},
		}).
		OrderBy(createdAtColumn).
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("OutboxEventRepo - GetPendingEvents - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("OutboxEventRepo - GetPendingEvents - executor.Query: %w", err)
	}
	defer rows.Close()

	var events []*entity.OutboxEvent
	for rows.Next() {
		var event entity.OutboxEvent
		err = rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.Payload,
			&event.Status,
			&event.CreatedAt,
			&event.ProcessedAt,
			&event.RetryCount,
		)
		if err != nil {
			return nil, fmt.Errorf("OutboxEventRepo - GetPendingEvents - rows.Scan: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("OutboxEventRepo - GetPendingEvents - rows.Err: %w", err)
	}

	return events, nil
}

func (r *OutboxEventRepo) MarkAsProcessingBatch(ctx context.Context, ids uuid.UUIDs) error {
	return r.setStatusBatch(ctx, ids, entity.Processing, false)
}

func (r *OutboxEventRepo) MarkAsProcessedBatch(ctx context.Context, ids uuid.UUIDs) error {
	return r.setStatusBatch(ctx, ids, entity.Processed, true)
}

func (r *OutboxEventRepo) setStatusBatch(ctx context.Context, ids uuid.UUIDs, status entity.Status, stamp bool) error {
	if len(ids) == 0 {
		return nil
	}

	builder := r.Builder.
		Update(mediaEventsTable).
		Set(statusColumn, string(status)).
		Where(squirrel.Eq{eventIDColumn: ids})

	if stamp {
		builder = builder.Set(processedAtColumn, squirrel.Expr("NOW()"))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("OutboxEventRepo - setStatusBatch - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxEventRepo - setStatusBatch - executor.Exec: %w", err)
	}

	return nil
}

// IncrementRetryCountBatch returns events to pending with one more retry on
// the counter, after a failed publish.
func (r *OutboxEventRepo) IncrementRetryCountBatch(ctx context.Context, ids uuid.UUIDs) error {
	if len(ids) == 0 {
		return nil
	}

	sql, args, err := r.Builder.
		Update(mediaEventsTable).
		Set(retryCountColumn, squirrel.Expr(retryCountColumn+" + 1")).
		Set(statusColumn, string(entity.Pending)).
		Where(squirrel.Eq{eventIDColumn: ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxEventRepo - IncrementRetryCountBatch - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxEventRepo - IncrementRetryCountBatch - executor.Exec: %w", err)
	}

	return nil
}

func (r *OutboxEventRepo) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	sql, args, err := r.Builder.
		Update(mediaEventsTable).
		Set(statusColumn, string(entity.Failed)).
		Where(squirrel.And{
			squirrel.Eq{statusColumn: string(entity.Pending)},
			squirrel.GtOrEq{retryCountColumn: maxRetries},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxEventRepo - MarkMaxRetriesAsFailed - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxEventRepo - MarkMaxRetriesAsFailed - executor.Exec: %w", err)
	}

	return nil
}

// DeleteOldProcessedAndFailed prunes delivered and dead events older than a
// day so the outbox table stays small.
func (r *OutboxEventRepo) DeleteOldProcessedAndFailed(ctx context.Context) (int64, error) {
	sql, args, err := r.Builder.
		Delete(mediaEventsTable).
		Where(squirrel.And{
			squirrel.Eq{statusColumn: []string{string(entity.Processed), string(entity.Failed)}},
			squirrel.Expr(createdAtColumn + " < NOW() - INTERVAL '1 day'"),
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("OutboxEventRepo - DeleteOldProcessedAndFailed - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("OutboxEventRepo - DeleteOldProcessedAndFailed - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}

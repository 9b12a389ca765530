package persistent

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/communitycms/media-service/internal/entity"
	"github.com/communitycms/media-service/pkg/postgres"
	"github.com/communitycms/media-service/pkg/types/errs"
)

const (
	// Table
	galleriesTable = "galleries"

	// Columns
	recordIDColumn = "id"
	mediaColumn    = "image"

	// Prefixes distinguishing legacy inline payloads from canonical URLs
	inlinePrefix = "data:"
	filePrefix   = "/api/uploads/"
)

type RecordRepo struct {
	*postgres.Postgres
}

func NewRecordRepo(pg *postgres.Postgres) *RecordRepo {
	return &RecordRepo{pg}
}

func (r *RecordRepo) FindInlineMedia(ctx context.Context) ([]entity.ContentRecord, error) {
	sql, args, err := r.Builder.
		Select(recordIDColumn, mediaColumn).
		From(galleriesTable).
		Where(squirrel.Like{mediaColumn: inlinePrefix + "%"}).
		OrderBy(recordIDColumn).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("RecordRepo - FindInlineMedia - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("RecordRepo - FindInlineMedia - executor.Query: %w", err)
	}
	defer rows.Close()

	var records []entity.ContentRecord
	for rows.Next() {
		var rec entity.ContentRecord
		if err := rows.Scan(&rec.ID, &rec.Media); err != nil {
			return nil, fmt.Errorf("RecordRepo - FindInlineMedia - rows.Scan: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RecordRepo - FindInlineMedia - rows.Err: %w", err)
	}

	return records, nil
}

func (r *RecordRepo) UpdateMediaURL(ctx context.Context, id int64, url string) error {
	sql, args, err := r.Builder.
		Update(galleriesTable).
		Set(mediaColumn, url).
		Where(squirrel.Eq{recordIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("RecordRepo - UpdateMediaURL - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("RecordRepo - UpdateMediaURL - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("RecordRepo - UpdateMediaURL: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *RecordRepo) CountInlineMedia(ctx context.Context) (int, error) {
	return r.countByPrefix(ctx, inlinePrefix)
}

func (r *RecordRepo) CountFileMedia(ctx context.Context) (int, error) {
	return r.countByPrefix(ctx, filePrefix)
}

func (r *RecordRepo) countByPrefix(ctx context.Context, prefix string) (int, error) {
	sql, args, err := r.Builder.
		Select("COUNT(*)").
		From(galleriesTable).
		Where(squirrel.Like{mediaColumn: prefix + "%"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("RecordRepo - countByPrefix - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var count int
	if err := executor.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("RecordRepo - countByPrefix - executor.QueryRow.Scan: %w", err)
	}

	return count, nil
}

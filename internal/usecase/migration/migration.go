package migration

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/communitycms/media-service/internal/entity"
	"github.com/communitycms/media-service/internal/infrastructure/naming"
	"github.com/communitycms/media-service/internal/repo"
	"github.com/communitycms/media-service/pkg/logger"
)

const inlinePrefix = "data:"

// MigrationUseCase converts legacy inline data-URI media values into stored
// files plus canonical URLs. The run is serial and best-effort: one row's
// failure never aborts it, and because it only ever re-selects rows still
// holding the inline prefix the job is idempotent and resumable.
type MigrationUseCase struct {
	records    repo.RecordRepo
	store      repo.AssetStore
	outboxRepo repo.OutboxEventRepo
	transactor repo.Transactor

	logger logger.Interface
}

func New(
	records repo.RecordRepo,
	store repo.AssetStore,
	outboxRepo repo.OutboxEventRepo,
	transactor repo.Transactor,
	l logger.Interface,
) *MigrationUseCase {
	return &MigrationUseCase{
		records:    records,
		store:      store,
		outboxRepo: outboxRepo,
		transactor: transactor,
		logger:     l,
	}
}

// Run scans for inline-encoded rows and migrates each one.
func (uc *MigrationUseCase) Run(ctx context.Context) (*entity.MigrationSummary, error) {
	records, err := uc.records.FindInlineMedia(ctx)
	if err != nil {
		return nil, fmt.Errorf("MigrationUseCase - Run - uc.records.FindInlineMedia: %w", err)
	}

	summary := &entity.MigrationSummary{
		Results: make([]entity.MigrationOutcome, 0, len(records)),
	}

	for _, rec := range records {
		summary.Total++

		outcome := uc.migrateRecord(ctx, rec)

		switch outcome.Status {
		case entity.OutcomeFixed:
			summary.Fixed++
		case entity.OutcomeFailed, entity.OutcomeError:
			summary.Failed++
		}

		summary.Results = append(summary.Results, outcome)
	}

	uc.logger.Info("migration run finished: total=%d fixed=%d failed=%d", summary.Total, summary.Fixed, summary.Failed)

	return summary, nil
}

func (uc *MigrationUseCase) migrateRecord(ctx context.Context, rec entity.ContentRecord) entity.MigrationOutcome {
	// 1. parse the data URI
	mimeType, payload, ok := parseDataURI(rec.Media)
	if !ok {
		return entity.MigrationOutcome{
			ID:     rec.ID,
			Status: entity.OutcomeSkipped,
			Reason: "invalid data URI format",
		}
	}

	// 2. decode the payload as-is, migration never re-compresses
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return entity.MigrationOutcome{
			ID:     rec.ID,
			Status: entity.OutcomeError,
			Reason: fmt.Sprintf("base64 decode: %v", err),
		}
	}

	// 3. name and write through the same storage layout as uploads,
	// bypassing the transformer
	name := naming.Generate("migrated"+extForMIME(mimeType), data)

	asset, err := uc.store.WriteRaw(name, data)
	if err != nil {
		return entity.MigrationOutcome{
			ID:     rec.ID,
			Status: entity.OutcomeError,
			Reason: err.Error(),
		}
	}

	// 4. record update and outbox notification commit together
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.records.UpdateMediaURL(ctx, rec.ID, asset.URL); err != nil {
			return fmt.Errorf("MigrationUseCase - migrateRecord - uc.records.UpdateMediaURL: %w", err)
		}

		event, err := uc.createOutboxEvent(rec.ID, asset)
		if err != nil {
			return fmt.Errorf("MigrationUseCase - migrateRecord - uc.createOutboxEvent: %w", err)
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("MigrationUseCase - migrateRecord - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		uc.logger.Error(err, "MigrationUseCase - migrateRecord - uc.transactor.WithinTransaction")

		return entity.MigrationOutcome{
			ID:     rec.ID,
			Status: entity.OutcomeError,
			Reason: err.Error(),
		}
	}

	return entity.MigrationOutcome{
		ID:     rec.ID,
		Status: entity.OutcomeFixed,
		NewURL: asset.URL,
	}
}

// Status is the read-only probe: how many rows still hold inline payloads
// versus canonical file paths.
func (uc *MigrationUseCase) Status(ctx context.Context) (*entity.MigrationStatus, error) {
	inline, err := uc.records.CountInlineMedia(ctx)
	if err != nil {
		return nil, fmt.Errorf("MigrationUseCase - Status - uc.records.CountInlineMedia: %w", err)
	}

	files, err := uc.records.CountFileMedia(ctx)
	if err != nil {
		return nil, fmt.Errorf("MigrationUseCase - Status - uc.records.CountFileMedia: %w", err)
	}

	return &entity.MigrationStatus{
		Status:          "ok",
		Base64Entries:   inline,
		FilePathEntries: files,
		NeedsMigration:  inline > 0,
	}, nil
}

// parseDataURI splits data:<mime>;base64,<payload>.
func parseDataURI(s string) (mimeType, payload string, ok bool) {
	rest, found := strings.CutPrefix(s, inlinePrefix)
	if !found {
		return "", "", false
	}

	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}

	mimeType, encoding, found := strings.Cut(meta, ";")
	if !found || encoding != "base64" || mimeType == "" {
		return "", "", false
	}

	return mimeType, payload, true
}

func extForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

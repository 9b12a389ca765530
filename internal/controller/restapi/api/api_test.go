package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/communitycms/media-service/config"
	"github.com/communitycms/media-service/internal/dto"
	"github.com/communitycms/media-service/internal/entity"
	"github.com/communitycms/media-service/pkg/types/errs"
)

type nopLogger struct{}

func (nopLogger) Debug(message interface{}, args ...interface{}) {}
func (nopLogger) Info(message string, args ...interface{})       {}
func (nopLogger) Warn(message string, args ...interface{})       {}
func (nopLogger) Error(message interface{}, args ...interface{}) {}
func (nopLogger) Fatal(message interface{}, args ...interface{}) {}

type fakeMedia struct {
	files       map[string]string
	deleted     []string
	processed   *entity.ProcessedAsset
	processErr  error
	openCalls   int
	deleteCalls int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{files: make(map[string]string)}
}

func (f *fakeMedia) Process(_ context.Context, _ []byte, _, _ string, _ dto.ProcessOptions) (*entity.ProcessedAsset, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	return f.processed, nil
}

func (f *fakeMedia) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f.openCalls++

	content, ok := f.files[path]
	if !ok {
		return nil, errs.ErrNotFound
	}

	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeMedia) Delete(_ context.Context, url string) error {
	f.deleteCalls++

	rel, ok := strings.CutPrefix(url, "/api/uploads/")
	if !ok {
		return errs.ErrNotFound
	}
	if _, found := f.files[rel]; !found {
		return errs.ErrNotFound
	}

	delete(f.files, rel)
	f.deleted = append(f.deleted, url)

	return nil
}

func (f *fakeMedia) GetPendingEvents(_ context.Context, _, _ int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeMedia) MarkAsProcessingBatch(_ context.Context, _ []*entity.OutboxEvent) error {
	return nil
}
func (f *fakeMedia) MarkAsProcessedBatch(_ context.Context, _ []*entity.OutboxEvent) error {
	return nil
}
func (f *fakeMedia) IncrementRetryCountBatch(_ context.Context, _ []*entity.OutboxEvent) error {
	return nil
}
func (f *fakeMedia) MarkMaxRetriesAsFailed(_ context.Context, _ int) error { return nil }
func (f *fakeMedia) CleanupOutbox(_ context.Context) error                 { return nil }

type fakeMigration struct {
	summary *entity.MigrationSummary
	status  *entity.MigrationStatus
}

func (f *fakeMigration) Run(_ context.Context) (*entity.MigrationSummary, error) {
	return f.summary, nil
}

func (f *fakeMigration) Status(_ context.Context) (*entity.MigrationStatus, error) {
	return f.status, nil
}

func newTestApp(media *fakeMedia, migration *fakeMigration) *fiber.App {
	app := fiber.New()

	cfg := &config.Config{
		Upload: config.Upload{
			MaxWidth:         1600,
			MaxHeight:        1600,
			Quality:          80,
			ThumbnailWidth:   500,
			ThumbnailQuality: 75,
		},
	}

	NewMediaRoutes(app.Group("/api"), cfg, media, migration, nopLogger{})

	return app
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return &body, w.FormDataContentType()
}

func TestGetFile(t *testing.T) {
	media := newFakeMedia()
	media.files["images/a.webp"] = "bytes"
	app := newTestApp(media, &fakeMigration{})

	req, _ := http.NewRequest(http.MethodGet, "/api/uploads/images/a.webp", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/webp" {
		t.Errorf("expected image/webp, got %q", ct)
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("expected immutable cache directive, got %q", cc)
	}

	got, _ := io.ReadAll(resp.Body)
	if string(got) != "bytes" {
		t.Errorf("body mismatch: %q", got)
	}
}

func TestGetFile_NotFound(t *testing.T) {
	app := newTestApp(newFakeMedia(), &fakeMigration{})

	req, _ := http.NewRequest(http.MethodGet, "/api/uploads/images/missing.webp", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetFile_TraversalRejectedBeforeStorage(t *testing.T) {
	media := newFakeMedia()
	app := newTestApp(media, &fakeMigration{})

	for _, path := range []string{
		"/api/uploads/images/..secret",
		"/api/uploads/images/~root",
		"/api/uploads/~",
	} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s: expected 400, got %d", path, resp.StatusCode)
		}
	}

	if media.openCalls != 0 {
		t.Errorf("storage was touched %d times for hostile paths", media.openCalls)
	}
}

func TestDeleteFile(t *testing.T) {
	media := newFakeMedia()
	media.files["images/a.webp"] = "bytes"
	app := newTestApp(media, &fakeMigration{})

	req, _ := http.NewRequest(http.MethodDelete, "/api/uploads/images/a.webp", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	if len(media.deleted) != 1 || media.deleted[0] != "/api/uploads/images/a.webp" {
		t.Errorf("unexpected delete calls: %v", media.deleted)
	}
}

func TestDeleteFile_NotFound(t *testing.T) {
	app := newTestApp(newFakeMedia(), &fakeMigration{})

	req, _ := http.NewRequest(http.MethodDelete, "/api/uploads/images/missing.webp", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUploadImage(t *testing.T) {
	media := newFakeMedia()
	media.processed = &entity.ProcessedAsset{
		Filename: "photo-1-abc.webp",
		URL:      "/api/uploads/images/photo-1-abc.webp",
		Size:     1234,
		Width:    1600,
		Height:   800,
		Format:   "webp",
		Thumbnail: &entity.ThumbnailAsset{
			URL: "/api/uploads/thumbnails/thumb-photo-1-abc.webp",
		},
	}
	app := newTestApp(media, &fakeMigration{})

	body, contentType := multipartUpload(t, "photo.png", "image/png", []byte("fake image"), nil)

	req, _ := http.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			URL          string `json:"url"`
			ThumbnailURL string `json:"thumbnailUrl"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !parsed.Success {
		t.Error("expected success=true")
	}
	if parsed.Data.URL != media.processed.URL {
		t.Errorf("unexpected URL %q", parsed.Data.URL)
	}
	if parsed.Data.ThumbnailURL != media.processed.Thumbnail.URL {
		t.Errorf("unexpected thumbnail URL %q", parsed.Data.ThumbnailURL)
	}
}

func TestUploadImage_Validation(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		fields      map[string]string
	}{
		{"disallowed media type", "doc.pdf", "application/pdf", []byte("x"), nil},
		{"disallowed extension", "image.svg", "image/png", []byte("x"), nil},
		{"empty file", "a.png", "image/png", nil, nil},
		{"bad maxWidth", "a.png", "image/png", []byte("x"), map[string]string{"maxWidth": "nope"}},
		{"maxWidth out of range", "a.png", "image/png", []byte("x"), map[string]string{"maxWidth": "99999"}},
		{"quality out of range", "a.png", "image/png", []byte("x"), map[string]string{"quality": "101"}},
		{"bad generateThumbnail", "a.png", "image/png", []byte("x"), map[string]string{"generateThumbnail": "maybe"}},
		{"negative maxFileSizeKB", "a.png", "image/png", []byte("x"), map[string]string{"maxFileSizeKB": "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := newFakeMedia()
			media.processed = &entity.ProcessedAsset{}
			app := newTestApp(media, &fakeMigration{})

			body, contentType := multipartUpload(t, tt.filename, tt.contentType, tt.content, tt.fields)

			req, _ := http.NewRequest(http.MethodPost, "/api/uploads", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestRunMigration(t *testing.T) {
	migration := &fakeMigration{
		summary: &entity.MigrationSummary{
			Total:  3,
			Fixed:  2,
			Failed: 1,
			Results: []entity.MigrationOutcome{
				{ID: 1, Status: entity.OutcomeFixed, NewURL: "/api/uploads/images/a.png"},
				{ID: 2, Status: entity.OutcomeFixed, NewURL: "/api/uploads/images/b.png"},
				{ID: 3, Status: entity.OutcomeError, Reason: "base64 decode: oops"},
			},
		},
	}
	app := newTestApp(newFakeMedia(), migration)

	req, _ := http.NewRequest(http.MethodPost, "/api/admin/migrate-media", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var parsed struct {
		Message string `json:"message"`
		Total   int    `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if parsed.Message != "migration completed: 2 fixed, 1 failed" {
		t.Errorf("unexpected message %q", parsed.Message)
	}
	if parsed.Total != 3 {
		t.Errorf("expected total=3, got %d", parsed.Total)
	}
}

func TestMigrationStatus(t *testing.T) {
	migration := &fakeMigration{
		status: &entity.MigrationStatus{
			Status:          "ok",
			Base64Entries:   4,
			FilePathEntries: 10,
			NeedsMigration:  true,
		},
	}
	app := newTestApp(newFakeMedia(), migration)

	req, _ := http.NewRequest(http.MethodGet, "/api/admin/migrate-media", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var parsed entity.MigrationStatus
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if parsed.Base64Entries != 4 || parsed.FilePathEntries != 10 || !parsed.NeedsMigration {
		t.Errorf("unexpected status payload: %+v", parsed)
	}
}

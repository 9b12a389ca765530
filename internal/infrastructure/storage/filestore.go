// Package storage persists transformed assets under the fixed two-directory
// upload layout and serves them back, confined to the upload root.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/communitycms/media-service/internal/dto"
	"github.com/communitycms/media-service/internal/entity"
	"github.com/communitycms/media-service/pkg/types/errs"
)

const (
	ImagesDir     = "images"
	ThumbnailsDir = "thumbnails"
	ThumbPrefix   = "thumb-"

	URLPrefix = "/api/uploads"
)

type FileStore struct {
	root string
}

// New resolves the upload root and ensures the layout exists.
func New(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("FileStore - New - filepath.Abs: %w", err)
	}

	fs := &FileStore{root: abs}

	if err := fs.EnsureLayout(); err != nil {
		return nil, err
	}

	return fs, nil
}

// EnsureLayout idempotently creates the images/ and thumbnails/ subtrees.
func (fs *FileStore) EnsureLayout() error {
	for _, dir := range []string{ImagesDir, ThumbnailsDir} {
		if err := os.MkdirAll(filepath.Join(fs.root, dir), 0o750); err != nil {
			return fmt.Errorf("FileStore - EnsureLayout - os.MkdirAll: %w", err)
		}
	}

	return nil
}

// WriteAsset persists a transformed result: the main bytes under images/
// and, when present, the thumbnail under thumbnails/ with the thumb- prefix
// on the same name. Byte sizes are re-read from disk after each write.
func (fs *FileStore) WriteAsset(name string, res *dto.TransformResult) (*entity.ProcessedAsset, error) {
	mainPath, mainSize, err := fs.writeFile(filepath.Join(ImagesDir, name), res.Data)
	if err != nil {
		return nil, fmt.Errorf("FileStore - WriteAsset - fs.writeFile: %w", err)
	}

	asset := &entity.ProcessedAsset{
		Filename: name,
		Path:     mainPath,
		URL:      JoinURL(ImagesDir, name),
		Size:     mainSize,
		Width:    res.Width,
		Height:   res.Height,
		Format:   res.Format,
	}

	if res.Thumbnail != nil {
		thumbName := ThumbPrefix + name

		thumbPath, thumbSize, err := fs.writeFile(filepath.Join(ThumbnailsDir, thumbName), res.Thumbnail.Data)
		if err != nil {
			return nil, fmt.Errorf("FileStore - WriteAsset - fs.writeFile: %w", err)
		}

		asset.Thumbnail = &entity.ThumbnailAsset{
			Filename: thumbName,
			Path:     thumbPath,
			URL:      JoinURL(ThumbnailsDir, thumbName),
			Size:     thumbSize,
			Width:    res.Thumbnail.Width,
			Height:   res.Thumbnail.Height,
		}
	}

	return asset, nil
}

// WriteRaw persists already-encoded bytes under images/ without any
// transformation metadata. Used by the legacy migration, which relocates
// payloads losslessly.
func (fs *FileStore) WriteRaw(name string, data []byte) (*entity.ProcessedAsset, error) {
	path, size, err := fs.writeFile(filepath.Join(ImagesDir, name), data)
	if err != nil {
		return nil, fmt.Errorf("FileStore - WriteRaw - fs.writeFile: %w", err)
	}

	return &entity.ProcessedAsset{
		Filename: name,
		Path:     path,
		URL:      JoinURL(ImagesDir, name),
		Size:     size,
	}, nil
}

// Open resolves a slash-separated path strictly under the upload root.
// Callers must close the file. Returns errs.ErrNotFound for missing files
// and errs.ErrTraversal when the resolved path escapes the root.
func (fs *FileStore) Open(rel string) (io.ReadCloser, error) {
	full, err := fs.resolve(rel)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("FileStore - Open: %w: %s", errs.ErrNotFound, rel)
		}
		return nil, fmt.Errorf("FileStore - Open - os.Open: %w", err)
	}

	return f, nil
}

// Remove deletes a stored file. Missing files report errs.ErrNotFound so
// the deletion routine can treat an absent thumbnail as a non-error.
func (fs *FileStore) Remove(rel string) error {
	full, err := fs.resolve(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("FileStore - Remove: %w: %s", errs.ErrNotFound, rel)
		}
		return fmt.Errorf("FileStore - Remove - os.Remove: %w", err)
	}

	return nil
}

func (fs *FileStore) resolve(rel string) (string, error) {
	full := filepath.Join(fs.root, filepath.FromSlash(rel))

	if full != fs.root && !strings.HasPrefix(full, fs.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("FileStore - resolve: %w: %s", errs.ErrTraversal, rel)
	}

	return full, nil
}

// writeFile writes via temp file, fsync and atomic rename, then re-reads
// the size from disk rather than trusting the in-memory length.
func (fs *FileStore) writeFile(rel string, data []byte) (string, int64, error) {
	full := filepath.Join(fs.root, rel)
	tmp := full + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", 0, fmt.Errorf("os.Create: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", 0, fmt.Errorf("f.Write: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", 0, fmt.Errorf("f.Sync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("f.Close: %w", err)
	}

	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("os.Rename: %w", err)
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", 0, fmt.Errorf("os.Stat: %w", err)
	}

	return full, info.Size(), nil
}

// JoinURL builds the canonical public URL for a stored file.
func JoinURL(dir, name string) string {
	return URLPrefix + "/" + dir + "/" + name
}

// RelFromURL maps a canonical URL back to the root-relative storage path.
func RelFromURL(url string) (string, bool) {
	rel, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok || rel == "" {
		return "", false
	}

	return rel, true
}

package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URL prefixes under which the directories are served.
const (
	UploadsPrefix = "uploads"
	FinalPrefix   = "final"
)

// ErrInvalidImage is returned for undecodable base64 payloads.
var ErrInvalidImage = errors.New("invalid image data")

// Config は画像ディレクトリの設定。
type Config struct {
	UploadDir string
	FinalDir  string
	TempDir   string
}

// Store writes uploaded and annotated images to local directories.
type Store struct {
	uploadDir string
	finalDir  string
	tempDir   string
	now       func() time.Time
}

// New creates the directories if missing.
func New(cfg Config) (*Store, error) {
	s := &Store{
		uploadDir: orDefault(cfg.UploadDir, "uploads"),
		finalDir:  orDefault(cfg.FinalDir, "final"),
		tempDir:   orDefault(cfg.TempDir, "temp"),
		now:       time.Now,
	}
	for _, dir := range []string{s.uploadDir, s.finalDir, s.tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

// UploadDir returns the directory served under /uploads.
func (s *Store) UploadDir() string { return s.uploadDir }

// FinalDir returns the directory served under /final.
func (s *Store) FinalDir() string { return s.finalDir }

// SaveUpload keeps an uploaded image. It returns the public relative path
// (uploads/<name>) and the filesystem path handed to the analysis scripts.
func (s *Store) SaveUpload(originalName string, data []byte) (string, string, error) {
	name := fmt.Sprintf("%d_%s_%s", s.now().UnixMilli(), shortID(), SanitizeFilename(originalName))
	full := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", "", err
	}
	return path.Join(UploadsPrefix, name), full, nil
}

// SaveTemp writes data to a temporary file. The returned cleanup removes it.
func (s *Store) SaveTemp(data []byte, ext string) (string, func(), error) {
	f, err := os.CreateTemp(s.tempDir, "temp_*"+ext)
	if err != nil {
		return "", func() {}, err
	}
	name := f.Name()
	cleanup := func() { _ = os.Remove(name) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", func() {}, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return name, cleanup, nil
}

// SaveDataURL decodes a base64 image (data URL or bare base64) into the
// final directory and returns its public relative path (final/<name>).
func (s *Store) SaveDataURL(dataURL string) (string, error) {
	ext, payload := splitDataURL(strings.TrimSpace(dataURL))
	if payload == "" {
		return "", ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return "", ErrInvalidImage
	}

	name := fmt.Sprintf("%d_%s_bbox%s", s.now().UnixMilli(), shortID(), ext)
	if err := os.WriteFile(filepath.Join(s.finalDir, name), data, 0o644); err != nil {
		return "", err
	}
	return path.Join(FinalPrefix, name), nil
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] so client names cannot escape the upload directory.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "image.jpg"
	}
	if len(cleaned) > 100 {
		cleaned = cleaned[len(cleaned)-100:]
	}
	return cleaned
}

func splitDataURL(value string) (string, string) {
	ext := ".png"
	if !strings.HasPrefix(value, "data:") {
		return ext, value
	}
	header, payload, ok := strings.Cut(value, ",")
	if !ok {
		return ext, ""
	}
	switch {
	case strings.Contains(header, "image/jpeg"), strings.Contains(header, "image/jpg"):
		ext = ".jpg"
	case strings.Contains(header, "image/webp"):
		ext = ".webp"
	}
	return ext, payload
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

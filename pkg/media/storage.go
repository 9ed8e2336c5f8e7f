package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nmtruong/shophub-backend/pkg/config"
)

// PublicPrefix is the URL path prefix the router serves stored files under.
const PublicPrefix = "/uploads"

var filenameSanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Storage persists uploaded files on local disk and hands back public URL paths.
type Storage struct {
	dir      string
	maxBytes int64
}

// NewStorage ensures the upload directory exists and returns a disk-backed store.
func NewStorage(cfg config.MediaConfig) (*Storage, error) {
	dir := strings.TrimSpace(cfg.UploadDir)
	if dir == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %q: %w", dir, err)
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 5
	}
	return &Storage{dir: dir, maxBytes: int64(maxMB) << 20}, nil
}

// MaxBytes reports the per-file upload cap.
func (s *Storage) MaxBytes() int64 {
	return s.maxBytes
}

// Save writes the uploaded file under a collision-proof timestamped name and
// returns the public path clients should reference it by.
func (s *Storage) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("file header is required")
	}
	if fh.Size > s.maxBytes {
		return "", fmt.Errorf("file %q exceeds %d byte limit", fh.Filename, s.maxBytes)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitizeFilename(fh.Filename))
	dstPath := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("write %q: %w", dstPath, err)
	}

	return PublicPrefix + "/" + name, nil
}

// Dir exposes the backing directory for the static file server.
func (s *Storage) Dir() string {
	return s.dir
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = filenameSanitizeRe.ReplaceAllString(base, "_")
	if base == "" || base == "." {
		return "upload"
	}
	return base
}

package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	ImageSubdir = "shift_images"
	VideoSubdir = "shift_videos"
)

// Storage writes uploaded files below a single media root, images and videos
// in separate subdirectories. Stored names are random so that uploads can
// never collide or escape the root via their original filename.
type Storage struct {
	root string
}

// NewStorage ensures the media root and its subdirectories exist.
func NewStorage(root string) (*Storage, error) {
	for _, sub := range []string{ImageSubdir, VideoSubdir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create media directory %s: %w", sub, err)
		}
	}
	return &Storage{root: root}, nil
}

// Root returns the media root directory for static file serving.
func (s *Storage) Root() string {
	return s.root
}

// SaveImage stores an uploaded image and returns its path relative to the
// media root.
func (s *Storage) SaveImage(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, ImageSubdir)
}

// SaveVideo stores an uploaded video and returns its path relative to the
// media root.
func (s *Storage) SaveVideo(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, VideoSubdir)
}

func (s *Storage) save(fh *multipart.FileHeader, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	relPath := filepath.Join(subdir, uuid.New().String()+ext)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.root, relPath))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return relPath, nil
}

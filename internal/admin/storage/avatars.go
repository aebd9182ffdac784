// Package storage persists uploaded avatar images on local disk. Files are
// named by owner ID so a re-upload replaces the previous avatar.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
)

// MaxAvatarSize caps uploads at 1 MiB.
const MaxAvatarSize = 1 << 20

// allowedImageExts maps detected MIME types to the extension used on disk.
var allowedImageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type AvatarStore struct {
	root string
}

// NewAvatarStore ensures the root directory exists and returns a store
// rooted there.
func NewAvatarStore(root string) (*AvatarStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar root: %w", err)
	}
	return &AvatarStore{root: root}, nil
}

// Save sniffs the content type, enforces the size limit, and writes the
// image under <root>/<kind>/<ownerID><ext>. It returns the relative path to
// store on the owning record. kind is a directory name like "coaches".
func (s *AvatarStore) Save(kind, ownerID string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxAvatarSize {
		return "", ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	ext, ok := allowedImageExts[mt.String()]
	if !ok {
		return "", ErrUnsupportedImage
	}

	dir := filepath.Join(s.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	// Clear any prior avatar with a different extension.
	for _, old := range allowedImageExts {
		if old != ext {
			_ = os.Remove(filepath.Join(dir, ownerID+old))
		}
	}

	path := filepath.Join(dir, ownerID+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(kind, ownerID+ext)), nil
}

// Remove deletes a stored avatar by its relative path. Missing files are not
// an error.
func (s *AvatarStore) Remove(relPath string) error {
	relPath = filepath.Clean("/" + relPath) // strip any traversal
	full := filepath.Join(s.root, strings.TrimPrefix(relPath, "/"))
	err := os.Remove(full)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Root returns the on-disk root, used to mount a file server for serving
// avatars.
func (s *AvatarStore) Root() string { return s.root }

// Package media stores product images on local disk and serves them from a
// public base URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/logger"
)

const defaultMaxFileSize = 5 << 20

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

type Options struct {
	Dir         string
	PublicURL   string
	MaxFileSize int64
	Logger      *logger.Logger
}

// LocalUploader writes images under Dir with a generated name and returns
// PublicURL/<name>.
type LocalUploader struct {
	dir       string
	publicURL string
	maxSize   int64
	log       *logger.Logger
}

func NewLocalUploader(opts Options) (*LocalUploader, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, errors.New("media: upload dir is required")
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &LocalUploader{
		dir:       filepath.Clean(dir),
		publicURL: strings.TrimRight(strings.TrimSpace(opts.PublicURL), "/"),
		maxSize:   opts.MaxFileSize,
		log:       opts.Logger,
	}, nil
}

func (u *LocalUploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if extension == "" {
		return "", apperr.InvalidInput("images", "image file extension is required")
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return "", apperr.InvalidInput("images", "unsupported image type: "+extension)
	}
	if int64(len(data)) > u.maxSize {
		return "", apperr.InvalidInput("images", fmt.Sprintf("image file too large (max %d bytes)", u.maxSize))
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := primitive.NewObjectID().Hex() + extension
	fullPath := filepath.Join(u.dir, name)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}

	u.log.Debug(u.log.WithFields(ctx, map[string]any{"filename": filename, "stored_as": name}), "image stored")
	return u.publicURL + "/" + name, nil
}

// Delete removes a file previously returned by Upload. Missing files are not
// an error; paths that escape the upload dir are refused.
func (u *LocalUploader) Delete(ctx context.Context, url string) error {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil
	}
	if u.publicURL != "" {
		trimmed = strings.TrimPrefix(trimmed, u.publicURL)
	}

	cleanRel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(trimmed, "/")), "/")
	if cleanRel == "" || strings.Contains(cleanRel, "/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", url)
	}

	target := filepath.Clean(filepath.Join(u.dir, cleanRel))
	if !strings.HasPrefix(target, u.dir+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload dir: %s", url)
	}

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

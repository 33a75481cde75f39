package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// AvatarKey builds the object key for a player avatar of the given content type.
func AvatarKey(playerID int, contentType string, now time.Time) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("unsupported avatar content type %q", contentType)
	}
	return path.Join("players", fmt.Sprintf("%d", playerID), fmt.Sprintf("avatar_%d%s", now.UnixNano(), ext)), nil
}

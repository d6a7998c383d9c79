package storage

import (
	"context"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/pkg/config"
)

// ObjectStore abstracts the remote photo store. Upload returns a stable
// public URL; DeleteByURL removes the object the URL points at.
type ObjectStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
	DeleteByURL(ctx context.Context, rawURL string) error
	// Ready reports whether the store holds the credentials required for
	// delete operations. Stores that need no signing always return nil.
	Ready() error
}

// New selects a provider from configuration, falling back to local disk.
func New(cfg config.StorageConfig, logger *zap.Logger) (ObjectStore, error) {
	switch cfg.Provider {
	case "cloudinary":
		return NewCloudinaryStore(cfg, nil), nil
	case "minio":
		return NewMinioStore(cfg)
	default:
		return NewLocalStore(cfg.LocalDir, cfg.LocalBaseURL)
	}
}

// PublicIDFromURL derives the object identifier from the final path
// segment of a delivery URL, with any extension stripped.
func PublicIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		rawURL = strings.SplitN(rawURL, "?", 2)[0]
		return strings.TrimSuffix(path.Base(rawURL), path.Ext(rawURL))
	}
	base := path.Base(u.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// objectNameFromURL keeps the extension, for stores addressed by filename.
func objectNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(strings.SplitN(rawURL, "?", 2)[0])
	}
	return path.Base(u.Path)
}

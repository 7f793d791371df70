package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/nholden/beacon/internal/domain"
)

// PublicPrefix is the URL path under which uploaded media is served.
const PublicPrefix = "/media/"

// MediaService turns base64 image payloads into stored files with public
// URLs. It implements domain.MediaStore.
type MediaService struct {
	store  Store
	logger *slog.Logger
}

var _ domain.MediaStore = (*MediaService)(nil)

// NewMediaService creates a MediaService on top of a Store.
func NewMediaService(store Store) *MediaService {
	return &MediaService{
		store:  store,
		logger: slog.Default().With("component", "media_service"),
	}
}

// Upload decodes a base64 data URI (or bare base64 string), verifies it is
// an image, stores it under a fresh name, and returns the public URL.
func (m *MediaService) Upload(ctx context.Context, dataURI string) (string, error) {
	data, err := decodeDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: payload is %s, expected an image", domain.ErrValidation, mtype.String())
	}

	name := uuid.NewString() + mtype.Extension()
	if _, err := m.store.Save(ctx, name, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("saving media: %w", err)
	}

	m.logger.Debug("Stored media object", "name", name, "bytes", len(data), "type", mtype.String())
	return PublicPrefix + name, nil
}

// Delete removes a previously uploaded object by its public URL.
func (m *MediaService) Delete(ctx context.Context, url string) error {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("%w: malformed media url %q", domain.ErrValidation, url)
	}
	return m.store.Delete(ctx, name)
}

// Open returns a reader for a stored object, for the /media/:name route.
func (m *MediaService) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// Reject path traversal in client-supplied names.
	if name != path.Base(name) {
		return nil, domain.ErrNotFound
	}
	rc, err := m.store.Get(ctx, name)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return rc, nil
}

// decodeDataURI accepts "data:image/png;base64,AAAA..." or a bare base64
// string and returns the raw bytes.
func decodeDataURI(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = s[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %v", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	return data, nil
}

package studies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrNoFile is returned when an upload arrives without an attached file.
	ErrNoFile = errors.New("no file attached")
	// ErrInvalidExtension rejects files outside the allowed study formats.
	ErrInvalidExtension = errors.New("file type not allowed")
)

// presignTTL is how long a minted retrieval link stays valid.
const presignTTL = time.Hour

// allowed study formats, matched case-insensitively on the extension
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ObjectStore is the slice of the storage wrapper this service needs.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	ListObjects(ctx context.Context, prefix string) ([]minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, key string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// StudyFile describes one stored study for the listing endpoint. The
// JSON field names match the portal frontend contract.
type StudyFile struct {
	Name    string  `json:"nombre"`
	Key     string  `json:"key"`
	Size    int64   `json:"tamaño"`
	SizeMB  float64 `json:"tamaño_mb"`
	ModTime string  `json:"fecha"`
	URL     string  `json:"url"`
}

// Service proxies per-user medical study files to the object store.
// Every key it touches lives under the owner's prefix; there is no
// cross-user access path.
type Service struct {
	store ObjectStore
}

func NewService(store ObjectStore) *Service {
	return &Service{store: store}
}

// ownerPrefix namespaces every key by account id.
func ownerPrefix(ownerID string) string {
	return fmt.Sprintf("studies/user_%s/", ownerID)
}

// SanitizeFilename strips path separators and characters outside a
// conservative allow-list, keeping only the base name.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Upload validates and stores a study under the owner's namespace and
// returns the stored filename.
func (s *Service) Upload(ctx context.Context, ownerID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if strings.TrimSpace(filename) == "" || reader == nil {
		return "", ErrNoFile
	}
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExtensions[ext] {
		return "", ErrInvalidExtension
	}
	stored := SanitizeFilename(filename)
	if stored == "" || stored == "." {
		return "", ErrNoFile
	}
	key := ownerPrefix(ownerID) + stored
	if err := s.store.UploadFile(ctx, key, reader, size, contentType); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return stored, nil
}

// List enumerates the owner's studies, minting a one-hour presigned
// retrieval URL per object. Pseudo-directory markers are skipped.
func (s *Service) List(ctx context.Context, ownerID string) ([]StudyFile, error) {
	prefix := ownerPrefix(ownerID)
	objects, err := s.store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("store list: %w", err)
	}
	out := make([]StudyFile, 0, len(objects))
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, "/") || obj.Key == prefix {
			continue
		}
		url, err := s.store.GetPresignedURL(ctx, obj.Key, presignTTL)
		if err != nil {
			return nil, fmt.Errorf("store presign: %w", err)
		}
		out = append(out, StudyFile{
			Name:    strings.TrimPrefix(obj.Key, prefix),
			Key:     obj.Key,
			Size:    obj.Size,
			SizeMB:  float64(obj.Size) / (1024 * 1024),
			ModTime: obj.LastModified.Format(time.RFC3339),
			URL:     url,
		})
	}
	return out, nil
}

// Delete removes one of the owner's studies. Deleting an absent file is
// a no-op, matching the store's semantics.
func (s *Service) Delete(ctx context.Context, ownerID, filename string) error {
	stored := SanitizeFilename(filename)
	if stored == "" {
		return ErrNoFile
	}
	if err := s.store.RemoveObject(ctx, ownerPrefix(ownerID)+stored); err != nil {
		return fmt.Errorf("store remove: %w", err)
	}
	return nil
}

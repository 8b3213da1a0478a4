package studies

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

// fakeStore keeps objects in a map, good enough to exercise key scoping.
type fakeStore struct {
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *fakeStore) ListObjects(ctx context.Context, prefix string) ([]minio.ObjectInfo, error) {
	var out []minio.ObjectInfo
	for k, v := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, minio.ObjectInfo{Key: k, Size: int64(len(v)), LastModified: time.Now().UTC()})
		}
	}
	return out, nil
}

func (f *fakeStore) RemoveObject(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://store.local/%s?expires=%d", key, int(expires.Seconds())), nil
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	svc := NewService(newFakeStore())
	_, err := svc.Upload(context.Background(), "u1", "virus.exe", bytes.NewReader([]byte("x")), 1, "application/octet-stream")
	if err != ErrInvalidExtension {
		t.Fatalf("expected ErrInvalidExtension, got %v", err)
	}
}

func TestUploadAcceptsCaseInsensitiveExtension(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	stored, err := svc.Upload(context.Background(), "u1", "scan.PDF", bytes.NewReader([]byte("pdfdata")), 7, "application/pdf")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if stored != "scan.PDF" {
		t.Fatalf("unexpected stored name: %q", stored)
	}
	if _, ok := store.objects["studies/user_u1/scan.PDF"]; !ok {
		t.Fatalf("object stored under wrong key: %v", store.objects)
	}
}

func TestUploadRejectsMissingFile(t *testing.T) {
	svc := NewService(newFakeStore())
	if _, err := svc.Upload(context.Background(), "u1", "", nil, 0, ""); err != ErrNoFile {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":    "passwd",
		"..\\..\\evil.pdf":    "evil.pdf",
		"mi estudio (1).pdf":  "mi_estudio__1_.pdf",
		"radiografia.jpg":     "radiografia.jpg",
		"informe-final_2.png": "informe-final_2.png",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListScopedToOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "userA", "a.pdf", bytes.NewReader([]byte("aaa")), 3, "application/pdf"); err != nil {
		t.Fatalf("upload A failed: %v", err)
	}
	if _, err := svc.Upload(ctx, "userB", "b.pdf", bytes.NewReader([]byte("bbbb")), 4, "application/pdf"); err != nil {
		t.Fatalf("upload B failed: %v", err)
	}

	listA, err := svc.List(ctx, "userA")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listA) != 1 {
		t.Fatalf("expected 1 study for userA, got %d", len(listA))
	}
	for _, f := range listA {
		if strings.Contains(f.Key, "userB") {
			t.Fatalf("listing leaked another user's key: %q", f.Key)
		}
	}
	if listA[0].Name != "a.pdf" || listA[0].Size != 3 {
		t.Fatalf("unexpected entry: %+v", listA[0])
	}
	if listA[0].URL == "" || !strings.Contains(listA[0].URL, "expires=3600") {
		t.Fatalf("expected a one-hour presigned URL, got %q", listA[0].URL)
	}
}

func TestListSkipsDirectoryMarkers(t *testing.T) {
	store := newFakeStore()
	store.objects["studies/user_u1/"] = nil
	store.objects["studies/user_u1/scan.pdf"] = []byte("x")
	svc := NewService(store)

	list, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "scan.pdf" {
		t.Fatalf("expected only the real object, got %+v", list)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "u1", "scan.pdf", bytes.NewReader([]byte("x")), 1, "application/pdf"); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if err := svc.Delete(ctx, "u1", "scan.pdf"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	// absent file: still no error
	if err := svc.Delete(ctx, "u1", "scan.pdf"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestDeleteCannotEscapeOwnerPrefix(t *testing.T) {
	store := newFakeStore()
	store.objects["studies/user_other/secret.pdf"] = []byte("x")
	svc := NewService(store)

	_ = svc.Delete(context.Background(), "u1", "../user_other/secret.pdf")
	if _, ok := store.objects["studies/user_other/secret.pdf"]; !ok {
		t.Fatalf("delete escaped the owner namespace")
	}
}

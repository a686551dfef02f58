package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/avelasq/authgate/internal/domain/media"
	"github.com/avelasq/authgate/internal/http/handlers"
)

type fakeMediaStore struct {
	upsertFn func(ctx context.Context, userID string, kind media.Kind, storageKey string) error
	getFn    func(ctx context.Context, userID string, kind media.Kind) (media.Object, error)
}

func (f *fakeMediaStore) Upsert(ctx context.Context, userID string, kind media.Kind, storageKey string) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, userID, kind, storageKey)
	}
	return nil
}

func (f *fakeMediaStore) Get(ctx context.Context, userID string, kind media.Kind) (media.Object, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID, kind)
	}
	return media.Object{}, media.ErrNotFound
}

type fakePresigner struct {
	putFn func(ctx context.Context, key string) (string, error)
	getFn func(ctx context.Context, key string) (string, error)
}

func (f *fakePresigner) PutURL(ctx context.Context, key string) (string, error) {
	if f.putFn != nil {
		return f.putFn(ctx, key)
	}
	return "https://bucket.example/" + key + "?sig=put", nil
}

func (f *fakePresigner) GetURL(ctx context.Context, key string) (string, error) {
	if f.getFn != nil {
		return f.getFn(ctx, key)
	}
	return "https://bucket.example/" + key + "?sig=get", nil
}

func newMediaRouter(h *handlers.MediaHandler) *gin.Engine {
	r := gin.New()
	r.POST("/users/:id/media/:kind/upload-url", h.UploadURL)
	r.GET("/users/:id/media/:kind", h.DownloadURL)
	return r
}

func TestUploadURLRecordsSlot(t *testing.T) {
	var recordedKey string

	h := &handlers.MediaHandler{
		Store: &fakeMediaStore{
			upsertFn: func(ctx context.Context, userID string, kind media.Kind, storageKey string) error {
				if userID != "u-1" || kind != media.KindProfileImage {
					t.Fatalf("unexpected upsert args: %s %s", userID, kind)
				}
				recordedKey = storageKey
				return nil
			},
		},
		Presign: &fakePresigner{},
	}

	req := httptest.NewRequest(http.MethodPost, "/users/u-1/media/profile_image/upload-url", nil)
	w := httptest.NewRecorder()
	newMediaRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["upload_url"] == "" || body["key"] == "" {
		t.Fatalf("missing fields in response: %v", body)
	}
	if body["key"] != recordedKey {
		t.Fatalf("returned key %q does not match recorded key %q", body["key"], recordedKey)
	}
	if !strings.HasPrefix(recordedKey, "users/u-1/profile_image/") {
		t.Fatalf("unexpected storage key layout: %q", recordedKey)
	}
}

func TestUploadURLRejectsUnknownKind(t *testing.T) {
	h := &handlers.MediaHandler{Store: &fakeMediaStore{}, Presign: &fakePresigner{}}

	req := httptest.NewRequest(http.MethodPost, "/users/u-1/media/pdf/upload-url", nil)
	w := httptest.NewRecorder()
	newMediaRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", w.Code)
	}
}

func TestDownloadURLForExistingSlot(t *testing.T) {
	h := &handlers.MediaHandler{
		Store: &fakeMediaStore{
			getFn: func(ctx context.Context, userID string, kind media.Kind) (media.Object, error) {
				return media.Object{UserID: userID, Kind: kind, StorageKey: "users/u-1/audio/abc"}, nil
			},
		},
		Presign: &fakePresigner{},
	}

	req := httptest.NewRequest(http.MethodGet, "/users/u-1/media/audio", nil)
	w := httptest.NewRecorder()
	newMediaRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(body["url"], "users/u-1/audio/abc") {
		t.Fatalf("presigned URL does not reference stored key: %q", body["url"])
	}
}

func TestDownloadURLMissingSlot(t *testing.T) {
	h := &handlers.MediaHandler{Store: &fakeMediaStore{}, Presign: &fakePresigner{}}

	req := httptest.NewRequest(http.MethodGet, "/users/u-1/media/video", nil)
	w := httptest.NewRecorder()
	newMediaRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty slot, got %d", w.Code)
	}
}
